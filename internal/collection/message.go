package collection

import (
	"fmt"
	"strings"
)

type Message struct {
	Subject     string
	Body        string
	Priority    Priority
	RequiresAck bool
}

// Render builds the outbound copy for a target. The wording depends only on days from due.
func Render(t Target, rule Rule) Message {
	name := t.Contact.Name
	if name == "" {
		name = "Farmer"
	}

	due := t.DueDate.Format("02 Jan 2006")

	var subject string
	var body strings.Builder

	switch {
	case t.DaysFromDue < 0:
		subject = fmt.Sprintf("Repayment reminder for %s", t.ContractNumber)
		fmt.Fprintf(&body, "Hello %s, your advance %s is due on %s (in %s). Amount due: %s.",
			name, t.ContractNumber, due, pluralDays(-t.DaysFromDue), t.AmountDue.StringFixed(2))
	case t.DaysFromDue == 0:
		subject = fmt.Sprintf("Repayment due today for %s", t.ContractNumber)
		fmt.Fprintf(&body, "Hello %s, your advance %s is due today. Amount due: %s.",
			name, t.ContractNumber, t.AmountDue.StringFixed(2))
	default:
		subject = fmt.Sprintf("Overdue repayment for %s", t.ContractNumber)
		fmt.Fprintf(&body, "Hello %s, your advance %s is %s overdue.", name, t.ContractNumber, pluralDays(t.DaysFromDue))

		if t.LateFee.IsPositive() {
			fmt.Fprintf(&body, " A late fee of %s (%d%%) has been added.", t.LateFee.StringFixed(2), t.LateFeePercent)
		}

		fmt.Fprintf(&body, " Total now due: %s.", t.AmountDue.StringFixed(2))
	}

	if rule.RequiresAck {
		body.WriteString(" Please reply to confirm you received this message.")
	}

	return Message{
		Subject:     subject,
		Body:        body.String(),
		Priority:    rule.Priority,
		RequiresAck: rule.RequiresAck,
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}

	return fmt.Sprintf("%d days", n)
}
