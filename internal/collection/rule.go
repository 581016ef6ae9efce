package collection

import (
	"fmt"
	"slices"
	"time"
)

// Channel is one outbound notification transport.
type Channel string

const (
	ChannelChat  Channel = "chat"
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelVoice Channel = "voice"
)

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Rule configures outreach for one stage. Channels are tried in order.
type Rule struct {
	Stage           Stage
	Channels        []Channel
	Priority        Priority
	RequiresAck     bool
	EscalationDelay time.Duration
	MaxAttempts     int
}

// RuleSet is an immutable, versioned stage -> rule table.
type RuleSet struct {
	version string
	rules   map[Stage]Rule
}

func NewRuleSet(version string, rules ...Rule) (*RuleSet, error) {
	rs := &RuleSet{version: version, rules: make(map[Stage]Rule, len(rules))}

	for _, r := range rules {
		if len(r.Channels) == 0 {
			return nil, fmt.Errorf("rule for stage %s has no channels", r.Stage)
		}

		if _, dup := rs.rules[r.Stage]; dup {
			return nil, fmt.Errorf("duplicate rule for stage %s", r.Stage)
		}

		r.Channels = slices.Clone(r.Channels)
		rs.rules[r.Stage] = r
	}

	return rs, nil
}

func (rs *RuleSet) Version() string {
	return rs.version
}

// Lookup returns a copy of the rule so callers cannot alter the table.
func (rs *RuleSet) Lookup(stage Stage) (Rule, bool) {
	r, ok := rs.rules[stage]
	if !ok {
		return Rule{}, false
	}

	r.Channels = slices.Clone(r.Channels)

	return r, true
}

// DefaultRules is the production cascade.
func DefaultRules() *RuleSet {
	rs, err := NewRuleSet("2026-01",
		Rule{
			Stage:       StageFriendlyReminder,
			Channels:    []Channel{ChannelChat, ChannelPush},
			Priority:    PriorityLow,
			MaxAttempts: 1,
		},
		Rule{
			Stage:       StageFinalNotice,
			Channels:    []Channel{ChannelChat, ChannelSMS, ChannelPush},
			Priority:    PriorityMedium,
			MaxAttempts: 3,
		},
		Rule{
			Stage:       StageOverdue1,
			Channels:    []Channel{ChannelChat, ChannelSMS, ChannelEmail},
			Priority:    PriorityHigh,
			MaxAttempts: 1,
		},
		Rule{
			Stage:       StageOverdue3,
			Channels:    []Channel{ChannelSMS, ChannelChat, ChannelVoice},
			Priority:    PriorityHigh,
			MaxAttempts: 2,
		},
		Rule{
			Stage:           StageLateFeeWarning,
			Channels:        []Channel{ChannelSMS, ChannelChat, ChannelEmail},
			Priority:        PriorityHigh,
			RequiresAck:     true,
			EscalationDelay: 48 * time.Hour,
			MaxAttempts:     4,
		},
		Rule{
			Stage:           StageAccountReview,
			Channels:        []Channel{ChannelVoice, ChannelSMS, ChannelEmail},
			Priority:        PriorityCritical,
			RequiresAck:     true,
			EscalationDelay: 24 * time.Hour,
			MaxAttempts:     7,
		},
		Rule{
			Stage:           StageCollectionsHandoff,
			Channels:        []Channel{ChannelVoice, ChannelSMS, ChannelEmail},
			Priority:        PriorityCritical,
			RequiresAck:     true,
			EscalationDelay: 24 * time.Hour,
			MaxAttempts:     16,
		},
		Rule{
			Stage:           StageLegalWarning,
			Channels:        []Channel{ChannelEmail, ChannelSMS, ChannelChat},
			Priority:        PriorityCritical,
			RequiresAck:     true,
			EscalationDelay: 72 * time.Hour,
			MaxAttempts:     3,
		},
	)
	if err != nil {
		panic(err)
	}

	return rs
}
