package statement

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle is one signed column, credits positive.
	amountSingle amountMode = iota
	// amountSplit is a pair of unsigned money-out / money-in columns.
	amountSplit
)

// numberFormat is the decimal convention of a statement's amounts.
type numberFormat int

const (
	// numberPlain is "1,234.56".
	numberPlain numberFormat = iota
	// numberEuropean is "1.234,56".
	numberEuropean
)

// Profile describes the column layout of one statement export format.
// Column names are matched case-insensitively.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string
	DebitCol   string
	CreditCol  string
	Numbers    numberFormat
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles are tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:       "mpesa",
		DateCol:    "completion time",
		DescCol:    "details",
		AmountMode: amountSplit,
		DebitCol:   "withdrawn",
		CreditCol:  "paid in",
	},
	{
		Name:       "bank-split",
		DateCol:    "date",
		DescCol:    "description",
		AmountMode: amountSplit,
		DebitCol:   "debit",
		CreditCol:  "credit",
	},
	{
		Name:       "bank-narrative",
		DateCol:    "value date",
		DescCol:    "narrative",
		AmountMode: amountSplit,
		DebitCol:   "money out",
		CreditCol:  "money in",
	},
	{
		Name:       "bank-single",
		DateCol:    "date",
		DescCol:    "description",
		AmountMode: amountSingle,
		AmountCol:  "amount",
	},
	{
		Name:       "european",
		DateCol:    "data mov.",
		DescCol:    "descrição",
		AmountMode: amountSingle,
		AmountCol:  "montante",
		Numbers:    numberEuropean,
	},
}
