package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/harvest/internal/encoding"
)

var ErrUnknownFormat = errors.New("no matching statement format found")

var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"02 Jan 2006",
}

// Line is one money movement read from a statement.
type Line struct {
	Row         int             `json:"row"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Credit      bool            `json:"credit"`
}

type Parsed struct {
	Profile string      `json:"profile"`
	Charset enc.Charset `json:"charset"`
	Lines   []Line      `json:"lines"`
}

// Parser reads CSV statement exports. It detects the delimiter and layout by
// locating a header row that matches a known profile.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*Parsed, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	for _, comma := range []rune{';', ','} {
		rows, err := readRows(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		lines, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
		if err != nil {
			return nil, err
		}

		return &Parsed{Profile: profile.Name, Charset: charset, Lines: lines}, nil
	}

	return nil, ErrUnknownFormat
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a parseable date or amount (footers, subtotals).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]Line, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	lines := []Line{}

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(cellValue(row, dateIdx))
		if !ok {
			continue
		}

		amount, credit, ok := rowAmount(p, cols, row)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		lines = append(lines, Line{
			Row:         rowNum,
			Date:        date,
			Description: desc,
			Amount:      amount,
			Credit:      credit,
		})
	}

	return lines, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	return time.Time{}, false
}

// rowAmount returns the absolute amount and whether it is money in.
func rowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, bool, bool) {
	switch p.AmountMode {
	case amountSingle:
		d, ok := cellAmount(row, cols[p.AmountCol], p.Numbers)
		if !ok {
			return decimal.Zero, false, false
		}

		return d.Abs(), d.IsPositive(), true
	case amountSplit:
		if d, ok := cellAmount(row, cols[p.CreditCol], p.Numbers); ok {
			return d.Abs(), true, true
		}

		if d, ok := cellAmount(row, cols[p.DebitCol], p.Numbers); ok {
			return d.Abs(), false, true
		}
	}

	return decimal.Zero, false, false
}

func cellAmount(row []string, idx int, format numberFormat) (decimal.Decimal, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseAmount(s, format)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
