package aging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
)

type Bucket string

const (
	BucketCurrent Bucket = "current"
	Bucket1To30   Bucket = "1-30"
	Bucket31To60  Bucket = "31-60"
	Bucket61To90  Bucket = "61-90"
	BucketOver90  Bucket = "90+"
)

// Buckets lists every bucket in report order.
var Buckets = []Bucket{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, BucketOver90}

// BucketFor places a days-overdue figure. Anything not yet past due is current.
func BucketFor(daysOverdue int) Bucket {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return Bucket1To30
	case daysOverdue <= 60:
		return Bucket31To60
	case daysOverdue <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

type Repository interface {
	ListOutstanding(ctx context.Context) ([]*advance.Advance, error)
}

type BucketTotal struct {
	Bucket  Bucket          `json:"bucket"`
	Count   int             `json:"count"`
	Balance decimal.Decimal `json:"balance"`
}

type Line struct {
	AdvanceID        uuid.UUID       `json:"advance_id"`
	ContractNumber   string          `json:"contract_number"`
	Status           advance.Status  `json:"status"`
	DueDate          time.Time       `json:"due_date"`
	DaysOverdue      int             `json:"days_overdue"`
	Bucket           Bucket          `json:"bucket"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	LateFee          decimal.Decimal `json:"late_fee"`
	TotalDue         decimal.Decimal `json:"total_due"`
}

type Report struct {
	AsOf    time.Time       `json:"as_of"`
	Buckets []BucketTotal   `json:"buckets"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
	Lines   []Line          `json:"lines"`
}

type Generator struct {
	repo Repository
	loc  *time.Location
}

// NewGenerator ages balances on the calendar of loc.
func NewGenerator(repo Repository, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}

	return &Generator{repo: repo, loc: loc}
}

// Generate buckets every open advance's remaining balance by days past due as of asOf.
func (g *Generator) Generate(ctx context.Context, asOf time.Time) (*Report, error) {
	advs, err := g.repo.ListOutstanding(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing outstanding advances: %w", err)
	}

	return Build(advs, asOf.In(g.loc)), nil
}

// Build is the pure half of Generate.
func Build(advs []*advance.Advance, asOf time.Time) *Report {
	totals := make(map[Bucket]*BucketTotal, len(Buckets))

	r := &Report{AsOf: advance.DateOf(asOf), Total: decimal.Zero, Lines: []Line{}}

	for _, b := range Buckets {
		r.Buckets = append(r.Buckets, BucketTotal{Bucket: b, Balance: decimal.Zero})
	}

	for i := range r.Buckets {
		totals[r.Buckets[i].Bucket] = &r.Buckets[i]
	}

	for _, a := range advs {
		if a.Status.Terminal() {
			continue
		}

		bd := advance.ComputeBreakdown(a, asOf)
		bucket := BucketFor(bd.DaysOverdue)

		t := totals[bucket]
		t.Count++
		t.Balance = t.Balance.Add(a.RemainingBalance)

		r.Count++
		r.Total = r.Total.Add(a.RemainingBalance)
		r.Lines = append(r.Lines, Line{
			AdvanceID:        a.ID,
			ContractNumber:   a.ContractNumber,
			Status:           a.Status,
			DueDate:          advance.DateOf(a.DueDate),
			DaysOverdue:      bd.DaysOverdue,
			Bucket:           bucket,
			RemainingBalance: a.RemainingBalance,
			LateFee:          bd.LateFee,
			TotalDue:         bd.TotalDue,
		})
	}

	for i := range r.Buckets {
		r.Buckets[i].Balance = r.Buckets[i].Balance.Round(2)
	}

	r.Total = r.Total.Round(2)

	return r
}
