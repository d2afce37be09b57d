package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WEEKLY DIGEST - Persisted summary of one week's billing
// =============================================================================

// WeeklyDigest captures the reconciled totals of one Monday-Sunday week.
// Digests carry numbers only; rendering them is the caller's concern.
type WeeklyDigest struct {
	WeekStart Date
	WeekEnd   Date

	// DrinkAmount is the drinks-only company total before transfers.
	DrinkAmount decimal.Decimal

	// TransferAmount is the sum of snack amounts moved onto the company
	// bill via manual adjustments.
	TransferAmount decimal.Decimal

	// GrandTotal = DrinkAmount + TransferAmount (conservation invariant).
	GrandTotal decimal.Decimal

	// PayableTotal is the sum of employee payable amounts after transfers.
	PayableTotal decimal.Decimal

	CreatedAt time.Time
}

// DigestOf collapses a computed report into a digest for the given week.
func DigestOf(r Report, weekStart, weekEnd Date, createdAt time.Time) WeeklyDigest {
	drinks := decimal.Zero
	for _, row := range r.CompanyBillRows {
		drinks = drinks.Add(row.Amount)
	}
	payable := decimal.Zero
	for _, bill := range r.EmployeeBills {
		payable = payable.Add(bill.FinalPayableAmount)
	}
	return WeeklyDigest{
		WeekStart:      weekStart,
		WeekEnd:        weekEnd,
		DrinkAmount:    drinks,
		TransferAmount: r.TotalManualTransferAmount,
		GrandTotal:     r.GrandTotalCompanyAmount,
		PayableTotal:   payable,
		CreatedAt:      createdAt,
	}
}

// DigestStore persists weekly digests. Separate from RecordStore because
// only the scheduler and the digest listing need it.
type DigestStore interface {
	// SaveWeeklyDigest upserts the digest for its week.
	SaveWeeklyDigest(ctx context.Context, d WeeklyDigest) error

	// ListWeeklyDigests returns digests, newest week first.
	ListWeeklyDigests(ctx context.Context) ([]WeeklyDigest, error)
}
