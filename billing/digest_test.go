package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/canteen-engine/billing"
)

func TestDigestOf_CollapsesReportTotals(t *testing.T) {
	// GIVEN: A week with drinks and one snack transfer
	// WHEN: Collapsing the report into a digest
	// THEN: Drink, transfer, grand, and payable totals line up

	consumptions := append(fiveBondas(),
		drink("d1", "emp-navin", "2024-01-01T09:00:00Z", 10),
		drink("d2", "emp-navin", "2024-01-02T09:00:00Z", 15),
	)
	adj := billing.DailyAdjustments{
		"2024-01-07": {"emp-gopalan": 2},
	}
	report, err := billing.Compute(weekInput(consumptions, adj))
	require.NoError(t, err)

	createdAt := time.Date(2024, time.January, 5, 20, 0, 0, 0, time.UTC)
	digest := billing.DigestOf(report, "2024-01-01", "2024-01-07", createdAt)

	assert.Equal(t, billing.Date("2024-01-01"), digest.WeekStart)
	assert.Equal(t, billing.Date("2024-01-07"), digest.WeekEnd)
	assertMoney(t, "25", digest.DrinkAmount)
	assertMoney(t, "20", digest.TransferAmount)
	assertMoney(t, "45", digest.GrandTotal)
	assertMoney(t, "30", digest.PayableTotal, "5 bondas at 10 minus 2 transferred")
	assert.Equal(t, createdAt, digest.CreatedAt)
}

func TestDigestOf_EmptyReport(t *testing.T) {
	report, err := billing.Compute(weekInput(nil, nil))
	require.NoError(t, err)

	digest := billing.DigestOf(report, "2024-01-01", "2024-01-07", time.Now())
	assertMoney(t, "0", digest.DrinkAmount)
	assertMoney(t, "0", digest.TransferAmount)
	assertMoney(t, "0", digest.GrandTotal)
	assertMoney(t, "0", digest.PayableTotal)
}
