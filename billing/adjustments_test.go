package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/canteen-engine/billing"
)

// =============================================================================
// INCREMENT GUARD
// =============================================================================

func TestAdjustEmployeeToday_IncrementWithinConsumption(t *testing.T) {
	// GIVEN: Gopalan ate 5 bondas this week, nothing deducted yet
	// WHEN: Transferring 2 units today
	// THEN: Today's entry becomes 2; the input map is untouched

	in := weekInput(fiveBondas(), billing.DailyAdjustments{})

	updated, err := billing.AdjustEmployeeToday(in, "emp-gopalan", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, updated.On("2024-01-07", "emp-gopalan"))
	assert.Equal(t, 0, in.Adjustments.On("2024-01-07", "emp-gopalan"), "input must not be mutated")
}

func TestAdjustEmployeeToday_IncrementBeyondConsumption_Refused(t *testing.T) {
	// GIVEN: All 5 of Gopalan's bondas already deducted
	// WHEN: Transferring one more
	// THEN: Refused with the ceiling error, never clamped

	adj := billing.DailyAdjustments{
		"2024-01-03": {"emp-gopalan": 5},
	}
	in := weekInput(fiveBondas(), adj)

	updated, err := billing.AdjustEmployeeToday(in, "emp-gopalan", 1)
	require.Error(t, err)
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, billing.ErrAdjustmentCeiling)
	assert.True(t, billing.IsGuardViolation(err))

	var adjErr *billing.AdjustmentError
	require.ErrorAs(t, err, &adjErr)
	assert.Equal(t, billing.EmployeeID("emp-gopalan"), adjErr.EmployeeID)
	assert.Equal(t, 5, adjErr.TotalDeductedCount)
	assert.Equal(t, 5, adjErr.OriginalItemCount)
}

func TestAdjustEmployeeToday_GuardMatchesReportControl(t *testing.T) {
	// The report's CanIncreaseAdjustment flag and the mutation guard derive
	// from the same figures: a disabled control means a refused increment.

	adj := billing.DailyAdjustments{
		"2024-01-03": {"emp-gopalan": 5},
	}
	in := weekInput(fiveBondas(), adj)

	report, err := billing.Compute(in)
	require.NoError(t, err)
	bill := billFor(t, report, "emp-gopalan")
	require.False(t, bill.CanIncreaseAdjustment)

	_, err = billing.AdjustEmployeeToday(in, "emp-gopalan", 1)
	assert.ErrorIs(t, err, billing.ErrAdjustmentCeiling)
}

// =============================================================================
// DECREMENT GUARD
// =============================================================================

func TestAdjustEmployeeToday_DecrementRemovesTodayUnits(t *testing.T) {
	adj := billing.DailyAdjustments{
		"2024-01-07": {"emp-gopalan": 2},
	}
	in := weekInput(fiveBondas(), adj)

	updated, err := billing.AdjustEmployeeToday(in, "emp-gopalan", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.On("2024-01-07", "emp-gopalan"))
}

func TestAdjustEmployeeToday_DecrementWithNothingToday_Refused(t *testing.T) {
	// GIVEN: No adjustment added today
	// WHEN: Trying to remove a unit
	// THEN: Refused with the floor error

	in := weekInput(fiveBondas(), billing.DailyAdjustments{})

	_, err := billing.AdjustEmployeeToday(in, "emp-gopalan", -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrAdjustmentFloor)
}

func TestAdjustEmployeeToday_HistoricalEntriesAreFrozen(t *testing.T) {
	// GIVEN: 3 units transferred on a past day, none today
	// WHEN: Trying to remove a unit today
	// THEN: Refused; only units added today can be removed today

	adj := billing.DailyAdjustments{
		"2024-01-03": {"emp-gopalan": 3},
	}
	in := weekInput(fiveBondas(), adj)

	_, err := billing.AdjustEmployeeToday(in, "emp-gopalan", -1)
	assert.ErrorIs(t, err, billing.ErrAdjustmentFloor)

	// The historical entry itself is untouched by the attempt.
	assert.Equal(t, 3, in.Adjustments.On("2024-01-03", "emp-gopalan"))
}

// =============================================================================
// LOOKUP AND EDGE CASES
// =============================================================================

func TestAdjustEmployeeToday_UnknownEmployee(t *testing.T) {
	in := weekInput(fiveBondas(), billing.DailyAdjustments{})

	_, err := billing.AdjustEmployeeToday(in, "emp-nobody", 1)
	assert.ErrorIs(t, err, billing.ErrEmployeeNotFound)
	assert.True(t, billing.IsNotFound(err))
}

func TestAdjustEmployeeToday_NoSnacks_IncrementRefused(t *testing.T) {
	// An employee with no in-range snacks has a ceiling of zero.
	in := weekInput(nil, billing.DailyAdjustments{})

	_, err := billing.AdjustEmployeeToday(in, "emp-gopalan", 1)
	assert.ErrorIs(t, err, billing.ErrAdjustmentCeiling)
}

func TestAdjustEmployeeToday_NilAdjustmentMap(t *testing.T) {
	// A store with no adjustments yet hands the engine a nil map.
	in := weekInput(fiveBondas(), nil)

	updated, err := billing.AdjustEmployeeToday(in, "emp-gopalan", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.On("2024-01-07", "emp-gopalan"))
}

func TestAdjustEmployeeToday_AccumulatesWithinTheDay(t *testing.T) {
	// Two +1 transfers in one day add up rather than overwrite.
	in := weekInput(fiveBondas(), billing.DailyAdjustments{})

	first, err := billing.AdjustEmployeeToday(in, "emp-gopalan", 1)
	require.NoError(t, err)

	in.Adjustments = first
	second, err := billing.AdjustEmployeeToday(in, "emp-gopalan", 1)
	require.NoError(t, err)

	assert.Equal(t, 2, second.On("2024-01-07", "emp-gopalan"))
}
