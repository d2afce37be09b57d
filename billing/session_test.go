package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/canteen-engine/billing"
)

// =============================================================================
// SESSION GROUPING
// =============================================================================

func TestGroupSessions_ExactTimestampAndEmployee(t *testing.T) {
	// GIVEN: A tea and a bonda logged together, plus another employee's tea
	//        at the very same instant
	// WHEN: Grouping sessions
	// THEN: Two sessions; same timestamp alone is not enough to merge

	ts := "2024-01-01T09:00:00Z"
	records := []billing.Consumption{
		drink("c1", "emp-gopalan", ts, 10),
		snack("c2", "emp-gopalan", ts, 10),
		drink("c3", "emp-navin", ts, 15),
	}

	sessions := billing.GroupSessions(records)
	require.Len(t, sessions, 2)

	for _, s := range sessions {
		switch s.EmployeeID {
		case "emp-gopalan":
			assert.Len(t, s.Items, 2)
			assertMoney(t, "20", s.Total)
		case "emp-navin":
			assert.Len(t, s.Items, 1)
			assertMoney(t, "15", s.Total)
		default:
			t.Fatalf("unexpected session for %s", s.EmployeeID)
		}
	}
}

func TestGroupSessions_NewestFirst(t *testing.T) {
	records := []billing.Consumption{
		drink("c1", "emp-gopalan", "2024-01-01T09:00:00Z", 10),
		drink("c2", "emp-gopalan", "2024-01-01T16:30:00Z", 10),
		drink("c3", "emp-gopalan", "2024-01-01T12:00:00Z", 10),
	}

	sessions := billing.GroupSessions(records)
	require.Len(t, sessions, 3)
	assert.Equal(t, "2024-01-01T16:30:00Z", sessions[0].Timestamp)
	assert.Equal(t, "2024-01-01T12:00:00Z", sessions[1].Timestamp)
	assert.Equal(t, "2024-01-01T09:00:00Z", sessions[2].Timestamp)
}

func TestGroupSessions_SecondsApartAreSeparate(t *testing.T) {
	// Grouping is exact string equality, not a time window.
	records := []billing.Consumption{
		drink("c1", "emp-gopalan", "2024-01-01T09:00:00Z", 10),
		snack("c2", "emp-gopalan", "2024-01-01T09:00:01Z", 10),
	}

	sessions := billing.GroupSessions(records)
	assert.Len(t, sessions, 2)
}

func TestGroupSessions_Empty(t *testing.T) {
	assert.Empty(t, billing.GroupSessions(nil))
}

// =============================================================================
// DAY FILTERS
// =============================================================================

func TestOnDay_FiltersByCalendarDay(t *testing.T) {
	records := []billing.Consumption{
		drink("c1", "emp-gopalan", "2024-01-01T09:00:00Z", 10),
		drink("c2", "emp-gopalan", "2024-01-02T09:00:00Z", 10),
		drink("c3", "emp-navin", "2024-01-01T23:59:00Z", 10),
	}

	monday := billing.OnDay(records, "2024-01-01")
	require.Len(t, monday, 2)
	assert.Equal(t, "c1", monday[0].ID)
	assert.Equal(t, "c3", monday[1].ID)
}

func TestGroupByDay_PartitionsRecords(t *testing.T) {
	records := []billing.Consumption{
		drink("c1", "emp-gopalan", "2024-01-01T09:00:00Z", 10),
		snack("c2", "emp-gopalan", "2024-01-01T11:00:00Z", 10),
		drink("c3", "emp-navin", "2024-01-02T09:00:00Z", 10),
	}

	grouped, err := billing.GroupByDay(records)
	require.NoError(t, err)
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped["2024-01-01"], 2)
	assert.Len(t, grouped["2024-01-02"], 1)
}

func TestGroupByDay_MalformedTimestamp(t *testing.T) {
	records := []billing.Consumption{
		drink("c1", "emp-gopalan", "nope", 10),
	}

	_, err := billing.GroupByDay(records)
	assert.ErrorIs(t, err, billing.ErrMalformedTimestamp)
}
