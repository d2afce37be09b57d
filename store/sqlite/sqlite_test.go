package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/canteen-engine/billing"
	"github.com/warp/canteen-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testConsumption(id string, emp billing.EmployeeID, ts string, price string) billing.Consumption {
	return billing.Consumption{
		ID:         id,
		EmployeeID: emp,
		ItemID:     "item-bonda",
		ItemName:   "Bonda",
		ItemType:   billing.ItemSnack,
		Price:      decimal.RequireFromString(price),
		Timestamp:  ts,
	}
}

// =============================================================================
// ROSTER AND MENU
// =============================================================================

func TestSQLite_Employees_SaveAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmployee(ctx, billing.Employee{ID: "e1", Name: "Gopalan", Active: true}))
	require.NoError(t, s.SaveEmployee(ctx, billing.Employee{ID: "e2", Name: "Navin", Active: true}))

	employees, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Gopalan", employees[0].Name)
	assert.Equal(t, "Navin", employees[1].Name)
}

func TestSQLite_Employees_UpsertKeepsOneRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmployee(ctx, billing.Employee{ID: "e1", Name: "Gopalan", Active: true}))
	require.NoError(t, s.SaveEmployee(ctx, billing.Employee{ID: "e1", Name: "Gopalan K", Active: false}))

	employees, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Gopalan K", employees[0].Name)
	assert.False(t, employees[0].Active)
}

func TestSQLite_Items_PriceSurvivesRoundTrip(t *testing.T) {
	// Prices are stored as text; 12.50 must come back as exactly 12.50.
	s := newTestStore(t)
	ctx := context.Background()

	item := billing.Item{
		ID:     "i1",
		Name:   "Masala Tea",
		Price:  decimal.RequireFromString("12.50"),
		Type:   billing.ItemDrink,
		Active: true,
	}
	require.NoError(t, s.SaveItem(ctx, item))

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, billing.ItemDrink, items[0].Type)
}

// =============================================================================
// CONSUMPTIONS AND SESSIONS
// =============================================================================

func TestSQLite_Consumptions_AppendListRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendConsumption(ctx, testConsumption("c1", "e1", "2024-01-01T09:00:00Z", "10")))
	require.NoError(t, s.AppendConsumption(ctx, testConsumption("c2", "e1", "2024-01-02T09:00:00Z", "10")))

	consumptions, err := s.ListConsumptions(ctx)
	require.NoError(t, err)
	require.Len(t, consumptions, 2)
	assert.Equal(t, "c1", consumptions[0].ID, "listed in timestamp order")

	require.NoError(t, s.RemoveConsumption(ctx, "c1"))
	consumptions, err = s.ListConsumptions(ctx)
	require.NoError(t, err)
	require.Len(t, consumptions, 1)
	assert.Equal(t, "c2", consumptions[0].ID)
}

func TestSQLite_RemoveSession_AtomicOverMatchingRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := "2024-01-01T09:00:00Z"

	require.NoError(t, s.AppendConsumption(ctx, testConsumption("c1", "e1", ts, "10")))
	require.NoError(t, s.AppendConsumption(ctx, testConsumption("c2", "e1", ts, "15")))
	require.NoError(t, s.AppendConsumption(ctx, testConsumption("c3", "e2", ts, "10")))
	require.NoError(t, s.AppendConsumption(ctx, testConsumption("c4", "e1", "2024-01-01T10:00:00Z", "10")))

	require.NoError(t, s.RemoveSession(ctx, "e1", ts))

	consumptions, err := s.ListConsumptions(ctx)
	require.NoError(t, err)
	require.Len(t, consumptions, 2)
	ids := []string{consumptions[0].ID, consumptions[1].ID}
	assert.ElementsMatch(t, []string{"c3", "c4"}, ids)
}

func TestSQLite_RemoveSession_NoMatch(t *testing.T) {
	s := newTestStore(t)
	err := s.RemoveSession(context.Background(), "e1", "2024-01-01T09:00:00Z")
	assert.ErrorIs(t, err, billing.ErrSessionNotFound)
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

func TestSQLite_Adjustments_WholeMapReplacement(t *testing.T) {
	// GIVEN: A persisted adjustment map
	// WHEN: Writing a new map
	// THEN: The old contents are fully replaced, including removed entries

	s := newTestStore(t)
	ctx := context.Background()

	first := billing.DailyAdjustments{
		"2024-01-01": {"e1": 2, "e2": 1},
		"2024-01-02": {"e1": 1},
	}
	require.NoError(t, s.SetDailyAdjustments(ctx, first))

	got, err := s.GetDailyAdjustments(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := billing.DailyAdjustments{
		"2024-01-02": {"e1": 3},
	}
	require.NoError(t, s.SetDailyAdjustments(ctx, second))

	got, err = s.GetDailyAdjustments(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.Equal(t, 0, got.On("2024-01-01", "e1"), "old entries must be gone")
}

func TestSQLite_Adjustments_EmptyMapOnFreshStore(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetDailyAdjustments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

// =============================================================================
// WEEKLY DIGESTS
// =============================================================================

func TestSQLite_Digests_RoundTripAndUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, time.January, 5, 20, 0, 0, 0, time.UTC)
	d := billing.WeeklyDigest{
		WeekStart:      "2024-01-01",
		WeekEnd:        "2024-01-07",
		DrinkAmount:    decimal.RequireFromString("25"),
		TransferAmount: decimal.RequireFromString("20"),
		GrandTotal:     decimal.RequireFromString("45"),
		PayableTotal:   decimal.RequireFromString("30"),
		CreatedAt:      created,
	}
	require.NoError(t, s.SaveWeeklyDigest(ctx, d))

	// Re-run for the same week with refreshed numbers.
	d.GrandTotal = decimal.RequireFromString("55")
	require.NoError(t, s.SaveWeeklyDigest(ctx, d))

	digests, err := s.ListWeeklyDigests(ctx)
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.True(t, digests[0].GrandTotal.Equal(decimal.RequireFromString("55")))
	assert.True(t, digests[0].CreatedAt.Equal(created))
}

func TestSQLite_Digests_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, week := range []string{"2024-01-01", "2024-01-15", "2024-01-08"} {
		require.NoError(t, s.SaveWeeklyDigest(ctx, billing.WeeklyDigest{
			WeekStart:      billing.Date(week),
			WeekEnd:        billing.Date(week).AddDays(6),
			DrinkAmount:    decimal.Zero,
			TransferAmount: decimal.Zero,
			GrandTotal:     decimal.Zero,
			PayableTotal:   decimal.Zero,
			CreatedAt:      time.Now(),
		}))
	}

	digests, err := s.ListWeeklyDigests(ctx)
	require.NoError(t, err)
	require.Len(t, digests, 3)
	assert.Equal(t, billing.Date("2024-01-15"), digests[0].WeekStart)
}
