/*
store.go - Record store interface

PURPOSE:
  Defines the interface between the billing engine's callers and the
  database. The engine itself NEVER touches storage: it computes from
  snapshots passed in as arguments, which is what makes it deterministic
  and trivially testable. Handlers read snapshots here, compute, and write
  results back here.

WHOLE-VALUE WRITES:
  SetDailyAdjustments replaces the entire adjustment map. There is no
  partial patch API at the store layer; the guarded transform in
  adjustments.go produces the full updated map and the caller persists it.
  If this system ever becomes multi-user, this write needs atomic
  read-modify-write semantics to avoid lost adjustment updates.

SOFT DELETION:
  Employees and items are never removed, only deactivated via SaveEmployee/
  SaveItem. Past consumption must stay billable. Consumption records ARE
  deletable (mistaken entries), individually or as a whole session.

IMPLEMENTATIONS:
  - store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: Production SQLite

SEE ALSO:
  - engine.go: Consumes the snapshots these methods return
*/
package billing

import "context"

// RecordStore persists the roster, the menu, consumption history, and the
// adjustment map. Save methods upsert by ID.
type RecordStore interface {
	// ListEmployees returns the full roster, active and inactive.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// SaveEmployee inserts or updates an employee by ID.
	SaveEmployee(ctx context.Context, e Employee) error

	// ListItems returns the full menu, active and inactive.
	ListItems(ctx context.Context) ([]Item, error)

	// SaveItem inserts or updates a menu item by ID. Price changes do not
	// touch consumption history; records carry their own snapshots.
	SaveItem(ctx context.Context, i Item) error

	// ListConsumptions returns all consumption records.
	ListConsumptions(ctx context.Context) ([]Consumption, error)

	// AppendConsumption persists one consumption record.
	AppendConsumption(ctx context.Context, c Consumption) error

	// RemoveConsumption deletes a single record by ID.
	RemoveConsumption(ctx context.Context, id string) error

	// RemoveSession atomically deletes every record sharing the exact
	// timestamp and employee. Either all records go or none do.
	RemoveSession(ctx context.Context, employeeID EmployeeID, timestamp string) error

	// GetDailyAdjustments returns the full adjustment map.
	GetDailyAdjustments(ctx context.Context) (DailyAdjustments, error)

	// SetDailyAdjustments replaces the full adjustment map.
	SetDailyAdjustments(ctx context.Context, adj DailyAdjustments) error
}
