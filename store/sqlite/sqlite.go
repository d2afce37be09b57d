/*
Package sqlite provides a SQLite-backed implementation of the record store.

PURPOSE:
  Implements billing.RecordStore and billing.DigestStore using SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  employees:         Roster (soft-deactivated, never deleted)
  items:             Menu with current default prices
  consumptions:      Purchase records with name/type/price snapshots
  daily_adjustments: One row per (day, employee) transfer count
  weekly_digests:    Persisted weekly billing totals

WHOLE-MAP ADJUSTMENT WRITES:
  SetDailyAdjustments replaces the daily_adjustments table contents inside
  a single transaction (DELETE + INSERT). The store layer has no partial
  patch semantics; callers persist the full map produced by
  billing.AdjustEmployeeToday.

ATOMIC SESSION DELETES:
  RemoveSession deletes every record matching (employee_id, timestamp) in
  one statement, so a logged drink+snacks entry disappears as a unit.

AMOUNTS:
  Currency values are stored as TEXT and parsed with shopspring/decimal.
  No floating point touches money on the way in or out.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers don't
  block, single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/canteen.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - billing/store.go: Interface definitions
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/canteen-engine/billing"
)

// Store implements the record store interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Roster (soft-deactivated, never deleted)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Menu
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		item_type TEXT NOT NULL CHECK (item_type IN ('drink', 'snack')),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Purchase records. item_name/item_type/price are snapshots taken at
	-- purchase time; menu edits never touch these rows.
	CREATE TABLE IF NOT EXISTS consumptions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		item_name TEXT NOT NULL,
		item_type TEXT NOT NULL,
		price TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_consumptions_timestamp
		ON consumptions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_consumptions_employee_timestamp
		ON consumptions(employee_id, timestamp);

	-- Sparse adjustment map: one row per (day, employee) with a transfer count
	CREATE TABLE IF NOT EXISTS daily_adjustments (
		day TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (day, employee_id)
	);

	-- Weekly billing totals persisted by the digest scheduler
	CREATE TABLE IF NOT EXISTS weekly_digests (
		week_start TEXT NOT NULL,
		week_end TEXT NOT NULL,
		drink_amount TEXT NOT NULL,
		transfer_amount TEXT NOT NULL,
		grand_total TEXT NOT NULL,
		payable_total TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (week_start, week_end)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) ListEmployees(ctx context.Context) ([]billing.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, active FROM employees ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []billing.Employee
	for rows.Next() {
		var e billing.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Active); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) SaveEmployee(ctx context.Context, e billing.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, active, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, active = excluded.active`,
		e.ID, e.Name, e.Active, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save employee %s: %w", e.ID, err)
	}
	return nil
}

// =============================================================================
// ITEMS
// =============================================================================

func (s *Store) ListItems(ctx context.Context) ([]billing.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, item_type, active FROM items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []billing.Item
	for rows.Next() {
		var it billing.Item
		var price string
		if err := rows.Scan(&it.ID, &it.Name, &price, &it.Type, &it.Active); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("item %s has corrupt price %q: %w", it.ID, price, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) SaveItem(ctx context.Context, it billing.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, price, item_type, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			item_type = excluded.item_type,
			active = excluded.active`,
		it.ID, it.Name, it.Price.String(), it.Type, it.Active,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save item %s: %w", it.ID, err)
	}
	return nil
}

// =============================================================================
// CONSUMPTIONS
// =============================================================================

func (s *Store) ListConsumptions(ctx context.Context) ([]billing.Consumption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, item_id, item_name, item_type, price, timestamp
		FROM consumptions ORDER BY timestamp, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list consumptions: %w", err)
	}
	defer rows.Close()

	var consumptions []billing.Consumption
	for rows.Next() {
		var c billing.Consumption
		var price string
		if err := rows.Scan(&c.ID, &c.EmployeeID, &c.ItemID, &c.ItemName, &c.ItemType, &price, &c.Timestamp); err != nil {
			return nil, err
		}
		if c.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("consumption %s has corrupt price %q: %w", c.ID, price, err)
		}
		consumptions = append(consumptions, c)
	}
	return consumptions, rows.Err()
}

func (s *Store) AppendConsumption(ctx context.Context, c billing.Consumption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consumptions (id, employee_id, item_id, item_name, item_type, price, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.EmployeeID, c.ItemID, c.ItemName, c.ItemType, c.Price.String(), c.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append consumption %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) RemoveConsumption(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM consumptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove consumption %s: %w", id, err)
	}
	return nil
}

// RemoveSession deletes every record of one logging action. A single DELETE
// keeps the multi-record removal atomic.
func (s *Store) RemoveSession(ctx context.Context, employeeID billing.EmployeeID, timestamp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM consumptions WHERE employee_id = ? AND timestamp = ?`,
		employeeID, timestamp)
	if err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return billing.ErrSessionNotFound
	}
	return nil
}

// =============================================================================
// DAILY ADJUSTMENTS - Whole-map reads and writes
// =============================================================================

func (s *Store) GetDailyAdjustments(ctx context.Context) (billing.DailyAdjustments, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT day, employee_id, count FROM daily_adjustments`)
	if err != nil {
		return nil, fmt.Errorf("failed to load adjustments: %w", err)
	}
	defer rows.Close()

	adj := billing.DailyAdjustments{}
	for rows.Next() {
		var day billing.Date
		var employeeID billing.EmployeeID
		var count int
		if err := rows.Scan(&day, &employeeID, &count); err != nil {
			return nil, err
		}
		if adj[day] == nil {
			adj[day] = map[billing.EmployeeID]int{}
		}
		adj[day][employeeID] = count
	}
	return adj, rows.Err()
}

// SetDailyAdjustments replaces the stored map in one transaction.
func (s *Store) SetDailyAdjustments(ctx context.Context, adj billing.DailyAdjustments) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin adjustment write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_adjustments`); err != nil {
		return fmt.Errorf("failed to clear adjustments: %w", err)
	}

	for day, byEmployee := range adj {
		for employeeID, count := range byEmployee {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO daily_adjustments (day, employee_id, count) VALUES (?, ?, ?)`,
				day, employeeID, count); err != nil {
				return fmt.Errorf("failed to write adjustment %s/%s: %w", day, employeeID, err)
			}
		}
	}

	return tx.Commit()
}

// =============================================================================
// WEEKLY DIGESTS
// =============================================================================

func (s *Store) SaveWeeklyDigest(ctx context.Context, d billing.WeeklyDigest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weekly_digests
			(week_start, week_end, drink_amount, transfer_amount, grand_total, payable_total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(week_start, week_end) DO UPDATE SET
			drink_amount = excluded.drink_amount,
			transfer_amount = excluded.transfer_amount,
			grand_total = excluded.grand_total,
			payable_total = excluded.payable_total,
			created_at = excluded.created_at`,
		d.WeekStart, d.WeekEnd,
		d.DrinkAmount.String(), d.TransferAmount.String(),
		d.GrandTotal.String(), d.PayableTotal.String(),
		d.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save digest %s: %w", d.WeekStart, err)
	}
	return nil
}

func (s *Store) ListWeeklyDigests(ctx context.Context) ([]billing.WeeklyDigest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT week_start, week_end, drink_amount, transfer_amount, grand_total, payable_total, created_at
		FROM weekly_digests ORDER BY week_start DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list digests: %w", err)
	}
	defer rows.Close()

	var digests []billing.WeeklyDigest
	for rows.Next() {
		var d billing.WeeklyDigest
		var drink, transfer, grand, payable, created string
		if err := rows.Scan(&d.WeekStart, &d.WeekEnd, &drink, &transfer, &grand, &payable, &created); err != nil {
			return nil, err
		}
		if d.DrinkAmount, err = decimal.NewFromString(drink); err != nil {
			return nil, err
		}
		if d.TransferAmount, err = decimal.NewFromString(transfer); err != nil {
			return nil, err
		}
		if d.GrandTotal, err = decimal.NewFromString(grand); err != nil {
			return nil, err
		}
		if d.PayableTotal, err = decimal.NewFromString(payable); err != nil {
			return nil, err
		}
		if d.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}

// Compile-time interface checks.
var (
	_ billing.RecordStore = (*Store)(nil)
	_ billing.DigestStore = (*Store)(nil)
)
