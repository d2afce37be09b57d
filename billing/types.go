/*
Package billing provides the core canteen billing engine.

PURPOSE:
  This package turns raw consumption records (who had which drink or snack,
  when, at what price) into two reconciled reports: a per-day company drinks
  bill and a per-employee snack bill. Manual day-level adjustments can move
  snack units from an employee's bill onto the company bill; the engine clamps
  those adjustments so totals always reconcile.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee/Item: The roster and the menu. Soft-deactivated, never removed.
  - Consumption: An immutable purchase record with price/name snapshots.
  - DailyAdjustments: Sparse per-day, per-employee transfer counts.
  - DailyCompanyBill/EmployeeBill/Report: Derived billing output.

DESIGN PRINCIPLES:
  1. Purity: The engine computes from snapshots passed in; no hidden state,
     no clock reads. Same input, byte-identical output.
  2. Precision: Uses decimal.Decimal for all currency amounts.
  3. Snapshots: Consumption carries its own item name, type, and price so
     history survives menu edits and deletions. Never join against the
     current Item table to price history.

USAGE:
  report, err := billing.Compute(billing.Input{
      Consumptions: records,
      Employees:    roster,
      ActiveEmployeeCount: 10,
      Adjustments:  adjustments,
      Start:        "2024-01-01",
      End:          "2024-01-07",
      Today:        "2024-01-07",
  })

SEE ALSO:
  - engine.go: Compute and the three billing stages
  - adjustments.go: Guarded adjustment transform
  - session.go: Activity-feed grouping
  - store.go: Record store interface
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ItemID string

// ItemType splits the menu into the two expense categories: drinks are a
// company expense, snacks are an employee expense unless manually transferred.
type ItemType string

const (
	ItemDrink ItemType = "drink"
	ItemSnack ItemType = "snack"
)

// Valid reports whether t is one of the two known item types.
func (t ItemType) Valid() bool { return t == ItemDrink || t == ItemSnack }

// =============================================================================
// ROSTER AND MENU
// =============================================================================

// Employee is a roster entry. Employees are deactivated, never deleted:
// a former employee's past consumption remains billable.
type Employee struct {
	ID     EmployeeID
	Name   string
	Active bool
}

// Item is a menu entry. Price is the current default unit price; each
// consumption record snapshots the price actually charged.
type Item struct {
	ID     ItemID
	Name   string
	Price  decimal.Decimal
	Type   ItemType
	Active bool
}

// =============================================================================
// CONSUMPTION - Immutable purchase record
// =============================================================================

// Consumption records one unit of one item bought by one employee.
// ItemName, ItemType, and Price are snapshots taken at purchase time so the
// record stays meaningful if the menu changes or the item is removed.
//
// Timestamp is a full RFC 3339 date-time string. Records sharing the exact
// same timestamp string and employee form one session (logged together).
type Consumption struct {
	ID         string
	EmployeeID EmployeeID
	ItemID     ItemID
	ItemName   string
	ItemType   ItemType
	Price      decimal.Decimal
	Timestamp  string
}

// Day returns the calendar day the record falls on.
func (c Consumption) Day() (Date, error) {
	d, err := DateOf(c.Timestamp)
	if err != nil {
		return "", &MalformedRecordError{ConsumptionID: c.ID, Timestamp: c.Timestamp}
	}
	return d, nil
}

// =============================================================================
// DAILY ADJUSTMENTS - Manual snack-to-company transfers
// =============================================================================

// DailyAdjustments maps calendar day -> employee -> net snack units
// reclassified to the company bill for that day. Only today's entries are
// ever written; past days are frozen and read-only.
type DailyAdjustments map[Date]map[EmployeeID]int

// On returns the adjustment count for an employee on a day (0 when absent).
func (a DailyAdjustments) On(day Date, id EmployeeID) int {
	return a[day][id]
}

// Clone returns a deep copy. Adjustment writes always go through a copy so
// callers holding the original map never observe partial updates.
func (a DailyAdjustments) Clone() DailyAdjustments {
	out := make(DailyAdjustments, len(a))
	for day, byEmployee := range a {
		m := make(map[EmployeeID]int, len(byEmployee))
		for id, n := range byEmployee {
			m[id] = n
		}
		out[day] = m
	}
	return out
}

// =============================================================================
// DERIVED BILLS - Engine output, never persisted
// =============================================================================

// DailyCompanyBill is one row of the company drinks bill: all drink-type
// consumption on one calendar day. Days with no records produce no row.
type DailyCompanyBill struct {
	Date             Date
	TotalStaff       int
	ActualDrinkCount int
	Amount           decimal.Decimal
}

// EmployeeBill is one employee's snack bill over the report range, with the
// adjustment accounting laid out so a caller can render the controls:
//
//	OriginalItemCount/OriginalAmount  immutable facts from consumption history
//	TotalDeductedCount                all in-range adjustments, clamped at >= 0
//	TodayAdjustmentCount              today's (editable) entry only
//	FinalDeductedCount                min(TotalDeductedCount, OriginalItemCount)
//	FinalDeductedAmount               rounded money value of the deduction
//	FinalPayableAmount                OriginalAmount - FinalDeductedAmount
type EmployeeBill struct {
	Employee              Employee
	Items                 []Consumption
	OriginalItemCount     int
	OriginalAmount        decimal.Decimal
	TotalDeductedCount    int
	TodayAdjustmentCount  int
	FinalDeductedCount    int
	FinalDeductedAmount   decimal.Decimal
	FinalPayableAmount    decimal.Decimal
	CanIncreaseAdjustment bool
	CanDecreaseAdjustment bool
}

// Report is the full billing output.
//
// INVARIANT (conservation): GrandTotalCompanyAmount equals the sum of the
// company rows' Amounts plus TotalManualTransferAmount, and every bill's
// FinalPayableAmount equals OriginalAmount - FinalDeductedAmount.
type Report struct {
	CompanyBillRows           []DailyCompanyBill
	EmployeeBills             []EmployeeBill
	TotalManualTransferAmount decimal.Decimal
	GrandTotalCompanyAmount   decimal.Decimal
}

// =============================================================================
// ENGINE INPUT
// =============================================================================

// Input is everything Compute needs. All fields are snapshots: the engine
// never reaches into storage or the system clock. Today must be supplied
// explicitly so adjustment guards are reproducible in tests.
type Input struct {
	Consumptions []Consumption
	Employees    []Employee

	// ActiveEmployeeCount is the live roster headcount shown on company
	// rows. It is not a historical snapshot per day.
	ActiveEmployeeCount int

	Adjustments DailyAdjustments

	// Start and End bound the report, inclusive, as calendar dates.
	Start Date
	End   Date

	// Today anchors which adjustment entry is editable.
	Today Date
}
