/*
engine.go - The billing computation

PURPOSE:
  Compute is the single entry point that turns consumption history plus the
  adjustment map into a reconciled Report. It is a pure function: calling it
  twice with identical input yields identical output, and it is re-run in
  full after every mutation (no incremental updates).

THE THREE STAGES:
  1. Filter & Group: restrict records to [Start, End] by calendar day, then
     partition by day (company bill) and by employee (snack bill).
  2. Adjustment Resolution: per employee, sum the in-range adjustment
     entries, clamp at zero, and cap the deduction at the number of snack
     units actually consumed. Today's entry is reported separately as the
     only editable figure.
  3. Reconciliation: price the deductions, roll the transferred amounts
     onto the company side, and produce grand totals that balance exactly.

ROUNDING POLICY:
  A deduction is priced at the employee's average snack unit price:

      FinalDeductedAmount = round(OriginalAmount * FinalDeductedCount
                                  / OriginalItemCount)

  rounded half-up to a whole currency unit, in one step at the end.
  TotalManualTransferAmount is the sum of the already-rounded per-employee
  values, so the conservation invariant holds exactly rather than to within
  rounding drift.

WHAT NEVER MOVES:
  OriginalItemCount and OriginalAmount are facts derived from consumption
  history. Changing the adjustment map can only move FinalDeducted*,
  FinalPayableAmount, and the two grand totals.

SEE ALSO:
  - adjustments.go: The guarded mutation that feeds this computation
  - types.go: Input/Report shapes and invariants
*/
package billing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COMPUTE - Pure billing aggregation
// =============================================================================

// Compute produces the full billing report for the input snapshot.
//
// A missing or inverted date range yields an empty report, not an error.
// A consumption record with a malformed timestamp fails the whole
// computation: that is a data-integrity problem, not an expected state.
func Compute(in Input) (Report, error) {
	report := Report{
		TotalManualTransferAmount: decimal.Zero,
		GrandTotalCompanyAmount:   decimal.Zero,
	}

	if in.Start.IsZero() || in.End.IsZero() || in.End.Before(in.Start) {
		return report, nil
	}

	filtered, err := filterRange(in.Consumptions, in.Start, in.End)
	if err != nil {
		return Report{}, err
	}

	companyRows, drinkTotal := companyBill(filtered, in.ActiveEmployeeCount)
	bills, transferTotal := employeeBills(filtered, in)

	report.CompanyBillRows = companyRows
	report.EmployeeBills = bills
	report.TotalManualTransferAmount = transferTotal
	report.GrandTotalCompanyAmount = drinkTotal.Add(transferTotal)
	return report, nil
}

// =============================================================================
// STAGE 1 - FILTER & GROUP
// =============================================================================

// dayRecord pairs a consumption with its (validated) calendar day so later
// stages never re-parse timestamps.
type dayRecord struct {
	Consumption
	day Date
}

func filterRange(consumptions []Consumption, start, end Date) ([]dayRecord, error) {
	var out []dayRecord
	for _, c := range consumptions {
		day, err := c.Day()
		if err != nil {
			return nil, err
		}
		if day.InRange(start, end) {
			out = append(out, dayRecord{Consumption: c, day: day})
		}
	}
	return out, nil
}

// companyBill partitions in-range records by day and tallies drinks.
// Only days with at least one record produce a row; days without activity
// are never synthesized. TotalStaff is the live active headcount, applied
// uniformly to every row.
func companyBill(records []dayRecord, activeStaff int) ([]DailyCompanyBill, decimal.Decimal) {
	byDay := make(map[Date]*DailyCompanyBill)
	for _, r := range records {
		row, ok := byDay[r.day]
		if !ok {
			row = &DailyCompanyBill{Date: r.day, TotalStaff: activeStaff, Amount: decimal.Zero}
			byDay[r.day] = row
		}
		if r.ItemType == ItemDrink {
			row.ActualDrinkCount++
			row.Amount = row.Amount.Add(r.Price)
		}
	}

	rows := make([]DailyCompanyBill, 0, len(byDay))
	for _, row := range byDay {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return rows, total
}

// =============================================================================
// STAGES 2 & 3 - ADJUSTMENT RESOLUTION AND RECONCILIATION
// =============================================================================

// adjustmentFigures are the raw counts the guards and the bill share.
type adjustmentFigures struct {
	originalItemCount  int
	totalDeducted      int
	todayCount         int
	finalDeductedCount int
}

// resolveAdjustments sums an employee's in-range adjustment entries.
// Negative entries reduce the total but never push it below zero, and the
// deduction can never exceed the units actually consumed.
//
// todayCount reads the Today entry whether or not Today is inside the
// displayed range: it is the one editable figure.
func resolveAdjustments(adj DailyAdjustments, id EmployeeID, start, end, today Date, itemCount int) adjustmentFigures {
	sum := 0
	for day, byEmployee := range adj {
		if day.InRange(start, end) {
			sum += byEmployee[id]
		}
	}
	if sum < 0 {
		sum = 0
	}

	final := sum
	if final > itemCount {
		final = itemCount
	}

	return adjustmentFigures{
		originalItemCount:  itemCount,
		totalDeducted:      sum,
		todayCount:         adj.On(today, id),
		finalDeductedCount: final,
	}
}

// employeeBills partitions in-range snack records by employee and resolves
// each employee's adjustments into a priced bill.
//
// Bills follow roster order. Employees with no snack records in range are
// omitted entirely, and records whose employee is not on the roster are
// skipped here (they still count on the company side via their snapshots).
func employeeBills(records []dayRecord, in Input) ([]EmployeeBill, decimal.Decimal) {
	snacks := make(map[EmployeeID][]Consumption)
	for _, r := range records {
		if r.ItemType == ItemSnack {
			snacks[r.EmployeeID] = append(snacks[r.EmployeeID], r.Consumption)
		}
	}

	var bills []EmployeeBill
	transferTotal := decimal.Zero

	for _, emp := range in.Employees {
		items := snacks[emp.ID]
		if len(items) == 0 {
			continue
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].Timestamp != items[j].Timestamp {
				return items[i].Timestamp < items[j].Timestamp
			}
			return items[i].ID < items[j].ID
		})

		original := decimal.Zero
		for _, item := range items {
			original = original.Add(item.Price)
		}

		figures := resolveAdjustments(in.Adjustments, emp.ID, in.Start, in.End, in.Today, len(items))
		deductedAmount := deductionAmount(original, figures.finalDeductedCount, figures.originalItemCount)

		bills = append(bills, EmployeeBill{
			Employee:              emp,
			Items:                 items,
			OriginalItemCount:     figures.originalItemCount,
			OriginalAmount:        original,
			TotalDeductedCount:    figures.totalDeducted,
			TodayAdjustmentCount:  figures.todayCount,
			FinalDeductedCount:    figures.finalDeductedCount,
			FinalDeductedAmount:   deductedAmount,
			FinalPayableAmount:    original.Sub(deductedAmount),
			CanIncreaseAdjustment: figures.totalDeducted+1 <= figures.originalItemCount,
			CanDecreaseAdjustment: figures.todayCount > 0,
		})
		transferTotal = transferTotal.Add(deductedAmount)
	}

	return bills, transferTotal
}

// deductionAmount prices a deduction at the average snack unit price,
// rounded half-up to a whole currency unit in a single step.
func deductionAmount(originalAmount decimal.Decimal, deductedCount, itemCount int) decimal.Decimal {
	if deductedCount == 0 || itemCount == 0 {
		return decimal.Zero
	}
	return originalAmount.
		Mul(decimal.NewFromInt(int64(deductedCount))).
		Div(decimal.NewFromInt(int64(itemCount))).
		Round(0)
}
