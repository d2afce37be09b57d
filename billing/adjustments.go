/*
adjustments.go - Guarded adjustment mutation

PURPOSE:
  AdjustEmployeeToday is the only way the adjustment map changes. It applies
  a delta to today's entry for one employee, after re-deriving the same
  guard figures the report shows. A refused mutation returns an error and
  leaves the input untouched - never a silent clamp - so the caller can
  surface the no-op.

GUARDS:
  Increment: refused if the resulting total deduction would exceed the
             employee's in-range snack count. A deduction must always be
             backed by consumption.
  Decrement: refused if it would push today's entry below zero. Historical
             days' entries are frozen; only units added today can be
             removed today.

PERSISTENCE CONTRACT:
  The returned map is a deep copy with the delta applied. The caller
  persists the FULL map (no partial patch) and recomputes the report.

SEE ALSO:
  - engine.go: resolveAdjustments, the shared guard arithmetic
  - errors.go: ErrAdjustmentCeiling, ErrAdjustmentFloor
*/
package billing

// AdjustEmployeeToday applies delta to today's adjustment entry for the
// given employee and returns the updated map. The input map is not mutated.
//
// The guard figures come from the same computation the report uses, so a
// caller showing CanIncreaseAdjustment == false will always see the
// matching increment refused here.
func AdjustEmployeeToday(in Input, employeeID EmployeeID, delta int) (DailyAdjustments, error) {
	if !rosterHas(in.Employees, employeeID) {
		return nil, ErrEmployeeNotFound
	}

	itemCount := 0
	for _, c := range in.Consumptions {
		day, err := c.Day()
		if err != nil {
			return nil, err
		}
		if c.ItemType == ItemSnack && c.EmployeeID == employeeID && day.InRange(in.Start, in.End) {
			itemCount++
		}
	}

	figures := resolveAdjustments(in.Adjustments, employeeID, in.Start, in.End, in.Today, itemCount)

	if delta > 0 && figures.totalDeducted+delta > figures.originalItemCount {
		return nil, &AdjustmentError{
			EmployeeID:         employeeID,
			Delta:              delta,
			TotalDeductedCount: figures.totalDeducted,
			OriginalItemCount:  figures.originalItemCount,
			TodayCount:         figures.todayCount,
			guard:              ErrAdjustmentCeiling,
		}
	}
	if delta < 0 && figures.todayCount+delta < 0 {
		return nil, &AdjustmentError{
			EmployeeID:         employeeID,
			Delta:              delta,
			TotalDeductedCount: figures.totalDeducted,
			OriginalItemCount:  figures.originalItemCount,
			TodayCount:         figures.todayCount,
			guard:              ErrAdjustmentFloor,
		}
	}

	updated := in.Adjustments.Clone()
	if updated == nil {
		updated = DailyAdjustments{}
	}
	if updated[in.Today] == nil {
		updated[in.Today] = map[EmployeeID]int{}
	}
	updated[in.Today][employeeID] += delta
	return updated, nil
}

func rosterHas(employees []Employee, id EmployeeID) bool {
	for _, e := range employees {
		if e.ID == id {
			return true
		}
	}
	return false
}
