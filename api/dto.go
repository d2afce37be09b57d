/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal billing model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Currency values cross the wire as JSON numbers. Internally everything is
  decimal.Decimal; conversion happens only at this boundary.

SEE ALSO:
  - handlers.go: Uses these types
  - billing/types.go: The internal model these mirror
*/
package api

import (
	"time"

	"github.com/warp/canteen-engine/billing"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents a roster entry in API responses.
type EmployeeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// CreateEmployeeRequest is the request to add an employee.
type CreateEmployeeRequest struct {
	Name string `json:"name"`
}

// UpdateEmployeeRequest renames or (de)activates an employee. Nil fields
// are left unchanged.
type UpdateEmployeeRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ItemDTO represents a menu entry.
type ItemDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Type     string  `json:"type"`
	IsActive bool    `json:"is_active"`
}

// CreateItemRequest is the request to add a menu item.
type CreateItemRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Type  string  `json:"type"`
}

// UpdateItemRequest edits a menu item. Price changes never touch history.
type UpdateItemRequest struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}

// ConsumptionDTO represents one purchase record. The "date" field carries
// the full RFC 3339 timestamp, matching the stored record.
type ConsumptionDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	ItemID     string  `json:"item_id"`
	ItemName   string  `json:"item_name"`
	ItemType   string  `json:"item_type"`
	Price      float64 `json:"price"`
	Date       string  `json:"date"`
}

// EntryLine is one item within a logged entry.
type EntryLine struct {
	ItemID string `json:"item_id"`

	// Price overrides the item's default price when set (the entry form
	// allows charging a different price than the menu default).
	Price *float64 `json:"price,omitempty"`
}

// CreateEntryRequest logs one session: an optional drink plus any number
// of snacks, all sharing one server-side timestamp.
type CreateEntryRequest struct {
	EmployeeID string      `json:"employee_id"`
	Drink      *EntryLine  `json:"drink,omitempty"`
	Snacks     []EntryLine `json:"snacks,omitempty"`
}

// SessionDTO is one activity-feed card: the records logged together.
type SessionDTO struct {
	EmployeeID   string           `json:"employee_id"`
	EmployeeName string           `json:"employee_name,omitempty"`
	Timestamp    string           `json:"timestamp"`
	Total        float64          `json:"total"`
	Items        []ConsumptionDTO `json:"items"`
}

// DailyCompanyBillDTO is one row of the company drinks bill.
type DailyCompanyBillDTO struct {
	Date             string  `json:"date"`
	TotalStaff       int     `json:"total_staff"`
	ActualDrinkCount int     `json:"actual_drink_count"`
	Amount           float64 `json:"amount"`
}

// EmployeeBillDTO is one employee's snack bill with adjustment accounting.
type EmployeeBillDTO struct {
	Employee              EmployeeDTO      `json:"employee"`
	Items                 []ConsumptionDTO `json:"items"`
	OriginalItemCount     int              `json:"original_item_count"`
	OriginalAmount        float64          `json:"original_amount"`
	TotalDeductedCount    int              `json:"total_deducted_count"`
	TodayAdjustmentCount  int              `json:"today_adjustment_count"`
	FinalDeductedCount    int              `json:"final_deducted_count"`
	FinalDeductedAmount   float64          `json:"final_deducted_amount"`
	FinalPayableAmount    float64          `json:"final_payable_amount"`
	CanIncreaseAdjustment bool             `json:"can_increase_adjustment"`
	CanDecreaseAdjustment bool             `json:"can_decrease_adjustment"`
}

// ReportDTO is the full billing report plus per-day grouped records for
// the daily tally view.
type ReportDTO struct {
	Start                     string                      `json:"start"`
	End                       string                      `json:"end"`
	Today                     string                      `json:"today"`
	CompanyBillRows           []DailyCompanyBillDTO       `json:"company_bill_rows"`
	EmployeeBills             []EmployeeBillDTO           `json:"employee_bills"`
	TotalManualTransferAmount float64                     `json:"total_manual_transfer_amount"`
	GrandTotalCompanyAmount   float64                     `json:"grand_total_company_amount"`
	DailyLogs                 map[string][]ConsumptionDTO `json:"daily_logs"`
}

// AdjustmentRequest moves snack units between an employee's bill and the
// company bill for today.
type AdjustmentRequest struct {
	EmployeeID string `json:"employee_id"`
	Delta      int    `json:"delta"`
}

// WeeklyDigestDTO is a persisted weekly summary.
type WeeklyDigestDTO struct {
	WeekStart      string  `json:"week_start"`
	WeekEnd        string  `json:"week_end"`
	DrinkAmount    float64 `json:"drink_amount"`
	TransferAmount float64 `json:"transfer_amount"`
	GrandTotal     float64 `json:"grand_total"`
	PayableTotal   float64 `json:"payable_total"`
	CreatedAt      string  `json:"created_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e billing.Employee) EmployeeDTO {
	return EmployeeDTO{ID: string(e.ID), Name: e.Name, IsActive: e.Active}
}

func toItemDTO(i billing.Item) ItemDTO {
	return ItemDTO{
		ID:       string(i.ID),
		Name:     i.Name,
		Price:    i.Price.InexactFloat64(),
		Type:     string(i.Type),
		IsActive: i.Active,
	}
}

func toConsumptionDTO(c billing.Consumption) ConsumptionDTO {
	return ConsumptionDTO{
		ID:         c.ID,
		EmployeeID: string(c.EmployeeID),
		ItemID:     string(c.ItemID),
		ItemName:   c.ItemName,
		ItemType:   string(c.ItemType),
		Price:      c.Price.InexactFloat64(),
		Date:       c.Timestamp,
	}
}

func toConsumptionDTOs(cs []billing.Consumption) []ConsumptionDTO {
	dtos := make([]ConsumptionDTO, len(cs))
	for i, c := range cs {
		dtos[i] = toConsumptionDTO(c)
	}
	return dtos
}

func toSessionDTO(s billing.Session, name string) SessionDTO {
	return SessionDTO{
		EmployeeID:   string(s.EmployeeID),
		EmployeeName: name,
		Timestamp:    s.Timestamp,
		Total:        s.Total.InexactFloat64(),
		Items:        toConsumptionDTOs(s.Items),
	}
}

func toReportDTO(r billing.Report, in billing.Input, dailyLogs map[billing.Date][]billing.Consumption) ReportDTO {
	rows := make([]DailyCompanyBillDTO, len(r.CompanyBillRows))
	for i, row := range r.CompanyBillRows {
		rows[i] = DailyCompanyBillDTO{
			Date:             string(row.Date),
			TotalStaff:       row.TotalStaff,
			ActualDrinkCount: row.ActualDrinkCount,
			Amount:           row.Amount.InexactFloat64(),
		}
	}

	bills := make([]EmployeeBillDTO, len(r.EmployeeBills))
	for i, b := range r.EmployeeBills {
		bills[i] = EmployeeBillDTO{
			Employee:              toEmployeeDTO(b.Employee),
			Items:                 toConsumptionDTOs(b.Items),
			OriginalItemCount:     b.OriginalItemCount,
			OriginalAmount:        b.OriginalAmount.InexactFloat64(),
			TotalDeductedCount:    b.TotalDeductedCount,
			TodayAdjustmentCount:  b.TodayAdjustmentCount,
			FinalDeductedCount:    b.FinalDeductedCount,
			FinalDeductedAmount:   b.FinalDeductedAmount.InexactFloat64(),
			FinalPayableAmount:    b.FinalPayableAmount.InexactFloat64(),
			CanIncreaseAdjustment: b.CanIncreaseAdjustment,
			CanDecreaseAdjustment: b.CanDecreaseAdjustment,
		}
	}

	logs := make(map[string][]ConsumptionDTO, len(dailyLogs))
	for day, records := range dailyLogs {
		logs[string(day)] = toConsumptionDTOs(records)
	}

	return ReportDTO{
		Start:                     string(in.Start),
		End:                       string(in.End),
		Today:                     string(in.Today),
		CompanyBillRows:           rows,
		EmployeeBills:             bills,
		TotalManualTransferAmount: r.TotalManualTransferAmount.InexactFloat64(),
		GrandTotalCompanyAmount:   r.GrandTotalCompanyAmount.InexactFloat64(),
		DailyLogs:                 logs,
	}
}

func toWeeklyDigestDTO(d billing.WeeklyDigest) WeeklyDigestDTO {
	return WeeklyDigestDTO{
		WeekStart:      string(d.WeekStart),
		WeekEnd:        string(d.WeekEnd),
		DrinkAmount:    d.DrinkAmount.InexactFloat64(),
		TransferAmount: d.TransferAmount.InexactFloat64(),
		GrandTotal:     d.GrandTotal.InexactFloat64(),
		PayableTotal:   d.PayableTotal.InexactFloat64(),
		CreatedAt:      d.CreatedAt.UTC().Format(time.RFC3339),
	}
}
