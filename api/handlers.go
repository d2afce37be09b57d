/*
handlers.go - HTTP API handlers for the canteen billing system

PURPOSE:
  Exposes the billing engine via REST API. Handlers read snapshots from the
  record store, call the pure engine, persist results, and serialize the
  response. No billing arithmetic lives here.

ENDPOINTS:
  Roster/Menu:
    GET    /api/employees          List roster
    POST   /api/employees          Add employee
    PUT    /api/employees/{id}     Rename / toggle active
    GET    /api/items              List menu
    POST   /api/items              Add item
    PUT    /api/items/{id}         Edit item (history unaffected)

  Entries:
    POST   /api/entries            Log one session (drink + snacks)
    GET    /api/entries?date=      That day's sessions (activity feed)
    DELETE /api/entries            Delete a session (employee_id + timestamp)
    DELETE /api/consumptions/{id}  Delete a single record

  Billing:
    GET    /api/report?start=&end= Full billing report
    POST   /api/report/adjustments Move snack units to the company bill
    GET    /api/digests            Persisted weekly digests

REQUEST FLOW:
  1. Parse and validate HTTP input
  2. Read snapshots from the store
  3. Call billing.Compute / billing.AdjustEmployeeToday
  4. Persist (whole-value writes) and respond

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input
  - 404: Unknown employee/item/session
  - 409: Refused adjustment (guard violation)
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - billing/engine.go: The computation being exposed
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/canteen-engine/billing"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   billing.RecordStore
	Digests billing.DigestStore
	Log     zerolog.Logger

	// Now supplies the clock. Injected so tests can pin "today" and
	// entry timestamps.
	Now func() time.Time
}

// NewHandler creates a new handler with the given stores.
func NewHandler(store billing.RecordStore, digests billing.DigestStore, log zerolog.Logger) *Handler {
	return &Handler{
		Store:   store,
		Digests: digests,
		Log:     log.With().Str("component", "api").Logger(),
		Now:     time.Now,
	}
}

func (h *Handler) today() billing.Date {
	return billing.DateAt(h.Now())
}

// loadInput assembles the engine input snapshot for the given range.
func (h *Handler) loadInput(r *http.Request, start, end billing.Date) (billing.Input, error) {
	return h.loadInputCtx(r.Context(), start, end)
}

func (h *Handler) loadInputCtx(ctx context.Context, start, end billing.Date) (billing.Input, error) {
	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		return billing.Input{}, err
	}
	consumptions, err := h.Store.ListConsumptions(ctx)
	if err != nil {
		return billing.Input{}, err
	}
	adjustments, err := h.Store.GetDailyAdjustments(ctx)
	if err != nil {
		return billing.Input{}, err
	}

	active := 0
	for _, e := range employees {
		if e.Active {
			active++
		}
	}

	return billing.Input{
		Consumptions:        consumptions,
		Employees:           employees,
		ActiveEmployeeCount: active,
		Adjustments:         adjustments,
		Start:               start,
		End:                 end,
		Today:               h.today(),
	}, nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the full roster, active and inactive.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee adds a roster entry.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "Employee name is required", nil)
		return
	}

	emp := billing.Employee{
		ID:     billing.EmployeeID(uuid.NewString()),
		Name:   req.Name,
		Active: true,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// UpdateEmployee renames or toggles an employee. There is no delete:
// deactivated employees keep their billing history.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := billing.EmployeeID(chi.URLParam(r, "id"))

	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
		return
	}

	for _, emp := range employees {
		if emp.ID != id {
			continue
		}
		if req.Name != nil {
			emp.Name = *req.Name
		}
		if req.IsActive != nil {
			emp.Active = *req.IsActive
		}
		if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
			h.writeError(w, http.StatusInternalServerError, "Failed to update employee", err)
			return
		}
		writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
		return
	}

	h.writeError(w, http.StatusNotFound, "Employee not found", billing.ErrEmployeeNotFound)
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// ListItems returns the full menu.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListItems(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateItem adds a menu item.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "Item name is required", nil)
		return
	}
	itemType := billing.ItemType(req.Type)
	if !itemType.Valid() {
		h.writeError(w, http.StatusBadRequest, "Item type must be 'drink' or 'snack'", nil)
		return
	}
	if req.Price < 0 {
		h.writeError(w, http.StatusBadRequest, "Price cannot be negative", nil)
		return
	}

	item := billing.Item{
		ID:     billing.ItemID(uuid.NewString()),
		Name:   req.Name,
		Price:  decimal.NewFromFloat(req.Price),
		Type:   itemType,
		Active: true,
	}
	if err := h.Store.SaveItem(r.Context(), item); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to create item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toItemDTO(item))
}

// UpdateItem edits a menu item. Consumption history carries its own price
// snapshots, so edits here never change past bills.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := billing.ItemID(chi.URLParam(r, "id"))

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	items, err := h.Store.ListItems(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load menu", err)
		return
	}

	for _, item := range items {
		if item.ID != id {
			continue
		}
		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Price != nil {
			if *req.Price < 0 {
				h.writeError(w, http.StatusBadRequest, "Price cannot be negative", nil)
				return
			}
			item.Price = decimal.NewFromFloat(*req.Price)
		}
		if req.IsActive != nil {
			item.Active = *req.IsActive
		}
		if err := h.Store.SaveItem(r.Context(), item); err != nil {
			h.writeError(w, http.StatusInternalServerError, "Failed to update item", err)
			return
		}
		writeJSON(w, http.StatusOK, toItemDTO(item))
		return
	}

	h.writeError(w, http.StatusNotFound, "Item not found", billing.ErrItemNotFound)
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// CreateEntry logs one session: an optional drink plus any number of
// snacks for one employee. Every record in the session shares the same
// timestamp string - that shared timestamp IS the session identity.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Drink == nil && len(req.Snacks) == 0 {
		h.writeError(w, http.StatusBadRequest, "Select at least one item (drink or snack)", nil)
		return
	}

	ctx := r.Context()

	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
		return
	}
	var employee *billing.Employee
	for i := range employees {
		if employees[i].ID == billing.EmployeeID(req.EmployeeID) {
			employee = &employees[i]
			break
		}
	}
	if employee == nil {
		h.writeError(w, http.StatusNotFound, "Employee not found", billing.ErrEmployeeNotFound)
		return
	}
	if !employee.Active {
		h.writeError(w, http.StatusBadRequest, "Employee is inactive", nil)
		return
	}

	items, err := h.Store.ListItems(ctx)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load menu", err)
		return
	}
	menu := make(map[billing.ItemID]billing.Item, len(items))
	for _, it := range items {
		menu[it.ID] = it
	}

	timestamp := h.Now().UTC().Format(time.RFC3339)

	var lines []EntryLine
	if req.Drink != nil {
		lines = append(lines, *req.Drink)
	}
	lines = append(lines, req.Snacks...)

	var records []billing.Consumption
	for _, line := range lines {
		item, ok := menu[billing.ItemID(line.ItemID)]
		if !ok {
			h.writeError(w, http.StatusNotFound, "Item not found: "+line.ItemID, billing.ErrItemNotFound)
			return
		}
		price := item.Price
		if line.Price != nil {
			if *line.Price < 0 {
				h.writeError(w, http.StatusBadRequest, "Price cannot be negative", nil)
				return
			}
			price = decimal.NewFromFloat(*line.Price)
		}
		records = append(records, billing.Consumption{
			ID:         uuid.NewString(),
			EmployeeID: employee.ID,
			ItemID:     item.ID,
			ItemName:   item.Name,
			ItemType:   item.Type,
			Price:      price,
			Timestamp:  timestamp,
		})
	}

	for _, rec := range records {
		if err := h.Store.AppendConsumption(ctx, rec); err != nil {
			h.writeError(w, http.StatusInternalServerError, "Failed to log entry", err)
			return
		}
	}

	sessions := billing.GroupSessions(records)
	h.Log.Info().
		Str("employee_id", string(employee.ID)).
		Int("items", len(records)).
		Str("timestamp", timestamp).
		Msg("entry logged")
	writeJSON(w, http.StatusCreated, toSessionDTO(sessions[0], employee.Name))
}

// ListEntries returns one day's sessions, newest first (the activity feed).
// Defaults to today when no date is given.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	day := h.today()
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := billing.ParseDate(q)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		day = parsed
	}

	consumptions, err := h.Store.ListConsumptions(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list consumptions", err)
		return
	}
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
		return
	}
	names := make(map[billing.EmployeeID]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}

	sessions := billing.GroupSessions(billing.OnDay(consumptions, day))
	dtos := make([]SessionDTO, len(sessions))
	for i, s := range sessions {
		dtos[i] = toSessionDTO(s, names[s.EmployeeID])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteSession removes every record of one logging action atomically.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	timestamp := r.URL.Query().Get("timestamp")
	if employeeID == "" || timestamp == "" {
		h.writeError(w, http.StatusBadRequest, "employee_id and timestamp are required", nil)
		return
	}

	err := h.Store.RemoveSession(r.Context(), billing.EmployeeID(employeeID), timestamp)
	if errors.Is(err, billing.ErrSessionNotFound) {
		h.writeError(w, http.StatusNotFound, "Session not found", err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteConsumption removes a single record.
func (h *Handler) DeleteConsumption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.RemoveConsumption(r.Context(), id); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to delete consumption", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetReport computes the billing report for [start, end]. A missing range
// yields empty report sections, mirroring the engine's behavior.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	in, err := h.loadInput(r, start, end)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	report, err := billing.Compute(in)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to compute report", err)
		return
	}

	dailyLogs, err := h.inRangeDailyLogs(in)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to group records", err)
		return
	}

	writeJSON(w, http.StatusOK, toReportDTO(report, in, dailyLogs))
}

// PostAdjustment applies a guarded adjustment for today, persists the full
// updated map, and responds with the recomputed report. A refused mutation
// returns 409 and changes nothing.
func (h *Handler) PostAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Delta == 0 {
		h.writeError(w, http.StatusBadRequest, "Delta cannot be zero", nil)
		return
	}

	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	in, err := h.loadInput(r, start, end)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	updated, err := billing.AdjustEmployeeToday(in, billing.EmployeeID(req.EmployeeID), req.Delta)
	if billing.IsGuardViolation(err) {
		h.writeError(w, http.StatusConflict, "Adjustment refused", err)
		return
	}
	if errors.Is(err, billing.ErrEmployeeNotFound) {
		h.writeError(w, http.StatusNotFound, "Employee not found", err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to apply adjustment", err)
		return
	}

	if err := h.Store.SetDailyAdjustments(r.Context(), updated); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to persist adjustments", err)
		return
	}

	in.Adjustments = updated
	report, err := billing.Compute(in)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to compute report", err)
		return
	}

	dailyLogs, err := h.inRangeDailyLogs(in)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to group records", err)
		return
	}

	h.Log.Info().
		Str("employee_id", req.EmployeeID).
		Int("delta", req.Delta).
		Str("day", string(in.Today)).
		Msg("adjustment applied")
	writeJSON(w, http.StatusOK, toReportDTO(report, in, dailyLogs))
}

// ListDigests returns persisted weekly digests, newest first.
func (h *Handler) ListDigests(w http.ResponseWriter, r *http.Request) {
	digests, err := h.Digests.ListWeeklyDigests(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list digests", err)
		return
	}

	dtos := make([]WeeklyDigestDTO, len(digests))
	for i, d := range digests {
		dtos[i] = toWeeklyDigestDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// parseRange reads start/end query params. Absent params stay zero, which
// the engine treats as "empty report". Malformed params are a 400.
func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (start, end billing.Date, ok bool) {
	if q := r.URL.Query().Get("start"); q != "" {
		parsed, err := billing.ParseDate(q)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
			return "", "", false
		}
		start = parsed
	}
	if q := r.URL.Query().Get("end"); q != "" {
		parsed, err := billing.ParseDate(q)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
			return "", "", false
		}
		end = parsed
	}
	return start, end, true
}

// inRangeDailyLogs groups the in-range records by day for the tally view.
func (h *Handler) inRangeDailyLogs(in billing.Input) (map[billing.Date][]billing.Consumption, error) {
	grouped, err := billing.GroupByDay(in.Consumptions)
	if err != nil {
		return nil, err
	}
	for day := range grouped {
		if !day.InRange(in.Start, in.End) {
			delete(grouped, day)
		}
	}
	return grouped, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Code = errorCode(err)
		h.Log.Error().Err(err).Int("status", status).Msg(msg)
	}
	writeJSON(w, status, resp)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, billing.ErrAdjustmentCeiling):
		return "adjustment_ceiling"
	case errors.Is(err, billing.ErrAdjustmentFloor):
		return "adjustment_floor"
	case billing.IsNotFound(err):
		return "not_found"
	case errors.Is(err, billing.ErrMalformedTimestamp):
		return "corrupt_record"
	default:
		return ""
	}
}
