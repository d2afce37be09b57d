package billing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SESSIONS - Records logged together
// =============================================================================

// Session is a set of consumption records sharing the exact same timestamp
// string and employee: one logging action (e.g. a drink plus two snacks
// submitted together). The activity feed renders sessions, and deleting a
// session removes all of its records atomically.
type Session struct {
	EmployeeID EmployeeID
	Timestamp  string
	Items      []Consumption
	Total      decimal.Decimal
}

// GroupSessions groups records into sessions, newest first. Grouping is by
// exact timestamp string equality, not time-windowing: two records belong
// together only if they were written with the same shared timestamp.
func GroupSessions(consumptions []Consumption) []Session {
	grouped := make(map[string]*Session)
	var keys []string

	for _, c := range consumptions {
		k := c.Timestamp + "_" + string(c.EmployeeID)
		s, ok := grouped[k]
		if !ok {
			s = &Session{EmployeeID: c.EmployeeID, Timestamp: c.Timestamp, Total: decimal.Zero}
			grouped[k] = s
			keys = append(keys, k)
		}
		s.Items = append(s.Items, c)
		s.Total = s.Total.Add(c.Price)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	sessions := make([]Session, 0, len(keys))
	for _, k := range keys {
		sessions = append(sessions, *grouped[k])
	}
	return sessions
}

// OnDay returns the records whose timestamp falls on the given calendar day.
func OnDay(consumptions []Consumption, day Date) []Consumption {
	var out []Consumption
	for _, c := range consumptions {
		if strings.HasPrefix(c.Timestamp, string(day)) {
			out = append(out, c)
		}
	}
	return out
}

// GroupByDay partitions records by calendar day for the daily tally view.
// Records with malformed timestamps fail loudly, as in Compute.
func GroupByDay(consumptions []Consumption) (map[Date][]Consumption, error) {
	grouped := make(map[Date][]Consumption)
	for _, c := range consumptions {
		day, err := c.Day()
		if err != nil {
			return nil, err
		}
		grouped[day] = append(grouped[day], c)
	}
	return grouped, nil
}
