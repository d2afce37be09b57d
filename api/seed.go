/*
seed.go - Default roster and menu

PURPOSE:
  First-run bootstrap. An empty database gets the office's standing
  roster and tea-stall menu so the entry form is usable immediately.
  Seeding is skipped entirely once either table has data, so edits to
  the seeded rows stick.

SEE ALSO:
  - cmd/server/main.go: Calls Seed at startup
*/
package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/canteen-engine/billing"
)

var seedEmployees = []string{
	"Gopalan",
	"Navin",
	"Jeeva",
	"Sakthivel",
	"Sandhiya",
	"Sanjiv",
	"Kowsalya",
	"Praneesh",
	"Richard",
	"Abhishek",
}

var seedItems = []struct {
	name  string
	price int64
	typ   billing.ItemType
}{
	{"Tea", 10, billing.ItemDrink},
	{"Coffee", 15, billing.ItemDrink},
	{"Milk", 10, billing.ItemDrink},
	{"Bonda", 10, billing.ItemSnack},
	{"Bajji", 10, billing.ItemSnack},
	{"Vada", 10, billing.ItemSnack},
}

// Seed populates an empty store with the default roster and menu.
func Seed(ctx context.Context, store billing.RecordStore, log zerolog.Logger) error {
	log = log.With().Str("component", "seed").Logger()

	employees, err := store.ListEmployees(ctx)
	if err != nil {
		return err
	}
	if len(employees) == 0 {
		for _, name := range seedEmployees {
			emp := billing.Employee{
				ID:     billing.EmployeeID(uuid.NewString()),
				Name:   name,
				Active: true,
			}
			if err := store.SaveEmployee(ctx, emp); err != nil {
				return err
			}
		}
		log.Info().Int("count", len(seedEmployees)).Msg("seeded default roster")
	}

	items, err := store.ListItems(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		for _, s := range seedItems {
			item := billing.Item{
				ID:     billing.ItemID(uuid.NewString()),
				Name:   s.name,
				Price:  decimal.NewFromInt(s.price),
				Type:   s.typ,
				Active: true,
			}
			if err := store.SaveItem(ctx, item); err != nil {
				return err
			}
		}
		log.Info().Int("count", len(seedItems)).Msg("seeded default menu")
	}

	return nil
}
