// Package seed loads the static roster, menu and floor plan into the store.
// With process-lifetime state there is no seed binary; seeding happens at
// startup.
package seed

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/store"
)

type userSpec struct {
	name string
	role string
	pin  string
}

type menuSpec struct {
	category    string
	name        string
	description string
	price       string
	station     string
	modifiers   []modSpec
}

type modSpec struct {
	name  string
	price string
}

var users = []userSpec{
	{"Master Admin", enum.UserRoleAdmin, "1234"},
	{"Sarah Manager", enum.UserRoleManager, "2222"},
	{"John Cashier", enum.UserRoleCashier, "3333"},
	{"Mike Chef", enum.UserRoleKitchen, "4444"},
}

var categories = []struct {
	name string
	icon string
}{
	{"Appetizers", "salad"},
	{"Main Course", "pot"},
	{"Desserts", "cake"},
	{"Beverages", "cocktail"},
	{"Alcohol", "beer"},
}

var menuItems = []menuSpec{
	{"Appetizers", "Bruschetta", "Grilled bread with tomato and basil", "8.50", enum.StationCold, nil},
	{"Appetizers", "Calamari", "Deep fried squid rings", "12.00", enum.StationHot, nil},
	{"Main Course", "Ribeye Steak", "300g Prime Angus beef", "35.00", enum.StationHot, []modSpec{
		{"Medium Rare", "0"},
		{"Rare", "0"},
	}},
	{"Main Course", "Seafood Pasta", "Linguine with mixed seafood", "22.00", enum.StationHot, []modSpec{
		{"Extra Chili", "1.50"},
	}},
	{"Desserts", "Tiramisu", "Classic Italian coffee cake", "9.00", enum.StationBakery, nil},
	{"Beverages", "Fresh Lemonade", "House-made organic lemon juice", "5.50", enum.StationBar, nil},
}

var tableCapacities = []int{2, 4, 4, 6, 2, 8, 4, 4}

// Load populates the store with the default roster, catalog and floor plan.
func Load(st *store.Store) error {
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.pin), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash pin for %s: %w", u.name, err)
		}
		st.AddUser(domain.User{
			ID:        uuid.New(),
			Name:      u.name,
			Role:      u.role,
			HashedPIN: string(hash),
		})
	}

	categoryIDs := make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		id := uuid.New()
		categoryIDs[c.name] = id
		st.AddCategory(domain.Category{ID: id, Name: c.name, Icon: c.icon})
	}

	for _, m := range menuItems {
		mods := make([]domain.Modifier, 0, len(m.modifiers))
		for _, spec := range m.modifiers {
			mods = append(mods, domain.Modifier{
				ID:    uuid.New(),
				Name:  spec.name,
				Price: decimal.RequireFromString(spec.price),
			})
		}
		st.PutMenuItem(domain.MenuItem{
			ID:          uuid.New(),
			CategoryID:  categoryIDs[m.category],
			Name:        m.name,
			Description: m.description,
			BasePrice:   decimal.RequireFromString(m.price),
			Modifiers:   mods,
			Station:     m.station,
			IsAvailable: true,
		})
	}

	for i, capacity := range tableCapacities {
		st.PutTable(domain.Table{
			ID:       uuid.New(),
			Number:   i + 1,
			Capacity: capacity,
			Status:   enum.TableStatusAvailable,
		})
	}

	return nil
}
