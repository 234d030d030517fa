// Package inventorystore persists the inventory in the local database as
// three named values, one per field.
package inventorystore

import (
	"context"
	"fmt"

	"github.com/mrlokans/shelf/internal/database"
	"github.com/mrlokans/shelf/internal/database/kv"
	"github.com/mrlokans/shelf/internal/inventory"
)

var keys = []string{
	inventory.KeyISBNList,
	inventory.KeyBookDetails,
	inventory.KeyRatings,
}

type Store struct {
	values *kv.Repository
}

func New(db *database.Database) *Store {
	return &Store{values: kv.NewRepository(db.DB)}
}

// Load reads the three values. Missing or malformed values come back as
// empty containers; only database errors are returned.
func (s *Store) Load(ctx context.Context) (inventory.Inventory, error) {
	repo := s.values.WithContext(ctx)

	values := make(map[string]string, len(keys))
	for _, key := range keys {
		value, ok, err := repo.Get(key)
		if err != nil {
			return inventory.Inventory{}, fmt.Errorf("read %s: %w", key, err)
		}
		if ok {
			values[key] = value
		}
	}

	return inventory.Decode(values), nil
}

// Save overwrites all three values.
func (s *Store) Save(ctx context.Context, inv inventory.Inventory) error {
	values, err := inventory.Encode(inv)
	if err != nil {
		return err
	}

	if err := s.values.WithContext(ctx).SetMany(values); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	return nil
}
