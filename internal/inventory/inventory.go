// Package inventory owns the tracked ISBN list, the fetched metadata and the
// user ratings, and keeps them in sync with the catalog and the local store.
package inventory

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/mrlokans/shelf/internal/catalog"
)

// Keys of the three persisted values.
const (
	KeyISBNList    = "isbnList"
	KeyBookDetails = "bookDetails"
	KeyRatings     = "ratings"
)

// Inventory is the aggregate persisted between runs.
//
// ISBNs keeps insertion order and may hold duplicates. Details lags ISBNs:
// a missing entry means the metadata was never fetched or the fetch failed.
type Inventory struct {
	ISBNs   []string                    `json:"isbns"`
	Details map[string]catalog.Response `json:"details"`
	Ratings map[string]int              `json:"ratings"`
}

// Empty returns an inventory with allocated, empty containers.
func Empty() Inventory {
	return Inventory{
		ISBNs:   []string{},
		Details: map[string]catalog.Response{},
		Ratings: map[string]int{},
	}
}

// Clone returns a deep copy.
func (inv Inventory) Clone() Inventory {
	out := Empty()
	out.ISBNs = append(out.ISBNs, inv.ISBNs...)
	for id, resp := range inv.Details {
		out.Details[id] = resp.Clone()
	}
	for id, rating := range inv.Ratings {
		out.Ratings[id] = rating
	}
	return out
}

// Contains reports whether id is tracked.
func (inv Inventory) Contains(id string) bool {
	for _, item := range inv.ISBNs {
		if item == id {
			return true
		}
	}
	return false
}

// Record returns the metadata record of id. The first flag reports whether
// details were fetched at all, the second whether the catalog knew the book.
func (inv Inventory) Record(id string) (rec catalog.Record, loaded bool, found bool) {
	resp, loaded := inv.Details[id]
	if !loaded {
		return catalog.Record{}, false, false
	}
	rec, found = resp.Record(id)
	return rec, true, found
}

// Encode serializes the three fields into their stored form.
func Encode(inv Inventory) (map[string]string, error) {
	inv = inv.Clone()

	list, err := json.Marshal(inv.ISBNs)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", KeyISBNList, err)
	}
	details, err := json.Marshal(inv.Details)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", KeyBookDetails, err)
	}
	ratings, err := json.Marshal(inv.Ratings)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", KeyRatings, err)
	}

	return map[string]string{
		KeyISBNList:    string(list),
		KeyBookDetails: string(details),
		KeyRatings:     string(ratings),
	}, nil
}

// Decode parses stored values field by field. A missing or malformed field
// becomes an empty container and does not affect the other two.
func Decode(values map[string]string) Inventory {
	inv := Empty()

	decodeField(values, KeyISBNList, &inv.ISBNs)
	decodeField(values, KeyBookDetails, &inv.Details)
	decodeField(values, KeyRatings, &inv.Ratings)

	// "null" decodes successfully into a nil container
	return inv.normalized()
}

// normalized replaces nil containers with empty ones.
func (inv Inventory) normalized() Inventory {
	if inv.ISBNs == nil {
		inv.ISBNs = []string{}
	}
	if inv.Details == nil {
		inv.Details = map[string]catalog.Response{}
	}
	for id, resp := range inv.Details {
		if resp == nil {
			inv.Details[id] = catalog.Response{}
		}
	}
	if inv.Ratings == nil {
		inv.Ratings = map[string]int{}
	}

	return inv
}

func decodeField[T any](values map[string]string, key string, dst *T) {
	raw, ok := values[key]
	if !ok || raw == "" {
		return
	}

	var parsed T
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("[INVENTORY] Ignoring malformed %s value: %v", key, err)
		return
	}
	*dst = parsed
}
