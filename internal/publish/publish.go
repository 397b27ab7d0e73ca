// Package publish turns price tables into per product and leg readings and
// hands them to consumers.
package publish

import (
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"metalrates/internal/extract"
)

// Reading is one product leg as seen by a consumer. Value is null when the
// leg is unknown; it is never reported as zero.
type Reading struct {
	Product     extract.ProductKey  `json:"product"`
	Leg         extract.Leg         `json:"leg"`
	Value       decimal.NullDecimal `json:"value"`
	Unit        string              `json:"unit"`
	Source      string              `json:"source"`
	LastSuccess bool                `json:"last_success"`
	Diagnostic  string              `json:"diagnostic,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at,omitzero"`
}

// Known reports whether the reading carries a value.
func (r Reading) Known() bool {
	return r.Value.Valid
}

// Meta is shared by every reading built from one snapshot.
type Meta struct {
	Source      string
	Unit        string
	LastSuccess bool
	Diagnostic  string
	UpdatedAt   time.Time
}

// Readings expands table into one reading per product and leg. Every product
// in products is present even when the table has nothing for it; products
// found in the table but not listed follow in key order.
func Readings(meta Meta, table extract.Table, products []extract.ProductKey) []Reading {
	keys := slices.Clone(products)
	for _, k := range table.Keys() {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}

	out := make([]Reading, 0, len(keys)*len(extract.Legs))
	for _, k := range keys {
		q := table[k]
		for _, leg := range extract.Legs {
			out = append(out, Reading{
				Product:     k,
				Leg:         leg,
				Value:       q.Get(leg),
				Unit:        meta.Unit,
				Source:      meta.Source,
				LastSuccess: meta.LastSuccess,
				Diagnostic:  meta.Diagnostic,
				UpdatedAt:   meta.UpdatedAt,
			})
		}
	}
	return out
}

// Publisher consumes readings after every refresh.
type Publisher interface {
	Publish(readings []Reading)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func([]Reading)

// Publish calls f.
func (f PublisherFunc) Publish(readings []Reading) {
	f(readings)
}

// Board keeps the most recent readings in memory for the HTTP surface.
type Board struct {
	mu       sync.RWMutex
	readings []Reading
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{}
}

// Publish replaces the board's readings.
func (b *Board) Publish(readings []Reading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readings = slices.Clone(readings)
}

// Readings returns a copy of the latest readings.
func (b *Board) Readings() []Reading {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.readings)
}

// Get returns the reading for one product leg.
func (b *Board) Get(product extract.ProductKey, leg extract.Leg) (Reading, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, r := range b.readings {
		if r.Product == product && r.Leg == leg {
			return r, true
		}
	}
	return Reading{}, false
}
