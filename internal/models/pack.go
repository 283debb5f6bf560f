package models

import "github.com/shopspring/decimal"

// Pack is a named service tier with a monthly price. Subscriptions
// reference packs by name and keep their own price snapshot, so
// renaming a pack never rewrites history.
type Pack struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`   // Unique
	Price  decimal.Decimal `json:"price"`  // Monthly price, >= 0
	Active bool            `json:"active"`
}

// DummyPack carries the JSON body of a create/update pack request.
type DummyPack struct {
	Name   string          `json:"name" validate:"required"`
	Price  decimal.Decimal `json:"price" validate:"required"`
	Active *bool           `json:"active,omitempty"`
}
