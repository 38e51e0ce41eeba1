package models

import "github.com/shopspring/decimal"

// Product is a catalog record. The catalog is read-only from the core's
// point of view.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}
