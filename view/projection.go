// Package view derives a renderable projection from cart state. It holds no
// state of its own; presentation layers subscribe to the cart store and
// re-project on every change.
package view

import (
	"github.com/shopspring/decimal"

	"goflare.io/catering/models"
	"goflare.io/catering/pricing"
)

type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// View is the renderable cart. Empty is an explicit marker so a presenter
// can tell "no items" apart from "not yet loaded".
type View struct {
	Empty   bool            `json:"empty"`
	Lines   []Line          `json:"lines,omitempty"`
	Summary pricing.Summary `json:"summary"`
}

func Project(items []models.CartItem) View {
	if len(items) == 0 {
		return View{
			Empty:   true,
			Summary: pricing.Price(nil),
		}
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Image:     item.Image,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)),
		})
	}

	return View{
		Lines:   lines,
		Summary: pricing.Price(items),
	}
}
