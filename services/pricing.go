// Package services provides the pricing and revision engine for quotes:
// currency conversion, per-line pricing, group and quote aggregation, and
// revision clustering. All functions here are pure and side-effect free so the
// editor can recompute on every keystroke without double counting.
package services

import "fmt"

// LineItem is one priced row of a quote. ProductID is set when the row was
// created from the catalog; edits after creation are local to the item and
// never re-sync from the product.
type LineItem struct {
	ID           string
	ProductID    string
	Name         string
	Brand        string
	Model        string
	Unit         string
	Quantity     float64
	ListPrice    float64
	Currency     Currency
	DiscountRate float64 // supplier discount off list price, in [0,1)
	ProfitMargin float64 // fraction of the sell price, in [0,1)
	GroupName    string  // presentation grouping label; empty means "Other"
}

// LinePrice holds the derived figures for a single line item. Unit figures are
// in the item's native currency; line totals are in the settlement currency
// (TRY) and already multiplied by quantity. Nothing is rounded here --
// rounding is a presentation concern, so repeated calls compose exactly.
type LinePrice struct {
	UnitCost   float64
	UnitSell   float64
	UnitProfit float64

	LineCostSettlement   float64
	LineSellSettlement   float64
	LineProfitSettlement float64
}

// PriceLine computes cost, sell and profit for one line item.
//
// The sell price follows the margin-on-sale convention: the profit margin is a
// fraction of the sell price, so sell = cost / (1 - margin). A margin of 1
// would divide by zero and is rejected along with anything outside [0,1).
func PriceLine(item LineItem, rates RateSet) (LinePrice, error) {
	if item.Quantity <= 0 {
		return LinePrice{}, fmt.Errorf("%w: %v", ErrInvalidQuantity, item.Quantity)
	}
	if item.ListPrice < 0 {
		return LinePrice{}, fmt.Errorf("%w: %v", ErrInvalidPrice, item.ListPrice)
	}
	if item.DiscountRate < 0 || item.DiscountRate >= 1 {
		return LinePrice{}, fmt.Errorf("%w: discount rate %v", ErrInvalidPrice, item.DiscountRate)
	}
	if item.ProfitMargin < 0 || item.ProfitMargin >= 1 {
		return LinePrice{}, fmt.Errorf("%w: %v", ErrInvalidMargin, item.ProfitMargin)
	}

	unitCost := item.ListPrice * (1 - item.DiscountRate)
	unitSell := unitCost / (1 - item.ProfitMargin)
	unitProfit := unitSell - unitCost

	costTRY, err := ToSettlement(unitCost, item.Currency, rates)
	if err != nil {
		return LinePrice{}, err
	}
	sellTRY, err := ToSettlement(unitSell, item.Currency, rates)
	if err != nil {
		return LinePrice{}, err
	}

	return LinePrice{
		UnitCost:             unitCost,
		UnitSell:             unitSell,
		UnitProfit:           unitProfit,
		LineCostSettlement:   costTRY * item.Quantity,
		LineSellSettlement:   sellTRY * item.Quantity,
		LineProfitSettlement: (sellTRY - costTRY) * item.Quantity,
	}, nil
}
