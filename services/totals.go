package services

import "fmt"

// VATMode selects how VAT is presented. Both modes are display projections
// over the same canonical ex-VAT sum computed from the items; the inclusive
// mode never changes what is stored.
type VATMode string

const (
	VATExclusive VATMode = "exclusive"
	VATInclusive VATMode = "inclusive"
)

// ParseVATMode validates a stored or requested mode string.
func ParseVATMode(s string) (VATMode, error) {
	switch VATMode(s) {
	case VATExclusive, VATInclusive:
		return VATMode(s), nil
	}
	return "", fmt.Errorf("unknown vat mode %q", s)
}

// QuoteTotals is the grand-total rollup of a quote. Cost, profit and the
// margin ratio always refer to the canonical ex-VAT figures; SellExVAT,
// VATAmount and SellIncVAT carry the requested presentation.
type QuoteTotals struct {
	SellExVAT         float64
	Cost              float64
	Profit            float64
	ProfitMarginRatio float64
	VATRate           float64
	VATAmount         float64
	SellIncVAT        float64
}

// AggregateQuote folds all items into grand totals and applies the VAT
// presentation mode.
//
// Exclusive: the item sum is the net figure, VAT is added on top.
// Inclusive: the item sum is reinterpreted as the gross figure; VAT is carved
// out of it (vat = gross - gross/(1+rate)) and the displayed net becomes
// gross - vat.
func AggregateQuote(items []LineItem, rates RateSet, vatRate float64, mode VATMode) (QuoteTotals, error) {
	var sell, cost, profit float64
	for _, item := range items {
		price, err := PriceLine(item, rates)
		if err != nil {
			return QuoteTotals{}, err
		}
		sell += price.LineSellSettlement
		cost += price.LineCostSettlement
		profit += price.LineProfitSettlement
	}

	totals := QuoteTotals{
		Cost:    cost,
		Profit:  profit,
		VATRate: vatRate,
	}
	if sell != 0 {
		totals.ProfitMarginRatio = profit / sell
	}

	switch mode {
	case VATInclusive:
		gross := sell
		vat := gross - gross/(1+vatRate)
		totals.SellIncVAT = gross
		totals.VATAmount = vat
		totals.SellExVAT = gross - vat
	default:
		totals.SellExVAT = sell
		totals.VATAmount = sell * vatRate
		totals.SellIncVAT = sell + totals.VATAmount
	}

	return totals, nil
}
