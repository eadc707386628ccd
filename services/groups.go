package services

// OtherGroupName is the sentinel label for items without an explicit group.
const OtherGroupName = "Other"

// GroupTotals holds the settlement-currency rollup for one presentation group,
// plus a per-currency breakdown of native sell totals used for
// currency-exposure reporting (no conversion applied to those buckets).
type GroupTotals struct {
	SellSettlement    float64
	CostSettlement    float64
	ProfitSettlement  float64
	ProfitMarginRatio float64
	NativeSellTotals  map[Currency]float64
}

// QuoteGroup pairs a group label with its items and totals. Groups are derived
// on every render and never stored.
type QuoteGroup struct {
	Name   string
	Items  []LineItem
	Totals GroupTotals
}

// AggregateGroups folds line items into per-group subtotals. Groups keep their
// first-seen order, except the sentinel "Other" group which always sorts last.
// Items are assumed to have passed PriceLine validation at edit time; a
// failing item here still surfaces its error rather than being dropped.
//
// extraGroups names empty placeholder groups the editor has created; they
// yield all-zero totals.
func AggregateGroups(items []LineItem, rates RateSet, extraGroups ...string) ([]QuoteGroup, error) {
	index := make(map[string]int)
	var groups []QuoteGroup
	hasOther := false

	ensure := func(name string) int {
		if name == "" {
			name = OtherGroupName
		}
		if name == OtherGroupName {
			hasOther = true
		}
		if i, ok := index[name]; ok {
			return i
		}
		groups = append(groups, QuoteGroup{
			Name:   name,
			Totals: GroupTotals{NativeSellTotals: map[Currency]float64{TRY: 0, USD: 0, EUR: 0}},
		})
		index[name] = len(groups) - 1
		return len(groups) - 1
	}

	for _, name := range extraGroups {
		ensure(name)
	}

	for _, item := range items {
		i := ensure(item.GroupName)
		price, err := PriceLine(item, rates)
		if err != nil {
			return nil, err
		}

		g := &groups[i]
		g.Items = append(g.Items, item)
		g.Totals.SellSettlement += price.LineSellSettlement
		g.Totals.CostSettlement += price.LineCostSettlement
		g.Totals.ProfitSettlement += price.LineProfitSettlement
		g.Totals.NativeSellTotals[item.Currency] += price.UnitSell * item.Quantity
	}

	for i := range groups {
		if groups[i].Totals.SellSettlement != 0 {
			groups[i].Totals.ProfitMarginRatio = groups[i].Totals.ProfitSettlement / groups[i].Totals.SellSettlement
		}
	}

	// Keep "Other" last regardless of when it was first seen.
	if hasOther {
		i := index[OtherGroupName]
		if i != len(groups)-1 {
			other := groups[i]
			groups = append(groups[:i], groups[i+1:]...)
			groups = append(groups, other)
		}
	}

	return groups, nil
}
