package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/services"
)

type quoteItemView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Brand        string  `json:"brand,omitempty"`
	Model        string  `json:"model,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	Quantity     float64 `json:"quantity"`
	ListPrice    float64 `json:"listPrice"`
	Currency     string  `json:"currency"`
	DiscountRate float64 `json:"discountRate"`
	ProfitMargin float64 `json:"profitMargin"`
	GroupName    string  `json:"groupName,omitempty"`

	UnitCost    float64 `json:"unitCost"`
	UnitSell    float64 `json:"unitSell"`
	LineSellTRY float64 `json:"lineSellTRY"`
}

type quoteGroupView struct {
	Name              string             `json:"name"`
	Items             []quoteItemView    `json:"items"`
	SellTRY           float64            `json:"sellTRY"`
	CostTRY           float64            `json:"costTRY"`
	ProfitTRY         float64            `json:"profitTRY"`
	ProfitMarginRatio float64            `json:"profitMarginRatio"`
	NativeSellTotals  map[string]float64 `json:"nativeSellTotals"`
}

type quoteTotalsView struct {
	SellExVAT         float64 `json:"sellExVAT"`
	Cost              float64 `json:"cost"`
	Profit            float64 `json:"profit"`
	ProfitMarginRatio float64 `json:"profitMarginRatio"`
	VATRate           float64 `json:"vatRate"`
	VATAmount         float64 `json:"vatAmount"`
	SellIncVAT        float64 `json:"sellIncVAT"`
}

// HandleQuoteView handles GET /quotes/{id}.
// Returns the revision with its items priced, grouped and totalled. The
// optional ?vat_mode= (exclusive|inclusive) switches the VAT presentation;
// both modes are projections over the same stored data.
func HandleQuoteView(app *pocketbase.PocketBase, vatRate float64) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		record, err := app.FindRecordById("quotes", id)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		mode := services.VATExclusive
		if v := e.Request.URL.Query().Get("vat_mode"); v != "" {
			mode, err = services.ParseVATMode(v)
			if err != nil {
				return apiError(e, http.StatusBadRequest, "Unknown vat_mode")
			}
		}

		quote := quoteFromRecord(record)
		items, err := loadLineItems(app, id)
		if err != nil {
			log.Printf("quote_view: HandleQuoteView: could not load items for quote %s: %v", id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rates := quote.Rates

		var groupViews []quoteGroupView
		var totalsView quoteTotalsView

		// A quote with no priced items yet renders with empty groups and zero
		// totals; anything else prices normally or reports the bad item.
		if len(items) > 0 {
			groups, err := services.AggregateGroups(items, rates)
			if err != nil {
				return apiError(e, http.StatusUnprocessableEntity, err.Error())
			}
			totals, err := services.AggregateQuote(items, rates, vatRate, mode)
			if err != nil {
				return apiError(e, http.StatusUnprocessableEntity, err.Error())
			}

			for _, g := range groups {
				gv := quoteGroupView{
					Name:              g.Name,
					SellTRY:           g.Totals.SellSettlement,
					CostTRY:           g.Totals.CostSettlement,
					ProfitTRY:         g.Totals.ProfitSettlement,
					ProfitMarginRatio: g.Totals.ProfitMarginRatio,
					NativeSellTotals:  make(map[string]float64),
				}
				for currency, amount := range g.Totals.NativeSellTotals {
					gv.NativeSellTotals[string(currency)] = amount
				}
				for _, item := range g.Items {
					price, err := services.PriceLine(item, rates)
					if err != nil {
						return apiError(e, http.StatusUnprocessableEntity, err.Error())
					}
					gv.Items = append(gv.Items, quoteItemView{
						ID:           item.ID,
						Name:         item.Name,
						Brand:        item.Brand,
						Model:        item.Model,
						Unit:         item.Unit,
						Quantity:     item.Quantity,
						ListPrice:    item.ListPrice,
						Currency:     string(item.Currency),
						DiscountRate: item.DiscountRate,
						ProfitMargin: item.ProfitMargin,
						GroupName:    item.GroupName,
						UnitCost:     price.UnitCost,
						UnitSell:     price.UnitSell,
						LineSellTRY:  price.LineSellSettlement,
					})
				}
				groupViews = append(groupViews, gv)
			}

			totalsView = quoteTotalsView{
				SellExVAT:         totals.SellExVAT,
				Cost:              totals.Cost,
				Profit:            totals.Profit,
				ProfitMarginRatio: totals.ProfitMarginRatio,
				VATRate:           totals.VATRate,
				VATAmount:         totals.VATAmount,
				SellIncVAT:        totals.SellIncVAT,
			}
		}

		return e.JSON(http.StatusOK, map[string]any{
			"quote":   toListEntry(quote),
			"rates":   map[string]float64{"USD": rates.USD, "EUR": rates.EUR},
			"vatMode": string(mode),
			"groups":  groupViews,
			"totals":  totalsView,
		})
	}
}
