package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/services"
)

// HandleQuoteRatesUpdate handles POST /quotes/{id}/rates.
//
// With ?refresh=true the live rates are fetched and snapshotted onto the
// quote; a failed fetch leaves the stored snapshot untouched and reports the
// failure. Otherwise usd_rate/eur_rate come from the form. Changing the
// snapshot reprices the whole quote, so the cached total is refreshed too.
func HandleQuoteRatesUpdate(app *pocketbase.PocketBase, fetcher *services.RateFetcher) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")

		quote, err := app.FindRecordById("quotes", quoteID)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		var rates services.RateSet
		if e.Request.FormValue("refresh") == "true" {
			rates, err = fetcher.FetchCurrentRates(e.Request.Context())
			if err != nil {
				log.Printf("quote_rates: HandleQuoteRatesUpdate: rate fetch failed for quote %s: %v", quoteID, err)
				return apiError(e, http.StatusBadGateway, "Could not fetch current rates; existing rates were kept")
			}
		} else {
			usd, errUSD := strconv.ParseFloat(strings.TrimSpace(e.Request.FormValue("usd_rate")), 64)
			eur, errEUR := strconv.ParseFloat(strings.TrimSpace(e.Request.FormValue("eur_rate")), 64)
			if errUSD != nil || errEUR != nil {
				return apiError(e, http.StatusBadRequest, "Both usd_rate and eur_rate are required")
			}
			rates = services.RateSet{USD: usd, EUR: eur}
		}

		if !rates.Complete() {
			return apiError(e, http.StatusBadRequest, "Rates must be positive")
		}

		quote.Set("usd_rate", rates.USD)
		quote.Set("eur_rate", rates.EUR)

		if err := app.Save(quote); err != nil {
			log.Printf("quote_rates: HandleQuoteRatesUpdate: could not save quote %s: %v", quoteID, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if err := recalcQuoteTotal(app, quote); err != nil {
			log.Printf("quote_rates: HandleQuoteRatesUpdate: could not refresh total for quote %s: %v", quoteID, err)
		}

		return e.JSON(http.StatusOK, map[string]float64{
			"usd": rates.USD,
			"eur": rates.EUR,
		})
	}
}

// HandleCurrentRates handles GET /rates/current. A convenience probe for the
// quote form; nothing is stored.
func HandleCurrentRates(fetcher *services.RateFetcher) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rates, err := fetcher.FetchCurrentRates(e.Request.Context())
		if err != nil {
			log.Printf("quote_rates: HandleCurrentRates: rate fetch failed: %v", err)
			return apiError(e, http.StatusBadGateway, "Could not fetch current rates")
		}

		return e.JSON(http.StatusOK, map[string]float64{
			"usd": rates.USD,
			"eur": rates.EUR,
		})
	}
}
