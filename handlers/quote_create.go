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

func formFloatValue(e *core.RequestEvent, name string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(e.Request.FormValue(name)), 64)
	if err != nil {
		return 0
	}
	return v
}

// HandleQuoteCreate handles POST /quotes.
// Creates the first revision of a new quote: version 1, root_id = own id. The
// exchange rate snapshot comes from the form when provided, otherwise from the
// live rate source; a failed fetch leaves the rates at zero for manual entry.
func HandleQuoteCreate(app *pocketbase.PocketBase, fetcher *services.RateFetcher) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		title := strings.TrimSpace(e.Request.FormValue("title"))
		customerID := strings.TrimSpace(e.Request.FormValue("customer"))
		assigneeID := strings.TrimSpace(e.Request.FormValue("assignee"))

		errors := make(map[string]string)
		if title == "" {
			errors["title"] = "Title is required"
		}
		if customerID == "" {
			errors["customer"] = "Customer is required"
		} else if _, err := app.FindRecordById("customers", customerID); err != nil {
			errors["customer"] = "Customer not found"
		}

		if len(errors) > 0 {
			return e.JSON(http.StatusBadRequest, map[string]any{"errors": errors})
		}

		col, err := app.FindCollectionByNameOrId("quotes")
		if err != nil {
			log.Printf("quote_create: HandleQuoteCreate: could not find quotes collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rates := services.RateSet{
			USD: formFloatValue(e, "usd_rate"),
			EUR: formFloatValue(e, "eur_rate"),
		}
		if !rates.Complete() {
			fetched, err := fetcher.FetchCurrentRates(e.Request.Context())
			if err != nil {
				log.Printf("quote_create: HandleQuoteCreate: rate fetch failed, leaving snapshot empty: %v", err)
			} else {
				rates = fetched
			}
		}

		record := core.NewRecord(col)
		record.Set("customer", customerID)
		record.Set("title", title)
		record.Set("assignee", assigneeID)
		record.Set("version", 1)
		record.Set("status", string(services.StatusDraft))
		record.Set("usd_rate", rates.USD)
		record.Set("eur_rate", rates.EUR)

		// The first revision roots its own cluster, so the root_id can only be
		// filled in after the id is assigned.
		err = app.RunInTransaction(func(txApp core.App) error {
			if err := txApp.Save(record); err != nil {
				return err
			}
			record.Set("root_id", record.Id)
			return txApp.Save(record)
		})
		if err != nil {
			log.Printf("quote_create: HandleQuoteCreate: could not save quote: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusCreated, map[string]string{
			"id":     record.Id,
			"rootId": record.GetString("root_id"),
		})
	}
}

// HandleQuoteSave handles POST /quotes/{id}/save.
// Updates the mutable scalar fields of one revision.
func HandleQuoteSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		quote, err := app.FindRecordById("quotes", id)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		if v := strings.TrimSpace(e.Request.FormValue("title")); v != "" {
			quote.Set("title", v)
		}
		if v := strings.TrimSpace(e.Request.FormValue("version_note")); v != "" {
			quote.Set("version_note", v)
		}
		if v := strings.TrimSpace(e.Request.FormValue("assignee")); v != "" {
			if _, err := app.FindRecordById("personnel", v); err != nil {
				return apiError(e, http.StatusBadRequest, "Assignee not found")
			}
			quote.Set("assignee", v)
		}
		if v := strings.TrimSpace(e.Request.FormValue("status")); v != "" {
			status, err := services.ParseQuoteStatus(v)
			if err != nil {
				return apiError(e, http.StatusBadRequest, "Unknown status")
			}
			quote.Set("status", string(status))
		}

		if err := app.Save(quote); err != nil {
			log.Printf("quote_create: HandleQuoteSave: could not save quote %s: %v", id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, map[string]string{"id": quote.Id})
	}
}
