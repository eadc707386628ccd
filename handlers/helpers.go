// Package handlers contains the JSON endpoints of the quoting API. Every
// handler is a factory taking the PocketBase app (and settings where needed)
// and returning a request function, so routes stay declarative in main.go.
package handlers

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/services"
)

// apiError responds with a JSON error payload.
func apiError(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, map[string]string{"error": message})
}

// quoteFromRecord converts a stored quote record into the engine's view.
// Stored status values are constrained by the collection's select field, so a
// parse failure means hand-edited data; it degrades to draft rather than
// poisoning a whole list response.
func quoteFromRecord(r *core.Record) services.Quote {
	status, err := services.ParseQuoteStatus(r.GetString("status"))
	if err != nil {
		status = services.StatusDraft
	}

	return services.Quote{
		ID:          r.Id,
		RootID:      r.GetString("root_id"),
		Version:     r.GetInt("version"),
		Title:       r.GetString("title"),
		CustomerID:  r.GetString("customer"),
		AssigneeID:  r.GetString("assignee"),
		Status:      status,
		VersionNote: r.GetString("version_note"),
		TotalAmount: r.GetFloat("total_amount"),
		Rates:       rateSetFromRecord(r),
		CreatedAt:   r.GetDateTime("created").Time(),
	}
}

// rateSetFromRecord reads the quote-scoped exchange rate snapshot.
func rateSetFromRecord(r *core.Record) services.RateSet {
	return services.RateSet{
		USD: r.GetFloat("usd_rate"),
		EUR: r.GetFloat("eur_rate"),
	}
}

// lineItemFromRecord converts a stored quote item into the engine's view.
func lineItemFromRecord(r *core.Record) (services.LineItem, error) {
	currency, err := services.ParseCurrency(r.GetString("currency"))
	if err != nil {
		return services.LineItem{}, fmt.Errorf("item %s: %w", r.Id, err)
	}

	return services.LineItem{
		ID:           r.Id,
		ProductID:    r.GetString("product"),
		Name:         r.GetString("name"),
		Brand:        r.GetString("brand"),
		Model:        r.GetString("model"),
		Unit:         r.GetString("unit"),
		Quantity:     r.GetFloat("quantity"),
		ListPrice:    r.GetFloat("list_price"),
		Currency:     currency,
		DiscountRate: r.GetFloat("discount_rate"),
		ProfitMargin: r.GetFloat("profit_margin"),
		GroupName:    r.GetString("group_name"),
	}, nil
}

// loadQuoteItemRecords fetches a quote's line items in display order.
func loadQuoteItemRecords(app *pocketbase.PocketBase, quoteID string) ([]*core.Record, error) {
	return app.FindRecordsByFilter(
		"quote_items",
		"quote = {:quoteId}",
		"sort_order",
		0,
		0,
		map[string]any{"quoteId": quoteID},
	)
}

// loadLineItems fetches and converts a quote's line items.
func loadLineItems(app *pocketbase.PocketBase, quoteID string) ([]services.LineItem, error) {
	records, err := loadQuoteItemRecords(app, quoteID)
	if err != nil {
		return nil, fmt.Errorf("load quote items: %w", err)
	}

	items := make([]services.LineItem, 0, len(records))
	for _, r := range records {
		item, err := lineItemFromRecord(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// loadCluster fetches every revision sharing the root and returns both the
// raw records and the engine's cluster view.
func loadCluster(app *pocketbase.PocketBase, rootID string) ([]*core.Record, services.RevisionCluster, error) {
	records, err := app.FindRecordsByFilter(
		"quotes",
		"root_id = {:rootId}",
		"-version",
		0,
		0,
		map[string]any{"rootId": rootID},
	)
	if err != nil {
		return nil, services.RevisionCluster{}, fmt.Errorf("load cluster %s: %w", rootID, err)
	}
	if len(records) == 0 {
		return nil, services.RevisionCluster{}, fmt.Errorf("load cluster %s: no revisions", rootID)
	}

	quotes := make([]services.Quote, 0, len(records))
	for _, r := range records {
		quotes = append(quotes, quoteFromRecord(r))
	}

	clusters := services.GroupRevisions(quotes)
	return records, clusters[0], nil
}

// applyPlan executes a revision plan inside the given transaction app. The
// first write is the quote head; item writes with an empty "quote" relation
// are linked to the head's freshly assigned id. Returns the head id, if any.
func applyPlan(txApp core.App, plan services.RevisionPlan) (string, error) {
	var headID string

	for i, w := range plan.Writes {
		col, err := txApp.FindCollectionByNameOrId(w.Collection)
		if err != nil {
			return "", fmt.Errorf("apply plan: find collection %q: %w", w.Collection, err)
		}

		record := core.NewRecord(col)
		for k, v := range w.Fields {
			if k == "quote" && v == "" {
				v = headID
			}
			record.Set(k, v)
		}

		if err := txApp.Save(record); err != nil {
			return "", fmt.Errorf("apply plan: save %s: %w", w.Collection, err)
		}

		if i == 0 {
			headID = record.Id
		}
	}

	for _, d := range plan.Deletes {
		record, err := txApp.FindRecordById(d.Collection, d.ID)
		if err != nil {
			return "", fmt.Errorf("apply plan: find %s/%s: %w", d.Collection, d.ID, err)
		}
		if err := txApp.Delete(record); err != nil {
			return "", fmt.Errorf("apply plan: delete %s/%s: %w", d.Collection, d.ID, err)
		}
	}

	return headID, nil
}

// recalcQuoteTotal refreshes the cached ex-VAT grand total on the quote record
// after a line item mutation. The cache exists so lists and the dashboard can
// show totals without repricing every quote.
func recalcQuoteTotal(app *pocketbase.PocketBase, quote *core.Record) error {
	items, err := loadLineItems(app, quote.Id)
	if err != nil {
		return err
	}

	totals, err := services.AggregateQuote(items, rateSetFromRecord(quote), 0, services.VATExclusive)
	if err != nil {
		return err
	}

	quote.Set("total_amount", totals.SellExVAT)
	return app.Save(quote)
}
