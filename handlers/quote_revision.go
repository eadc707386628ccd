package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/services"
)

// HandleQuoteRevisionCreate handles POST /quotes/{id}/revisions.
//
// The new revision is a full copy of the source: scalar fields and every line
// item, version bumped past the cluster maximum, status reset to draft. The
// rate set is re-fetched rather than copied; when the rate source is
// unavailable the source's snapshot is kept so the operation still succeeds.
// The head record and all item copies are written in one transaction.
func HandleQuoteRevisionCreate(app *pocketbase.PocketBase, fetcher *services.RateFetcher) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		record, err := app.FindRecordById("quotes", id)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		source := quoteFromRecord(record)
		rootID := source.RootID
		if rootID == "" {
			rootID = source.ID
		}

		_, cluster, err := loadCluster(app, rootID)
		if err != nil {
			log.Printf("quote_revision: HandleQuoteRevisionCreate: could not load cluster %s: %v", rootID, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items, err := loadLineItems(app, id)
		if err != nil {
			log.Printf("quote_revision: HandleQuoteRevisionCreate: could not load items for quote %s: %v", id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rates := source.Rates
		if fetcher != nil {
			if fresh, err := fetcher.FetchCurrentRates(e.Request.Context()); err == nil {
				rates = fresh
			} else {
				log.Printf("quote_revision: HandleQuoteRevisionCreate: rate fetch failed, keeping source rates: %v", err)
			}
		}

		plan, err := services.PlanRevisionCopy(cluster, source, items, rates)
		if err != nil {
			log.Printf("quote_revision: HandleQuoteRevisionCreate: could not plan revision of %s: %v", id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		var newID string
		err = app.RunInTransaction(func(txApp core.App) error {
			newID, err = applyPlan(txApp, plan)
			return err
		})
		if err != nil {
			log.Printf("quote_revision: HandleQuoteRevisionCreate: could not apply revision plan for %s: %v", id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusCreated, map[string]any{
			"id":      newID,
			"rootId":  rootID,
			"version": cluster.Latest.Version + 1,
		})
	}
}
