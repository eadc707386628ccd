package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/services"
)

// HandleQuoteDelete handles DELETE /quotes/{id}.
//
// ?scope=version removes just this revision; it is refused when the revision
// is the only one in its cluster, because that would leave a dangling
// zero-version cluster. ?scope=cluster (the default) removes every revision
// sharing the root along with all line items. Either way the whole delete is
// applied as one transaction -- a partial delete is never left behind.
func HandleQuoteDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		quote, err := app.FindRecordById("quotes", id)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		rootID := quote.GetString("root_id")
		if rootID == "" {
			rootID = quote.Id
		}

		_, cluster, err := loadCluster(app, rootID)
		if err != nil {
			log.Printf("quote_delete: HandleQuoteDelete: could not load cluster %s: %v", rootID, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		scope := e.Request.URL.Query().Get("scope")
		var plan services.RevisionPlan

		switch scope {
		case "version":
			itemRecords, err := loadQuoteItemRecords(app, id)
			if err != nil {
				log.Printf("quote_delete: HandleQuoteDelete: could not load items for quote %s: %v", id, err)
				return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
			}
			itemIDs := make([]string, 0, len(itemRecords))
			for _, r := range itemRecords {
				itemIDs = append(itemIDs, r.Id)
			}

			plan, err = services.PlanVersionDelete(cluster, id, itemIDs)
			if err != nil {
				if errors.Is(err, services.ErrEmptyClusterDeletion) {
					return apiError(e, http.StatusConflict,
						"Cannot delete the only version of a quote; delete the whole quote instead")
				}
				return apiError(e, http.StatusBadRequest, err.Error())
			}

		case "", "cluster":
			itemIDsByQuote := make(map[string][]string)
			for _, q := range cluster.Versions {
				itemRecords, err := loadQuoteItemRecords(app, q.ID)
				if err != nil {
					log.Printf("quote_delete: HandleQuoteDelete: could not load items for quote %s: %v", q.ID, err)
					return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
				}
				for _, r := range itemRecords {
					itemIDsByQuote[q.ID] = append(itemIDsByQuote[q.ID], r.Id)
				}
			}
			plan = services.PlanClusterDelete(cluster, itemIDsByQuote)

		default:
			return apiError(e, http.StatusBadRequest, "Unknown delete scope")
		}

		err = app.RunInTransaction(func(txApp core.App) error {
			_, err := applyPlan(txApp, plan)
			return err
		})
		if err != nil {
			log.Printf("quote_delete: HandleQuoteDelete: could not apply delete plan for %s: %v", id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, map[string]string{"deleted": id})
	}
}
