package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/services"
)

// HandleDashboard handles GET /dashboard. Stats cover only the latest
// revision of each cluster so superseded versions never inflate the numbers.
func HandleDashboard(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("quotes", "id != ''", "-created", 0, 0, nil)
		if err != nil {
			log.Printf("dashboard: HandleDashboard: could not query quotes: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		quotes := make([]services.Quote, 0, len(records))
		for _, r := range records {
			quotes = append(quotes, quoteFromRecord(r))
		}

		stats := services.BuildDashboardStats(quotes)

		return e.JSON(http.StatusOK, map[string]any{
			"clusterCount":       stats.ClusterCount,
			"revisionCount":      stats.RevisionCount,
			"statusCounts":       stats.StatusCounts,
			"openValue":          stats.OpenValue,
			"approvedValue":      stats.ApprovedValue,
			"totalValue":         stats.TotalValue,
			"openValueDisplay":   services.FormatTRY(stats.OpenValue),
			"totalValueDisplay":  services.FormatTRY(stats.TotalValue),
			"approvedValueDisplay": services.FormatTRY(stats.ApprovedValue),
		})
	}
}
