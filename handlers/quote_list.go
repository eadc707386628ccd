package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/services"
)

type quoteListEntry struct {
	ID          string  `json:"id"`
	RootID      string  `json:"rootId"`
	Version     int     `json:"version"`
	Title       string  `json:"title"`
	Customer    string  `json:"customer"`
	Status      string  `json:"status"`
	VersionNote string  `json:"versionNote,omitempty"`
	TotalAmount float64 `json:"totalAmount"`
	Created     string  `json:"created"`
}

type quoteClusterEntry struct {
	RootID       string           `json:"rootId"`
	Latest       quoteListEntry   `json:"latest"`
	VersionCount int              `json:"versionCount"`
	StatusCounts map[string]int   `json:"statusCounts"`
	Versions     []quoteListEntry `json:"versions"`
}

// HandleQuoteList handles GET /quotes.
//
// Without a status filter the response is clustered: one entry per logical
// quote, represented by its latest revision. With ?status= the response is
// flat, one row per matching revision -- clustering a filtered list would hide
// the versions the filter is meant to surface.
func HandleQuoteList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("quotes", "id != ''", "-created", 0, 0, nil)
		if err != nil {
			log.Printf("quote_list: HandleQuoteList: could not query quotes: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		quotes := make([]services.Quote, 0, len(records))
		for _, r := range records {
			quotes = append(quotes, quoteFromRecord(r))
		}

		statusFilter := e.Request.URL.Query().Get("status")
		if statusFilter != "" {
			status, err := services.ParseQuoteStatus(statusFilter)
			if err != nil {
				return apiError(e, http.StatusBadRequest, "Unknown status filter")
			}

			flat := services.FlattenFiltered(quotes, func(q services.Quote) bool {
				return q.Status == status
			})

			entries := make([]quoteListEntry, 0, len(flat))
			for _, q := range flat {
				entries = append(entries, toListEntry(q))
			}
			return e.JSON(http.StatusOK, map[string]any{
				"mode":   "flat",
				"quotes": entries,
			})
		}

		clusters := services.GroupRevisions(quotes)
		entries := make([]quoteClusterEntry, 0, len(clusters))
		for _, c := range clusters {
			entry := quoteClusterEntry{
				RootID:       c.RootID,
				Latest:       toListEntry(c.Latest),
				VersionCount: len(c.Versions),
				StatusCounts: make(map[string]int),
			}
			for status, n := range c.StatusCounts() {
				entry.StatusCounts[string(status)] = n
			}
			for _, q := range c.Versions {
				entry.Versions = append(entry.Versions, toListEntry(q))
			}
			entries = append(entries, entry)
		}

		return e.JSON(http.StatusOK, map[string]any{
			"mode":     "clustered",
			"clusters": entries,
		})
	}
}

func toListEntry(q services.Quote) quoteListEntry {
	created := ""
	if !q.CreatedAt.IsZero() {
		created = q.CreatedAt.Format("2006-01-02 15:04:05")
	}
	return quoteListEntry{
		ID:          q.ID,
		RootID:      q.RootID,
		Version:     q.Version,
		Title:       q.Title,
		Customer:    q.CustomerID,
		Status:      string(q.Status),
		VersionNote: q.VersionNote,
		TotalAmount: q.TotalAmount,
		Created:     created,
	}
}
