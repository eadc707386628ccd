package services

// DashboardStats summarizes the quote book for the overview screen. Values and
// counts cover only the latest revision of each cluster, so a project with
// three revisions contributes exactly once.
type DashboardStats struct {
	ClusterCount  int
	RevisionCount int

	StatusCounts map[QuoteStatus]int

	// TRY sums of the cached ex-VAT grand totals of the latest revisions.
	OpenValue     float64 // draft + sent
	ApprovedValue float64
	TotalValue    float64
}

// BuildDashboardStats folds the full quote list into dashboard figures.
func BuildDashboardStats(quotes []Quote) DashboardStats {
	clusters := GroupRevisions(quotes)

	stats := DashboardStats{
		ClusterCount:  len(clusters),
		RevisionCount: len(quotes),
		StatusCounts:  make(map[QuoteStatus]int),
	}

	for _, c := range clusters {
		latest := c.Latest
		stats.StatusCounts[latest.Status]++
		stats.TotalValue += latest.TotalAmount

		switch latest.Status {
		case StatusDraft, StatusSent:
			stats.OpenValue += latest.TotalAmount
		case StatusApproved:
			stats.ApprovedValue += latest.TotalAmount
		}
	}

	return stats
}
