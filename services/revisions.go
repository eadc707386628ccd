package services

import (
	"fmt"
	"sort"
	"time"
)

// QuoteStatus is the closed set of workflow states a quote revision can be in.
type QuoteStatus string

const (
	StatusDraft    QuoteStatus = "draft"
	StatusSent     QuoteStatus = "sent"
	StatusApproved QuoteStatus = "approved"
	StatusRejected QuoteStatus = "rejected"
)

// ParseQuoteStatus rejects anything outside the closed set.
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	switch QuoteStatus(s) {
	case StatusDraft, StatusSent, StatusApproved, StatusRejected:
		return QuoteStatus(s), nil
	}
	return "", fmt.Errorf("unknown quote status %q", s)
}

// Quote is the engine's view of one stored quote revision. RootID is shared by
// all revisions of the same logical quote and equals the first revision's ID.
type Quote struct {
	ID          string
	RootID      string
	Version     int
	Title       string
	CustomerID  string
	AssigneeID  string
	Status      QuoteStatus
	VersionNote string
	TotalAmount float64
	Rates       RateSet
	CreatedAt   time.Time
}

// RevisionCluster groups every revision sharing a RootID. Versions are sorted
// descending by version number; the head is the current revision.
type RevisionCluster struct {
	RootID   string
	Versions []Quote
	Latest   Quote
}

// StatusCounts rolls up how many revisions sit in each workflow state,
// so a clustered list can show e.g. "1 approved / 2 rejected" at a glance.
func (c RevisionCluster) StatusCounts() map[QuoteStatus]int {
	counts := make(map[QuoteStatus]int)
	for _, q := range c.Versions {
		counts[q.Status]++
	}
	return counts
}

// GroupRevisions partitions quotes by RootID into clusters. Within a cluster
// versions sort descending; clusters sort by the latest revision's creation
// time, newest first. Records whose server timestamp has not resolved yet
// (zero CreatedAt) always sort last.
func GroupRevisions(quotes []Quote) []RevisionCluster {
	byRoot := make(map[string][]Quote)
	var order []string
	for _, q := range quotes {
		root := q.RootID
		if root == "" {
			root = q.ID
		}
		if _, ok := byRoot[root]; !ok {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], q)
	}

	clusters := make([]RevisionCluster, 0, len(order))
	for _, root := range order {
		versions := byRoot[root]
		sort.SliceStable(versions, func(i, j int) bool {
			return versions[i].Version > versions[j].Version
		})
		clusters = append(clusters, RevisionCluster{
			RootID:   root,
			Versions: versions,
			Latest:   versions[0],
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := clusters[i].Latest.CreatedAt, clusters[j].Latest.CreatedAt
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})

	return clusters
}

// FlattenFiltered returns the flat one-row-per-version view, keeping only
// quotes matching the predicate, newest first with zero timestamps last. The
// list UI uses this whenever a status filter is active: a clustered view would
// hide the very versions the filter is meant to surface.
func FlattenFiltered(quotes []Quote, keep func(Quote) bool) []Quote {
	var out []Quote
	for _, q := range quotes {
		if keep == nil || keep(q) {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
	return out
}

// Collection names the revision plans target.
const (
	QuotesCollection     = "quotes"
	QuoteItemsCollection = "quote_items"
)

// DocumentWrite describes one document the storage layer must create. An
// empty ID means "assign a fresh one".
type DocumentWrite struct {
	Collection string
	ID         string
	Fields     map[string]any
}

// DocumentDelete identifies one document the storage layer must remove.
type DocumentDelete struct {
	Collection string
	ID         string
}

// RevisionPlan is the set of writes and deletes a revision operation requires.
// The engine emits the plan; the storage layer applies it as a single atomic
// batch so a crash never leaves an orphaned item set.
type RevisionPlan struct {
	Writes  []DocumentWrite
	Deletes []DocumentDelete
}

// PlanRevisionCopy emits the writes for a new revision of source: all scalar
// fields and all line items copied, version = max existing + 1, status reset
// to draft, and the freshly fetched (not copied) rate set. The first write is
// the quote head; item writes leave the "quote" relation empty and the
// storage layer fills it with the ID assigned to the head.
func PlanRevisionCopy(cluster RevisionCluster, source Quote, items []LineItem, freshRates RateSet) (RevisionPlan, error) {
	if cluster.RootID == "" || len(cluster.Versions) == 0 {
		return RevisionPlan{}, fmt.Errorf("plan revision: empty cluster")
	}

	nextVersion := cluster.Versions[0].Version + 1

	plan := RevisionPlan{
		Writes: []DocumentWrite{{
			Collection: QuotesCollection,
			Fields: map[string]any{
				"root_id":      cluster.RootID,
				"version":      nextVersion,
				"title":        source.Title,
				"customer":     source.CustomerID,
				"assignee":     source.AssigneeID,
				"status":       string(StatusDraft),
				"version_note": "",
				"usd_rate":     freshRates.USD,
				"eur_rate":     freshRates.EUR,
				"total_amount": source.TotalAmount,
			},
		}},
	}

	for i, item := range items {
		plan.Writes = append(plan.Writes, DocumentWrite{
			Collection: QuoteItemsCollection,
			Fields: map[string]any{
				"quote":         "",
				"sort_order":    i + 1,
				"product":       item.ProductID,
				"name":          item.Name,
				"brand":         item.Brand,
				"model":         item.Model,
				"unit":          item.Unit,
				"quantity":      item.Quantity,
				"list_price":    item.ListPrice,
				"currency":      string(item.Currency),
				"discount_rate": item.DiscountRate,
				"profit_margin": item.ProfitMargin,
				"group_name":    item.GroupName,
			},
		})
	}

	return plan, nil
}

// PlanVersionDelete emits the deletes for a single revision and its items.
// Deleting the only version of a cluster is refused: that would leave a
// dangling zero-version cluster, so the caller must use PlanClusterDelete.
func PlanVersionDelete(cluster RevisionCluster, quoteID string, itemIDs []string) (RevisionPlan, error) {
	if len(cluster.Versions) <= 1 {
		return RevisionPlan{}, fmt.Errorf("%w: %s", ErrEmptyClusterDeletion, cluster.RootID)
	}

	found := false
	for _, q := range cluster.Versions {
		if q.ID == quoteID {
			found = true
			break
		}
	}
	if !found {
		return RevisionPlan{}, fmt.Errorf("%w: quote %s in cluster %s", ErrUnknownVersion, quoteID, cluster.RootID)
	}

	plan := RevisionPlan{}
	for _, id := range itemIDs {
		plan.Deletes = append(plan.Deletes, DocumentDelete{Collection: QuoteItemsCollection, ID: id})
	}
	plan.Deletes = append(plan.Deletes, DocumentDelete{Collection: QuotesCollection, ID: quoteID})
	return plan, nil
}

// PlanClusterDelete emits the deletes for every revision of a cluster and all
// of their items.
func PlanClusterDelete(cluster RevisionCluster, itemIDsByQuote map[string][]string) RevisionPlan {
	plan := RevisionPlan{}
	for _, q := range cluster.Versions {
		for _, id := range itemIDsByQuote[q.ID] {
			plan.Deletes = append(plan.Deletes, DocumentDelete{Collection: QuoteItemsCollection, ID: id})
		}
		plan.Deletes = append(plan.Deletes, DocumentDelete{Collection: QuotesCollection, ID: q.ID})
	}
	return plan
}
