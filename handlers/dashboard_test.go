package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"quotecraft/testhelpers"
)

func TestHandleDashboard(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")

	// Cluster with two revisions: only the approved head counts.
	root := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")
	root.Set("total_amount", 40000)
	if err := app.Save(root); err != nil {
		t.Fatalf("failed to set total: %v", err)
	}
	head := testhelpers.CreateTestRevision(t, app, customer.Id, root.Id, 2, "approved")
	head.Set("total_amount", 100000)
	if err := app.Save(head); err != nil {
		t.Fatalf("failed to set total: %v", err)
	}

	// A lone draft.
	draft := testhelpers.CreateTestQuote(t, app, customer.Id, "Havalandırma")
	draft.Set("total_amount", 7500)
	if err := app.Save(draft); err != nil {
		t.Fatalf("failed to set total: %v", err)
	}

	handler := HandleDashboard(app)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		ClusterCount  int            `json:"clusterCount"`
		RevisionCount int            `json:"revisionCount"`
		StatusCounts  map[string]int `json:"statusCounts"`
		OpenValue     float64        `json:"openValue"`
		ApprovedValue float64        `json:"approvedValue"`
		TotalValue    float64        `json:"totalValue"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	if body.ClusterCount != 2 || body.RevisionCount != 3 {
		t.Errorf("counts = %d clusters / %d revisions, want 2 / 3", body.ClusterCount, body.RevisionCount)
	}
	if body.StatusCounts["approved"] != 1 || body.StatusCounts["draft"] != 1 {
		t.Errorf("status counts = %v", body.StatusCounts)
	}
	if math.Abs(body.ApprovedValue-100000) > 0.001 {
		t.Errorf("ApprovedValue = %v, want 100000", body.ApprovedValue)
	}
	if math.Abs(body.OpenValue-7500) > 0.001 {
		t.Errorf("OpenValue = %v, want 7500", body.OpenValue)
	}
	if math.Abs(body.TotalValue-107500) > 0.001 {
		t.Errorf("TotalValue = %v, want 107500", body.TotalValue)
	}
}
