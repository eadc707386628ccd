package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quotecraft/services"
	"quotecraft/testhelpers"
)

func TestHandleQuoteRevisionCreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")
	quote.Set("status", "sent")
	quote.Set("version_note", "ilk teklif")
	if err := app.Save(quote); err != nil {
		t.Fatalf("failed to update quote: %v", err)
	}
	testhelpers.CreateTestQuoteItem(t, app, quote.Id, "Pompa", "USD", 2, 1000, 0.1, 0.2)

	// Rate source answers with fresh rates that differ from the stored 30/33
	// snapshot.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"USD": 31, "EUR": 34}`))
	}))
	defer srv.Close()
	fetcher := services.NewRateFetcher(srv.URL, 2*time.Second)

	handler := HandleQuoteRevisionCreate(app, fetcher)

	req := httptest.NewRequest(http.MethodPost, "/quotes/"+quote.Id+"/revisions", nil)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		ID      string `json:"id"`
		RootID  string `json:"rootId"`
		Version int    `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	if body.RootID != quote.Id || body.Version != 2 {
		t.Errorf("response = %+v, want root %s v2", body, quote.Id)
	}

	rev, err := app.FindRecordById("quotes", body.ID)
	if err != nil {
		t.Fatalf("new revision not found: %v", err)
	}
	if rev.GetString("root_id") != quote.Id {
		t.Errorf("root_id = %q, want %q", rev.GetString("root_id"), quote.Id)
	}
	if rev.GetInt("version") != 2 {
		t.Errorf("version = %d, want 2", rev.GetInt("version"))
	}
	if rev.GetString("status") != "draft" {
		t.Errorf("status = %q, want draft reset", rev.GetString("status"))
	}
	if rev.GetString("version_note") != "" {
		t.Errorf("version_note = %q, want empty", rev.GetString("version_note"))
	}
	if rev.GetFloat("usd_rate") != 31 || rev.GetFloat("eur_rate") != 34 {
		t.Errorf("rates = %v / %v, want the freshly fetched 31 / 34",
			rev.GetFloat("usd_rate"), rev.GetFloat("eur_rate"))
	}

	items, err := app.FindRecordsByFilter("quote_items", "quote = {:q}", "", 0, 0, map[string]any{"q": rev.Id})
	if err != nil || len(items) != 1 {
		t.Fatalf("copied items = %d (%v), want 1", len(items), err)
	}
	if items[0].GetString("name") != "Pompa" || items[0].GetFloat("quantity") != 2 {
		t.Errorf("item not copied faithfully: %v", items[0])
	}

	// The source is untouched.
	src, _ := app.FindRecordById("quotes", quote.Id)
	if src.GetString("status") != "sent" || src.GetFloat("usd_rate") != 30 {
		t.Errorf("source mutated: status %q, usd %v", src.GetString("status"), src.GetFloat("usd_rate"))
	}
}

func TestHandleQuoteRevisionCreate_RateFetchFails(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")

	handler := HandleQuoteRevisionCreate(app, noFetcher())

	req := httptest.NewRequest(http.MethodPost, "/quotes/"+quote.Id+"/revisions", nil)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: a failed rate fetch must not block the copy", rec.Code)
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	// The source's snapshot is carried over unchanged.
	rev, err := app.FindRecordById("quotes", body.ID)
	if err != nil {
		t.Fatalf("new revision not found: %v", err)
	}
	if rev.GetFloat("usd_rate") != 30 || rev.GetFloat("eur_rate") != 33 {
		t.Errorf("rates = %v / %v, want the source's 30 / 33",
			rev.GetFloat("usd_rate"), rev.GetFloat("eur_rate"))
	}
}

func TestHandleQuoteRevisionCreate_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleQuoteRevisionCreate(app, noFetcher())

	req := httptest.NewRequest(http.MethodPost, "/quotes/missing12345678/revisions", nil)
	req.SetPathValue("id", "missing12345678")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
