package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"quotecraft/services"
	"quotecraft/testhelpers"
)

func TestHandleQuoteRatesUpdate_Manual(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")
	testhelpers.CreateTestQuoteItem(t, app, quote.Id, "Pompa", "USD", 1, 100, 0, 0)

	handler := HandleQuoteRatesUpdate(app, noFetcher())

	form := url.Values{}
	form.Set("usd_rate", "32")
	form.Set("eur_rate", "35")

	req := postForm("/quotes/"+quote.Id+"/rates", form)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	saved, _ := app.FindRecordById("quotes", quote.Id)
	if saved.GetFloat("usd_rate") != 32 || saved.GetFloat("eur_rate") != 35 {
		t.Errorf("rates = %v / %v, want 32 / 35", saved.GetFloat("usd_rate"), saved.GetFloat("eur_rate"))
	}
	// The cached total reprices with the new snapshot: 100 USD at 32.
	if math.Abs(saved.GetFloat("total_amount")-3200) > 0.001 {
		t.Errorf("cached total = %v, want 3200", saved.GetFloat("total_amount"))
	}
}

func TestHandleQuoteRatesUpdate_Refresh(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"USD": 31.5, "EUR": 34.2}`))
	}))
	defer srv.Close()

	handler := HandleQuoteRatesUpdate(app, services.NewRateFetcher(srv.URL, 2*time.Second))

	form := url.Values{}
	form.Set("refresh", "true")

	req := postForm("/quotes/"+quote.Id+"/rates", form)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	saved, _ := app.FindRecordById("quotes", quote.Id)
	if math.Abs(saved.GetFloat("usd_rate")-31.5) > 0.001 || math.Abs(saved.GetFloat("eur_rate")-34.2) > 0.001 {
		t.Errorf("rates = %v / %v, want 31.5 / 34.2", saved.GetFloat("usd_rate"), saved.GetFloat("eur_rate"))
	}
}

func TestHandleQuoteRatesUpdate_RefreshFailureKeepsRates(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")

	handler := HandleQuoteRatesUpdate(app, noFetcher())

	form := url.Values{}
	form.Set("refresh", "true")

	req := postForm("/quotes/"+quote.Id+"/rates", form)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	// The stored snapshot is untouched.
	saved, _ := app.FindRecordById("quotes", quote.Id)
	if saved.GetFloat("usd_rate") != 30 || saved.GetFloat("eur_rate") != 33 {
		t.Errorf("rates mutated on failed fetch: %v / %v", saved.GetFloat("usd_rate"), saved.GetFloat("eur_rate"))
	}
}

func TestHandleQuoteRatesUpdate_IncompleteManualRates(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")

	handler := HandleQuoteRatesUpdate(app, noFetcher())

	form := url.Values{}
	form.Set("usd_rate", "32")
	// eur_rate missing

	req := postForm("/quotes/"+quote.Id+"/rates", form)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCurrentRates(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"USD": 30.5, "EUR": 33.1}`))
	}))
	defer srv.Close()

	handler := HandleCurrentRates(services.NewRateFetcher(srv.URL, 2*time.Second))

	req := httptest.NewRequest(http.MethodGet, "/rates/current", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if math.Abs(body["usd"]-30.5) > 0.001 || math.Abs(body["eur"]-33.1) > 0.001 {
		t.Errorf("rates = %v", body)
	}
}
