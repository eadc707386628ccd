package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"quotecraft/testhelpers"
)

type quoteViewResponse struct {
	Quote struct {
		ID      string `json:"id"`
		Version int    `json:"version"`
	} `json:"quote"`
	VATMode string `json:"vatMode"`
	Groups  []struct {
		Name    string `json:"name"`
		SellTRY float64 `json:"sellTRY"`
		Items   []struct {
			Name        string  `json:"name"`
			UnitSell    float64 `json:"unitSell"`
			LineSellTRY float64 `json:"lineSellTRY"`
		} `json:"items"`
	} `json:"groups"`
	Totals struct {
		SellExVAT  float64 `json:"sellExVAT"`
		VATAmount  float64 `json:"vatAmount"`
		SellIncVAT float64 `json:"sellIncVAT"`
	} `json:"totals"`
}

func TestHandleQuoteView(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")
	// 1000 list, 10% discount, 20% margin, USD at 30: sells at 1125/unit,
	// 67500 TRY for two.
	item := testhelpers.CreateTestQuoteItem(t, app, quote.Id, "Pompa", "USD", 2, 1000, 0.10, 0.20)
	item.Set("group_name", "Isıtma")
	if err := app.Save(item); err != nil {
		t.Fatalf("failed to set group: %v", err)
	}

	handler := HandleQuoteView(app, 0.20)

	req := httptest.NewRequest(http.MethodGet, "/quotes/"+quote.Id, nil)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var body quoteViewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	if body.VATMode != "exclusive" {
		t.Errorf("vatMode = %q, want exclusive default", body.VATMode)
	}
	if len(body.Groups) != 1 || body.Groups[0].Name != "Isıtma" {
		t.Fatalf("groups = %+v", body.Groups)
	}

	g := body.Groups[0]
	if math.Abs(g.SellTRY-67500) > 0.001 {
		t.Errorf("group sell = %v, want 67500", g.SellTRY)
	}
	if len(g.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(g.Items))
	}
	if math.Abs(g.Items[0].UnitSell-1125) > 0.001 {
		t.Errorf("unit sell = %v, want 1125", g.Items[0].UnitSell)
	}

	if math.Abs(body.Totals.SellExVAT-67500) > 0.001 {
		t.Errorf("SellExVAT = %v, want 67500", body.Totals.SellExVAT)
	}
	if math.Abs(body.Totals.VATAmount-13500) > 0.001 {
		t.Errorf("VATAmount = %v, want 13500", body.Totals.VATAmount)
	}
	if math.Abs(body.Totals.SellIncVAT-81000) > 0.001 {
		t.Errorf("SellIncVAT = %v, want 81000", body.Totals.SellIncVAT)
	}
}

func TestHandleQuoteView_InclusiveMode(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")
	testhelpers.CreateTestQuoteItem(t, app, quote.Id, "Boru", "TRY", 1, 120000, 0, 0)

	handler := HandleQuoteView(app, 0.20)

	req := httptest.NewRequest(http.MethodGet, "/quotes/"+quote.Id+"?vat_mode=inclusive", nil)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var body quoteViewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	// The 120000 item sum becomes the gross figure.
	if math.Abs(body.Totals.SellIncVAT-120000) > 0.001 {
		t.Errorf("SellIncVAT = %v, want 120000", body.Totals.SellIncVAT)
	}
	if math.Abs(body.Totals.VATAmount-20000) > 0.001 {
		t.Errorf("VATAmount = %v, want 20000", body.Totals.VATAmount)
	}
	if math.Abs(body.Totals.SellExVAT-100000) > 0.001 {
		t.Errorf("SellExVAT = %v, want 100000", body.Totals.SellExVAT)
	}
}

func TestHandleQuoteView_EmptyQuote(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Boş Teklif")

	handler := HandleQuoteView(app, 0.20)

	req := httptest.NewRequest(http.MethodGet, "/quotes/"+quote.Id, nil)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body quoteViewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(body.Groups) != 0 || body.Totals.SellExVAT != 0 {
		t.Errorf("empty quote priced as %+v", body)
	}
}

func TestHandleQuoteView_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleQuoteView(app, 0.20)

	req := httptest.NewRequest(http.MethodGet, "/quotes/missing12345678", nil)
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
