package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"quotecraft/services"
	"quotecraft/testhelpers"
)

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// noFetcher has no configured source, so every fetch fails fast.
func noFetcher() *services.RateFetcher {
	return services.NewRateFetcher("", time.Second)
}

func TestHandleQuoteCreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")

	handler := HandleQuoteCreate(app, noFetcher())

	form := url.Values{}
	form.Set("title", "Kazan Dairesi")
	form.Set("customer", customer.Id)
	form.Set("usd_rate", "30")
	form.Set("eur_rate", "33")

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, postForm("/quotes", form), rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		ID     string `json:"id"`
		RootID string `json:"rootId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	// The first revision roots its own cluster.
	if body.RootID != body.ID {
		t.Errorf("rootId = %q, want %q", body.RootID, body.ID)
	}

	record, err := app.FindRecordById("quotes", body.ID)
	if err != nil {
		t.Fatalf("created quote not found: %v", err)
	}
	if record.GetInt("version") != 1 {
		t.Errorf("version = %d, want 1", record.GetInt("version"))
	}
	if record.GetString("status") != "draft" {
		t.Errorf("status = %q, want draft", record.GetString("status"))
	}
	if record.GetFloat("usd_rate") != 30 || record.GetFloat("eur_rate") != 33 {
		t.Errorf("rate snapshot = %v / %v, want 30 / 33",
			record.GetFloat("usd_rate"), record.GetFloat("eur_rate"))
	}
}

func TestHandleQuoteCreate_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")

	handler := HandleQuoteCreate(app, noFetcher())

	tests := []struct {
		name      string
		form      url.Values
		wantField string
	}{
		{
			name:      "missing title",
			form:      url.Values{"customer": {customer.Id}},
			wantField: "title",
		},
		{
			name:      "missing customer",
			form:      url.Values{"title": {"Kazan Dairesi"}},
			wantField: "customer",
		},
		{
			name:      "unknown customer",
			form:      url.Values{"title": {"Kazan Dairesi"}, "customer": {"nope123456789012"}},
			wantField: "customer",
		},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e := newTestRequestEvent(app, postForm("/quotes", tt.form), rec)

		if err := handler(e); err != nil {
			t.Fatalf("%s: handler returned error: %v", tt.name, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, rec.Code)
			continue
		}

		var body struct {
			Errors map[string]string `json:"errors"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: invalid JSON response: %v", tt.name, err)
		}
		if body.Errors[tt.wantField] == "" {
			t.Errorf("%s: expected error for field %q, got %v", tt.name, tt.wantField, body.Errors)
		}
	}
}

func TestHandleQuoteSave(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")

	handler := HandleQuoteSave(app)

	form := url.Values{}
	form.Set("title", "Kazan Dairesi Rev")
	form.Set("status", "sent")
	form.Set("version_note", "pompa değişti")

	req := postForm("/quotes/"+quote.Id+"/save", form)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	saved, err := app.FindRecordById("quotes", quote.Id)
	if err != nil {
		t.Fatalf("quote not found: %v", err)
	}
	if saved.GetString("title") != "Kazan Dairesi Rev" {
		t.Errorf("title = %q", saved.GetString("title"))
	}
	if saved.GetString("status") != "sent" {
		t.Errorf("status = %q, want sent", saved.GetString("status"))
	}
	if saved.GetString("version_note") != "pompa değişti" {
		t.Errorf("version_note = %q", saved.GetString("version_note"))
	}
}

func TestHandleQuoteSave_UnknownStatus(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Acme İnşaat")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, "Kazan Dairesi")

	handler := HandleQuoteSave(app)

	form := url.Values{}
	form.Set("status", "archived")

	req := postForm("/quotes/"+quote.Id+"/save", form)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	saved, _ := app.FindRecordById("quotes", quote.Id)
	if saved.GetString("status") != "draft" {
		t.Errorf("status changed to %q despite rejection", saved.GetString("status"))
	}
}
