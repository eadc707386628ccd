package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

func setCustomerFields(record *core.Record, e *core.RequestEvent) {
	for _, field := range []string{"name", "company", "email", "phone", "address", "notes"} {
		record.Set(field, strings.TrimSpace(e.Request.FormValue(field)))
	}
}

func customerToJSON(r *core.Record) map[string]any {
	return map[string]any{
		"id":      r.Id,
		"name":    r.GetString("name"),
		"company": r.GetString("company"),
		"email":   r.GetString("email"),
		"phone":   r.GetString("phone"),
		"address": r.GetString("address"),
		"notes":   r.GetString("notes"),
	}
}

// HandleCustomerList handles GET /customers.
func HandleCustomerList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("customers", "id != ''", "name", 0, 0, nil)
		if err != nil {
			log.Printf("customers: HandleCustomerList: could not query customers: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		customers := make([]map[string]any, 0, len(records))
		for _, r := range records {
			customers = append(customers, customerToJSON(r))
		}
		return e.JSON(http.StatusOK, map[string]any{"customers": customers})
	}
}

// HandleCustomerCreate handles POST /customers.
func HandleCustomerCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		if strings.TrimSpace(e.Request.FormValue("name")) == "" {
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"name": "Name is required"},
			})
		}

		col, err := app.FindCollectionByNameOrId("customers")
		if err != nil {
			log.Printf("customers: HandleCustomerCreate: could not find customers collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		setCustomerFields(record, e)

		if err := app.Save(record); err != nil {
			log.Printf("customers: HandleCustomerCreate: could not save customer: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusCreated, customerToJSON(record))
	}
}

// HandleCustomerSave handles POST /customers/{id}/save.
func HandleCustomerSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("customers", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Customer not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		if strings.TrimSpace(e.Request.FormValue("name")) == "" {
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"name": "Name is required"},
			})
		}

		setCustomerFields(record, e)

		if err := app.Save(record); err != nil {
			log.Printf("customers: HandleCustomerSave: could not save customer %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, customerToJSON(record))
	}
}

// HandleCustomerDelete handles DELETE /customers/{id}. Refused while any
// quote still references the customer.
func HandleCustomerDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("customers", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Customer not found")
		}

		quotes, err := app.FindRecordsByFilter(
			"quotes",
			"customer = {:customerId}",
			"",
			1,
			0,
			map[string]any{"customerId": record.Id},
		)
		if err != nil {
			log.Printf("customers: HandleCustomerDelete: could not check quotes for %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if len(quotes) > 0 {
			return apiError(e, http.StatusConflict, "Customer has quotes and cannot be deleted")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("customers: HandleCustomerDelete: could not delete customer %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, map[string]string{"deleted": record.Id})
	}
}
