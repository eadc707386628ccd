package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

func setSupplierFields(record *core.Record, e *core.RequestEvent) error {
	for _, field := range []string{"name", "contact_name", "phone", "email"} {
		record.Set(field, strings.TrimSpace(e.Request.FormValue(field)))
	}

	if v := strings.TrimSpace(e.Request.FormValue("default_discount_rate")); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate < 0 || rate >= 1 {
			return errInvalidDiscount
		}
		record.Set("default_discount_rate", rate)
	}
	return nil
}

var errInvalidDiscount = &formError{"default_discount_rate", "Discount rate must be between 0 and 1"}

type formError struct {
	field   string
	message string
}

func (f *formError) Error() string { return f.message }

func supplierToJSON(r *core.Record) map[string]any {
	return map[string]any{
		"id":                  r.Id,
		"name":                r.GetString("name"),
		"contactName":         r.GetString("contact_name"),
		"phone":               r.GetString("phone"),
		"email":               r.GetString("email"),
		"defaultDiscountRate": r.GetFloat("default_discount_rate"),
	}
}

// HandleSupplierList handles GET /suppliers.
func HandleSupplierList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("suppliers", "id != ''", "name", 0, 0, nil)
		if err != nil {
			log.Printf("suppliers: HandleSupplierList: could not query suppliers: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		suppliers := make([]map[string]any, 0, len(records))
		for _, r := range records {
			suppliers = append(suppliers, supplierToJSON(r))
		}
		return e.JSON(http.StatusOK, map[string]any{"suppliers": suppliers})
	}
}

// HandleSupplierCreate handles POST /suppliers.
func HandleSupplierCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		if strings.TrimSpace(e.Request.FormValue("name")) == "" {
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"name": "Name is required"},
			})
		}

		col, err := app.FindCollectionByNameOrId("suppliers")
		if err != nil {
			log.Printf("suppliers: HandleSupplierCreate: could not find suppliers collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		if err := setSupplierFields(record, e); err != nil {
			fe := err.(*formError)
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{fe.field: fe.message},
			})
		}

		if err := app.Save(record); err != nil {
			log.Printf("suppliers: HandleSupplierCreate: could not save supplier: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusCreated, supplierToJSON(record))
	}
}

// HandleSupplierSave handles POST /suppliers/{id}/save.
func HandleSupplierSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("suppliers", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Supplier not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		if strings.TrimSpace(e.Request.FormValue("name")) == "" {
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"name": "Name is required"},
			})
		}

		if err := setSupplierFields(record, e); err != nil {
			fe := err.(*formError)
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{fe.field: fe.message},
			})
		}

		if err := app.Save(record); err != nil {
			log.Printf("suppliers: HandleSupplierSave: could not save supplier %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, supplierToJSON(record))
	}
}

// HandleSupplierDelete handles DELETE /suppliers/{id}. Refused while any
// product still references the supplier.
func HandleSupplierDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("suppliers", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Supplier not found")
		}

		products, err := app.FindRecordsByFilter(
			"products",
			"supplier = {:supplierId}",
			"",
			1,
			0,
			map[string]any{"supplierId": record.Id},
		)
		if err != nil {
			log.Printf("suppliers: HandleSupplierDelete: could not check products for %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if len(products) > 0 {
			return apiError(e, http.StatusConflict, "Supplier has products and cannot be deleted")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("suppliers: HandleSupplierDelete: could not delete supplier %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, map[string]string{"deleted": record.Id})
	}
}
