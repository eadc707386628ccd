package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/services"
)

func productToJSON(r *core.Record) map[string]any {
	return map[string]any{
		"id":           r.Id,
		"name":         r.GetString("name"),
		"brand":        r.GetString("brand"),
		"model":        r.GetString("model"),
		"unit":         r.GetString("unit"),
		"listPrice":    r.GetFloat("list_price"),
		"currency":     r.GetString("currency"),
		"discountRate": r.GetFloat("discount_rate"),
		"supplier":     r.GetString("supplier"),
		"active":       r.GetBool("active"),
	}
}

// validateProductForm collects field errors the way the quote form does, so
// the client can render them next to the inputs.
func validateProductForm(e *core.RequestEvent) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(e.Request.FormValue("name")) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(e.Request.FormValue("unit")) == "" {
		errs["unit"] = "Unit is required"
	}
	if v := strings.TrimSpace(e.Request.FormValue("currency")); v != "" {
		if _, err := services.ParseCurrency(v); err != nil {
			errs["currency"] = "Unknown currency"
		}
	}
	if v := strings.TrimSpace(e.Request.FormValue("list_price")); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err != nil || price < 0 {
			errs["list_price"] = "List price must be zero or positive"
		}
	}
	if v := strings.TrimSpace(e.Request.FormValue("discount_rate")); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err != nil || rate < 0 || rate >= 1 {
			errs["discount_rate"] = "Discount rate must be between 0 and 1"
		}
	}
	return errs
}

func setProductFields(record *core.Record, e *core.RequestEvent) {
	for _, field := range []string{"name", "brand", "model", "unit", "currency", "supplier"} {
		record.Set(field, strings.TrimSpace(e.Request.FormValue(field)))
	}
	for _, field := range []string{"list_price", "discount_rate"} {
		if f, err := strconv.ParseFloat(strings.TrimSpace(e.Request.FormValue(field)), 64); err == nil {
			record.Set(field, f)
		}
	}
	record.Set("active", e.Request.FormValue("active") != "false")
}

// HandleProductList handles GET /products. ?q= filters by name, brand or
// model; ?all=true includes deactivated catalog entries.
func HandleProductList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		filter := "active = true"
		params := map[string]any{}

		if e.Request.URL.Query().Get("all") == "true" {
			filter = "id != ''"
		}
		if q := strings.TrimSpace(e.Request.URL.Query().Get("q")); q != "" {
			filter += " && (name ~ {:q} || brand ~ {:q} || model ~ {:q})"
			params["q"] = q
		}

		records, err := app.FindRecordsByFilter("products", filter, "name", 0, 0, params)
		if err != nil {
			log.Printf("products: HandleProductList: could not query products: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		products := make([]map[string]any, 0, len(records))
		for _, r := range records {
			products = append(products, productToJSON(r))
		}
		return e.JSON(http.StatusOK, map[string]any{"products": products})
	}
}

// HandleProductCreate handles POST /products.
func HandleProductCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		if errs := validateProductForm(e); len(errs) > 0 {
			return e.JSON(http.StatusBadRequest, map[string]any{"errors": errs})
		}

		if supplierID := strings.TrimSpace(e.Request.FormValue("supplier")); supplierID != "" {
			if _, err := app.FindRecordById("suppliers", supplierID); err != nil {
				return apiError(e, http.StatusNotFound, "Supplier not found")
			}
		}

		col, err := app.FindCollectionByNameOrId("products")
		if err != nil {
			log.Printf("products: HandleProductCreate: could not find products collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		setProductFields(record, e)
		if record.GetString("currency") == "" {
			record.Set("currency", string(services.TRY))
		}

		if err := app.Save(record); err != nil {
			log.Printf("products: HandleProductCreate: could not save product: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusCreated, productToJSON(record))
	}
}

// HandleProductSave handles POST /products/{id}/save. Quote items priced from
// this product keep their copied values; only future additions see the change.
func HandleProductSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("products", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Product not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		if errs := validateProductForm(e); len(errs) > 0 {
			return e.JSON(http.StatusBadRequest, map[string]any{"errors": errs})
		}

		setProductFields(record, e)

		if err := app.Save(record); err != nil {
			log.Printf("products: HandleProductSave: could not save product %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, productToJSON(record))
	}
}

// HandleProductDelete handles DELETE /products/{id}. A product referenced by
// quote items is deactivated instead of removed so existing quotes keep their
// provenance link.
func HandleProductDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("products", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Product not found")
		}

		items, err := app.FindRecordsByFilter(
			"quote_items",
			"product = {:productId}",
			"",
			1,
			0,
			map[string]any{"productId": record.Id},
		)
		if err != nil {
			log.Printf("products: HandleProductDelete: could not check quote items for %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if len(items) > 0 {
			record.Set("active", false)
			if err := app.Save(record); err != nil {
				log.Printf("products: HandleProductDelete: could not deactivate product %s: %v", record.Id, err)
				return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
			}
			return e.JSON(http.StatusOK, map[string]any{"deactivated": record.Id})
		}

		if err := app.Delete(record); err != nil {
			log.Printf("products: HandleProductDelete: could not delete product %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, map[string]any{"deleted": record.Id})
	}
}
