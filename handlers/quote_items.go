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

// getNextSortOrder queries the existing items for a quote and returns the next
// sort_order value.
func getNextSortOrder(app *pocketbase.PocketBase, quoteID string) int {
	existing, err := app.FindRecordsByFilter(
		"quote_items",
		"quote = {:quoteId}",
		"-sort_order",
		1,
		0,
		map[string]any{"quoteId": quoteID},
	)
	if err != nil || len(existing) == 0 {
		return 1
	}
	return existing[0].GetInt("sort_order") + 1
}

// parseItemForm reads the pricing fields common to item create and update.
func parseItemForm(e *core.RequestEvent) services.LineItem {
	formFloat := func(name string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(e.Request.FormValue(name)), 64)
		if err != nil {
			return 0
		}
		return v
	}

	return services.LineItem{
		Name:         strings.TrimSpace(e.Request.FormValue("name")),
		Brand:        strings.TrimSpace(e.Request.FormValue("brand")),
		Model:        strings.TrimSpace(e.Request.FormValue("model")),
		Unit:         strings.TrimSpace(e.Request.FormValue("unit")),
		Quantity:     formFloat("quantity"),
		ListPrice:    formFloat("list_price"),
		Currency:     services.Currency(strings.TrimSpace(e.Request.FormValue("currency"))),
		DiscountRate: formFloat("discount_rate"),
		ProfitMargin: formFloat("profit_margin"),
		GroupName:    strings.TrimSpace(e.Request.FormValue("group_name")),
	}
}

// saveItemRecord fills a quote_items record from a validated line item.
func saveItemRecord(record *core.Record, quoteID string, sortOrder int, item services.LineItem) {
	record.Set("quote", quoteID)
	record.Set("sort_order", sortOrder)
	record.Set("product", item.ProductID)
	record.Set("name", item.Name)
	record.Set("brand", item.Brand)
	record.Set("model", item.Model)
	record.Set("unit", item.Unit)
	record.Set("quantity", item.Quantity)
	record.Set("list_price", item.ListPrice)
	record.Set("currency", string(item.Currency))
	record.Set("discount_rate", item.DiscountRate)
	record.Set("profit_margin", item.ProfitMargin)
	record.Set("group_name", item.GroupName)
}

// HandleQuoteItemAdd handles POST /quotes/{id}/items.
//
// With ?product= the descriptive and pricing fields are copied from the
// catalog entry once; the item never re-syncs afterwards. Without it the item
// is freehand. Either way the item is priced through the engine before it is
// saved, so an invalid row is rejected here and can never contaminate a total.
func HandleQuoteItemAdd(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")

		quote, err := app.FindRecordById("quotes", quoteID)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		item := parseItemForm(e)

		if productID := strings.TrimSpace(e.Request.FormValue("product")); productID != "" {
			product, err := app.FindRecordById("products", productID)
			if err != nil {
				return apiError(e, http.StatusNotFound, "Product not found")
			}
			item.ProductID = product.Id
			item.Name = product.GetString("name")
			item.Brand = product.GetString("brand")
			item.Model = product.GetString("model")
			item.Unit = product.GetString("unit")
			item.ListPrice = product.GetFloat("list_price")
			item.Currency = services.Currency(product.GetString("currency"))
			item.DiscountRate = product.GetFloat("discount_rate")
			if item.Quantity == 0 {
				item.Quantity = 1
			}
		}

		if item.Name == "" {
			return e.JSON(http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"name": "Name is required"},
			})
		}

		if _, err := services.PriceLine(item, rateSetFromRecord(quote)); err != nil {
			return apiError(e, http.StatusUnprocessableEntity, err.Error())
		}

		col, err := app.FindCollectionByNameOrId("quote_items")
		if err != nil {
			log.Printf("quote_items: HandleQuoteItemAdd: could not find quote_items collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		saveItemRecord(record, quoteID, getNextSortOrder(app, quoteID), item)

		if err := app.Save(record); err != nil {
			log.Printf("quote_items: HandleQuoteItemAdd: could not save item: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if err := recalcQuoteTotal(app, quote); err != nil {
			log.Printf("quote_items: HandleQuoteItemAdd: could not refresh total for quote %s: %v", quoteID, err)
		}

		return e.JSON(http.StatusCreated, map[string]string{"id": record.Id})
	}
}

// HandleQuoteItemsFromRecipe handles POST /quotes/{id}/items/from-recipe.
// Copies a recipe's bill-of-materials into the quote, scaling each item's
// quantity by the optional multiplier (default 1).
func HandleQuoteItemsFromRecipe(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")

		quote, err := app.FindRecordById("quotes", quoteID)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		recipeID := strings.TrimSpace(e.Request.FormValue("recipe"))
		if recipeID == "" {
			return apiError(e, http.StatusBadRequest, "Recipe is required")
		}

		recipe, err := app.FindRecordById("recipes", recipeID)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Recipe not found")
		}

		multiplier := 1.0
		if v := strings.TrimSpace(e.Request.FormValue("multiplier")); v != "" {
			multiplier, err = strconv.ParseFloat(v, 64)
			if err != nil || multiplier <= 0 {
				return apiError(e, http.StatusBadRequest, "Multiplier must be a positive number")
			}
		}

		recipeItems, err := app.FindRecordsByFilter(
			"recipe_items",
			"recipe = {:recipeId}",
			"",
			0,
			0,
			map[string]any{"recipeId": recipeID},
		)
		if err != nil {
			log.Printf("quote_items: HandleQuoteItemsFromRecipe: could not query recipe items for %s: %v", recipeID, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if len(recipeItems) == 0 {
			return apiError(e, http.StatusBadRequest, "Recipe has no items")
		}

		groupName := strings.TrimSpace(e.Request.FormValue("group_name"))
		if groupName == "" {
			groupName = recipe.GetString("name")
		}

		rates := rateSetFromRecord(quote)

		// Resolve and validate everything before writing anything.
		items := make([]services.LineItem, 0, len(recipeItems))
		for _, ri := range recipeItems {
			product, err := app.FindRecordById("products", ri.GetString("product"))
			if err != nil {
				return apiError(e, http.StatusNotFound, "Recipe references a missing product")
			}

			item := services.LineItem{
				ProductID:    product.Id,
				Name:         product.GetString("name"),
				Brand:        product.GetString("brand"),
				Model:        product.GetString("model"),
				Unit:         product.GetString("unit"),
				Quantity:     ri.GetFloat("quantity") * multiplier,
				ListPrice:    product.GetFloat("list_price"),
				Currency:     services.Currency(product.GetString("currency")),
				DiscountRate: product.GetFloat("discount_rate"),
				ProfitMargin: 0,
				GroupName:    groupName,
			}
			if _, err := services.PriceLine(item, rates); err != nil {
				return apiError(e, http.StatusUnprocessableEntity, err.Error())
			}
			items = append(items, item)
		}

		col, err := app.FindCollectionByNameOrId("quote_items")
		if err != nil {
			log.Printf("quote_items: HandleQuoteItemsFromRecipe: could not find quote_items collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		nextSortOrder := getNextSortOrder(app, quoteID)
		err = app.RunInTransaction(func(txApp core.App) error {
			for i, item := range items {
				record := core.NewRecord(col)
				saveItemRecord(record, quoteID, nextSortOrder+i, item)
				if err := txApp.Save(record); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("quote_items: HandleQuoteItemsFromRecipe: could not save items: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if err := recalcQuoteTotal(app, quote); err != nil {
			log.Printf("quote_items: HandleQuoteItemsFromRecipe: could not refresh total for quote %s: %v", quoteID, err)
		}

		return e.JSON(http.StatusCreated, map[string]any{"added": len(items)})
	}
}

// HandleQuoteItemUpdate handles PATCH /quotes/{id}/items/{itemId}.
// Only provided fields change; the updated item must still price cleanly.
func HandleQuoteItemUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		itemID := e.Request.PathValue("itemId")

		quote, err := app.FindRecordById("quotes", quoteID)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		record, err := app.FindRecordById("quote_items", itemID)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Line item not found")
		}

		if record.GetString("quote") != quoteID {
			return apiError(e, http.StatusForbidden, "Line item does not belong to this quote")
		}

		if err := e.Request.ParseForm(); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid form data")
		}

		for _, field := range []string{"name", "brand", "model", "unit", "group_name"} {
			if v := strings.TrimSpace(e.Request.FormValue(field)); v != "" {
				record.Set(field, v)
			}
		}
		for _, field := range []string{"quantity", "list_price", "discount_rate", "profit_margin"} {
			if v := strings.TrimSpace(e.Request.FormValue(field)); v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					record.Set(field, f)
				}
			}
		}
		if v := strings.TrimSpace(e.Request.FormValue("currency")); v != "" {
			currency, err := services.ParseCurrency(v)
			if err != nil {
				return apiError(e, http.StatusBadRequest, "Unknown currency")
			}
			record.Set("currency", string(currency))
		}

		item, err := lineItemFromRecord(record)
		if err != nil {
			return apiError(e, http.StatusBadRequest, err.Error())
		}
		if _, err := services.PriceLine(item, rateSetFromRecord(quote)); err != nil {
			return apiError(e, http.StatusUnprocessableEntity, err.Error())
		}

		if err := app.Save(record); err != nil {
			log.Printf("quote_items: HandleQuoteItemUpdate: could not save item %s: %v", itemID, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if err := recalcQuoteTotal(app, quote); err != nil {
			log.Printf("quote_items: HandleQuoteItemUpdate: could not refresh total for quote %s: %v", quoteID, err)
		}

		return e.JSON(http.StatusOK, map[string]string{"id": record.Id})
	}
}

// HandleQuoteItemDelete handles DELETE /quotes/{id}/items/{itemId}.
func HandleQuoteItemDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		itemID := e.Request.PathValue("itemId")

		quote, err := app.FindRecordById("quotes", quoteID)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		record, err := app.FindRecordById("quote_items", itemID)
		if err != nil {
			return apiError(e, http.StatusNotFound, "Line item not found")
		}

		if record.GetString("quote") != quoteID {
			return apiError(e, http.StatusForbidden, "Line item does not belong to this quote")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("quote_items: HandleQuoteItemDelete: could not delete item %s: %v", itemID, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if err := recalcQuoteTotal(app, quote); err != nil {
			log.Printf("quote_items: HandleQuoteItemDelete: could not refresh total for quote %s: %v", quoteID, err)
		}

		return e.JSON(http.StatusOK, map[string]string{"deleted": itemID})
	}
}
