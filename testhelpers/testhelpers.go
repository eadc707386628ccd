// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestCustomer creates a customer record with the given name and returns it.
func CreateTestCustomer(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("customers")
	if err != nil {
		t.Fatalf("failed to find customers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("company", name+" A.Ş.")
	record.Set("phone", "0212 555 00 00")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test customer: %v", err)
	}

	return record
}

// CreateTestSupplier creates a supplier record with the given name and returns it.
func CreateTestSupplier(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("suppliers")
	if err != nil {
		t.Fatalf("failed to find suppliers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("contact_name", "Test Contact")
	record.Set("default_discount_rate", 0.2)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test supplier: %v", err)
	}

	return record
}

// CreateTestProduct creates a catalog product record and returns it.
func CreateTestProduct(t *testing.T, app *pocketbase.PocketBase, name, currency string, listPrice, discountRate float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		t.Fatalf("failed to find products collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("brand", "TestBrand")
	record.Set("model", "TB-1")
	record.Set("unit", "adet")
	record.Set("list_price", listPrice)
	record.Set("currency", currency)
	record.Set("discount_rate", discountRate)
	record.Set("active", true)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test product: %v", err)
	}

	return record
}

// CreateTestQuote creates a quote record for the given customer. The record is
// its own first revision: root_id equals the record id and version is 1.
func CreateTestQuote(t *testing.T, app *pocketbase.PocketBase, customerID, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		t.Fatalf("failed to find quotes collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("customer", customerID)
	record.Set("title", title)
	record.Set("version", 1)
	record.Set("status", "draft")
	record.Set("usd_rate", 30.0)
	record.Set("eur_rate", 33.0)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote: %v", err)
	}

	record.Set("root_id", record.Id)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to backfill test quote root_id: %v", err)
	}

	return record
}

// CreateTestRevision creates an additional revision in an existing cluster.
func CreateTestRevision(t *testing.T, app *pocketbase.PocketBase, customerID, rootID string, version int, status string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		t.Fatalf("failed to find quotes collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("customer", customerID)
	record.Set("title", "Revision")
	record.Set("root_id", rootID)
	record.Set("version", version)
	record.Set("status", status)
	record.Set("usd_rate", 30.0)
	record.Set("eur_rate", 33.0)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test revision: %v", err)
	}

	return record
}

// CreateTestQuoteItem creates a line item on the given quote.
func CreateTestQuoteItem(t *testing.T, app *pocketbase.PocketBase, quoteID, name, currency string, qty, listPrice, discountRate, profitMargin float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quote_items")
	if err != nil {
		t.Fatalf("failed to find quote_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("quote", quoteID)
	record.Set("sort_order", 1)
	record.Set("name", name)
	record.Set("unit", "adet")
	record.Set("quantity", qty)
	record.Set("list_price", listPrice)
	record.Set("currency", currency)
	record.Set("discount_rate", discountRate)
	record.Set("profit_margin", profitMargin)
	record.Set("group_name", "")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quote item: %v", err)
	}

	return record
}

// CreateTestRecipe creates a recipe with one item per given product.
func CreateTestRecipe(t *testing.T, app *pocketbase.PocketBase, name string, productIDs []string, qty float64) *core.Record {
	t.Helper()

	recipesCol, err := app.FindCollectionByNameOrId("recipes")
	if err != nil {
		t.Fatalf("failed to find recipes collection: %v", err)
	}

	recipe := core.NewRecord(recipesCol)
	recipe.Set("name", name)
	if err := app.Save(recipe); err != nil {
		t.Fatalf("failed to save test recipe: %v", err)
	}

	itemsCol, err := app.FindCollectionByNameOrId("recipe_items")
	if err != nil {
		t.Fatalf("failed to find recipe_items collection: %v", err)
	}
	for _, productID := range productIDs {
		record := core.NewRecord(itemsCol)
		record.Set("recipe", recipe.Id)
		record.Set("product", productID)
		record.Set("quantity", qty)
		if err := app.Save(record); err != nil {
			t.Fatalf("failed to save test recipe item: %v", err)
		}
	}

	return recipe
}
