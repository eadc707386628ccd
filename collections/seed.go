package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type supplierDef struct {
	name         string
	contactName  string
	phone        string
	discountRate float64
}

type productDef struct {
	name         string
	brand        string
	model        string
	unit         string
	listPrice    float64
	currency     string
	discountRate float64
	supplier     string // supplier name, resolved to an id after creation
}

type customerDef struct {
	name    string
	company string
	phone   string
}

type recipeDef struct {
	name     string
	instType string
	items    []recipeItemDef
}

type recipeItemDef struct {
	product  string // product name
	quantity float64
}

// ── Seed data ────────────────────────────────────────────────────────────

var seedSuppliers = []supplierDef{
	{"Akın Isı Sistemleri", "Murat Akın", "0212 555 01 01", 0.25},
	{"Derin Pompa A.Ş.", "Elif Derin", "0216 555 02 02", 0.18},
	{"Vana & Armatür Ltd.", "Kemal Oruç", "0312 555 03 03", 0.30},
}

var seedProducts = []productDef{
	{"Duvar Tipi Yoğuşmalı Kazan 65kW", "Viessmann", "Vitodens 200-W", "adet", 4850, "EUR", 0.25, "Akın Isı Sistemleri"},
	{"Sirkülasyon Pompası DN40", "Grundfos", "MAGNA3 40-120", "adet", 1920, "EUR", 0.18, "Derin Pompa A.Ş."},
	{"Kelebek Vana DN65", "Vansan", "KV-65", "adet", 45, "USD", 0.30, "Vana & Armatür Ltd."},
	{"Çelik Boru DN50", "Borusan", "EN 10255", "m", 320, "TRY", 0.10, ""},
	{"Boru İzolasyonu 50mm", "Armacell", "AF/Armaflex", "m", 95, "TRY", 0.15, ""},
}

var seedCustomers = []customerDef{
	{"Yapı Merkezi İnşaat", "Yapı Merkezi A.Ş.", "0212 555 10 10"},
	{"Aksa Enerji", "Aksa Enerji Üretim A.Ş.", "0216 555 20 20"},
}

var seedInstallationTypes = []string{
	"Kazan Dairesi",
	"Mekanik Tesisat",
	"Yangın Tesisatı",
}

var seedRecipes = []recipeDef{
	{
		name:     "65kW Kazan Dairesi Paketi",
		instType: "Kazan Dairesi",
		items: []recipeItemDef{
			{"Duvar Tipi Yoğuşmalı Kazan 65kW", 1},
			{"Sirkülasyon Pompası DN40", 2},
			{"Kelebek Vana DN65", 4},
			{"Çelik Boru DN50", 24},
			{"Boru İzolasyonu 50mm", 24},
		},
	},
}

// Seed populates the reference collections with demo data. It is safe to call
// on every startup: if any suppliers already exist, seeding is skipped.
func Seed(app *pocketbase.PocketBase) error {
	existing, err := app.FindRecordsByFilter("suppliers", "id != ''", "", 1, 0, nil)
	if err == nil && len(existing) > 0 {
		return nil
	}

	supplierIDs := make(map[string]string)
	suppliersCol, err := app.FindCollectionByNameOrId("suppliers")
	if err != nil {
		return fmt.Errorf("seed: could not find suppliers collection: %w", err)
	}
	for _, def := range seedSuppliers {
		record := core.NewRecord(suppliersCol)
		record.Set("name", def.name)
		record.Set("contact_name", def.contactName)
		record.Set("phone", def.phone)
		record.Set("default_discount_rate", def.discountRate)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: save supplier %q: %w", def.name, err)
		}
		supplierIDs[def.name] = record.Id
	}

	productIDs := make(map[string]string)
	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return fmt.Errorf("seed: could not find products collection: %w", err)
	}
	for _, def := range seedProducts {
		record := core.NewRecord(productsCol)
		record.Set("name", def.name)
		record.Set("brand", def.brand)
		record.Set("model", def.model)
		record.Set("unit", def.unit)
		record.Set("list_price", def.listPrice)
		record.Set("currency", def.currency)
		record.Set("discount_rate", def.discountRate)
		record.Set("supplier", supplierIDs[def.supplier])
		record.Set("active", true)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: save product %q: %w", def.name, err)
		}
		productIDs[def.name] = record.Id
	}

	customersCol, err := app.FindCollectionByNameOrId("customers")
	if err != nil {
		return fmt.Errorf("seed: could not find customers collection: %w", err)
	}
	for _, def := range seedCustomers {
		record := core.NewRecord(customersCol)
		record.Set("name", def.name)
		record.Set("company", def.company)
		record.Set("phone", def.phone)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: save customer %q: %w", def.name, err)
		}
	}

	instTypeIDs := make(map[string]string)
	instTypesCol, err := app.FindCollectionByNameOrId("installation_types")
	if err != nil {
		return fmt.Errorf("seed: could not find installation_types collection: %w", err)
	}
	for _, name := range seedInstallationTypes {
		record := core.NewRecord(instTypesCol)
		record.Set("name", name)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: save installation type %q: %w", name, err)
		}
		instTypeIDs[name] = record.Id
	}

	recipesCol, err := app.FindCollectionByNameOrId("recipes")
	if err != nil {
		return fmt.Errorf("seed: could not find recipes collection: %w", err)
	}
	recipeItemsCol, err := app.FindCollectionByNameOrId("recipe_items")
	if err != nil {
		return fmt.Errorf("seed: could not find recipe_items collection: %w", err)
	}
	for _, def := range seedRecipes {
		recipe := core.NewRecord(recipesCol)
		recipe.Set("name", def.name)
		recipe.Set("installation_type", instTypeIDs[def.instType])
		if err := app.Save(recipe); err != nil {
			return fmt.Errorf("seed: save recipe %q: %w", def.name, err)
		}
		for _, item := range def.items {
			record := core.NewRecord(recipeItemsCol)
			record.Set("recipe", recipe.Id)
			record.Set("product", productIDs[item.product])
			record.Set("quantity", item.quantity)
			if err := app.Save(record); err != nil {
				return fmt.Errorf("seed: save recipe item %q: %w", item.product, err)
			}
		}
	}

	log.Println("seed: demo suppliers, products, customers and recipes created.")
	return nil
}
