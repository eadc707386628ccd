package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures all application collections exist:
// the CRM reference data (customers, suppliers, products, personnel,
// installation types, recipes) and the quote collections.
func Setup(app *pocketbase.PocketBase) {
	customers := ensureCollection(app, "customers", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "company", Required: false})
		c.Fields.Add(&core.EmailField{Name: "email", Required: false})
		c.Fields.Add(&core.TextField{Name: "phone", Required: false})
		c.Fields.Add(&core.TextField{Name: "address", Required: false})
		c.Fields.Add(&core.TextField{Name: "notes", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	suppliers := ensureCollection(app, "suppliers", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "contact_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "phone", Required: false})
		c.Fields.Add(&core.EmailField{Name: "email", Required: false})
		c.Fields.Add(&core.NumberField{Name: "default_discount_rate", Required: false})
	})

	products := ensureCollection(app, "products", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "brand", Required: false})
		c.Fields.Add(&core.TextField{Name: "model", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.NumberField{Name: "list_price", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "currency",
			Required:  true,
			Values:    []string{"TRY", "USD", "EUR"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "discount_rate", Required: false})
		c.Fields.Add(&core.RelationField{
			Name:         "supplier",
			Required:     false,
			CollectionId: suppliers.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.BoolField{Name: "active"})
	})

	personnel := ensureCollection(app, "personnel", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "role", Required: false})
		c.Fields.Add(&core.TextField{Name: "phone", Required: false})
	})

	installationTypes := ensureCollection(app, "installation_types", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
	})

	recipes := ensureCollection(app, "recipes", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "installation_type",
			Required:     false,
			CollectionId: installationTypes.Id,
			MaxSelect:    1,
		})
	})

	ensureCollection(app, "recipe_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "recipe",
			Required:      true,
			CollectionId:  recipes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "product",
			Required:     true,
			CollectionId: products.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true})
	})

	quotes := ensureCollection(app, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:         "customer",
			Required:     true,
			CollectionId: customers.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.TextField{Name: "root_id", Required: false})
		c.Fields.Add(&core.NumberField{Name: "version", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "sent", "approved", "rejected"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "version_note", Required: false})
		c.Fields.Add(&core.NumberField{Name: "usd_rate", Required: false})
		c.Fields.Add(&core.NumberField{Name: "eur_rate", Required: false})
		c.Fields.Add(&core.RelationField{
			Name:         "assignee",
			Required:     false,
			CollectionId: personnel.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.NumberField{Name: "total_amount", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "quote_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "product",
			Required:     false,
			CollectionId: products.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "brand", Required: false})
		c.Fields.Add(&core.TextField{Name: "model", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: false})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true})
		c.Fields.Add(&core.NumberField{Name: "list_price", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "currency",
			Required:  true,
			Values:    []string{"TRY", "USD", "EUR"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "discount_rate", Required: false})
		c.Fields.Add(&core.NumberField{Name: "profit_margin", Required: false})
		c.Fields.Add(&core.TextField{Name: "group_name", Required: false})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
