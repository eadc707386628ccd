package main

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/collections"
	"quotecraft/config"
	"quotecraft/handlers"
	"quotecraft/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: invalid configuration: %v", err)
	}

	app := pocketbase.New()
	fetcher := services.NewRateFetcher(cfg.RateSourceURL, cfg.RateFetchTimeout)

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateQuoteRoots(app); err != nil {
			log.Printf("Warning: quote root migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Dashboard & rates ────────────────────────────────────
		se.Router.GET("/dashboard", handlers.HandleDashboard(app))
		se.Router.GET("/rates/current", handlers.HandleCurrentRates(fetcher))

		// ── Customer CRUD ────────────────────────────────────────
		se.Router.GET("/customers", handlers.HandleCustomerList(app))
		se.Router.POST("/customers", handlers.HandleCustomerCreate(app))
		se.Router.POST("/customers/{id}/save", handlers.HandleCustomerSave(app))
		se.Router.DELETE("/customers/{id}", handlers.HandleCustomerDelete(app))

		// ── Supplier CRUD ────────────────────────────────────────
		se.Router.GET("/suppliers", handlers.HandleSupplierList(app))
		se.Router.POST("/suppliers", handlers.HandleSupplierCreate(app))
		se.Router.POST("/suppliers/{id}/save", handlers.HandleSupplierSave(app))
		se.Router.DELETE("/suppliers/{id}", handlers.HandleSupplierDelete(app))

		// ── Product catalog ──────────────────────────────────────
		se.Router.GET("/products", handlers.HandleProductList(app))
		se.Router.POST("/products", handlers.HandleProductCreate(app))
		se.Router.POST("/products/{id}/save", handlers.HandleProductSave(app))
		se.Router.DELETE("/products/{id}", handlers.HandleProductDelete(app))

		// ── Quote line items (before /quotes/{id} routes) ────────
		se.Router.POST("/quotes/{id}/items/from-recipe", handlers.HandleQuoteItemsFromRecipe(app))
		se.Router.POST("/quotes/{id}/items", handlers.HandleQuoteItemAdd(app))
		se.Router.PATCH("/quotes/{id}/items/{itemId}", handlers.HandleQuoteItemUpdate(app))
		se.Router.DELETE("/quotes/{id}/items/{itemId}", handlers.HandleQuoteItemDelete(app))

		// ── Quote revisions & rates ──────────────────────────────
		se.Router.POST("/quotes/{id}/revisions", handlers.HandleQuoteRevisionCreate(app, fetcher))
		se.Router.POST("/quotes/{id}/rates", handlers.HandleQuoteRatesUpdate(app, fetcher))

		// ── Quote export ─────────────────────────────────────────
		se.Router.GET("/quotes/{id}/export/excel", handlers.HandleQuoteExportExcel(app, cfg.VATRate, cfg.CompanyName))
		se.Router.GET("/quotes/{id}/export/pdf", handlers.HandleQuoteExportPDF(app, cfg.VATRate, cfg.CompanyName))

		// ── Quote CRUD (after specific /quotes/{id}/* routes) ────
		se.Router.GET("/quotes", handlers.HandleQuoteList(app))
		se.Router.POST("/quotes", handlers.HandleQuoteCreate(app, fetcher))
		se.Router.GET("/quotes/{id}", handlers.HandleQuoteView(app, cfg.VATRate))
		se.Router.POST("/quotes/{id}/save", handlers.HandleQuoteSave(app))
		se.Router.DELETE("/quotes/{id}", handlers.HandleQuoteDelete(app))

		// Redirect home to the clustered quote list
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/quotes")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
