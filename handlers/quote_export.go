package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotecraft/services"
)

// buildQuoteExportData loads a quote with its items and assembles the export
// document the generators render.
func buildQuoteExportData(app *pocketbase.PocketBase, quoteID string, vatRate float64, mode services.VATMode, companyName string) (services.ExportData, error) {
	record, err := app.FindRecordById("quotes", quoteID)
	if err != nil {
		return services.ExportData{}, fmt.Errorf("quote not found: %w", err)
	}
	quote := quoteFromRecord(record)

	customerName := ""
	if customer, err := app.FindRecordById("customers", quote.CustomerID); err == nil {
		customerName = customer.GetString("name")
	}

	items, err := loadLineItems(app, quoteID)
	if err != nil {
		return services.ExportData{}, err
	}

	return services.BuildExportData(quote, items, quote.Rates, vatRate, mode, companyName, customerName)
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// HandleQuoteExportExcel handles GET /quotes/{id}/export/excel.
func HandleQuoteExportExcel(app *pocketbase.PocketBase, vatRate float64, companyName string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")

		mode := services.VATExclusive
		if v := e.Request.URL.Query().Get("vat_mode"); v != "" {
			var err error
			mode, err = services.ParseVATMode(v)
			if err != nil {
				return apiError(e, http.StatusBadRequest, "Unknown vat_mode")
			}
		}

		data, err := buildQuoteExportData(app, quoteID, vatRate, mode, companyName)
		if err != nil {
			log.Printf("quote_export: HandleQuoteExportExcel: %v", err)
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		xlsxBytes, err := services.GenerateExcel(data)
		if err != nil {
			log.Printf("quote_export: HandleQuoteExportExcel: failed to generate: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("Quote_%s_v%d.xlsx", sanitizeFilename(data.Title), data.Version)

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleQuoteExportPDF handles GET /quotes/{id}/export/pdf.
func HandleQuoteExportPDF(app *pocketbase.PocketBase, vatRate float64, companyName string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")

		mode := services.VATExclusive
		if v := e.Request.URL.Query().Get("vat_mode"); v != "" {
			var err error
			mode, err = services.ParseVATMode(v)
			if err != nil {
				return apiError(e, http.StatusBadRequest, "Unknown vat_mode")
			}
		}

		data, err := buildQuoteExportData(app, quoteID, vatRate, mode, companyName)
		if err != nil {
			log.Printf("quote_export: HandleQuoteExportPDF: %v", err)
			return apiError(e, http.StatusNotFound, "Quote not found")
		}

		pdfBytes, err := services.GeneratePDF(data)
		if err != nil {
			log.Printf("quote_export: HandleQuoteExportPDF: failed to generate: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("Quote_%s_v%d.pdf", sanitizeFilename(data.Title), data.Version)

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
