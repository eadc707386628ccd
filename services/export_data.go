package services

import "fmt"

// ExportRow is a single line of the quote export: either a group header
// (Header true, only GroupName set) or a priced item row. All settlement
// amounts are TRY.
type ExportRow struct {
	Header    bool
	GroupName string

	Index       string
	Name        string
	Brand       string
	Model       string
	Unit        string
	Qty         float64
	Currency    Currency
	UnitSell    float64 // native currency
	LineSellTRY float64
}

// ExportData holds everything the Excel and PDF renderers need for one quote.
type ExportData struct {
	CompanyName string
	Title       string
	Customer    string
	QuoteNo     string
	Version     int
	CreatedDate string

	Rows []ExportRow

	GroupSubtotals []ExportGroupSubtotal
	Totals         QuoteTotals
}

// ExportGroupSubtotal is the TRY sell subtotal for one presentation group.
type ExportGroupSubtotal struct {
	GroupName string
	SellTRY   float64
}

// BuildExportData flattens a priced quote into export rows with per-group
// numbering ("1", "1.1", ... within each group) and the VAT block.
func BuildExportData(quote Quote, items []LineItem, rates RateSet, vatRate float64, mode VATMode, companyName, customerName string) (ExportData, error) {
	groups, err := AggregateGroups(items, rates)
	if err != nil {
		return ExportData{}, err
	}
	totals, err := AggregateQuote(items, rates, vatRate, mode)
	if err != nil {
		return ExportData{}, err
	}

	data := ExportData{
		CompanyName: companyName,
		Title:       quote.Title,
		Customer:    customerName,
		QuoteNo:     quote.ID,
		Version:     quote.Version,
		CreatedDate: quote.CreatedAt.Format("02.01.2006"),
		Totals:      totals,
	}

	for gi, group := range groups {
		data.Rows = append(data.Rows, ExportRow{Header: true, GroupName: group.Name})
		for ii, item := range group.Items {
			price, err := PriceLine(item, rates)
			if err != nil {
				return ExportData{}, err
			}
			data.Rows = append(data.Rows, ExportRow{
				GroupName:   group.Name,
				Index:       itemIndex(gi+1, ii+1),
				Name:        item.Name,
				Brand:       item.Brand,
				Model:       item.Model,
				Unit:        item.Unit,
				Qty:         item.Quantity,
				Currency:    item.Currency,
				UnitSell:    price.UnitSell,
				LineSellTRY: price.LineSellSettlement,
			})
		}
		data.GroupSubtotals = append(data.GroupSubtotals, ExportGroupSubtotal{
			GroupName: group.Name,
			SellTRY:   group.Totals.SellSettlement,
		})
	}

	return data, nil
}

func itemIndex(group, item int) string {
	return fmt.Sprintf("%d.%d", group, item)
}
