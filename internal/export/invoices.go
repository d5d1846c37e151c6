// Package export builds spreadsheet exports of billing data.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"tutor-service/internal/model"
)

const invoiceSheet = "Factures"

// InvoicesWorkbook builds an xlsx workbook listing the given invoices, one
// row per invoice, with a bold filtered header row.
func InvoicesWorkbook(invoices []model.Invoice) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}

	headers := []string{
		"Numéro", "Client", "Date d'émission", "Échéance", "Statut",
		"Montant HT", "TVA", "Total TTC",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(invoiceSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, inv := range invoices {
		row := i + 2
		client := ""
		if inv.Client != nil {
			client = inv.Client.FirstName + " " + inv.Client.LastName
		}
		values := []interface{}{
			inv.InvoiceNumber,
			client,
			inv.IssueDate.Format("02/01/2006"),
			inv.DueDate.Format("02/01/2006"),
			string(inv.Status),
			inv.Amount,
			inv.TaxAmount,
			inv.TotalAmount,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(invoiceSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := applyHeaderFormatting(f, invoiceSheet, len(headers)); err != nil {
		return nil, err
	}
	return f, nil
}

// applyHeaderFormatting bolds the header row and adds an auto-filter over
// the data columns.
func applyHeaderFormatting(f *excelize.File, sheet string, cols int) error {
	styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(cols, 1)
	if err := f.SetCellStyle(sheet, "A1", last, styleID); err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s", last), nil); err != nil {
		return err
	}
	return nil
}
