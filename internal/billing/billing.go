// Package billing holds the invoice/quote arithmetic, document numbering and
// the per-client course aggregation. Everything here is a pure computation
// over in-memory values; persistence stays in the handlers.
package billing

import (
	"fmt"
	"math/rand"
	"time"

	"tutor-service/internal/model"
)

const (
	// DefaultTaxRate is the fixed VAT rate applied to invoices. Quotes may
	// override it per document.
	DefaultTaxRate = 0.20

	// InvoiceDueDays is the payment window granted on every invoice.
	InvoiceDueDays = 30

	// QuoteValidityDays is the default validity window for quotes.
	QuoteValidityDays = 30
)

// Totals carries the tax arithmetic of a billing document.
type Totals struct {
	Amount      float64
	TaxRate     float64
	TaxAmount   float64
	TotalAmount float64
}

// ComputeTotals derives the tax amount and tax-inclusive total from a
// tax-exclusive amount. Plain float64 arithmetic, matching the stored
// values; no currency rounding is applied.
func ComputeTotals(amount, taxRate float64) Totals {
	tax := amount * taxRate
	return Totals{
		Amount:      amount,
		TaxRate:     taxRate,
		TaxAmount:   tax,
		TotalAmount: amount + tax,
	}
}

// SumPrices returns the tax-exclusive sum of the given course prices.
func SumPrices(courses []model.Course) float64 {
	var sum float64
	for _, course := range courses {
		sum += course.Price
	}
	return sum
}

// InvoiceNumber generates an invoice number of the form FAC-YYYYMM-XXXX
// where XXXX is a random 4-digit suffix. The suffix is not checked for
// uniqueness; a collision within the same month is possible.
func InvoiceNumber(t time.Time) string {
	return documentNumber("FAC", t)
}

// QuoteNumber generates a quote number of the form DEV-YYYYMM-XXXX with the
// same non-uniqueness caveat as InvoiceNumber.
func QuoteNumber(t time.Time) string {
	return documentNumber("DEV", t)
}

func documentNumber(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%04d%02d-%04d", prefix, t.Year(), int(t.Month()), rand.Intn(10000))
}

// StartOfMonth returns midnight on the first day of t's calendar month, in
// t's location. Used as the lower bound of the monthly revenue window.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
