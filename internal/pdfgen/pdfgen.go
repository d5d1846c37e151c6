// Package pdfgen lays out invoices and quotes as printable A4 documents.
// The same render call feeds both the download and the preview sinks.
package pdfgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"tutor-service/internal/model"
)

const (
	margin = 20.0
	// Vertical position past which the next table row starts a new page.
	pageBreakY = 250.0
)

// Issuer is the professor contact block printed on the document.
type Issuer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Address   *string
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// longDate formats t as a long-form French date, e.g. "12 mars 2025".
func longDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

func shortDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func euros(v float64) string {
	return fmt.Sprintf("%.2f €", v)
}

type doc struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	pageWidth float64
	pageH     float64
	y         float64
}

func newDoc(title string) *doc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	w, h := pdf.GetPageSize()
	return &doc{
		pdf:       pdf,
		tr:        pdf.UnicodeTranslatorFromDescriptor(""),
		pageWidth: w,
		pageH:     h,
		y:         margin,
	}
}

func (d *doc) text(x float64, s string) {
	d.pdf.Text(x, d.y, d.tr(s))
}

func (d *doc) textAt(x, y float64, s string) {
	d.pdf.Text(x, y, d.tr(s))
}

// textRight draws s with its right edge at x.
func (d *doc) textRight(x float64, s string) {
	t := d.tr(s)
	d.pdf.Text(x-d.pdf.GetStringWidth(t), d.y, t)
}

func (d *doc) separator(r, g, b int) {
	d.pdf.SetDrawColor(r, g, b)
	d.pdf.Line(margin, d.y, d.pageWidth-margin, d.y)
}

// header draws the kind label, the document number, the issuer and client
// blocks and the date block shared by both document kinds.
func (d *doc) header(kind, number string, issuer Issuer, client *model.User, dates [2][2]string) {
	pdf := d.pdf

	pdf.SetFont("Helvetica", "B", 28)
	d.text(margin, kind)

	pdf.SetFont("Helvetica", "", 12)
	d.y += 10
	d.text(margin, "N° "+number)

	d.y += 15

	// Issuer block, left
	pdf.SetFont("Helvetica", "B", 10)
	d.text(margin, "Émetteur:")
	pdf.SetFont("Helvetica", "", 10)
	d.y += 5
	d.text(margin, issuer.FirstName+" "+issuer.LastName)
	d.y += 5
	if issuer.Address != nil && *issuer.Address != "" {
		d.text(margin, *issuer.Address)
		d.y += 5
	}
	d.text(margin, issuer.Email)
	d.y += 5
	if issuer.Phone != nil && *issuer.Phone != "" {
		d.text(margin, *issuer.Phone)
	}

	// Client block, right
	clientX := d.pageWidth - margin - 70
	clientY := 45.0
	pdf.SetFont("Helvetica", "B", 10)
	d.textAt(clientX, clientY, "Client:")
	pdf.SetFont("Helvetica", "", 10)
	clientY += 5
	d.textAt(clientX, clientY, client.FirstName+" "+client.LastName)
	clientY += 5
	d.textAt(clientX, clientY, client.Email)

	if clientY > d.y {
		d.y = clientY
	}
	d.y += 15

	// Date block
	for _, row := range dates {
		pdf.SetFont("Helvetica", "B", 10)
		d.text(margin, row[0])
		pdf.SetFont("Helvetica", "", 10)
		d.text(margin+40, row[1])
		d.y += 7
	}
	d.y += 8

	d.separator(200, 200, 200)
	d.y += 10
}

// totals draws the HT / TVA / TTC block with the filled total row.
func (d *doc) totals(amount, taxRate, taxAmount, totalAmount float64) {
	pdf := d.pdf
	totalsX := d.pageWidth - margin - 60
	rightX := d.pageWidth - margin - 2

	d.separator(200, 200, 200)
	d.y += 10

	pdf.SetFont("Helvetica", "", 10)
	d.text(totalsX, "Montant HT:")
	d.textRight(rightX, euros(amount))
	d.y += 7

	d.text(totalsX, fmt.Sprintf("TVA (%.0f%%):", taxRate*100))
	d.textRight(rightX, euros(taxAmount))
	d.y += 10

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(totalsX-5, d.y-6, 75, 10, "F")
	d.text(totalsX, "Total TTC:")
	d.textRight(rightX, euros(totalAmount))
	d.y += 15
}

func (d *doc) wrapped(s string, fontSize, lineHeight float64, breakAt float64) {
	d.pdf.SetFont("Helvetica", "", fontSize)
	for _, line := range d.pdf.SplitText(d.tr(s), d.pageWidth-2*margin) {
		if d.y > breakAt {
			d.pdf.AddPage()
			d.y = margin
		}
		d.pdf.Text(margin, d.y, line)
		d.y += lineHeight
	}
}

func (d *doc) footer(reminder string) {
	d.pdf.SetFont("Helvetica", "", 8)
	d.pdf.SetTextColor(100, 100, 100)
	t := d.tr(reminder)
	d.pdf.Text((d.pageWidth-d.pdf.GetStringWidth(t))/2, d.pageH-20, t)
	d.pdf.SetTextColor(0, 0, 0)
}

func (d *doc) output() (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return &buf, nil
}

// RenderInvoice lays out an invoice and its course table. The invoice must
// have Client and Courses loaded. The table breaks to a new page when the
// near-bottom margin is reached; the header is not repeated on continuation
// pages.
func RenderInvoice(invoice *model.Invoice, issuer Issuer) (*bytes.Buffer, error) {
	d := newDoc("Facture " + invoice.InvoiceNumber)
	pdf := d.pdf

	d.header("FACTURE", invoice.InvoiceNumber, issuer, invoice.Client, [2][2]string{
		{"Date d'émission:", longDate(invoice.IssueDate)},
		{"Date d'échéance:", longDate(invoice.DueDate)},
	})

	// Table title
	pdf.SetFont("Helvetica", "B", 12)
	d.text(margin, "Détail des prestations")
	d.y += 8

	// Table header row
	colDescription := margin + 2
	colDate := d.pageWidth - margin - 80
	colDuration := d.pageWidth - margin - 45
	colAmount := d.pageWidth - margin - 2

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(margin, d.y-5, d.pageWidth-2*margin, 8, "F")
	d.text(colDescription, "Description")
	d.text(colDate, "Date")
	d.text(colDuration, "Durée")
	d.textRight(colAmount, "Montant")
	d.y += 10

	pdf.SetFont("Helvetica", "", 9)
	for i, course := range invoice.Courses {
		if d.y > pageBreakY {
			pdf.AddPage()
			d.y = margin
		}

		d.text(colDescription, course.Title)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(100, 100, 100)
		d.textAt(colDescription, d.y+4, course.Subject)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		if course.Date != nil {
			d.text(colDate, shortDate(*course.Date))
		}
		d.text(colDuration, fmt.Sprintf("%d min", course.Duration))
		d.textRight(colAmount, euros(course.Price))

		d.y += 10

		if i < len(invoice.Courses)-1 {
			pdf.SetDrawColor(230, 230, 230)
			pdf.Line(margin, d.y-3, d.pageWidth-margin, d.y-3)
		}
	}
	d.y += 5

	d.totals(invoice.Amount, invoice.TaxRate, invoice.TaxAmount, invoice.TotalAmount)

	if invoice.Notes != "" {
		pdf.SetFont("Helvetica", "", 9)
		d.text(margin, "Notes:")
		d.y += 5
		d.text(margin, invoice.Notes)
		d.y += 10
	}

	d.footer("Merci de régler cette facture avant la date d'échéance.")

	return d.output()
}

// RenderQuote lays out a quote with its free-text description word-wrapped
// to the page width. The quote must have Client loaded.
func RenderQuote(quote *model.Quote, issuer Issuer) (*bytes.Buffer, error) {
	d := newDoc("Devis " + quote.QuoteNumber)
	pdf := d.pdf

	d.header("DEVIS", quote.QuoteNumber, issuer, quote.Client, [2][2]string{
		{"Date d'émission:", longDate(quote.IssueDate)},
		{"Valide jusqu'au:", longDate(quote.ValidUntil)},
	})

	pdf.SetFont("Helvetica", "B", 12)
	d.text(margin, "Description")
	d.y += 8

	d.wrapped(quote.Description, 10, 6, pageBreakY)
	d.y += 10

	d.totals(quote.Amount, quote.TaxRate, quote.TaxAmount, quote.TotalAmount)

	if quote.Notes != "" {
		pdf.SetFont("Helvetica", "", 9)
		d.text(margin, "Notes:")
		d.y += 5
		d.wrapped(quote.Notes, 9, 5, pageBreakY+20)
		d.y += 10
	}

	d.footer("Ce devis est valable jusqu'à la date indiquée ci-dessus.")

	return d.output()
}

// InvoiceFilename is the attachment/download name for an invoice document.
func InvoiceFilename(invoice *model.Invoice) string {
	return fmt.Sprintf("Facture_%s.pdf", invoice.InvoiceNumber)
}

// QuoteFilename is the attachment/download name for a quote document.
func QuoteFilename(quote *model.Quote) string {
	return fmt.Sprintf("Devis_%s.pdf", quote.QuoteNumber)
}
