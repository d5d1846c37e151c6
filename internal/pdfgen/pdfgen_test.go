package pdfgen

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-service/internal/model"
)

func testIssuer() Issuer {
	phone := "06 12 34 56 78"
	address := "10 rue des Écoles, 75005 Paris"
	return Issuer{
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     "marie.dupont@example.com",
		Phone:     &phone,
		Address:   &address,
	}
}

func testClient() *model.User {
	return &model.User{
		ID:        2,
		FirstName: "Alice",
		LastName:  "Martin",
		Email:     "alice@example.com",
		Role:      model.RoleClient,
	}
}

func testInvoice(courses int) *model.Invoice {
	date := time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)
	invoice := &model.Invoice{
		ID:            1,
		InvoiceNumber: "FAC-202503-0042",
		Status:        model.InvoiceDraft,
		IssueDate:     date,
		DueDate:       date.AddDate(0, 0, 30),
		Amount:        float64(courses) * 50,
		TaxRate:       0.20,
		TaxAmount:     float64(courses) * 10,
		TotalAmount:   float64(courses) * 60,
		Notes:         "Cours de soutien scolaire",
		Client:        testClient(),
	}
	for i := 0; i < courses; i++ {
		courseDate := date.AddDate(0, 0, -i)
		invoice.Courses = append(invoice.Courses, model.Course{
			ID:       uint(100 + i),
			Title:    fmt.Sprintf("Cours de mathématiques %d", i+1),
			Subject:  "Mathématiques",
			Date:     &courseDate,
			Duration: 60,
			Price:    50,
		})
	}
	return invoice
}

// pageCount counts page objects in the raw PDF. "/Type /Page" also matches
// the "/Type /Pages" tree node, which is subtracted.
func pageCount(b []byte) int {
	return bytes.Count(b, []byte("/Type /Page")) - bytes.Count(b, []byte("/Type /Pages"))
}

func TestRenderInvoice(t *testing.T) {
	buf, err := RenderInvoice(testInvoice(3), testIssuer())
	require.NoError(t, err)

	raw := buf.Bytes()
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
	assert.Equal(t, 1, pageCount(raw))
}

func TestRenderInvoiceBreaksLongTables(t *testing.T) {
	buf, err := RenderInvoice(testInvoice(40), testIssuer())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pageCount(buf.Bytes()), 2)
}

func TestRenderInvoiceNilCourseDate(t *testing.T) {
	invoice := testInvoice(1)
	invoice.Courses[0].Date = nil

	buf, err := RenderInvoice(invoice, testIssuer())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderInvoiceBareIssuer(t *testing.T) {
	buf, err := RenderInvoice(testInvoice(1), Issuer{
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     "marie.dupont@example.com",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderQuote(t *testing.T) {
	date := time.Date(2025, time.April, 3, 9, 0, 0, 0, time.UTC)
	quote := &model.Quote{
		ID:          1,
		QuoteNumber: "DEV-202504-0007",
		IssueDate:   date,
		ValidUntil:  date.AddDate(0, 0, 30),
		Amount:      600,
		TaxRate:     0.20,
		TaxAmount:   120,
		TotalAmount: 720,
		Description: strings.Repeat("Stage intensif de préparation au baccalauréat, dix séances de deux heures. ", 8),
		Client:      testClient(),
	}

	buf, err := RenderQuote(quote, testIssuer())
	require.NoError(t, err)

	raw := buf.Bytes()
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
	assert.Equal(t, 1, pageCount(raw))
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "Facture_FAC-202503-0042.pdf",
		InvoiceFilename(&model.Invoice{InvoiceNumber: "FAC-202503-0042"}))
	assert.Equal(t, "Devis_DEV-202504-0007.pdf",
		QuoteFilename(&model.Quote{QuoteNumber: "DEV-202504-0007"}))
}
