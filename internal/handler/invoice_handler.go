package handler

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tutor-service/internal/billing"
	"tutor-service/internal/mailer"
	"tutor-service/internal/model"
	"tutor-service/internal/pdfgen"
	"tutor-service/pkg/database"
	"tutor-service/pkg/logger"
	"tutor-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceRequest defines the invoice creation payload: the client and the
// set of course ids to bill.
type InvoiceRequest struct {
	ClientID  uint   `json:"client_id"`
	CourseIDs []uint `json:"course_ids"`
}

// ListInvoices retrieves the professor's invoices, newest first. Invoices
// that lost all their courses are filtered out.
func ListInvoices(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBillingOperation("invoice", "list")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	query := database.GetDB().Where("professor_id = ?", professorID)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invoices []model.Invoice
	result := query.
		Preload("Client").
		Preload("Courses").
		Order("issue_date desc").
		Find(&invoices)
	if result.Error != nil {
		log.Error("Failed to retrieve invoices", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve invoices"})
	}

	valid := make([]model.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if len(inv.Courses) > 0 {
			valid = append(valid, inv)
		}
	}

	log.Info("Invoices retrieved", zap.Int("count", len(valid)))
	return c.JSON(http.StatusOK, valid)
}

// CreateInvoice bills a set of courses: every id must resolve to a course
// owned by the professor, assigned to the client, SCHEDULED or COMPLETED and
// not yet invoiced. The invoice insert and the course linking run in one
// transaction so a course can never be claimed by two invoices.
func CreateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBillingOperation("invoice", "create")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.ClientID == 0 || len(req.CourseIDs) == 0 {
		log.Warn("Missing client or courses",
			zap.Uint("client_id", req.ClientID),
			zap.Int("course_ids", len(req.CourseIDs)))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client and courses are required"})
	}

	now := time.Now()
	totals := billing.Totals{}
	invoice := model.Invoice{}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var courses []model.Course
		result := tx.
			Where("id IN ? AND professor_id = ? AND client_id = ? AND status IN ? AND invoice_id IS NULL",
				req.CourseIDs, professorID, req.ClientID,
				[]model.CourseStatus{model.CourseScheduled, model.CourseCompleted}).
			Find(&courses)
		if result.Error != nil {
			return result.Error
		}

		// All requested ids must satisfy every predicate; reported as one
		// aggregate failure, no partial linking.
		if len(courses) != len(req.CourseIDs) {
			return errInvalidSelection
		}

		totals = billing.ComputeTotals(billing.SumPrices(courses), billing.DefaultTaxRate)

		invoice = model.Invoice{
			InvoiceNumber: billing.InvoiceNumber(now),
			Status:        model.InvoiceDraft,
			IssueDate:     now,
			DueDate:       now.AddDate(0, 0, billing.InvoiceDueDays),
			Amount:        totals.Amount,
			TaxRate:       totals.TaxRate,
			TaxAmount:     totals.TaxAmount,
			TotalAmount:   totals.TotalAmount,
			Notes:         "Cours de soutien scolaire",
			ProfessorID:   professorID,
			ClientID:      req.ClientID,
		}
		if result := tx.Create(&invoice); result.Error != nil {
			return result.Error
		}

		return tx.Model(&model.Course{}).
			Where("id IN ?", req.CourseIDs).
			Update("invoice_id", invoice.ID).Error
	})
	if err != nil {
		if err == errInvalidSelection {
			log.Warn("Invalid course selection",
				zap.Uints("course_ids", req.CourseIDs),
				zap.Uint("client_id", req.ClientID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "some courses are not valid for invoicing"})
		}
		log.Error("Failed to create invoice", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create invoice"})
	}

	database.GetDB().Preload("Client").Preload("Courses").First(&invoice, invoice.ID)

	log.Info("Invoice created",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Float64("total_amount", invoice.TotalAmount),
		zap.Int("courses", len(invoice.Courses)))
	return c.JSON(http.StatusCreated, invoice)
}

// SendInvoice renders the invoice PDF, emails it to the client and then
// transitions the invoice DRAFT -> SENT. A mail failure aborts the
// transition and the invoice stays DRAFT.
func SendInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBillingOperation("invoice", "send")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid invoice ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invoice model.Invoice
	result := database.GetDB().
		Where("id = ? AND professor_id = ?", id, professorID).
		Preload("Client").
		Preload("Courses").
		First(&invoice)
	if result.Error != nil {
		log.Warn("Invoice not found", zap.Uint64("invoice_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	}

	if invoice.Status != model.InvoiceDraft {
		log.Warn("Invoice is not a draft",
			zap.Uint64("invoice_id", id),
			zap.String("status", string(invoice.Status)))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only draft invoices can be sent"})
	}

	professor, err := loadIssuer(professorID)
	if err != nil {
		log.Error("Failed to load professor", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send invoice"})
	}

	defer prometheus.TrackDocumentRender("invoice")(time.Now())
	pdf, err := pdfgen.RenderInvoice(&invoice, issuerOf(professor))
	if err != nil {
		log.Error("Failed to render invoice PDF", zap.Uint64("invoice_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render invoice"})
	}

	msg := &mailer.Message{
		ToName:    invoice.Client.FullName(),
		ToAddress: invoice.Client.Email,
		FromName:  professor.FullName(),
		Subject:   fmt.Sprintf("Facture %s", invoice.InvoiceNumber),
		HTML:      invoiceEmailBody(&invoice, professor),
		Attachments: []mailer.Attachment{{
			Filename:    pdfgen.InvoiceFilename(&invoice),
			ContentType: "application/pdf",
			Content:     pdf.Bytes(),
		}},
	}
	if err := mailer.Default().Send(c.Request().Context(), msg); err != nil {
		// Send failed: the invoice must stay DRAFT
		log.Error("Failed to email invoice", zap.Uint64("invoice_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send invoice"})
	}
	prometheus.RecordDocumentSent("invoice")

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&invoice).Update("status", model.InvoiceSent); result.Error != nil {
		log.Error("Failed to mark invoice as sent", zap.Uint64("invoice_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update invoice status"})
	}

	database.GetDB().Preload("Client").Preload("Courses").First(&invoice, invoice.ID)

	log.Info("Invoice sent",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("to", invoice.Client.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "invoice sent successfully",
		"invoice": invoice,
	})
}

// InvoicePDF serves the rendered invoice, either as a file download or, with
// ?preview=true, as an embeddable base64 data URL.
func InvoicePDF(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBillingOperation("invoice", "pdf")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid invoice ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invoice model.Invoice
	result := database.GetDB().
		Where("id = ? AND professor_id = ?", id, professorID).
		Preload("Client").
		Preload("Courses").
		First(&invoice)
	if result.Error != nil {
		log.Warn("Invoice not found", zap.Uint64("invoice_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	}

	professor, err := loadIssuer(professorID)
	if err != nil {
		log.Error("Failed to load professor", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render invoice"})
	}

	defer prometheus.TrackDocumentRender("invoice")(time.Now())
	pdf, err := pdfgen.RenderInvoice(&invoice, issuerOf(professor))
	if err != nil {
		log.Error("Failed to render invoice PDF", zap.Uint64("invoice_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render invoice"})
	}

	if c.QueryParam("preview") == "true" {
		return c.JSON(http.StatusOK, echo.Map{
			"data": "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf.Bytes()),
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, pdfgen.InvoiceFilename(&invoice)))
	return c.Blob(http.StatusOK, "application/pdf", pdf.Bytes())
}

// errInvalidSelection marks a CreateInvoice batch whose ids did not all
// satisfy the billing predicates.
var errInvalidSelection = fmt.Errorf("invalid course selection")

// loadIssuer fetches the professor acting as document issuer.
func loadIssuer(professorID uint) (*model.User, error) {
	var professor model.User
	if result := database.GetDB().First(&professor, professorID); result.Error != nil {
		return nil, result.Error
	}
	return &professor, nil
}

func issuerOf(u *model.User) pdfgen.Issuer {
	return pdfgen.Issuer{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
	}
}

func invoiceEmailBody(invoice *model.Invoice, professor *model.User) string {
	notes := ""
	if invoice.Notes != "" {
		notes = fmt.Sprintf(`<p style="color: #6b7280; font-style: italic;">%s</p>`, invoice.Notes)
	}
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		  <h2 style="color: #2563eb;">Nouvelle Facture</h2>

		  <p>Bonjour %s,</p>

		  <p>Veuillez trouver ci-joint la facture <strong>%s</strong> pour un montant de <strong>%.2f &euro;</strong>.</p>

		  <div style="background-color: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
		    <p style="margin: 5px 0;"><strong>Montant HT:</strong> %.2f &euro;</p>
		    <p style="margin: 5px 0;"><strong>TVA (%.0f%%):</strong> %.2f &euro;</p>
		    <p style="margin: 5px 0;"><strong>Montant Total TTC:</strong> %.2f &euro;</p>
		  </div>

		  <p style="margin: 20px 0;"><strong>Date d'&eacute;ch&eacute;ance:</strong> %s</p>

		  %s

		  <p>Cordialement,</p>
		  <p><strong>%s</strong></p>
		</div>`,
		invoice.Client.FirstName,
		invoice.InvoiceNumber,
		invoice.TotalAmount,
		invoice.Amount,
		invoice.TaxRate*100,
		invoice.TaxAmount,
		invoice.TotalAmount,
		frenchLongDate(invoice.DueDate),
		notes,
		professor.FullName(),
	)
}

var frenchMonthNames = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

func frenchLongDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonthNames[t.Month()-1], t.Year())
}
