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
)

// QuoteRequest defines the quote creation payload. TaxRate and ValidityDays
// fall back to defaults when zero.
type QuoteRequest struct {
	ClientID     uint    `json:"client_id"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	TaxRate      float64 `json:"tax_rate"`
	ValidityDays int     `json:"validity_days"`
	Notes        string  `json:"notes"`
}

// ListQuotes retrieves the professor's quotes, newest first.
func ListQuotes(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBillingOperation("quote", "list")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var quotes []model.Quote
	result := database.GetDB().
		Where("professor_id = ?", professorID).
		Preload("Client").
		Order("issue_date desc").
		Find(&quotes)
	if result.Error != nil {
		log.Error("Failed to retrieve quotes", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve quotes"})
	}

	log.Info("Quotes retrieved", zap.Int("count", len(quotes)))
	return c.JSON(http.StatusOK, quotes)
}

// CreateQuote creates a quote for an arbitrary described service. Quotes are
// not tied to courses.
func CreateQuote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBillingOperation("quote", "create")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.ClientID == 0 || req.Description == "" || req.Amount <= 0 {
		log.Warn("Missing quote fields", zap.Uint("client_id", req.ClientID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client, description and amount are required"})
	}

	taxRate := req.TaxRate
	if taxRate == 0 {
		taxRate = billing.DefaultTaxRate
	}
	validityDays := req.ValidityDays
	if validityDays == 0 {
		validityDays = billing.QuoteValidityDays
	}

	now := time.Now()
	totals := billing.ComputeTotals(req.Amount, taxRate)
	quote := model.Quote{
		QuoteNumber: billing.QuoteNumber(now),
		Description: req.Description,
		IssueDate:   now,
		ValidUntil:  now.AddDate(0, 0, validityDays),
		Amount:      totals.Amount,
		TaxRate:     totals.TaxRate,
		TaxAmount:   totals.TaxAmount,
		TotalAmount: totals.TotalAmount,
		Notes:       req.Notes,
		ProfessorID: professorID,
		ClientID:    req.ClientID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&quote); result.Error != nil {
		log.Error("Failed to create quote", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create quote"})
	}

	database.GetDB().Preload("Client").First(&quote, quote.ID)

	log.Info("Quote created",
		zap.Uint("quote_id", quote.ID),
		zap.String("quote_number", quote.QuoteNumber),
		zap.Float64("total_amount", quote.TotalAmount))
	return c.JSON(http.StatusCreated, quote)
}

// SendQuote renders the quote PDF and emails it to the client. Quotes have
// no draft/sent lifecycle, so resending is allowed.
func SendQuote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBillingOperation("quote", "send")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid quote ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var quote model.Quote
	result := database.GetDB().
		Where("id = ? AND professor_id = ?", id, professorID).
		Preload("Client").
		First(&quote)
	if result.Error != nil {
		log.Warn("Quote not found", zap.Uint64("quote_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quote not found"})
	}

	professor, err := loadIssuer(professorID)
	if err != nil {
		log.Error("Failed to load professor", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send quote"})
	}

	defer prometheus.TrackDocumentRender("quote")(time.Now())
	pdf, err := pdfgen.RenderQuote(&quote, issuerOf(professor))
	if err != nil {
		log.Error("Failed to render quote PDF", zap.Uint64("quote_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render quote"})
	}

	msg := &mailer.Message{
		ToName:    quote.Client.FullName(),
		ToAddress: quote.Client.Email,
		FromName:  professor.FullName(),
		Subject:   fmt.Sprintf("Devis %s", quote.QuoteNumber),
		HTML:      quoteEmailBody(&quote, professor),
		Attachments: []mailer.Attachment{{
			Filename:    pdfgen.QuoteFilename(&quote),
			ContentType: "application/pdf",
			Content:     pdf.Bytes(),
		}},
	}
	if err := mailer.Default().Send(c.Request().Context(), msg); err != nil {
		log.Error("Failed to email quote", zap.Uint64("quote_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send quote"})
	}
	prometheus.RecordDocumentSent("quote")

	log.Info("Quote sent",
		zap.Uint("quote_id", quote.ID),
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("to", quote.Client.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "quote sent successfully",
		"quote":   quote,
	})
}

// QuotePDF serves the rendered quote as a download or, with ?preview=true,
// as a base64 data URL.
func QuotePDF(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBillingOperation("quote", "pdf")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid quote ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var quote model.Quote
	result := database.GetDB().
		Where("id = ? AND professor_id = ?", id, professorID).
		Preload("Client").
		First(&quote)
	if result.Error != nil {
		log.Warn("Quote not found", zap.Uint64("quote_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quote not found"})
	}

	professor, err := loadIssuer(professorID)
	if err != nil {
		log.Error("Failed to load professor", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render quote"})
	}

	defer prometheus.TrackDocumentRender("quote")(time.Now())
	pdf, err := pdfgen.RenderQuote(&quote, issuerOf(professor))
	if err != nil {
		log.Error("Failed to render quote PDF", zap.Uint64("quote_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render quote"})
	}

	if c.QueryParam("preview") == "true" {
		return c.JSON(http.StatusOK, echo.Map{
			"data": "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf.Bytes()),
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, pdfgen.QuoteFilename(&quote)))
	return c.Blob(http.StatusOK, "application/pdf", pdf.Bytes())
}

func quoteEmailBody(quote *model.Quote, professor *model.User) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		  <h2 style="color: #2563eb;">Nouveau Devis</h2>

		  <p>Bonjour %s,</p>

		  <p>Veuillez trouver ci-joint le devis <strong>%s</strong> pour un montant de <strong>%.2f &euro;</strong>.</p>

		  <div style="background-color: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
		    <p style="margin: 5px 0;"><strong>Prestation:</strong> %s</p>
		    <p style="margin: 5px 0;"><strong>Montant HT:</strong> %.2f &euro;</p>
		    <p style="margin: 5px 0;"><strong>TVA (%.0f%%):</strong> %.2f &euro;</p>
		    <p style="margin: 5px 0;"><strong>Montant Total TTC:</strong> %.2f &euro;</p>
		  </div>

		  <p style="margin: 20px 0;"><strong>Valable jusqu'au:</strong> %s</p>

		  <p>Cordialement,</p>
		  <p><strong>%s</strong></p>
		</div>`,
		quote.Client.FirstName,
		quote.QuoteNumber,
		quote.TotalAmount,
		quote.Description,
		quote.Amount,
		quote.TaxRate*100,
		quote.TaxAmount,
		quote.TotalAmount,
		frenchLongDate(quote.ValidUntil),
		professor.FullName(),
	)
}
