package handler

import (
	"fmt"
	"net/http"
	"time"

	"tutor-service/internal/export"
	"tutor-service/internal/model"
	"tutor-service/pkg/database"
	"tutor-service/pkg/logger"
	"tutor-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ExportInvoices streams the professor's full invoice book as an Excel
// workbook.
func ExportInvoices(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBillingOperation("invoice", "export")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invoices []model.Invoice
	result := database.GetDB().
		Where("professor_id = ?", professorID).
		Preload("Client").
		Order("issue_date desc").
		Find(&invoices)
	if result.Error != nil {
		log.Error("Failed to retrieve invoices", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve invoices"})
	}

	workbook, err := export.InvoicesWorkbook(invoices)
	if err != nil {
		log.Error("Failed to build workbook", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export invoices"})
	}
	defer workbook.Close()

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		log.Error("Failed to serialize workbook", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export invoices"})
	}

	filename := fmt.Sprintf("Factures_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))

	log.Info("Invoices exported", zap.Int("count", len(invoices)))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
