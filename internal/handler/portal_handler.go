package handler

import (
	"net/http"
	"time"

	"tutor-service/internal/model"
	"tutor-service/pkg/database"
	"tutor-service/pkg/logger"
	"tutor-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListClientCourses retrieves the authenticated client's own courses. With
// ?upcoming=true only future scheduled courses are returned, soonest first;
// otherwise the full history, newest first.
func ListClientCourses(c echo.Context) error {
	log := logger.FromContext(c)

	clientID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	query := database.GetDB().Where("client_id = ?", clientID)
	if c.QueryParam("upcoming") == "true" {
		query = query.
			Where("status = ? AND date >= ?", model.CourseScheduled, time.Now()).
			Order("date asc")
	} else {
		query = query.Order("date desc")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var courses []model.Course
	result := query.Preload("Professor").Find(&courses)
	if result.Error != nil {
		log.Error("Failed to retrieve courses", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve courses"})
	}

	log.Info("Client courses retrieved", zap.Int("count", len(courses)))
	return c.JSON(http.StatusOK, courses)
}

// ListClientInvoices retrieves invoices addressed to the authenticated
// client. ?status=pending narrows to SENT and OVERDUE invoices ordered by
// due date so the most urgent come first.
func ListClientInvoices(c echo.Context) error {
	log := logger.FromContext(c)

	clientID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	query := database.GetDB().Where("client_id = ?", clientID)
	if c.QueryParam("status") == "pending" {
		query = query.
			Where("status IN ?", []model.InvoiceStatus{model.InvoiceSent, model.InvoiceOverdue}).
			Order("due_date asc")
	} else {
		query = query.Order("issue_date desc")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invoices []model.Invoice
	result := query.Preload("Professor").Find(&invoices)
	if result.Error != nil {
		log.Error("Failed to retrieve invoices", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve invoices"})
	}

	log.Info("Client invoices retrieved", zap.Int("count", len(invoices)))
	return c.JSON(http.StatusOK, invoices)
}
