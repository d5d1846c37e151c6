package handler

import (
	"net/http"
	"time"

	"tutor-service/internal/billing"
	"tutor-service/internal/model"
	"tutor-service/pkg/database"
	"tutor-service/pkg/logger"
	"tutor-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetStats returns the professor's dashboard counters. Monthly revenue sums
// invoices marked PAID since the start of the current month.
func GetStats(c echo.Context) error {
	log := logger.FromContext(c)

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	db := database.GetDB()
	defer prometheus.TrackDBOperation("query")(time.Now())

	var clientsCount int64
	if result := db.Model(&model.Course{}).
		Where("professor_id = ?", professorID).
		Distinct("client_id").
		Count(&clientsCount); result.Error != nil {
		log.Error("Failed to count clients", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve stats"})
	}

	var upcomingCourses int64
	if result := db.Model(&model.Course{}).
		Where("professor_id = ? AND status = ? AND date >= ?",
			professorID, model.CourseScheduled, time.Now()).
		Count(&upcomingCourses); result.Error != nil {
		log.Error("Failed to count upcoming courses", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve stats"})
	}

	var pendingInvoices int64
	if result := db.Model(&model.Invoice{}).
		Where("professor_id = ? AND status IN ?",
			professorID, []model.InvoiceStatus{model.InvoiceSent, model.InvoiceOverdue}).
		Count(&pendingInvoices); result.Error != nil {
		log.Error("Failed to count pending invoices", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve stats"})
	}

	var monthlyRevenue float64
	if result := db.Model(&model.Invoice{}).
		Where("professor_id = ? AND status = ? AND updated_at >= ?",
			professorID, model.InvoicePaid, billing.StartOfMonth(time.Now())).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&monthlyRevenue); result.Error != nil {
		log.Error("Failed to sum monthly revenue", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve stats"})
	}

	log.Info("Stats retrieved",
		zap.Int64("clients", clientsCount),
		zap.Int64("upcoming_courses", upcomingCourses),
		zap.Int64("pending_invoices", pendingInvoices),
		zap.Float64("monthly_revenue", monthlyRevenue))
	return c.JSON(http.StatusOK, echo.Map{
		"clients_count":    clientsCount,
		"upcoming_courses": upcomingCourses,
		"pending_invoices": pendingInvoices,
		"monthly_revenue":  monthlyRevenue,
	})
}
