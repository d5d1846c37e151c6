package handler

import (
	"net/http"
	"strconv"
	"time"

	"tutor-service/internal/billing"
	"tutor-service/internal/model"
	"tutor-service/pkg/database"
	"tutor-service/pkg/logger"
	"tutor-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListClients returns the per-client aggregates over the professor's full
// course list. The fold is recomputed on every call, nothing is cached.
func ListClients(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCourseOperation("list_clients")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var courses []model.Course
	result := database.GetDB().
		Where("professor_id = ?", professorID).
		Preload("Client").
		Order("date desc").
		Find(&courses)
	if result.Error != nil {
		log.Error("Failed to retrieve courses", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve clients"})
	}

	clients := billing.SummarizeClients(courses, time.Now())

	log.Info("Clients summarized",
		zap.Int("clients", len(clients)),
		zap.Int("courses", len(courses)))
	return c.JSON(http.StatusOK, clients)
}

// ClientPatch holds the contact fields a professor may update on a client.
type ClientPatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// UpdateClient patches a client's contact fields; allowed only when the
// professor shares at least one course with the client
func UpdateClient(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCourseOperation("update_client")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid client ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client ID"})
	}

	var patch ClientPatch
	if err := c.Bind(&patch); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	// The professor must share at least one course with this client
	defer prometheus.TrackDBOperation("query")(time.Now())
	var shared int64
	database.GetDB().Model(&model.Course{}).
		Where("professor_id = ? AND client_id = ?", professorID, id).
		Count(&shared)
	if shared == 0 {
		log.Warn("No shared course with client", zap.Uint64("client_id", id))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "this client has no courses with you"})
	}

	var client model.User
	if result := database.GetDB().First(&client, id); result.Error != nil {
		log.Warn("Client not found", zap.Uint64("client_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}

	if patch.FirstName != nil && *patch.FirstName != "" {
		client.FirstName = *patch.FirstName
	}
	if patch.LastName != nil && *patch.LastName != "" {
		client.LastName = *patch.LastName
	}
	if patch.Email != nil && *patch.Email != "" {
		client.Email = *patch.Email
	}
	if patch.Phone != nil {
		// An explicit empty phone clears the column
		client.Phone = emptyToNil(patch.Phone)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&client); result.Error != nil {
		log.Error("Failed to update client", zap.Uint64("client_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update client"})
	}

	log.Info("Client updated", zap.Uint("client_id", client.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"id":         client.ID,
		"first_name": client.FirstName,
		"last_name":  client.LastName,
		"email":      client.Email,
		"phone":      client.Phone,
	})
}
