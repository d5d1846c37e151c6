package handler

import (
	"net/http"
	"strconv"
	"time"

	"tutor-service/internal/model"
	"tutor-service/pkg/database"
	"tutor-service/pkg/logger"
	"tutor-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CourseRequest defines the course creation payload
type CourseRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Subject     string     `json:"subject" validate:"required"`
	Date        *time.Time `json:"date"`
	Duration    int        `json:"duration"`
	Price       float64    `json:"price"`
	Location    string     `json:"location"`
	Notes       string     `json:"notes"`
	ClientID    uint       `json:"client_id" validate:"required"`
}

// CoursePatch is a pointer-field patch: nil fields are left untouched and a
// present field replaces the stored value wholesale.
type CoursePatch struct {
	Title    *string             `json:"title"`
	Date     *time.Time          `json:"date"`
	Duration *int                `json:"duration"`
	Price    *float64            `json:"price"`
	Status   *model.CourseStatus `json:"status"`
	Location *string             `json:"location"`
	Notes    *string             `json:"notes"`
}

// ListCourses retrieves the professor's courses with optional filters:
// upcoming, uninvoiced, client_id and limit
func ListCourses(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCourseOperation("list")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	query := database.GetDB().Where("professor_id = ?", professorID)

	if c.QueryParam("upcoming") == "true" {
		query = query.Where("date >= ? AND status = ?", time.Now(), model.CourseScheduled)
	}
	if c.QueryParam("uninvoiced") == "true" {
		query = query.Where("status IN ? AND invoice_id IS NULL",
			[]model.CourseStatus{model.CourseScheduled, model.CourseCompleted})
	}
	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var courses []model.Course
	result := query.
		Preload("Client").
		Order("date asc").
		Limit(limit).
		Find(&courses)
	if result.Error != nil {
		log.Error("Failed to retrieve courses", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve courses"})
	}

	log.Info("Courses retrieved", zap.Int("count", len(courses)))
	return c.JSON(http.StatusOK, courses)
}

// CreateCourse creates a new SCHEDULED, uninvoiced course
func CreateCourse(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCourseOperation("create")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req CourseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Course validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "invalid course data",
			"details": fieldErrors(err),
		})
	}

	course := model.Course{
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		Date:        req.Date,
		Duration:    req.Duration,
		Price:       req.Price,
		Status:      model.CourseScheduled,
		Location:    req.Location,
		Notes:       req.Notes,
		ProfessorID: professorID,
		ClientID:    req.ClientID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&course); result.Error != nil {
		log.Error("Failed to create course",
			zap.String("title", req.Title),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create course"})
	}

	database.GetDB().Preload("Client").First(&course, course.ID)

	log.Info("Course created",
		zap.Uint("course_id", course.ID),
		zap.String("title", course.Title),
		zap.Uint("client_id", course.ClientID))
	return c.JSON(http.StatusCreated, course)
}

// UpdateCourse patches a course owned by the requesting professor
func UpdateCourse(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCourseOperation("update")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid course ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course ID"})
	}

	var patch CoursePatch
	if err := c.Bind(&patch); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var course model.Course
	if result := database.GetDB().First(&course, id); result.Error != nil {
		log.Warn("Course not found", zap.Uint64("course_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	}

	if course.ProfessorID != professorID {
		log.Warn("Attempt to update another professor's course",
			zap.Uint64("course_id", id),
			zap.Uint("owner_id", course.ProfessorID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	if patch.Title != nil {
		course.Title = *patch.Title
	}
	if patch.Date != nil {
		course.Date = patch.Date
	}
	if patch.Duration != nil {
		course.Duration = *patch.Duration
	}
	if patch.Price != nil {
		course.Price = *patch.Price
	}
	if patch.Status != nil {
		// No guard against moving a course back out of COMPLETED; an
		// invoiced course keeps contributing its price to the invoice total.
		course.Status = *patch.Status
	}
	if patch.Location != nil {
		course.Location = *patch.Location
	}
	if patch.Notes != nil {
		course.Notes = *patch.Notes
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&course); result.Error != nil {
		log.Error("Failed to update course", zap.Uint64("course_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update course"})
	}

	database.GetDB().Preload("Client").First(&course, course.ID)

	log.Info("Course updated",
		zap.Uint("course_id", course.ID),
		zap.String("status", string(course.Status)))
	return c.JSON(http.StatusOK, course)
}

// DeleteCourse removes a course if it is owned by the requester, not
// COMPLETED and not linked to an invoice. Deletion is immediate, there is no
// soft delete.
func DeleteCourse(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCourseOperation("delete")

	professorID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid course ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var course model.Course
	if result := database.GetDB().First(&course, id); result.Error != nil {
		log.Warn("Course not found", zap.Uint64("course_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
	}

	if course.ProfessorID != professorID {
		log.Warn("Attempt to delete another professor's course",
			zap.Uint64("course_id", id),
			zap.Uint("owner_id", course.ProfessorID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	if course.Status == model.CourseCompleted {
		log.Warn("Attempt to delete a completed course", zap.Uint64("course_id", id))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "completed courses cannot be deleted"})
	}

	if course.InvoiceID != nil {
		log.Warn("Attempt to delete an invoiced course",
			zap.Uint64("course_id", id),
			zap.Uint("invoice_id", *course.InvoiceID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete a course linked to an invoice"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&course); result.Error != nil {
		log.Error("Failed to delete course", zap.Uint64("course_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete course"})
	}

	log.Info("Course deleted", zap.Uint("course_id", course.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "course deleted successfully"})
}
