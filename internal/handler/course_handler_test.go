package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-service/internal/model"
)

func TestCreateCourse(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	client := seedUser(t, db, "client@example.com", model.RoleClient)

	date := time.Now().AddDate(0, 0, 7).Truncate(time.Second)
	req := newRequest(t, http.MethodPost, "/api/professor/courses", map[string]interface{}{
		"title":     "Cours de mathématiques",
		"subject":   "Mathématiques",
		"date":      date,
		"duration":  60,
		"price":     50,
		"client_id": client.ID,
	})
	rec := httptest.NewRecorder()

	require.NoError(t, CreateCourse(authContext(e, req, rec, professor)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var course model.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &course))
	assert.Equal(t, model.CourseScheduled, course.Status)
	assert.Equal(t, professor.ID, course.ProfessorID)
	assert.Nil(t, course.InvoiceID)
	require.NotNil(t, course.Client)
	assert.Equal(t, client.Email, course.Client.Email)
}

func TestCreateCourseValidation(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)

	req := newRequest(t, http.MethodPost, "/api/professor/courses", map[string]interface{}{
		"description": "no title, no subject, no client",
	})
	rec := httptest.NewRecorder()

	require.NoError(t, CreateCourse(authContext(e, req, rec, professor)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid course data", decodeBody(t, rec)["error"])
}

func TestListCoursesFilters(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	other := seedUser(t, db, "other@example.com", model.RoleProfessor)
	client := seedUser(t, db, "client@example.com", model.RoleClient)

	past := time.Now().AddDate(0, 0, -7)
	future := time.Now().AddDate(0, 0, 7)
	completed := seedCourse(t, db, professor, client, model.CourseCompleted, past, 50)
	upcoming := seedCourse(t, db, professor, client, model.CourseScheduled, future, 50)
	seedCourse(t, db, other, client, model.CourseScheduled, future, 50)

	// Mark one course invoiced
	invoiceID := uint(99)
	require.NoError(t, db.Model(completed).Update("invoice_id", invoiceID).Error)

	list := func(target string) []model.Course {
		req := newRequest(t, http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		require.NoError(t, ListCourses(authContext(e, req, rec, professor)))
		require.Equal(t, http.StatusOK, rec.Code)
		var courses []model.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
		return courses
	}

	// Only the professor's own courses, oldest date first
	all := list("/api/professor/courses")
	require.Len(t, all, 2)
	assert.Equal(t, completed.ID, all[0].ID)
	assert.Equal(t, upcoming.ID, all[1].ID)

	up := list("/api/professor/courses?upcoming=true")
	require.Len(t, up, 1)
	assert.Equal(t, upcoming.ID, up[0].ID)

	uninvoiced := list("/api/professor/courses?uninvoiced=true")
	require.Len(t, uninvoiced, 1)
	assert.Equal(t, upcoming.ID, uninvoiced[0].ID)

	limited := list("/api/professor/courses?limit=1")
	require.Len(t, limited, 1)
}

func TestUpdateCourse(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	client := seedUser(t, db, "client@example.com", model.RoleClient)
	course := seedCourse(t, db, professor, client, model.CourseScheduled, time.Now(), 50)

	req := newRequest(t, http.MethodPatch, "/api/professor/courses/1", map[string]interface{}{
		"status": "COMPLETED",
		"price":  60,
	})
	rec := httptest.NewRecorder()
	c := authContext(e, req, rec, professor)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(course.ID)))

	require.NoError(t, UpdateCourse(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored model.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.Equal(t, model.CourseCompleted, stored.Status)
	assert.InDelta(t, 60.0, stored.Price, 1e-9)
	assert.Equal(t, "Cours de mathématiques", stored.Title)
}

func TestUpdateCourseOwnership(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	other := seedUser(t, db, "other@example.com", model.RoleProfessor)
	client := seedUser(t, db, "client@example.com", model.RoleClient)
	course := seedCourse(t, db, professor, client, model.CourseScheduled, time.Now(), 50)

	req := newRequest(t, http.MethodPatch, "/api/professor/courses/1", map[string]interface{}{
		"price": 999,
	})
	rec := httptest.NewRecorder()
	c := authContext(e, req, rec, other)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(course.ID)))

	require.NoError(t, UpdateCourse(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access denied", decodeBody(t, rec)["error"])
}

func TestDeleteCourse(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	client := seedUser(t, db, "client@example.com", model.RoleClient)
	course := seedCourse(t, db, professor, client, model.CourseScheduled, time.Now(), 50)

	req := newRequest(t, http.MethodDelete, "/api/professor/courses/1", nil)
	rec := httptest.NewRecorder()
	c := authContext(e, req, rec, professor)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(course.ID)))

	require.NoError(t, DeleteCourse(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&model.Course{}).Count(&count)
	assert.Zero(t, count)
}

func TestDeleteCompletedCourse(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	client := seedUser(t, db, "client@example.com", model.RoleClient)
	course := seedCourse(t, db, professor, client, model.CourseCompleted, time.Now().AddDate(0, 0, -1), 50)

	req := newRequest(t, http.MethodDelete, "/api/professor/courses/1", nil)
	rec := httptest.NewRecorder()
	c := authContext(e, req, rec, professor)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(course.ID)))

	require.NoError(t, DeleteCourse(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "completed courses cannot be deleted", decodeBody(t, rec)["error"])

	var count int64
	db.Model(&model.Course{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteInvoicedCourse(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	client := seedUser(t, db, "client@example.com", model.RoleClient)
	course := seedCourse(t, db, professor, client, model.CourseScheduled, time.Now(), 50)

	invoiceID := uint(7)
	require.NoError(t, db.Model(course).Update("invoice_id", invoiceID).Error)

	req := newRequest(t, http.MethodDelete, "/api/professor/courses/1", nil)
	rec := httptest.NewRecorder()
	c := authContext(e, req, rec, professor)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(course.ID)))

	require.NoError(t, DeleteCourse(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cannot delete a course linked to an invoice", decodeBody(t, rec)["error"])
}

func TestDeleteCourseNotFound(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)

	req := newRequest(t, http.MethodDelete, "/api/professor/courses/42", nil)
	rec := httptest.NewRecorder()
	c := authContext(e, req, rec, professor)
	c.SetParamNames("id")
	c.SetParamValues("42")

	require.NoError(t, DeleteCourse(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
