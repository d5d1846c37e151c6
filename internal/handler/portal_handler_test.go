package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-service/internal/model"
)

func TestListClientCourses(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	me := seedUser(t, db, "me@example.com", model.RoleClient)
	other := seedUser(t, db, "other@example.com", model.RoleClient)

	past := seedCourse(t, db, professor, me, model.CourseCompleted, time.Now().AddDate(0, 0, -7), 50)
	future := seedCourse(t, db, professor, me, model.CourseScheduled, time.Now().AddDate(0, 0, 7), 50)
	seedCourse(t, db, professor, other, model.CourseScheduled, time.Now().AddDate(0, 0, 7), 50)

	req := newRequest(t, http.MethodGet, "/api/client/courses", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, ListClientCourses(authContext(e, req, rec, me)))
	require.Equal(t, http.StatusOK, rec.Code)

	var courses []model.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
	require.Len(t, courses, 2)

	// Newest first, professor included
	assert.Equal(t, future.ID, courses[0].ID)
	assert.Equal(t, past.ID, courses[1].ID)
	require.NotNil(t, courses[0].Professor)
	assert.Equal(t, professor.Email, courses[0].Professor.Email)
}

func TestListClientCoursesUpcoming(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	me := seedUser(t, db, "me@example.com", model.RoleClient)

	seedCourse(t, db, professor, me, model.CourseCompleted, time.Now().AddDate(0, 0, -7), 50)
	soon := seedCourse(t, db, professor, me, model.CourseScheduled, time.Now().AddDate(0, 0, 2), 50)
	later := seedCourse(t, db, professor, me, model.CourseScheduled, time.Now().AddDate(0, 0, 9), 50)

	req := newRequest(t, http.MethodGet, "/api/client/courses?upcoming=true", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, ListClientCourses(authContext(e, req, rec, me)))
	require.Equal(t, http.StatusOK, rec.Code)

	var courses []model.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
	require.Len(t, courses, 2)

	// Soonest first
	assert.Equal(t, soon.ID, courses[0].ID)
	assert.Equal(t, later.ID, courses[1].ID)
}

func TestListClientInvoices(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	me := seedUser(t, db, "me@example.com", model.RoleClient)
	other := seedUser(t, db, "other@example.com", model.RoleClient)

	mine := seedInvoiceRow(t, db, professor, me, model.InvoiceSent, 120)
	seedInvoiceRow(t, db, professor, other, model.InvoiceSent, 240)

	req := newRequest(t, http.MethodGet, "/api/client/invoices", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, ListClientInvoices(authContext(e, req, rec, me)))
	require.Equal(t, http.StatusOK, rec.Code)

	var invoices []model.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoices))
	require.Len(t, invoices, 1)
	assert.Equal(t, mine.ID, invoices[0].ID)
	require.NotNil(t, invoices[0].Professor)
	assert.Equal(t, professor.Email, invoices[0].Professor.Email)
}

func TestListClientInvoicesPending(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	me := seedUser(t, db, "me@example.com", model.RoleClient)

	sent := seedInvoiceRow(t, db, professor, me, model.InvoiceSent, 120)
	overdue := seedInvoiceRow(t, db, professor, me, model.InvoiceOverdue, 240)
	require.NoError(t, db.Model(overdue).Update("due_date", time.Now().AddDate(0, 0, -10)).Error)
	seedInvoiceRow(t, db, professor, me, model.InvoicePaid, 60)
	seedInvoiceRow(t, db, professor, me, model.InvoiceDraft, 60)

	req := newRequest(t, http.MethodGet, "/api/client/invoices?status=pending", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, ListClientInvoices(authContext(e, req, rec, me)))
	require.Equal(t, http.StatusOK, rec.Code)

	var invoices []model.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoices))
	require.Len(t, invoices, 2)

	// Most urgent due date first
	assert.Equal(t, overdue.ID, invoices[0].ID)
	assert.Equal(t, sent.ID, invoices[1].ID)
}
