package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tutor-service/internal/model"
)

func seedInvoiceRow(t *testing.T, db *gorm.DB, professor, client *model.User, status model.InvoiceStatus, total float64) *model.Invoice {
	t.Helper()

	invoice := &model.Invoice{
		InvoiceNumber: "FAC-202506-0001",
		Status:        status,
		IssueDate:     time.Now(),
		DueDate:       time.Now().AddDate(0, 0, 30),
		Amount:        total / 1.2,
		TaxRate:       0.20,
		TotalAmount:   total,
		ProfessorID:   professor.ID,
		ClientID:      client.ID,
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

func TestGetStats(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)
	alice := seedUser(t, db, "alice@example.com", model.RoleClient)
	bruno := seedUser(t, db, "bruno@example.com", model.RoleClient)

	// Two distinct clients, one upcoming course
	seedCourse(t, db, professor, alice, model.CourseScheduled, time.Now().AddDate(0, 0, 5), 50)
	seedCourse(t, db, professor, alice, model.CourseCompleted, time.Now().AddDate(0, 0, -5), 50)
	seedCourse(t, db, professor, bruno, model.CourseCancelled, time.Now().AddDate(0, 0, 3), 40)

	// One pending invoice, one paid this month, one draft
	seedInvoiceRow(t, db, professor, alice, model.InvoiceSent, 120)
	seedInvoiceRow(t, db, professor, alice, model.InvoicePaid, 240)
	seedInvoiceRow(t, db, professor, bruno, model.InvoiceDraft, 60)

	req := newRequest(t, http.MethodGet, "/api/professor/stats", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, GetStats(authContext(e, req, rec, professor)))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["clients_count"])
	assert.EqualValues(t, 1, body["upcoming_courses"])
	assert.EqualValues(t, 1, body["pending_invoices"])
	assert.InDelta(t, 240.0, body["monthly_revenue"].(float64), 1e-9)
}

func TestGetStatsEmpty(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	professor := seedUser(t, db, "prof@example.com", model.RoleProfessor)

	req := newRequest(t, http.MethodGet, "/api/professor/stats", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, GetStats(authContext(e, req, rec, professor)))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 0, body["clients_count"])
	assert.EqualValues(t, 0, body["upcoming_courses"])
	assert.EqualValues(t, 0, body["pending_invoices"])
	assert.InDelta(t, 0.0, body["monthly_revenue"].(float64), 1e-9)
}
