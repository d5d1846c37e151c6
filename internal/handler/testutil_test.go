package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tutor-service/internal/model"
	"tutor-service/pkg/config"
	"tutor-service/pkg/database"
	"tutor-service/pkg/jwtutil"
	"tutor-service/prometheus"
)

func TestMain(m *testing.M) {
	cfg := &config.Config{
		JWT:     config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1},
		Metrics: config.MetricsConfig{Prefix: "tutorservice_test"},
	}
	jwtutil.Initialize(&cfg.JWT)
	prometheus.InitMetrics(cfg)
	os.Exit(m.Run())
}

// setupDB installs a fresh in-memory database for one test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Invoice{},
		&model.Quote{},
		&model.Message{},
	))
	database.SetDB(db)
	return db
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newRequest builds a JSON request. A nil body produces an empty request.
func newRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// authContext builds an echo context carrying the claims the auth middleware
// would have set.
func authContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, user *model.User) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user_id", user.ID)
	c.Set("email", user.Email)
	c.Set("role", string(user.Role))
	return c
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func seedUser(t *testing.T, db *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, professor, client *model.User, status model.CourseStatus, date time.Time, price float64) *model.Course {
	t.Helper()

	course := &model.Course{
		Title:       "Cours de mathématiques",
		Subject:     "Mathématiques",
		Date:        &date,
		Duration:    60,
		Price:       price,
		Status:      status,
		ProfessorID: professor.ID,
		ClientID:    client.ID,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}
