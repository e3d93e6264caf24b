package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jvanleeuwen/roster-api-go/pkg/auth"
	"github.com/jvanleeuwen/roster-api-go/pkg/database"
	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

func setupRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&database.Worker{}, &database.Skill{}, &database.AvailabilityWindow{},
		&database.Requirement{}, &database.APIKey{}, &database.APIUsage{},
	))

	h := NewHandler(db)

	r := gin.New()
	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/roster", h.Roster)
		api.POST("/roster/:id/signup", h.SignUp)
		api.POST("/roster/:id/cancel", h.CancelSignUp)
		api.PUT("/availability", h.PutAvailability)
	}
	admin := r.Group("/api")
	admin.Use(h.AuthMiddleware(), h.AdminMiddleware())
	{
		admin.POST("/schedule/generate", h.GenerateSchedule)
	}
	return r, h
}

func seedRoster(t *testing.T, h *Handler) {
	t.Helper()
	require.NoError(t, h.DB.Create(&database.Skill{ID: "barista", Name: "Barista"}).Error)
	require.NoError(t, h.DB.Create(&database.Worker{
		ID: "w-a", Name: "Alice", Email: "alice@example.com",
		Role: models.RoleEmployee, PasswordHash: "x",
		Skills: []database.Skill{{ID: "barista", Name: "Barista"}},
	}).Error)
	require.NoError(t, h.DB.Create(&database.AvailabilityWindow{
		WorkerID: "w-a", Weekday: 1, StartTime: "08:00", EndTime: "16:00",
	}).Error)
	// 2026-01-05 is a Monday.
	require.NoError(t, h.DB.Create(&database.Requirement{
		ID: "r-1", Date: "2026-01-05", SkillID: "barista", Quantity: 1,
	}).Error)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignUpFlow(t *testing.T) {
	r, h := setupRouter(t)
	seedRoster(t, h)

	token, err := auth.CreateToken("w-a", models.RoleEmployee)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/roster/r-1/signup", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var row database.Requirement
	require.NoError(t, h.DB.First(&row, "id = ?", "r-1").Error)
	assert.Equal(t, "w-a", row.AssignedWorker)

	// A second sign-up hits an already assigned shift.
	w = doJSON(t, r, http.MethodPost, "/api/roster/r-1/signup", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), string(models.RejectAlreadyAssigned))

	w = doJSON(t, r, http.MethodPost, "/api/roster/r-1/cancel", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, h.DB.First(&row, "id = ?", "r-1").Error)
	assert.Empty(t, row.AssignedWorker)
}

func TestAuthRequired(t *testing.T) {
	r, _ := setupRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/roster?from=2026-01-05&to=2026-01-11", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateScheduleRequiresAdmin(t *testing.T) {
	r, h := setupRouter(t)
	seedRoster(t, h)

	employee, err := auth.CreateToken("w-a", models.RoleEmployee)
	require.NoError(t, err)
	w := doJSON(t, r, http.MethodPost, "/api/schedule/generate", employee, gin.H{"week_start": "2026-01-05"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, err := auth.CreateToken("w-admin", models.RoleAdmin)
	require.NoError(t, err)
	w = doJSON(t, r, http.MethodPost, "/api/schedule/generate", admin, gin.H{"week_start": "2026-01-05"})
	assert.Equal(t, http.StatusOK, w.Code)

	var row database.Requirement
	require.NoError(t, h.DB.First(&row, "id = ?", "r-1").Error)
	assert.Equal(t, "w-a", row.AssignedWorker)
}

func TestPutAvailabilityValidation(t *testing.T) {
	r, h := setupRouter(t)
	seedRoster(t, h)

	token, err := auth.CreateToken("w-a", models.RoleEmployee)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPut, "/api/availability", token, gin.H{
		"windows": []gin.H{{"weekday": 9, "start": "08:00", "end": "16:00"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/availability", token, gin.H{
		"windows": []gin.H{{"weekday": 2, "start": "16:00", "end": "08:00"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/availability", token, gin.H{
		"windows": []gin.H{{"weekday": 2, "start": "08:00", "end": "16:00"}},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	h.DB.Model(&database.AvailabilityWindow{}).Where("worker_id = ?", "w-a").Count(&count)
	assert.Equal(t, int64(1), count)
}
