package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jvanleeuwen/roster-api-go/pkg/auth"
	"github.com/jvanleeuwen/roster-api-go/pkg/database"
	"github.com/jvanleeuwen/roster-api-go/pkg/models"
	"github.com/jvanleeuwen/roster-api-go/pkg/scheduler"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB    *gorm.DB
	Store *database.Store
	Svc   *scheduler.Service
}

// NewHandler wires the store and the scheduling service
func NewHandler(db *gorm.DB) *Handler {
	store := database.NewStore(db)
	return &Handler{
		DB:    db,
		Store: store,
		Svc:   scheduler.NewService(store),
	}
}

// AuthMiddleware verifies the JWT token and stores the caller's capability
// (worker id + role) on the context
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("workerID", claims.WorkerID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// AdminMiddleware rejects callers without the admin role
func (h *Handler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for machine clients using HMAC
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		userID, err := auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			c.Abort()
			return
		}

		// Fetch or create API key record to track usage
		var apiKey database.APIKey
		h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
			Key:       key,
			Name:      userID,
			RateLimit: 10000,
		})

		c.Set("apiKey", &apiKey)
		c.Set("userID", userID)
		// Machine keys act with scheduler authority
		c.Set("role", models.RoleAdmin)
		c.Next()
	}
}

// Login authenticates a worker by email and password and issues a JWT
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var worker database.Worker
	if err := h.DB.Where("email = ?", req.Email).First(&worker).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, worker.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(worker.ID, worker.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "role": worker.Role})
}

// GenerateSchedule runs the assignment engine for one week
func (h *Handler) GenerateSchedule(c *gin.Context) {
	var req struct {
		WeekStart string `json:"week_start"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Svc.GenerateSchedule(req.WeekStart)
	if err != nil {
		h.scheduleError(c, err)
		return
	}

	h.RecordUsage(c, len(result.Filled)+len(result.Unfilled), 0)

	resp := gin.H{
		"filled":   result.Filled,
		"unfilled": result.Unfilled,
	}
	start, _ := time.Parse(models.DateLayout, req.WeekStart)
	weekEnd := start.AddDate(0, 0, 6).Format(models.DateLayout)
	if report, err := h.Svc.Analytics(req.WeekStart, weekEnd); err == nil {
		resp["fairness_score"] = report.FairnessScore
	}
	c.JSON(http.StatusOK, resp)
}

// SickLeave repairs the roster after a worker reports sick for a date.
// Employees may only report themselves; admins may report anyone.
func (h *Handler) SickLeave(c *gin.Context) {
	var req struct {
		WorkerID string `json:"worker_id"`
		Date     string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if c.GetString("role") != models.RoleAdmin && c.GetString("workerID") != req.WorkerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only report your own sick leave"})
		return
	}

	result, err := h.Svc.HandleDisruption(req.WorkerID, req.Date)
	if err != nil {
		h.scheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repaired": result.Repaired,
		"now_open": result.NowOpen,
	})
}

// scheduleError maps core errors onto HTTP statuses
func (h *Handler) scheduleError(c *gin.Context, err error) {
	var verr *scheduler.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, scheduler.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Roster changed concurrently, retry"})
	case errors.Is(err, scheduler.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
