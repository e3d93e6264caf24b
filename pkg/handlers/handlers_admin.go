package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jvanleeuwen/roster-api-go/pkg/auth"
	"github.com/jvanleeuwen/roster-api-go/pkg/database"
	"github.com/jvanleeuwen/roster-api-go/pkg/models"
	"github.com/jvanleeuwen/roster-api-go/pkg/scheduler"
)

// CreateWorker registers a new worker
func (h *Handler) CreateWorker(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleEmployee
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleEmployee {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	id, err := h.Store.CreateWorker(req.Name, req.Email, req.Role, hash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create worker"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// ListWorkers returns the worker directory with skill sets
func (h *Handler) ListWorkers(c *gin.Context) {
	workers, err := h.Store.ListWorkers(c.Query("exclude_role"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list workers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workers": workers})
}

// CreateSkill registers a new skill
func (h *Handler) CreateSkill(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	skill, err := h.Store.CreateSkill(req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create skill"})
		return
	}
	c.JSON(http.StatusOK, skill)
}

// ListSkills returns all skills
func (h *Handler) ListSkills(c *gin.Context) {
	skills, err := h.Store.ListSkills()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list skills"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

// GrantSkill attaches a skill to a worker
func (h *Handler) GrantSkill(c *gin.Context) {
	var req struct {
		SkillID string `json:"skill_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SkillID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skill_id is required"})
		return
	}

	if err := h.Store.GrantSkill(c.Param("id"), req.SkillID); err != nil {
		if errors.Is(err, scheduler.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Worker not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not grant skill"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Skill granted"})
}

// CreateRequirement adds shift requirements for a date. Quantity expands into
// that many unit requirements.
func (h *Handler) CreateRequirement(c *gin.Context) {
	var req struct {
		Date     string `json:"date"`
		SkillID  string `json:"skill_id"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
		return
	}
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	created, err := h.Store.CreateRequirements(req.Date, req.SkillID, req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create requirements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requirements": created})
}

// ListRequirements returns the requirements for a date range
func (h *Handler) ListRequirements(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	reqs, err := h.Store.ListRequirements(from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list requirements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requirements": reqs})
}

// DeleteRequirement removes a requirement
func (h *Handler) DeleteRequirement(c *gin.Context) {
	if err := h.Store.DeleteRequirement(c.Param("id")); err != nil {
		if errors.Is(err, scheduler.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Requirement not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete requirement"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Requirement deleted"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = 10000
	}

	// Generate key using HMAC
	key := auth.GenerateHMACKey(req.Name)

	// Create preview (e.g., sk_...****)
	preview := ""
	if len(key) > 8 {
		preview = key[:3] + "..." + key[len(key)-4:]
	} else {
		preview = "****"
	}

	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: preview,
		RateLimit:  req.RateLimit,
	}

	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	h.DB.Find(&keys)
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	if err := h.DB.Delete(&database.APIKey{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var usage []database.APIUsage
	h.DB.Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage)
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}
