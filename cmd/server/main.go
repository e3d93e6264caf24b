package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jvanleeuwen/roster-api-go/pkg/auth"
	"github.com/jvanleeuwen/roster-api-go/pkg/database"
	"github.com/jvanleeuwen/roster-api-go/pkg/handlers"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)
	h := handlers.NewHandler(db)

	r := gin.Default()

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Roster API",
			"version": "1.0.0",
		})
	})

	r.POST("/login", h.Login)

	// Worker endpoints
	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/roster", h.Roster)
		api.GET("/roster/export", h.RosterCSV)
		api.POST("/roster/:id/signup", h.SignUp)
		api.POST("/roster/:id/cancel", h.CancelSignUp)
		api.PUT("/availability", h.PutAvailability)
		api.POST("/sick-leave", h.SickLeave)
	}

	// Admin endpoints
	admin := r.Group("/api")
	admin.Use(h.AuthMiddleware(), h.AdminMiddleware())
	{
		admin.POST("/schedule/generate", h.GenerateSchedule)
		admin.GET("/validate", h.ValidateRoster)
		admin.GET("/analytics", h.Analytics)
		admin.GET("/availability/missing", h.MissingAvailability)

		admin.POST("/workers", h.CreateWorker)
		admin.GET("/workers", h.ListWorkers)
		admin.POST("/workers/:id/skills", h.GrantSkill)
		admin.POST("/skills", h.CreateSkill)
		admin.GET("/skills", h.ListSkills)
		admin.POST("/requirements", h.CreateRequirement)
		admin.GET("/requirements", h.ListRequirements)
		admin.DELETE("/requirements/:id", h.DeleteRequirement)

		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Machine endpoints (HMAC API keys)
	machine := r.Group("/machine")
	machine.Use(h.APIKeyMiddleware())
	{
		machine.POST("/schedule/generate", h.GenerateSchedule)
		machine.POST("/sick-leave", h.SickLeave)
		machine.GET("/usage", h.GetMyUsage)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
