package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jvanleeuwen/roster-api-go/pkg/auth"
	"github.com/jvanleeuwen/roster-api-go/pkg/database"
	"github.com/jvanleeuwen/roster-api-go/pkg/handlers"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	// Initialize DB
	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)
	h := handlers.NewHandler(db)

	// Initialize Gin
	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Roster API (Vercel)",
			"version": "1.0.0",
		})
	})

	r.POST("/login", h.Login)

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

	machine := r.Group("/machine")
	machine.Use(h.APIKeyMiddleware())
	{
		machine.POST("/schedule/generate", h.GenerateSchedule)
		machine.POST("/sick-leave", h.SickLeave)
		machine.GET("/usage", h.GetMyUsage)
	}
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
