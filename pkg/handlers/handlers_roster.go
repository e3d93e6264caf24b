package handlers

import (
	"encoding/csv"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

// Roster returns the roster projection for a date range. view=personal limits
// the response to the caller's own shifts; the default company view includes
// everyone's plus the open ones.
func (h *Handler) Roster(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	view, err := h.Svc.Roster(from, to, c.GetString("workerID"))
	if err != nil {
		h.scheduleError(c, err)
		return
	}

	if c.Query("view") == "personal" {
		c.JSON(http.StatusOK, gin.H{"mine": view.Mine})
		return
	}
	c.JSON(http.StatusOK, view)
}

// RosterCSV exports the assigned roster for a date range as CSV
func (h *Handler) RosterCSV(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	view, err := h.Svc.Roster(from, to, c.GetString("workerID"))
	if err != nil {
		h.scheduleError(c, err)
		return
	}

	var outCSV strings.Builder
	writer := csv.NewWriter(&outCSV)
	writer.Write([]string{"requirement_id", "date", "skill", "worker_id", "worker_name", "start", "end"})

	assigned := append(append([]models.RosterEntry{}, view.Mine...), view.Others...)
	for _, e := range assigned {
		writer.Write([]string{
			e.RequirementID,
			e.Date,
			e.SkillName,
			e.WorkerID,
			e.WorkerName,
			e.Start.String(),
			e.End.String(),
		})
	}
	writer.Flush()

	c.JSON(http.StatusOK, gin.H{"csv": outCSV.String()})
}

// SignUp volunteers the caller for an open requirement
func (h *Handler) SignUp(c *gin.Context) {
	reason, err := h.Svc.SignUp(c.Param("id"), c.GetString("workerID"))
	if err != nil {
		h.scheduleError(c, err)
		return
	}
	if reason != nil {
		c.JSON(http.StatusConflict, gin.H{"rejected": *reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed up"})
}

// CancelSignUp withdraws the caller from a requirement they hold
func (h *Handler) CancelSignUp(c *gin.Context) {
	reason, err := h.Svc.CancelSignUp(c.Param("id"), c.GetString("workerID"))
	if err != nil {
		h.scheduleError(c, err)
		return
	}
	if reason != nil {
		c.JSON(http.StatusConflict, gin.H{"rejected": *reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sign-up cancelled"})
}

// PutAvailability replaces the caller's weekly availability windows
func (h *Handler) PutAvailability(c *gin.Context) {
	var req struct {
		Windows []struct {
			Weekday int    `json:"weekday"`
			Start   string `json:"start"`
			End     string `json:"end"`
		} `json:"windows"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workerID := c.GetString("workerID")
	windows := make([]models.Window, 0, len(req.Windows))
	for _, w := range req.Windows {
		if w.Weekday < 0 || w.Weekday > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "weekday must be 0-6"})
			return
		}
		start, err := models.ParseTimeOfDay(w.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		end, err := models.ParseTimeOfDay(w.End)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if end <= start {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window end must be after start"})
			return
		}
		windows = append(windows, models.Window{
			WorkerID: workerID,
			Weekday:  time.Weekday(w.Weekday),
			Start:    start,
			End:      end,
		})
	}

	if err := h.Store.ReplaceAvailability(workerID, windows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save availability"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Availability saved", "count": len(windows)})
}

// MissingAvailability lists workers that have not declared any availability
func (h *Handler) MissingAvailability(c *gin.Context) {
	missing, err := h.Svc.MissingAvailability()
	if err != nil {
		h.scheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"missing": missing})
}

// Analytics summarizes fairness and coverage for a date range
func (h *Handler) Analytics(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	report, err := h.Svc.Analytics(from, to)
	if err != nil {
		h.scheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
