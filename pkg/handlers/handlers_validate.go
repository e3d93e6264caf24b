package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

// ValidateRoster checks the stored scheduling data for a date range before a
// generation run: window sanity, overlapping windows for the same worker and
// weekday, and requirements with bad quantities or dangling references.
// Problems are reported, not fixed.
func (h *Handler) ValidateRoster(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	var problems []string

	windows, err := h.Store.ListAvailability()
	if err != nil {
		problems = append(problems, err.Error())
		windows = nil
	}

	type daySlot struct {
		worker string
		day    time.Weekday
	}
	byDay := make(map[daySlot][]models.Window)
	for _, w := range windows {
		if w.End <= w.Start {
			problems = append(problems, fmt.Sprintf("worker %s: window %s-%s on weekday %d ends before it starts",
				w.WorkerID, w.Start, w.End, w.Weekday))
			continue
		}
		byDay[daySlot{w.WorkerID, w.Weekday}] = append(byDay[daySlot{w.WorkerID, w.Weekday}], w)
	}
	for slot, ws := range byDay {
		for i := 0; i < len(ws); i++ {
			for j := i + 1; j < len(ws); j++ {
				if ws[i].Start < ws[j].End && ws[j].Start < ws[i].End {
					problems = append(problems, fmt.Sprintf("worker %s: overlapping windows on weekday %d",
						slot.worker, slot.day))
				}
			}
		}
	}

	skills, err := h.Store.ListSkills()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list skills"})
		return
	}
	knownSkills := make(map[string]bool, len(skills))
	for _, s := range skills {
		knownSkills[s.ID] = true
	}

	workers, err := h.Store.ListWorkers("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list workers"})
		return
	}
	knownWorkers := make(map[string]bool, len(workers))
	for _, w := range workers {
		knownWorkers[w.ID] = true
	}

	reqs, err := h.Store.ListRequirements(from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list requirements"})
		return
	}
	for _, r := range reqs {
		if r.Quantity < 1 {
			problems = append(problems, fmt.Sprintf("requirement %s: quantity must be at least 1", r.ID))
		}
		if !knownSkills[r.SkillID] {
			problems = append(problems, fmt.Sprintf("requirement %s: unknown skill %q", r.ID, r.SkillID))
		}
		if r.AssignedWorker != "" && !knownWorkers[r.AssignedWorker] {
			problems = append(problems, fmt.Sprintf("requirement %s: assigned worker %q no longer exists", r.ID, r.AssignedWorker))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    len(problems) == 0,
		"problems": problems,
		"stats": gin.H{
			"worker_count":      len(workers),
			"requirement_count": len(reqs),
		},
	})
}
