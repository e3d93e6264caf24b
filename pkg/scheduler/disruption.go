package scheduler

import (
	"time"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

// HandleDisruption repairs the roster after a worker calls in sick for a date:
// every requirement on that date assigned to the worker is rebound to the best
// eligible replacement, or left open when none exists. The absent worker is
// excluded from candidacy even if their availability says otherwise. A rebind
// changes the requirement's derived shift time to the replacement's window.
//
// Requirements on other dates are untouched. A worker with no assignments on
// the date yields empty results.
func (s *Scheduler) HandleDisruption(workerID, date string) (models.DisruptionResult, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.DisruptionResult{}, &ValidationError{Reason: err.Error()}
	}

	weekStart := mondayOf(date)
	weekEnd := sundayOf(date)
	s.Prefill(weekStart, weekEnd)

	result := models.DisruptionResult{Repaired: []models.Decision{}, NowOpen: []string{}}
	exclude := map[string]bool{workerID: true}
	for _, r := range s.byDate[date] {
		if r.AssignedWorker != workerID {
			continue
		}
		s.unbind(r)
		candidates := s.Eligible(r, exclude)
		if len(candidates) == 0 {
			result.NowOpen = append(result.NowOpen, r.ID)
			continue
		}
		s.bind(r, candidates[0].ID)
		result.Repaired = append(result.Repaired, models.Decision{RequirementID: r.ID, WorkerID: candidates[0].ID})
	}
	return result, nil
}

// mondayOf returns the Monday on or before the given date
func mondayOf(date string) string {
	d, _ := time.Parse(models.DateLayout, date)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset).Format(models.DateLayout)
}

// sundayOf returns the Sunday on or after the given date
func sundayOf(date string) string {
	d, _ := time.Parse(models.DateLayout, date)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, 6-offset).Format(models.DateLayout)
}
