package scheduler

import (
	"sort"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

// Eligible returns the workers that can take the requirement, ordered by the
// fairness policy: fewest assigned hours in the run first, worker id ascending
// on ties. A worker qualifies when they hold the skill, are not an admin, have
// an availability window on the requirement's weekday, are not in the
// exclusion set, and their candidate window does not overlap the derived time
// of another requirement already assigned to them on the same date.
//
// An empty result is a normal outcome, not an error.
func (s *Scheduler) Eligible(r *models.Requirement, exclude map[string]bool) []*models.Worker {
	day, err := r.Weekday()
	if err != nil {
		return nil
	}

	var candidates []*models.Worker
	for _, id := range s.workerOrder {
		w := s.Workers[id]
		if exclude[w.ID] || w.Role == models.RoleAdmin || !w.HasSkill(r.SkillID) {
			continue
		}
		windows := s.Index.WindowsFor(w.ID, day)
		if len(windows) == 0 {
			continue
		}
		if s.hasConflict(w.ID, r, windows[0]) {
			continue
		}
		candidates = append(candidates, w)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		hi, hj := s.Hours[candidates[i].ID], s.Hours[candidates[j].ID]
		if hi != hj {
			return hi < hj
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates
}

// hasConflict reports whether the worker already holds another requirement on
// the same date whose derived shift time overlaps the candidate window
func (s *Scheduler) hasConflict(workerID string, r *models.Requirement, candidate models.Window) bool {
	for _, other := range s.byDate[r.Date] {
		if other.ID == r.ID || other.AssignedWorker != workerID {
			continue
		}
		if w, ok := s.DerivedWindow(other); ok {
			if overlap(candidate.Start, candidate.End, w.Start, w.End) {
				return true
			}
		}
	}
	return false
}
