package scheduler

import (
	"math"
	"sort"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

// BuildRoster projects all requirements in [from,to] into roster entries with
// derived shift times, partitioned for the viewer into mine / others / open.
// It is a pure read over the snapshot and never mutates it.
func (s *Scheduler) BuildRoster(from, to, viewerID string) models.RosterView {
	view := models.RosterView{
		Mine:   []models.RosterEntry{},
		Others: []models.RosterEntry{},
		Open:   []models.RosterEntry{},
	}

	var reqs []*models.Requirement
	for _, r := range s.Requirements {
		if r.Date >= from && r.Date <= to {
			reqs = append(reqs, r)
		}
	}
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Date != reqs[j].Date {
			return reqs[i].Date < reqs[j].Date
		}
		if reqs[i].SkillID != reqs[j].SkillID {
			return reqs[i].SkillID < reqs[j].SkillID
		}
		return reqs[i].ID < reqs[j].ID
	})

	for _, r := range reqs {
		entry := models.RosterEntry{
			RequirementID: r.ID,
			Date:          r.Date,
			SkillID:       r.SkillID,
			SkillName:     s.Skills[r.SkillID].Name,
		}
		if r.Open() {
			view.Open = append(view.Open, entry)
			continue
		}
		entry.WorkerID = r.AssignedWorker
		if w, ok := s.Workers[r.AssignedWorker]; ok {
			entry.WorkerName = w.Name
		}
		if win, ok := s.DerivedWindow(r); ok {
			entry.Start = win.Start
			entry.End = win.End
		}
		if r.AssignedWorker == viewerID {
			view.Mine = append(view.Mine, entry)
		} else {
			view.Others = append(view.Others, entry)
		}
	}
	return view
}

// MissingAvailability returns the non-admin workers that have not declared a
// single availability window, sorted by id
func (s *Scheduler) MissingAvailability() []models.Worker {
	var missing []models.Worker
	for _, id := range s.workerOrder {
		w := s.Workers[id]
		if w.Role == models.RoleAdmin {
			continue
		}
		if !s.Index.HasAnyWindow(w.ID) {
			missing = append(missing, *w)
		}
	}
	return missing
}

// Analytics summarizes [from,to]: total and open shift counts, assigned hours
// per worker and the fairness score over those hours
func (s *Scheduler) Analytics(from, to string) models.AnalyticsReport {
	report := models.AnalyticsReport{From: from, To: to, HoursByWorker: []models.WorkerHours{}}

	hours := make(map[string]float64)
	for _, r := range s.Requirements {
		if r.Date < from || r.Date > to {
			continue
		}
		report.TotalShifts++
		if r.Open() {
			report.OpenShifts++
			continue
		}
		if w, ok := s.DerivedWindow(r); ok {
			hours[r.AssignedWorker] += w.Hours()
		}
	}

	for _, id := range s.workerOrder {
		w := s.Workers[id]
		if w.Role == models.RoleAdmin {
			continue
		}
		report.HoursByWorker = append(report.HoursByWorker, models.WorkerHours{
			WorkerID: w.ID,
			Name:     w.Name,
			Hours:    hours[w.ID],
		})
	}
	report.FairnessScore = fairnessScore(report.HoursByWorker)
	return report
}

// fairnessScore returns a percentage (0-100) representing how evenly hours
// are distributed. 100% is perfectly fair (standard deviation = 0).
func fairnessScore(workers []models.WorkerHours) float64 {
	if len(workers) == 0 {
		return 100.0
	}

	var sum float64
	for _, w := range workers {
		sum += w.Hours
	}
	if sum == 0 {
		return 100.0 // Everyone having 0 hours is perfectly fair
	}

	mean := sum / float64(len(workers))
	var varianceSum float64
	for _, w := range workers {
		diff := w.Hours - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(workers)))

	// Convert SD to a percentage relative to the mean
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
