package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

// Snapshot is a consistent view of the store at the start of a run. The
// scheduler never reads anything outside it.
type Snapshot struct {
	Workers      []models.Worker
	Windows      []models.Window
	Skills       []models.Skill
	Requirements []models.Requirement
}

// ValidationError rejects a malformed requirement before any decision is made
type ValidationError struct {
	RequirementID string
	Reason        string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("requirement %s: %s", e.RequirementID, e.Reason)
}

// Scheduler handles the logic of binding workers to requirements. It operates
// on an in-memory snapshot; write-back is the caller's job.
type Scheduler struct {
	Workers      map[string]*models.Worker
	Requirements map[string]*models.Requirement
	Skills       map[string]models.Skill
	Index        *AvailabilityIndex

	// Hours tracks assigned hours per worker within the run's date range,
	// seeded by Prefill and updated as the run binds workers.
	Hours map[string]float64

	workerOrder []string
	byDate      map[string][]*models.Requirement
}

// New validates the snapshot and builds a scheduler over it. Any requirement
// with a non-positive quantity, an unparseable date or an unknown skill
// rejects the whole run.
func New(snap Snapshot) (*Scheduler, error) {
	s := &Scheduler{
		Workers:      make(map[string]*models.Worker, len(snap.Workers)),
		Requirements: make(map[string]*models.Requirement, len(snap.Requirements)),
		Skills:       make(map[string]models.Skill, len(snap.Skills)),
		Index:        NewAvailabilityIndex(snap.Windows),
		Hours:        make(map[string]float64),
		byDate:       make(map[string][]*models.Requirement),
	}

	for i := range snap.Workers {
		w := snap.Workers[i]
		s.Workers[w.ID] = &w
		s.workerOrder = append(s.workerOrder, w.ID)
	}
	sort.Strings(s.workerOrder)

	for _, sk := range snap.Skills {
		s.Skills[sk.ID] = sk
	}

	for i := range snap.Requirements {
		r := snap.Requirements[i]
		if r.Quantity < 1 {
			return nil, &ValidationError{RequirementID: r.ID, Reason: "quantity must be at least 1"}
		}
		if _, err := r.Weekday(); err != nil {
			return nil, &ValidationError{RequirementID: r.ID, Reason: err.Error()}
		}
		if _, ok := s.Skills[r.SkillID]; !ok {
			return nil, &ValidationError{RequirementID: r.ID, Reason: fmt.Sprintf("unknown skill %q", r.SkillID)}
		}
		s.Requirements[r.ID] = &r
		s.byDate[r.Date] = append(s.byDate[r.Date], &r)
	}
	for date := range s.byDate {
		rs := s.byDate[date]
		sort.Slice(rs, func(i, j int) bool {
			if rs[i].SkillID != rs[j].SkillID {
				return rs[i].SkillID < rs[j].SkillID
			}
			return rs[i].ID < rs[j].ID
		})
	}

	return s, nil
}

// DerivedWindow returns the availability window that gives an assigned
// requirement its shift time: the assigned worker's first window on the
// requirement's weekday. It is recomputed on every call, never cached, so a
// rebind immediately changes the derived time.
func (s *Scheduler) DerivedWindow(r *models.Requirement) (models.Window, bool) {
	if r.Open() {
		return models.Window{}, false
	}
	day, err := r.Weekday()
	if err != nil {
		return models.Window{}, false
	}
	ws := s.Index.WindowsFor(r.AssignedWorker, day)
	if len(ws) == 0 {
		return models.Window{}, false
	}
	return ws[0], true
}

// Prefill seeds the running hour totals from requirements already assigned
// within [from,to]
func (s *Scheduler) Prefill(from, to string) {
	for _, r := range s.Requirements {
		if r.Open() || r.Date < from || r.Date > to {
			continue
		}
		if w, ok := s.DerivedWindow(r); ok {
			s.Hours[r.AssignedWorker] += w.Hours()
		}
	}
}

// Generate fills all open requirements in the week starting at weekStart.
// Requirements that already hold a worker are never reassigned, so re-running
// over a partially filled week is idempotent. The run is deterministic: dates
// ascending, skills ascending, fewest-hours-first with worker id as tie-break.
func (s *Scheduler) Generate(weekStart string) (models.ScheduleResult, error) {
	start, err := time.Parse(models.DateLayout, weekStart)
	if err != nil {
		return models.ScheduleResult{}, &ValidationError{Reason: fmt.Sprintf("invalid week start %q", weekStart)}
	}
	weekEnd := start.AddDate(0, 0, 6).Format(models.DateLayout)

	s.Prefill(weekStart, weekEnd)

	result := models.ScheduleResult{Filled: []models.Decision{}, Unfilled: []string{}}
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i).Format(models.DateLayout)
		for _, r := range s.byDate[date] {
			if !r.Open() {
				continue
			}
			candidates := s.Eligible(r, nil)
			if len(candidates) == 0 {
				result.Unfilled = append(result.Unfilled, r.ID)
				continue
			}
			best := candidates[0]
			s.bind(r, best.ID)
			result.Filled = append(result.Filled, models.Decision{RequirementID: r.ID, WorkerID: best.ID})
		}
	}
	return result, nil
}

// bind assigns the worker and updates the running hour totals
func (s *Scheduler) bind(r *models.Requirement, workerID string) {
	r.AssignedWorker = workerID
	if w, ok := s.DerivedWindow(r); ok {
		s.Hours[workerID] += w.Hours()
	}
}

// unbind clears the assignment and releases the worker's hours
func (s *Scheduler) unbind(r *models.Requirement) {
	if w, ok := s.DerivedWindow(r); ok {
		s.Hours[r.AssignedWorker] -= w.Hours()
	}
	r.AssignedWorker = ""
}
