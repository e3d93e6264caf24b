package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

// Store is the transactional collaborator the engine runs against. The host
// owns it; the engine only ever reads a snapshot through it and writes
// decisions back.
type Store interface {
	ListWorkers(excludeRole string) ([]models.Worker, error)
	ListAvailability() ([]models.Window, error)
	ListSkills() ([]models.Skill, error)
	ListRequirements(from, to string) ([]models.Requirement, error)
	GetRequirement(id string) (models.Requirement, error)

	// WriteAssignment binds workerID (or clears the binding when empty) on the
	// requirement, guarded by compare-and-swap on version. A stale version
	// returns ErrConflict; last-writer-wins is never acceptable here.
	WriteAssignment(id, workerID string, version int) error

	// Transaction runs fn against a store whose writes commit together or not
	// at all.
	Transaction(fn func(Store) error) error
}

var (
	// ErrConflict means the requirement changed under a concurrent actor;
	// retry with a fresh snapshot.
	ErrConflict = errors.New("requirement was modified concurrently")
	// ErrNotFound means a referenced requirement or worker does not exist.
	ErrNotFound = errors.New("not found")
)

// Service exposes the engine's operations over a Store
type Service struct {
	store Store
}

// NewService creates a service bound to a store
func NewService(store Store) *Service {
	return &Service{store: store}
}

// loadSnapshot reads a consistent view for [from,to]
func (svc *Service) loadSnapshot(from, to string) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Workers, err = svc.store.ListWorkers(""); err != nil {
		return snap, fmt.Errorf("loading workers: %w", err)
	}
	if snap.Windows, err = svc.store.ListAvailability(); err != nil {
		return snap, fmt.Errorf("loading availability: %w", err)
	}
	if snap.Skills, err = svc.store.ListSkills(); err != nil {
		return snap, fmt.Errorf("loading skills: %w", err)
	}
	if snap.Requirements, err = svc.store.ListRequirements(from, to); err != nil {
		return snap, fmt.Errorf("loading requirements: %w", err)
	}
	return snap, nil
}

// GenerateSchedule fills the week starting at weekStart and commits all
// bindings in one transaction. Already-assigned requirements are left alone,
// so retrying after a failure never reassigns them.
func (svc *Service) GenerateSchedule(weekStart string) (models.ScheduleResult, error) {
	start, err := time.Parse(models.DateLayout, weekStart)
	if err != nil {
		return models.ScheduleResult{}, &ValidationError{Reason: fmt.Sprintf("invalid week start %q", weekStart)}
	}
	weekEnd := start.AddDate(0, 0, 6).Format(models.DateLayout)

	snap, err := svc.loadSnapshot(weekStart, weekEnd)
	if err != nil {
		return models.ScheduleResult{}, err
	}
	s, err := New(snap)
	if err != nil {
		return models.ScheduleResult{}, err
	}

	versions := make(map[string]int, len(snap.Requirements))
	for _, r := range snap.Requirements {
		versions[r.ID] = r.Version
	}

	result, err := s.Generate(weekStart)
	if err != nil {
		return models.ScheduleResult{}, err
	}

	err = svc.store.Transaction(func(tx Store) error {
		for _, d := range result.Filled {
			if err := tx.WriteAssignment(d.RequirementID, d.WorkerID, versions[d.RequirementID]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.ScheduleResult{}, fmt.Errorf("committing schedule: %w", err)
	}
	return result, nil
}

// HandleDisruption repairs all of a worker's assignments on the given date.
// Each rebind is committed individually under compare-and-swap, so two
// disruptions touching different requirements proceed independently while
// writes to the same requirement serialize.
func (svc *Service) HandleDisruption(workerID, date string) (models.DisruptionResult, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.DisruptionResult{}, &ValidationError{Reason: fmt.Sprintf("invalid date %q", date)}
	}

	snap, err := svc.loadSnapshot(mondayOf(date), sundayOf(date))
	if err != nil {
		return models.DisruptionResult{}, err
	}
	s, err := New(snap)
	if err != nil {
		return models.DisruptionResult{}, err
	}

	versions := make(map[string]int, len(snap.Requirements))
	for _, r := range snap.Requirements {
		versions[r.ID] = r.Version
	}

	result, err := s.HandleDisruption(workerID, date)
	if err != nil {
		return models.DisruptionResult{}, err
	}

	for _, d := range result.Repaired {
		if err := svc.store.WriteAssignment(d.RequirementID, d.WorkerID, versions[d.RequirementID]); err != nil {
			return models.DisruptionResult{}, fmt.Errorf("rebinding %s: %w", d.RequirementID, err)
		}
	}
	for _, id := range result.NowOpen {
		if err := svc.store.WriteAssignment(id, "", versions[id]); err != nil {
			return models.DisruptionResult{}, fmt.Errorf("opening %s: %w", id, err)
		}
	}
	return result, nil
}

// SignUp volunteers a worker for an open requirement. A nil reason means the
// binding was committed; a non-nil reason is a normal rejection, not an error.
func (svc *Service) SignUp(requirementID, workerID string) (*models.RejectReason, error) {
	req, err := svc.store.GetRequirement(requirementID)
	if err != nil {
		return nil, err
	}

	snap, err := svc.loadSnapshot(req.Date, req.Date)
	if err != nil {
		return nil, err
	}
	s, err := New(snap)
	if err != nil {
		return nil, err
	}

	reason, err := s.CanSignUp(requirementID, workerID)
	if err != nil || reason != nil {
		return reason, err
	}
	if err := svc.store.WriteAssignment(requirementID, workerID, req.Version); err != nil {
		return nil, err
	}
	return nil, nil
}

// CancelSignUp withdraws a worker from a requirement they hold
func (svc *Service) CancelSignUp(requirementID, workerID string) (*models.RejectReason, error) {
	req, err := svc.store.GetRequirement(requirementID)
	if err != nil {
		return nil, err
	}

	snap, err := svc.loadSnapshot(req.Date, req.Date)
	if err != nil {
		return nil, err
	}
	s, err := New(snap)
	if err != nil {
		return nil, err
	}

	reason, err := s.CanCancel(requirementID, workerID)
	if err != nil || reason != nil {
		return reason, err
	}
	if err := svc.store.WriteAssignment(requirementID, "", req.Version); err != nil {
		return nil, err
	}
	return nil, nil
}

// Roster builds the read-only roster projection for [from,to] as seen by
// viewerID
func (svc *Service) Roster(from, to, viewerID string) (models.RosterView, error) {
	snap, err := svc.loadSnapshot(from, to)
	if err != nil {
		return models.RosterView{}, err
	}
	s, err := New(snap)
	if err != nil {
		return models.RosterView{}, err
	}
	return s.BuildRoster(from, to, viewerID), nil
}

// MissingAvailability lists workers that have not declared any availability
func (svc *Service) MissingAvailability() ([]models.Worker, error) {
	workers, err := svc.store.ListWorkers(models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("loading workers: %w", err)
	}
	windows, err := svc.store.ListAvailability()
	if err != nil {
		return nil, fmt.Errorf("loading availability: %w", err)
	}
	s, err := New(Snapshot{Workers: workers, Windows: windows})
	if err != nil {
		return nil, err
	}
	return s.MissingAvailability(), nil
}

// Analytics summarizes the roster for [from,to]
func (svc *Service) Analytics(from, to string) (models.AnalyticsReport, error) {
	snap, err := svc.loadSnapshot(from, to)
	if err != nil {
		return models.AnalyticsReport{}, err
	}
	s, err := New(snap)
	if err != nil {
		return models.AnalyticsReport{}, err
	}
	return s.Analytics(from, to), nil
}
