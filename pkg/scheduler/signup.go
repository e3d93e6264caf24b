package scheduler

import (
	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

// CanSignUp checks whether the worker may volunteer for an open requirement.
// It returns nil when the sign-up is allowed, or the first failing reason in
// order: AlreadyAssigned, SkillMismatch, NotAvailable, TimeConflict.
func (s *Scheduler) CanSignUp(requirementID, workerID string) (*models.RejectReason, error) {
	r, ok := s.Requirements[requirementID]
	if !ok {
		return nil, ErrNotFound
	}
	w, ok := s.Workers[workerID]
	if !ok {
		return nil, ErrNotFound
	}

	if !r.Open() {
		return reject(models.RejectAlreadyAssigned), nil
	}
	if !w.HasSkill(r.SkillID) {
		return reject(models.RejectSkillMismatch), nil
	}
	day, err := r.Weekday()
	if err != nil {
		return nil, &ValidationError{RequirementID: r.ID, Reason: err.Error()}
	}
	windows := s.Index.WindowsFor(w.ID, day)
	if len(windows) == 0 {
		return reject(models.RejectNotAvailable), nil
	}
	if s.hasConflict(w.ID, r, windows[0]) {
		return reject(models.RejectTimeConflict), nil
	}
	return nil, nil
}

// CanCancel checks whether the worker may withdraw from a requirement. Only
// the currently assigned worker may cancel.
func (s *Scheduler) CanCancel(requirementID, workerID string) (*models.RejectReason, error) {
	r, ok := s.Requirements[requirementID]
	if !ok {
		return nil, ErrNotFound
	}
	if r.AssignedWorker != workerID {
		return reject(models.RejectNotAssignedToYou), nil
	}
	return nil, nil
}

func reject(reason models.RejectReason) *models.RejectReason {
	return &reason
}
