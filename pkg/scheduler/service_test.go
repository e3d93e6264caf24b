package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

// fakeStore is an in-memory Store for service tests
type fakeStore struct {
	workers       []models.Worker
	windows       []models.Window
	skills        []models.Skill
	reqs          map[string]*models.Requirement
	forceConflict bool
}

func newFakeStore(snap Snapshot) *fakeStore {
	f := &fakeStore{
		workers: snap.Workers,
		windows: snap.Windows,
		skills:  snap.Skills,
		reqs:    make(map[string]*models.Requirement),
	}
	for i := range snap.Requirements {
		r := snap.Requirements[i]
		f.reqs[r.ID] = &r
	}
	return f
}

func (f *fakeStore) ListWorkers(excludeRole string) ([]models.Worker, error) {
	var out []models.Worker
	for _, w := range f.workers {
		if excludeRole == "" || w.Role != excludeRole {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAvailability() ([]models.Window, error) { return f.windows, nil }
func (f *fakeStore) ListSkills() ([]models.Skill, error)        { return f.skills, nil }

func (f *fakeStore) ListRequirements(from, to string) ([]models.Requirement, error) {
	var out []models.Requirement
	for _, r := range f.reqs {
		if r.Date >= from && r.Date <= to {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetRequirement(id string) (models.Requirement, error) {
	r, ok := f.reqs[id]
	if !ok {
		return models.Requirement{}, ErrNotFound
	}
	return *r, nil
}

func (f *fakeStore) WriteAssignment(id, workerID string, version int) error {
	if f.forceConflict {
		return ErrConflict
	}
	r, ok := f.reqs[id]
	if !ok {
		return ErrNotFound
	}
	if r.Version != version {
		return ErrConflict
	}
	r.AssignedWorker = workerID
	r.Version++
	return nil
}

func (f *fakeStore) Transaction(fn func(Store) error) error { return fn(f) }

func TestServiceGenerateSchedulePersists(t *testing.T) {
	snap := baristaSnapshot()
	snap.Requirements = []models.Requirement{
		{ID: "r-1", Date: monday, SkillID: "barista", Quantity: 1},
	}
	store := newFakeStore(snap)
	svc := NewService(store)

	result, err := svc.GenerateSchedule(monday)
	require.NoError(t, err)
	require.Len(t, result.Filled, 1)

	assert.Equal(t, "w-a", store.reqs["r-1"].AssignedWorker)
	assert.Equal(t, 1, store.reqs["r-1"].Version)
}

func TestServiceGenerateScheduleRejectsBadWeekStart(t *testing.T) {
	svc := NewService(newFakeStore(baristaSnapshot()))

	_, err := svc.GenerateSchedule("next monday")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestServiceSignUpPersists(t *testing.T) {
	snap := baristaSnapshot()
	snap.Requirements = []models.Requirement{
		{ID: "r-1", Date: monday, SkillID: "barista", Quantity: 1},
	}
	store := newFakeStore(snap)
	svc := NewService(store)

	reason, err := svc.SignUp("r-1", "w-b")
	require.NoError(t, err)
	require.Nil(t, reason)
	assert.Equal(t, "w-b", store.reqs["r-1"].AssignedWorker)

	// Second sign-up sees the fresh snapshot and is rejected.
	reason, err = svc.SignUp("r-1", "w-a")
	require.NoError(t, err)
	require.NotNil(t, reason)
	assert.Equal(t, models.RejectAlreadyAssigned, *reason)
}

func TestServiceSignUpSurfacesConflict(t *testing.T) {
	snap := baristaSnapshot()
	snap.Requirements = []models.Requirement{
		{ID: "r-1", Date: monday, SkillID: "barista", Quantity: 1},
	}
	store := newFakeStore(snap)
	store.forceConflict = true
	svc := NewService(store)

	_, err := svc.SignUp("r-1", "w-a")
	require.ErrorIs(t, err, ErrConflict)
}

func TestServiceCancelSignUp(t *testing.T) {
	snap := baristaSnapshot()
	snap.Requirements = []models.Requirement{
		{ID: "r-1", Date: monday, SkillID: "barista", Quantity: 1, AssignedWorker: "w-a"},
	}
	store := newFakeStore(snap)
	svc := NewService(store)

	reason, err := svc.CancelSignUp("r-1", "w-b")
	require.NoError(t, err)
	require.NotNil(t, reason)
	assert.Equal(t, models.RejectNotAssignedToYou, *reason)

	reason, err = svc.CancelSignUp("r-1", "w-a")
	require.NoError(t, err)
	require.Nil(t, reason)
	assert.Empty(t, store.reqs["r-1"].AssignedWorker)
}

func TestServiceHandleDisruptionPersists(t *testing.T) {
	snap := baristaSnapshot()
	snap.Requirements = []models.Requirement{
		{ID: "r-1", Date: monday, SkillID: "barista", Quantity: 1, AssignedWorker: "w-a"},
	}
	store := newFakeStore(snap)
	svc := NewService(store)

	result, err := svc.HandleDisruption("w-a", monday)
	require.NoError(t, err)
	require.Len(t, result.Repaired, 1)
	assert.Equal(t, "w-b", store.reqs["r-1"].AssignedWorker)
}

func TestServiceRoster(t *testing.T) {
	snap := baristaSnapshot()
	snap.Requirements = []models.Requirement{
		{ID: "r-1", Date: monday, SkillID: "barista", Quantity: 1, AssignedWorker: "w-a"},
		{ID: "r-2", Date: monday, SkillID: "barista", Quantity: 1},
	}
	svc := NewService(newFakeStore(snap))

	view, err := svc.Roster(monday, monday, "w-a")
	require.NoError(t, err)
	assert.Len(t, view.Mine, 1)
	assert.Len(t, view.Open, 1)
	assert.Empty(t, view.Others)
}

func TestServiceMissingAvailability(t *testing.T) {
	snap := baristaSnapshot()
	snap.Workers = append(snap.Workers,
		models.Worker{ID: "w-lazy", Name: "Dave", Role: models.RoleEmployee, Skills: []string{"barista"}},
	)
	svc := NewService(newFakeStore(snap))

	missing, err := svc.MissingAvailability()
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "w-lazy", missing[0].ID)
}
