package database

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
	"github.com/jvanleeuwen/roster-api-go/pkg/scheduler"
)

// Store implements scheduler.Store over gorm
type Store struct {
	DB *gorm.DB
}

// NewStore wraps a gorm connection
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// ListWorkers returns all workers with their skill sets, optionally excluding
// one role. Skill lists are sorted so snapshots are reproducible.
func (s *Store) ListWorkers(excludeRole string) ([]models.Worker, error) {
	q := s.DB.Preload("Skills").Order("id")
	if excludeRole != "" {
		q = q.Where("role <> ?", excludeRole)
	}
	var rows []Worker
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	workers := make([]models.Worker, 0, len(rows))
	for _, row := range rows {
		w := models.Worker{
			ID:     row.ID,
			Name:   row.Name,
			Email:  row.Email,
			Role:   row.Role,
			Skills: make([]string, 0, len(row.Skills)),
		}
		for _, sk := range row.Skills {
			w.Skills = append(w.Skills, sk.ID)
		}
		sort.Strings(w.Skills)
		workers = append(workers, w)
	}
	return workers, nil
}

// ListAvailability returns every stored availability window. A row with an
// unparseable time is a data error and fails the whole read.
func (s *Store) ListAvailability() ([]models.Window, error) {
	var rows []AvailabilityWindow
	if err := s.DB.Order("worker_id, weekday, start_time").Find(&rows).Error; err != nil {
		return nil, err
	}

	windows := make([]models.Window, 0, len(rows))
	for _, row := range rows {
		start, err := models.ParseTimeOfDay(row.StartTime)
		if err != nil {
			return nil, fmt.Errorf("availability %d: %w", row.ID, err)
		}
		end, err := models.ParseTimeOfDay(row.EndTime)
		if err != nil {
			return nil, fmt.Errorf("availability %d: %w", row.ID, err)
		}
		windows = append(windows, models.Window{
			WorkerID: row.WorkerID,
			Weekday:  time.Weekday(row.Weekday),
			Start:    start,
			End:      end,
		})
	}
	return windows, nil
}

// ListSkills returns all skills
func (s *Store) ListSkills() ([]models.Skill, error) {
	var rows []Skill
	if err := s.DB.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	skills := make([]models.Skill, 0, len(rows))
	for _, row := range rows {
		skills = append(skills, models.Skill{ID: row.ID, Name: row.Name})
	}
	return skills, nil
}

// ListRequirements returns the requirements with date in [from,to]
func (s *Store) ListRequirements(from, to string) ([]models.Requirement, error) {
	var rows []Requirement
	if err := s.DB.Where("date >= ? AND date <= ?", from, to).Order("date, skill_id, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	reqs := make([]models.Requirement, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, toModelRequirement(row))
	}
	return reqs, nil
}

// GetRequirement fetches one requirement by id
func (s *Store) GetRequirement(id string) (models.Requirement, error) {
	var row Requirement
	if err := s.DB.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Requirement{}, scheduler.ErrNotFound
		}
		return models.Requirement{}, err
	}
	return toModelRequirement(row), nil
}

// WriteAssignment binds workerID to the requirement (or clears the binding
// when empty) under compare-and-swap on version. A stale version means a
// concurrent actor already touched the row; the caller gets ErrConflict and
// must retry with a fresh snapshot.
func (s *Store) WriteAssignment(id, workerID string, version int) error {
	res := s.DB.Model(&Requirement{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"assigned_worker": workerID,
			"version":         version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return scheduler.ErrConflict
	}
	return nil
}

// Transaction runs fn with all writes committed together or not at all
func (s *Store) Transaction(fn func(scheduler.Store) error) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// CreateRequirements inserts a requirement and expands quantity into that many
// unit rows, since a row binds at most one worker. The created units are
// returned.
func (s *Store) CreateRequirements(date, skillID string, quantity int) ([]models.Requirement, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}
	rows := make([]Requirement, 0, quantity)
	for i := 0; i < quantity; i++ {
		rows = append(rows, Requirement{
			ID:       uuid.NewString(),
			Date:     date,
			SkillID:  skillID,
			Quantity: 1,
		})
	}
	if err := s.DB.Create(&rows).Error; err != nil {
		return nil, err
	}
	reqs := make([]models.Requirement, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, toModelRequirement(row))
	}
	return reqs, nil
}

// DeleteRequirement removes a requirement
func (s *Store) DeleteRequirement(id string) error {
	res := s.DB.Delete(&Requirement{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return scheduler.ErrNotFound
	}
	return nil
}

// ReplaceAvailability swaps a worker's whole weekly availability in one
// transaction
func (s *Store) ReplaceAvailability(workerID string, windows []models.Window) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&AvailabilityWindow{}, "worker_id = ?", workerID).Error; err != nil {
			return err
		}
		for _, w := range windows {
			row := AvailabilityWindow{
				WorkerID:  workerID,
				Weekday:   int(w.Weekday),
				StartTime: w.Start.String(),
				EndTime:   w.End.String(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateWorker inserts a worker and returns the generated id
func (s *Store) CreateWorker(name, email, role, passwordHash string) (string, error) {
	row := Worker{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: passwordHash,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

// CreateSkill inserts a skill
func (s *Store) CreateSkill(name string) (models.Skill, error) {
	row := Skill{ID: uuid.NewString(), Name: name}
	if err := s.DB.Create(&row).Error; err != nil {
		return models.Skill{}, err
	}
	return models.Skill{ID: row.ID, Name: row.Name}, nil
}

// GrantSkill attaches a skill to a worker
func (s *Store) GrantSkill(workerID, skillID string) error {
	var worker Worker
	if err := s.DB.First(&worker, "id = ?", workerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scheduler.ErrNotFound
		}
		return err
	}
	var skill Skill
	if err := s.DB.First(&skill, "id = ?", skillID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scheduler.ErrNotFound
		}
		return err
	}
	return s.DB.Model(&worker).Association("Skills").Append(&skill)
}

func toModelRequirement(row Requirement) models.Requirement {
	return models.Requirement{
		ID:             row.ID,
		Date:           row.Date,
		SkillID:        row.SkillID,
		Quantity:       row.Quantity,
		AssignedWorker: row.AssignedWorker,
		Version:        row.Version,
	}
}
