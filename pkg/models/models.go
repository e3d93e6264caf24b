package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Roles recognized by the roster. Admins manage the roster but are never
// scheduled onto it.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// DateLayout is the wire format for requirement dates.
const DateLayout = "2006-01-02"

// Worker represents a person that can be assigned to shifts
type Worker struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email,omitempty"`
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}

// HasSkill reports whether the worker holds the given skill
func (w *Worker) HasSkill(skillID string) bool {
	for _, s := range w.Skills {
		if s == skillID {
			return true
		}
	}
	return false
}

// Skill is a schedulable capability (e.g. "barista")
type Skill struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TimeOfDay is a clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" string
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON renders the time as "HH:MM"
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts "HH:MM"
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Window is a recurring weekly availability range for a worker
type Window struct {
	WorkerID string       `json:"worker_id"`
	Weekday  time.Weekday `json:"weekday"`
	Start    TimeOfDay    `json:"start"`
	End      TimeOfDay    `json:"end"`
}

// Contains reports whether [start,end] lies fully inside the window
func (w Window) Contains(start, end TimeOfDay) bool {
	return w.Start <= start && end <= w.End
}

// Hours returns the window length in hours
func (w Window) Hours() float64 {
	return float64(w.End-w.Start) / 60.0
}

// Requirement is a unit of needed work: one skill on one date. A requirement
// with a non-empty AssignedWorker is the assignment; its shift time is derived
// from that worker's availability window, never stored.
type Requirement struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	SkillID        string `json:"skill_id"`
	Quantity       int    `json:"quantity"`
	AssignedWorker string `json:"assigned_worker,omitempty"`
	Version        int    `json:"version"`
}

// Weekday returns the weekday of the requirement's date
func (r *Requirement) Weekday() (time.Weekday, error) {
	d, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	return d.Weekday(), nil
}

// Open reports whether no worker is bound to the requirement
func (r *Requirement) Open() bool {
	return r.AssignedWorker == ""
}

// Decision is a single (requirement, worker) binding produced by a run
type Decision struct {
	RequirementID string `json:"requirement_id"`
	WorkerID      string `json:"worker_id"`
}

// ScheduleResult is the outcome of a schedule generation run
type ScheduleResult struct {
	Filled   []Decision `json:"filled"`
	Unfilled []string   `json:"unfilled"`
}

// DisruptionResult is the outcome of repairing one worker's day
type DisruptionResult struct {
	Repaired []Decision `json:"repaired"`
	NowOpen  []string   `json:"now_open"`
}

// RejectReason explains why a sign-up or cancellation was refused
type RejectReason string

const (
	RejectAlreadyAssigned  RejectReason = "AlreadyAssigned"
	RejectSkillMismatch    RejectReason = "SkillMismatch"
	RejectNotAvailable     RejectReason = "NotAvailable"
	RejectTimeConflict     RejectReason = "TimeConflict"
	RejectNotAssignedToYou RejectReason = "NotAssignedToYou"
)

// RosterEntry is one requirement joined with its derived shift time and the
// assigned worker's display data. Start/End are zero for open entries.
type RosterEntry struct {
	RequirementID string    `json:"requirement_id"`
	Date          string    `json:"date"`
	SkillID       string    `json:"skill_id"`
	SkillName     string    `json:"skill_name,omitempty"`
	WorkerID      string    `json:"worker_id,omitempty"`
	WorkerName    string    `json:"worker_name,omitempty"`
	Start         TimeOfDay `json:"start"`
	End           TimeOfDay `json:"end"`
}

// RosterView partitions a date range's requirements for one viewer
type RosterView struct {
	Mine   []RosterEntry `json:"mine"`
	Others []RosterEntry `json:"others"`
	Open   []RosterEntry `json:"open"`
}

// WorkerHours is a per-worker total used by the analytics report
type WorkerHours struct {
	WorkerID string  `json:"worker_id"`
	Name     string  `json:"name"`
	Hours    float64 `json:"hours"`
}

// AnalyticsReport summarizes a date range of the roster
type AnalyticsReport struct {
	From          string        `json:"from"`
	To            string        `json:"to"`
	FairnessScore float64       `json:"fairness_score"`
	TotalShifts   int           `json:"total_shifts"`
	OpenShifts    int           `json:"open_shifts"`
	HoursByWorker []WorkerHours `json:"hours_by_worker"`
}
