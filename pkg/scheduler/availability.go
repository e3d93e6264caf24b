package scheduler

import (
	"sort"
	"time"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

// AvailabilityIndex answers availability questions for a set of workers. It is
// a read-only projection built once per run; windows for the same worker and
// weekday are kept sorted by start time.
type AvailabilityIndex struct {
	windows map[string]map[time.Weekday][]models.Window
}

// NewAvailabilityIndex builds an index over the given windows
func NewAvailabilityIndex(windows []models.Window) *AvailabilityIndex {
	ix := &AvailabilityIndex{windows: make(map[string]map[time.Weekday][]models.Window)}
	for _, w := range windows {
		byDay, ok := ix.windows[w.WorkerID]
		if !ok {
			byDay = make(map[time.Weekday][]models.Window)
			ix.windows[w.WorkerID] = byDay
		}
		byDay[w.Weekday] = append(byDay[w.Weekday], w)
	}
	for _, byDay := range ix.windows {
		for day := range byDay {
			ws := byDay[day]
			sort.Slice(ws, func(i, j int) bool { return ws[i].Start < ws[j].Start })
		}
	}
	return ix
}

// WindowsFor returns the worker's windows on a weekday, sorted by start time
func (ix *AvailabilityIndex) WindowsFor(workerID string, day time.Weekday) []models.Window {
	byDay, ok := ix.windows[workerID]
	if !ok {
		return nil
	}
	return byDay[day]
}

// IsAvailable reports whether the worker has at least one window on the weekday
func (ix *AvailabilityIndex) IsAvailable(workerID string, day time.Weekday) bool {
	return len(ix.WindowsFor(workerID, day)) > 0
}

// WindowContaining returns the first window on the weekday that fully contains
// [start,end], if any
func (ix *AvailabilityIndex) WindowContaining(workerID string, day time.Weekday, start, end models.TimeOfDay) (models.Window, bool) {
	for _, w := range ix.WindowsFor(workerID, day) {
		if w.Contains(start, end) {
			return w, true
		}
	}
	return models.Window{}, false
}

// HasAnyWindow reports whether the worker declared availability on any weekday
func (ix *AvailabilityIndex) HasAnyWindow(workerID string) bool {
	byDay, ok := ix.windows[workerID]
	if !ok {
		return false
	}
	for _, ws := range byDay {
		if len(ws) > 0 {
			return true
		}
	}
	return false
}

// overlap reports whether two time ranges intersect
func overlap(aStart, aEnd, bStart, bEnd models.TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}
