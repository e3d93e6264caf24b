package scheduler

import (
	"testing"
	"time"

	"github.com/jvanleeuwen/roster-api-go/pkg/models"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := models.ParseTimeOfDay("08:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay failed: %v", err)
	}
	if int(got) != 8*60+30 {
		t.Errorf("Expected 510 minutes, got %d", int(got))
	}
	if got.String() != "08:30" {
		t.Errorf("Expected round trip to 08:30, got %s", got)
	}

	for _, bad := range []string{"25:00", "08:61", "half past eight", ""} {
		if _, err := models.ParseTimeOfDay(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestWindowsForSortsByStart(t *testing.T) {
	ix := NewAvailabilityIndex([]models.Window{
		window("w-a", time.Monday, "14:00", "18:00"),
		window("w-a", time.Monday, "08:00", "12:00"),
	})

	ws := ix.WindowsFor("w-a", time.Monday)
	if len(ws) != 2 {
		t.Fatalf("Expected 2 windows, got %d", len(ws))
	}
	if ws[0].Start > ws[1].Start {
		t.Errorf("Windows not sorted by start time")
	}
}

func TestIsAvailable(t *testing.T) {
	ix := NewAvailabilityIndex([]models.Window{
		window("w-a", time.Monday, "08:00", "16:00"),
	})

	if !ix.IsAvailable("w-a", time.Monday) {
		t.Error("Expected w-a available on Monday")
	}
	if ix.IsAvailable("w-a", time.Tuesday) {
		t.Error("Expected w-a unavailable on Tuesday")
	}
	if ix.IsAvailable("w-b", time.Monday) {
		t.Error("Expected unknown worker unavailable")
	}
}

func TestWindowContaining(t *testing.T) {
	ix := NewAvailabilityIndex([]models.Window{
		window("w-a", time.Monday, "08:00", "12:00"),
		window("w-a", time.Monday, "14:00", "18:00"),
	})

	start, _ := models.ParseTimeOfDay("15:00")
	end, _ := models.ParseTimeOfDay("17:00")
	win, ok := ix.WindowContaining("w-a", time.Monday, start, end)
	if !ok || win.Start.String() != "14:00" {
		t.Errorf("Expected the afternoon window, got %+v ok=%v", win, ok)
	}

	// Spans the gap between the two windows.
	start, _ = models.ParseTimeOfDay("11:00")
	end, _ = models.ParseTimeOfDay("15:00")
	if _, ok := ix.WindowContaining("w-a", time.Monday, start, end); ok {
		t.Error("Expected no single window to contain a range spanning the gap")
	}
}

func TestHasAnyWindow(t *testing.T) {
	ix := NewAvailabilityIndex([]models.Window{
		window("w-a", time.Friday, "08:00", "16:00"),
	})

	if !ix.HasAnyWindow("w-a") {
		t.Error("Expected w-a to have a window")
	}
	if ix.HasAnyWindow("w-b") {
		t.Error("Expected w-b to have none")
	}
}
