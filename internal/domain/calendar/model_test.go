package calendar

import (
	"testing"
	"time"

	"stayfit/internal/domain/session"
)

// TestParseHour tests the hour label parser.
func TestParseHour(t *testing.T) {
	tests := []struct {
		label  string
		want   int
		wantOK bool
	}{
		{"8AM", 8, true},
		{"12PM", 12, true},
		{"12AM", 0, true},
		{"2PM", 14, true},
		{"11PM", 23, true},
		{"1am", 1, true},
		{" 9pm ", 21, true},
		{"13PM", 0, false},
		{"0AM", 0, false},
		{"8", 0, false},
		{"8 AM", 0, false},
		{"eight", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseHour(tt.label)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseHour(%q) = (%d, %v), want (%d, %v)", tt.label, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestHourLabel_RoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		got, ok := ParseHour(HourLabel(h))
		if !ok || got != h {
			t.Errorf("ParseHour(HourLabel(%d)) = (%d, %v)", h, got, ok)
		}
	}
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 7; d++ {
		ref := monday.AddDate(0, 0, d).Add(15 * time.Hour)
		if got := WeekStart(ref); !got.Equal(monday) {
			t.Errorf("WeekStart(%s) = %s, want %s", ref.Weekday(), got, monday)
		}
	}
}

func TestShiftWeek(t *testing.T) {
	ref := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if got := ShiftWeek(ref, -1); !got.Equal(ref.AddDate(0, 0, -7)) {
		t.Errorf("ShiftWeek(-1) = %s", got)
	}
	if got := WeekStart(ShiftWeek(ref, 1)); !got.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("next week start = %s", got)
	}
}

// TestBuildWeek verifies every placeable session lands in exactly one cell.
func TestBuildWeek(t *testing.T) {
	ref := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC) // Wednesday
	day := func(d int) time.Time { return time.Date(2026, 3, 9+d, 0, 0, 0, 0, time.UTC) }
	sessions := []session.Session{
		{ID: "mon8", SessionDate: day(0), SessionTime: "8AM", Status: session.StatusScheduled},
		{ID: "sun10pm", SessionDate: day(6), SessionTime: "10PM", Status: session.StatusScheduled},
		{ID: "wed2pm", SessionDate: day(2), SessionTime: "2PM", Status: session.StatusCompleted},
		{ID: "early", SessionDate: day(1), SessionTime: "7AM", Status: session.StatusScheduled},
		{ID: "late", SessionDate: day(1), SessionTime: "11PM", Status: session.StatusScheduled},
		{ID: "garbled", SessionDate: day(1), SessionTime: "morning", Status: session.StatusScheduled},
		{ID: "prevweek", SessionDate: day(-1), SessionTime: "9AM", Status: session.StatusScheduled},
		{ID: "nextweek", SessionDate: day(7), SessionTime: "9AM", Status: session.StatusScheduled},
	}

	w := BuildWeek(ref, sessions)

	if len(w.Rows) != 15 || len(w.Rows[0]) != 7 {
		t.Fatalf("grid = %dx%d, want 15x7", len(w.Rows), len(w.Rows[0]))
	}
	if !w.Start.Equal(day(0)) || !w.End.Equal(day(7)) {
		t.Errorf("window = %s..%s", w.Start, w.End)
	}
	if w.Count() != 3 {
		t.Errorf("placed %d sessions, want 3", w.Count())
	}

	placements := map[string]int{}
	for _, row := range w.Rows {
		for _, c := range row {
			for _, s := range c.Sessions {
				placements[s.ID]++
			}
		}
	}
	for _, id := range []string{"mon8", "sun10pm", "wed2pm"} {
		if placements[id] != 1 {
			t.Errorf("%s placed %d times, want 1", id, placements[id])
		}
	}
	for _, id := range []string{"early", "late", "garbled", "prevweek", "nextweek"} {
		if placements[id] != 0 {
			t.Errorf("%s should not be on the grid", id)
		}
	}

	c, ok := w.Cell(2, 14)
	if !ok || len(c.Sessions) != 1 || c.Sessions[0].ID != "wed2pm" {
		t.Errorf("Cell(Wed, 14) = %+v", c)
	}
}

// TestPrioritySession tests which session a cell displays.
func TestPrioritySession(t *testing.T) {
	mk := func(id, status string) session.Session { return session.Session{ID: id, Status: status} }
	tests := []struct {
		name   string
		cell   []session.Session
		wantID string
	}{
		{"scheduled beats cancelled", []session.Session{mk("a", session.StatusCancelled), mk("b", session.StatusScheduled)}, "b"},
		{"scheduled beats completed", []session.Session{mk("a", session.StatusCompleted), mk("b", session.StatusScheduled)}, "b"},
		{"completed beats cancelled", []session.Session{mk("a", session.StatusCancelled), mk("b", session.StatusCompleted)}, "b"},
		{"only cancelled picks first", []session.Session{mk("a", session.StatusCancelled), mk("b", session.StatusCancelled)}, "a"},
		{"first scheduled wins", []session.Session{mk("a", session.StatusScheduled), mk("b", session.StatusScheduled)}, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PrioritySession(tt.cell)
			if !ok || got.ID != tt.wantID {
				t.Errorf("PrioritySession() = %q, %v; want %q", got.ID, ok, tt.wantID)
			}
		})
	}

	if _, ok := PrioritySession(nil); ok {
		t.Error("empty cell should have no priority session")
	}
}
