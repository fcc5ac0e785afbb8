package calendar

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"stayfit/internal/domain/session"
)

// Grid bounds, inclusive.
const (
	FirstHour   = 8
	LastHour    = 22
	DaysPerWeek = 7
)

var hourPattern = regexp.MustCompile(`^(\d+)(AM|PM)$`)

// Cell is one hour slot on one day of the grid.
type Cell struct {
	Day      time.Time         `json:"day"`
	Hour     int               `json:"hour"`
	Sessions []session.Session `json:"sessions"`
}

// Priority returns the session a cell should display, see PrioritySession.
func (c Cell) Priority() (session.Session, bool) {
	return PrioritySession(c.Sessions)
}

// Week is a coach's Monday-start week bucketed into hour rows.
// INVARIANT: len(Rows) == LastHour-FirstHour+1 and every row has DaysPerWeek cells.
type Week struct {
	Start time.Time   `json:"start"`
	End   time.Time   `json:"end"`
	Days  []time.Time `json:"days"`
	Hours []int       `json:"hours"`
	Rows  [][]Cell    `json:"rows"`
}

// ParseHour converts an hour label like "8AM" or "12PM" to a 24-hour clock hour.
// PRE: none
// POST: returns (hour, true) for labels with an hour of 1..12 followed by AM or PM;
// 12AM is 0 and 12PM is 12. Anything else returns (0, false).
func ParseHour(label string) (int, bool) {
	m := hourPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(label)))
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h < 1 || h > 12 {
		return 0, false
	}
	switch {
	case m[2] == "AM" && h == 12:
		return 0, true
	case m[2] == "PM" && h != 12:
		return h + 12, true
	}
	return h, true
}

// HourLabel formats a clock hour the way session times are written, e.g. 14 -> "2PM".
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12AM"
	case hour < 12:
		return strconv.Itoa(hour) + "AM"
	case hour == 12:
		return "12PM"
	}
	return strconv.Itoa(hour-12) + "PM"
}

// WeekStart returns the Monday (00:00 UTC) of the week containing ref.
func WeekStart(ref time.Time) time.Time {
	day := session.DateOnly(ref)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ShiftWeek moves ref by whole weeks. Only the reference date changes.
func ShiftWeek(ref time.Time, weeks int) time.Time {
	return ref.AddDate(0, 0, 7*weeks)
}

// Hours lists the grid rows in order.
func Hours() []int {
	hours := make([]int, 0, LastHour-FirstHour+1)
	for h := FirstHour; h <= LastHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// BuildWeek buckets sessions into the week containing ref.
// PRE: sessions are in store order
// POST: every session whose date falls in the week and whose time parses to a grid hour
// appears in exactly one cell, preserving input order within the cell; all other
// sessions appear in none.
func BuildWeek(ref time.Time, sessions []session.Session) Week {
	start := WeekStart(ref)
	w := Week{
		Start: start,
		End:   start.AddDate(0, 0, DaysPerWeek),
		Hours: Hours(),
	}
	for d := 0; d < DaysPerWeek; d++ {
		w.Days = append(w.Days, start.AddDate(0, 0, d))
	}
	w.Rows = make([][]Cell, len(w.Hours))
	for i, h := range w.Hours {
		w.Rows[i] = make([]Cell, DaysPerWeek)
		for d, day := range w.Days {
			w.Rows[i][d] = Cell{Day: day, Hour: h}
		}
	}

	for _, s := range sessions {
		hour, ok := ParseHour(s.SessionTime)
		if !ok || hour < FirstHour || hour > LastHour {
			continue
		}
		day := s.Day()
		if day.Before(w.Start) || !day.Before(w.End) {
			continue
		}
		d := int(day.Sub(w.Start).Hours() / 24)
		cell := &w.Rows[hour-FirstHour][d]
		cell.Sessions = append(cell.Sessions, s)
	}
	return w
}

// Cell returns the cell for a weekday index (0 = Monday) and clock hour.
func (w Week) Cell(day, hour int) (Cell, bool) {
	if day < 0 || day >= DaysPerWeek || hour < FirstHour || hour > LastHour {
		return Cell{}, false
	}
	return w.Rows[hour-FirstHour][day], true
}

// Count returns how many sessions were placed on the grid.
func (w Week) Count() int {
	n := 0
	for _, row := range w.Rows {
		for _, c := range row {
			n += len(c.Sessions)
		}
	}
	return n
}

// PrioritySession picks the session shown for a cell: the first scheduled one, else
// the first completed one, else the first of any status.
func PrioritySession(cell []session.Session) (session.Session, bool) {
	if len(cell) == 0 {
		return session.Session{}, false
	}
	for _, status := range []string{session.StatusScheduled, session.StatusCompleted} {
		for _, s := range cell {
			if s.Status == status {
				return s, true
			}
		}
	}
	return cell[0], true
}
