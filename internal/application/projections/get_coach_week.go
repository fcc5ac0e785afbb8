package projections

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stayfit/internal/adapters/storage/session"
	"stayfit/internal/domain/calendar"
	domainSession "stayfit/internal/domain/session"
)

// GetCoachWeekQuery carries query parameters.
// Date is YYYY-MM-DD and defaults to today; Offset shifts the reference date by whole weeks.
type GetCoachWeekQuery struct {
	CoachID string
	Date    string
	Offset  int
}

// CoachWeekCell is one hour slot of one day.
type CoachWeekCell struct {
	Day      time.Time     `json:"day"`
	Hour     int           `json:"hour"`
	Sessions []SessionView `json:"sessions"`
	Priority *SessionView  `json:"priority,omitempty"`
}

// CoachWeekRow is one hour row of the grid.
type CoachWeekRow struct {
	Hour  int             `json:"hour"`
	Label string          `json:"label"`
	Cells []CoachWeekCell `json:"cells"`
}

// GetCoachWeekResult carries the query result.
type GetCoachWeekResult struct {
	Coach     *UserSummary   `json:"coach"`
	Reference string         `json:"reference"`
	Today     string         `json:"today"`
	Prev      string         `json:"prev"`
	Next      string         `json:"next"`
	Start     time.Time      `json:"start"`
	End       time.Time      `json:"end"`
	Days      []time.Time    `json:"days"`
	Rows      []CoachWeekRow `json:"rows"`
	Placed    int            `json:"placed"`
	Sessions  []SessionView  `json:"sessions"`
	Unplaced  []SessionView  `json:"unplaced"`
}

// GetCoachWeekDeps holds dependencies for GetCoachWeek.
type GetCoachWeekDeps struct {
	SessionStore SessionStore
	UserStore    UserStore
	PackStore    PackStore
	Now          func() time.Time
}

// QueryGetCoachWeek buckets all of a coach's sessions into the week containing the reference date.
// PRE: query.CoachID is non-empty; caller already passed the coach-week policy check
// POST: Rows has one entry per grid hour with seven cells each; Sessions lists every coach
// session in store order; Unplaced lists those whose time does not map onto the grid
// INVARIANT: a session appears in at most one cell, and in none when outside the week
func QueryGetCoachWeek(ctx context.Context, query GetCoachWeekQuery, deps GetCoachWeekDeps) (GetCoachWeekResult, error) {
	today := domainSession.DateOnly(deps.Now())
	ref := today
	if strings.TrimSpace(query.Date) != "" {
		d, err := domainSession.ParseDate(query.Date)
		if err != nil {
			return GetCoachWeekResult{}, err
		}
		ref = d
	}
	ref = calendar.ShiftWeek(ref, query.Offset)

	// Fetched unfiltered by date; the week window is applied here.
	sessions, err := deps.SessionStore.List(ctx, session.ListFilter{CoachID: query.CoachID})
	if err != nil {
		return GetCoachWeekResult{}, fmt.Errorf("list coach sessions: %w", err)
	}
	views, err := PopulateSessions(ctx, sessions, PopulateDeps{UserStore: deps.UserStore, PackStore: deps.PackStore})
	if err != nil {
		return GetCoachWeekResult{}, err
	}
	byID := make(map[string]SessionView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	coach, err := newResolver(PopulateDeps{UserStore: deps.UserStore, PackStore: deps.PackStore}).user(ctx, query.CoachID)
	if err != nil {
		return GetCoachWeekResult{}, err
	}

	week := calendar.BuildWeek(ref, sessions)
	result := GetCoachWeekResult{
		Coach:     coach,
		Reference: ref.Format(domainSession.DateLayout),
		Today:     today.Format(domainSession.DateLayout),
		Prev:      calendar.ShiftWeek(ref, -1).Format(domainSession.DateLayout),
		Next:      calendar.ShiftWeek(ref, 1).Format(domainSession.DateLayout),
		Start:     week.Start,
		End:       week.End,
		Days:      week.Days,
		Placed:    week.Count(),
		Sessions:  views,
		Unplaced:  []SessionView{},
	}

	for i, row := range week.Rows {
		r := CoachWeekRow{Hour: week.Hours[i], Label: calendar.HourLabel(week.Hours[i])}
		for _, c := range row {
			cell := CoachWeekCell{Day: c.Day, Hour: c.Hour, Sessions: []SessionView{}}
			for _, s := range c.Sessions {
				cell.Sessions = append(cell.Sessions, byID[s.ID])
			}
			if p, ok := c.Priority(); ok {
				v := byID[p.ID]
				cell.Priority = &v
			}
			r.Cells = append(r.Cells, cell)
		}
		result.Rows = append(result.Rows, r)
	}

	for _, v := range views {
		hour, ok := calendar.ParseHour(v.SessionTime)
		if !ok || hour < calendar.FirstHour || hour > calendar.LastHour {
			result.Unplaced = append(result.Unplaced, v)
		}
	}
	return result, nil
}
