// Package worktime turns raw punch events into per-day and per-period work
// time figures.
package worktime

import (
	"math"
	"sort"
	"time"

	"attendance.service/internal/core/model"
)

// StandardDayMinutes is the daily threshold above which net time counts as overtime.
const StandardDayMinutes = 8 * 60

// Summarize computes the summary of one work day from the events of a user.
// Events belonging to other dates are ignored and input order does not matter.
// When isCurrentDate is set, an open day and an open break are measured up to now.
func Summarize(events []model.PunchEvent, date string, isCurrentDate bool, now time.Time) model.DaySummary {
	day := make([]model.PunchEvent, 0, len(events))
	for _, ev := range events {
		if ev.WorkDate == date {
			day = append(day, ev)
		}
	}
	sort.SliceStable(day, func(i, j int) bool {
		return day[i].HappenedAt.Before(day[j].HappenedAt)
	})

	var firstIn, lastOut *model.PunchEvent
	for i := range day {
		switch day[i].Type {
		case model.PunchIn:
			if firstIn == nil {
				firstIn = &day[i]
			}
		case model.PunchOut:
			lastOut = &day[i]
		}
	}

	sum := model.DaySummary{Date: date, Status: model.DayNotStarted}

	var workEnd *time.Time
	if firstIn != nil {
		in := firstIn.HappenedAt
		sum.InAt = &in
	}
	if lastOut != nil {
		out := lastOut.HappenedAt
		sum.OutAt = &out
		workEnd = &out
	} else if isCurrentDate && sum.InAt != nil {
		workEnd = &now
	}

	sum.BreakMinutes = breakMinutes(day, isCurrentDate, now)

	if sum.InAt != nil && workEnd != nil {
		sum.GrossMinutes = math.Max(0, minutesBetween(*sum.InAt, *workEnd))
	}
	sum.NetMinutes = math.Max(0, sum.GrossMinutes-sum.BreakMinutes)
	sum.OvertimeMinutes = math.Max(0, sum.NetMinutes-StandardDayMinutes)

	switch {
	case firstIn == nil:
		sum.Status = model.DayNotStarted
	case lastOut != nil:
		sum.Status = model.DayFinished
	case isCurrentDate:
		sum.Status = model.DayInProgress
	default:
		sum.Status = model.DayOutMissing
	}

	sum.Location = dayLocation(day, firstIn)
	return sum
}

// breakMinutes pairs break_in/break_out in chronological order. A trailing open
// break only counts on the current date; on past dates it is incomplete data.
func breakMinutes(day []model.PunchEvent, isCurrentDate bool, now time.Time) float64 {
	var total float64
	var open *time.Time
	for i := range day {
		switch day[i].Type {
		case model.PunchBreakIn:
			t := day[i].HappenedAt
			open = &t
		case model.PunchBreakOut:
			if open != nil {
				total += minutesBetween(*open, day[i].HappenedAt)
				open = nil
			}
		}
	}
	if open != nil && isCurrentDate {
		total += minutesBetween(*open, now)
	}
	return total
}

func dayLocation(day []model.PunchEvent, firstIn *model.PunchEvent) *string {
	if firstIn != nil && firstIn.Location != nil {
		return firstIn.Location
	}
	for i := len(day) - 1; i >= 0; i-- {
		if day[i].Location != nil && *day[i].Location != "" {
			return day[i].Location
		}
	}
	return nil
}

func minutesBetween(from, to time.Time) float64 {
	return to.Sub(from).Minutes()
}
