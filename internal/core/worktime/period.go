package worktime

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"attendance.service/internal/core/model"
)

// ErrInvalidMonth is returned for month input that is not YYYY-MM.
var ErrInvalidMonth = errors.New("month must be formatted as YYYY-MM")

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Period is a closed range of work dates used for payroll export.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// Contains reports whether the YYYY-MM-DD date falls inside the period.
func (p Period) Contains(date string) bool {
	return date >= p.Start && date <= p.End
}

// PayrollPeriod maps a YYYY-MM month to the 16th of that month through the
// 15th of the following one.
func PayrollPeriod(month string) (Period, error) {
	y, m, err := parseMonth(month)
	if err != nil {
		return Period{}, err
	}

	ny, nm := y, m+1
	if m == 12 {
		ny, nm = y+1, 1
	}

	p := Period{
		Start: fmt.Sprintf("%04d-%02d-16", y, m),
		End:   fmt.Sprintf("%04d-%02d-15", ny, nm),
	}
	p.Label = p.Start + "~" + p.End
	return p, nil
}

func parseMonth(month string) (int, int, error) {
	month = strings.TrimSpace(month)
	if !monthPattern.MatchString(month) {
		return 0, 0, ErrInvalidMonth
	}
	y, _ := strconv.Atoi(month[:4])
	m, _ := strconv.Atoi(month[5:])
	if m < 1 || m > 12 {
		return 0, 0, ErrInvalidMonth
	}
	return y, m, nil
}

// MonthTotal is the rollup of day summaries sharing a YYYY-MM prefix.
type MonthTotal struct {
	Month           string  `json:"month"`
	Days            int     `json:"days"`
	NetMinutes      float64 `json:"netMinutes"`
	OvertimeMinutes float64 `json:"overtimeMinutes"`
}

// RollupMonths groups summaries by month and sums net and overtime minutes.
// Results are ordered by month ascending.
func RollupMonths(summaries []model.DaySummary) []MonthTotal {
	byMonth := make(map[string]*MonthTotal)
	for _, s := range summaries {
		if len(s.Date) < 7 {
			continue
		}
		key := s.Date[:7]
		t, ok := byMonth[key]
		if !ok {
			t = &MonthTotal{Month: key}
			byMonth[key] = t
		}
		t.Days++
		t.NetMinutes += s.NetMinutes
		t.OvertimeMinutes += s.OvertimeMinutes
	}

	out := make([]MonthTotal, 0, len(byMonth))
	for _, t := range byMonth {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// MonthRange returns the first and last calendar date of a YYYY-MM month.
func MonthRange(month string) (from, to string, err error) {
	y, m, err := parseMonth(month)
	if err != nil {
		return "", "", err
	}
	first := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, Local)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout), nil
}
