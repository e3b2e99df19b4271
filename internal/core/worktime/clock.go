package worktime

import (
	"fmt"
	"math"
	"time"

	"attendance.service/internal/core/model"
)

// Local is the fixed +09:00 offset all work dates and local times are read in.
var Local = time.FixedZone("JST", 9*60*60)

const DateLayout = "2006-01-02"

// WorkDate returns the YYYY-MM-DD work date of an instant.
func WorkDate(t time.Time) string {
	return t.In(Local).Format(DateLayout)
}

// FormatHM renders an instant as local HH:MM, or "" for nil.
func FormatHM(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(Local).Format("15:04")
}

// FormatHHMM renders minutes as H:MM. Negative and fractional minutes are floored at zero.
func FormatHHMM(minutes float64) string {
	m := int(math.Max(0, math.Floor(minutes)))
	return fmt.Sprintf("%d:%02d", m/60, m%60)
}

// StoredDayMinutes derives gross, net and overtime minutes from a stored day.
// Days missing either end count as zero.
func StoredDayMinutes(d model.AttendanceDay) (gross, net, overtime float64) {
	if d.InAt != nil && d.OutAt != nil {
		gross = math.Max(0, minutesBetween(*d.InAt, *d.OutAt))
	}
	net = math.Max(0, gross-float64(d.BreakMinutes))
	overtime = math.Max(0, net-StandardDayMinutes)
	return gross, net, overtime
}
