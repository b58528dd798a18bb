package menu

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day, stored as midnight UTC and encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// NewDate builds a Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" and full RFC 3339 timestamps.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = DateOf(t)
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NextWeekMonday returns the Monday of the week after now. On a Monday it
// is seven days ahead; on a weekend it is the coming Monday.
func NextWeekMonday(now time.Time) Date {
	today := DateOf(now)
	switch wd := today.Weekday(); wd {
	case time.Sunday:
		return today.AddDays(1)
	case time.Saturday:
		return today.AddDays(2)
	default:
		return today.AddDays(8 - int(wd))
	}
}

// Workdays returns Monday to Friday starting at monday.
func Workdays(monday Date) []Date {
	days := make([]Date, WorkdaysPerWeek)
	for i := range days {
		days[i] = monday.AddDays(i)
	}
	return days
}

// WeekEnd returns the Friday of the week starting at monday.
func WeekEnd(monday Date) Date {
	return monday.AddDays(WorkdaysPerWeek - 1)
}

var dayNames = [...]string{
	time.Sunday:    "Neděle",
	time.Monday:    "Pondělí",
	time.Tuesday:   "Úterý",
	time.Wednesday: "Středa",
	time.Thursday:  "Čtvrtek",
	time.Friday:    "Pátek",
	time.Saturday:  "Sobota",
}

// DayName returns the Czech weekday name.
func DayName(d Date) string {
	return dayNames[d.Weekday()]
}
