// Package schoolday resolves the single school day a contact-log entry may be written for.
package schoolday

import "time"

// DateLayout is the wire and storage format for calendar days.
const DateLayout = "2006-01-02"

// maxWalk bounds the look-back so a misbehaving oracle cannot stall resolution.
const maxWalk = 366

// HolidayOracle reports whether a calendar day is a non-business public holiday.
type HolidayOracle interface {
	IsHoliday(day time.Time) bool
}

// OracleFunc adapts a plain function to HolidayOracle.
type OracleFunc func(day time.Time) bool

// IsHoliday implements HolidayOracle.
func (f OracleFunc) IsHoliday(day time.Time) bool { return f(day) }

// Date truncates t to midnight of its calendar day in loc.
func Date(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// CalendarDay drops the zone from t's calendar day, returning it at midnight UTC.
// Stored days carry no zone, so values compared or serialised against them go through here.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay compares calendar days, ignoring clock time and zone.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Key formats the calendar day of t.
func Key(t time.Time) string {
	return t.Format(DateLayout)
}

// IsWeekend reports Saturday or Sunday.
func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsSchoolDay reports whether day is neither a weekend nor a holiday. A nil oracle knows no holidays.
func IsSchoolDay(day time.Time, oracle HolidayOracle) bool {
	if IsWeekend(day) {
		return false
	}
	return oracle == nil || !oracle.IsHoliday(day)
}

// PreviousSchoolDay returns the most recent school day strictly before ref.
//
// If the oracle reports a full year of consecutive holidays the walk gives up on it
// and returns the latest weekday before ref instead.
func PreviousSchoolDay(ref time.Time, oracle HolidayOracle) time.Time {
	start := Date(ref, ref.Location()).AddDate(0, 0, -1)
	day := start
	for i := 0; i < maxWalk; i++ {
		if IsSchoolDay(day, oracle) {
			return day
		}
		day = day.AddDate(0, 0, -1)
	}
	for IsWeekend(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// Resolver binds the calendar to a clock and the school's time zone.
type Resolver struct {
	now func() time.Time
	loc *time.Location
}

// NewResolver builds a Resolver. Nil arguments default to time.Now and UTC.
func NewResolver(now func() time.Time, loc *time.Location) *Resolver {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{now: now, loc: loc}
}

// Now returns the current instant in the school's time zone.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Today returns midnight of the current school-local day.
func (r *Resolver) Today() time.Time {
	return Date(r.now(), r.loc)
}

// Location returns the school's time zone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// TargetDate resolves the day entries are accepted for right now, as a zone-free calendar day.
func (r *Resolver) TargetDate(oracle HolidayOracle) time.Time {
	return CalendarDay(PreviousSchoolDay(r.Today(), oracle))
}
