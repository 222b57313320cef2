package schoolday

import "time"

// HolidaySet is an immutable HolidayOracle built from explicit dates and yearly recurring days.
type HolidaySet struct {
	dates     map[string]string
	recurring map[string]string
}

// Holiday names one day off. Recurring holidays match the same month and day every year.
type Holiday struct {
	Date      time.Time
	Name      string
	Recurring bool
}

// NewHolidaySet indexes the supplied holidays.
func NewHolidaySet(holidays ...Holiday) *HolidaySet {
	set := &HolidaySet{
		dates:     make(map[string]string, len(holidays)),
		recurring: make(map[string]string),
	}
	for _, h := range holidays {
		if h.Recurring {
			set.recurring[h.Date.Format("01-02")] = h.Name
			continue
		}
		set.dates[Key(h.Date)] = h.Name
	}
	return set
}

// IsHoliday implements HolidayOracle.
func (s *HolidaySet) IsHoliday(day time.Time) bool {
	_, ok := s.Name(day)
	return ok
}

// Name returns the holiday name for day, if any.
func (s *HolidaySet) Name(day time.Time) (string, bool) {
	if s == nil {
		return "", false
	}
	if name, ok := s.dates[Key(day)]; ok {
		return name, true
	}
	name, ok := s.recurring[day.Format("01-02")]
	return name, ok
}

// Len reports how many holiday rules the set holds.
func (s *HolidaySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dates) + len(s.recurring)
}
