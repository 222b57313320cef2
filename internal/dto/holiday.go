package dto

// CreateHolidayRequest registers a non-school day.
type CreateHolidayRequest struct {
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Name            string `json:"name" validate:"required,max=120"`
	RecurringYearly bool   `json:"recurring_yearly"`
}

// HolidayFilter narrows holiday listings to a calendar year. Zero means the current year.
type HolidayFilter struct {
	Year int
}
