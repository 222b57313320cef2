package models

import "time"

// Holiday is a non-school day. Recurring holidays repeat on the same month/day every year.
type Holiday struct {
	ID              string    `db:"id" json:"id"`
	Date            time.Time `db:"holiday_date" json:"date"`
	Name            string    `db:"name" json:"name"`
	RecurringYearly bool      `db:"recurring_yearly" json:"recurring_yearly"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
