package model

import "time"

// Company owns transactions, accounts and fiscal periods.
type Company struct {
	CreatedAt          time.Time
	Name               string
	RegistrationNumber string
	FiscalPeriods      []FiscalPeriod
	ID                 int64
}

// FiscalPeriod is an accounting period with inclusive start and end dates.
type FiscalPeriod struct {
	StartDate time.Time
	EndDate   time.Time
	Name      string
	ID        int64
	CompanyID int64
	IsClosed  bool
}

// Contains reports whether date falls within the period, both ends inclusive.
// Only the calendar day is compared.
func (p FiscalPeriod) Contains(date time.Time) bool {
	d := truncateDay(date)
	return !d.Before(truncateDay(p.StartDate)) && !d.After(truncateDay(p.EndDate))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
