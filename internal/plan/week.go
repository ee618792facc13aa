package plan

import "time"

// StartDate is day 1 of the 90-day campaign.
var StartDate = Date(2026, time.February, 25)

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// WeekAt returns the campaign week containing today, counted from start.
// Only the calendar dates matter; time of day and location are dropped.
// Days before start fold into week 1.
func WeekAt(today, start time.Time) int {
	days := int((civil(today).Unix() - civil(start).Unix()) / 86400)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}

func civil(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}
