// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"time"
)

// The pageviews API has no "top" data before July 2015.
// https://wikimedia.org/api/rest_v1/
var apiStartDate = time.Date(2015, 7, 1, 0, 0, 0, 0, time.UTC)

const maxRangeDays = 365

// DateRange is an inclusive range of calendar days, midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses and validates a pair of YYYYMMDD dates. Both must
// be strictly before today, the end must come after the start, the start
// must not predate the API epoch, and the span is capped at maxRangeDays.
func ParseDateRange(start, end string, today time.Time) (DateRange, error) {
	startDay, err := time.ParseInLocation("20060102", start, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q; expected YYYYMMDD", start)
	}
	endDay, err := time.ParseInLocation("20060102", end, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q; expected YYYYMMDD", end)
	}

	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !startDay.Before(today) || !endDay.Before(today) {
		return DateRange{}, fmt.Errorf("dates must be strictly before %s", today.Format("2006-01-02"))
	}
	if !endDay.After(startDay) {
		return DateRange{}, fmt.Errorf("end date must be after start date")
	}
	if startDay.Before(apiStartDate) {
		return DateRange{}, fmt.Errorf("dates must be on or after %s", apiStartDate.Format("2006-01-02"))
	}
	if endDay.Sub(startDay) > maxRangeDays*24*time.Hour {
		return DateRange{}, fmt.Errorf("date range must not exceed %d days", maxRangeDays)
	}

	return DateRange{Start: startDay, End: endDay}, nil
}

// NumDays returns the number of days in the range, both ends counted.
func (r DateRange) NumDays() int {
	return int(r.End.Sub(r.Start)/(24*time.Hour)) + 1
}

// Days returns every day in the range in chronological order.
func (r DateRange) Days() []time.Time {
	days := make([]time.Time, 0, r.NumDays())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
