package timeutil

import (
	"strings"
	"time"
)

// IST is Indian Standard Time (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

const (
	DateLayout        = "2006-01-02"
	DisplayDateLayout = "02/01/2006"
)

// LoadLocation resolves a configured zone name, falling back to IST
// for empty or unknown names.
func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return IST
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return IST
	}
	return loc
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = IST
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = IST
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), loc)
}

// FormatDate renders the calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDisplayDate renders the calendar date the way Indian invoices
// print it (dd/mm/yyyy).
func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}
