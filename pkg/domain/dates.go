package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Text layouts used by consultation records.
const (
	ServiceDateLayout = "01-02-2006"
	CapturedAtLayout  = "01-02-2006 15:04:05"
)

var serviceDatePattern = regexp.MustCompile(`^(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])-(\d{4})$`)

// ParseServiceDate converts an MM-DD-YYYY service date into a calendar date at
// midnight in loc. The pattern allows days a month does not have (02-31);
// those normalise forward the way time.Date does.
func ParseServiceDate(s string, loc *time.Location) (time.Time, error) {
	m := serviceDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("service date %q not in MM-DD-YYYY format", s)
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), nil
}

// FormatServiceDate renders t as MM-DD-YYYY.
func FormatServiceDate(t time.Time) string { return t.Format(ServiceDateLayout) }

// FormatCapturedAt renders t as MM-DD-YYYY HH:MM:SS.
func FormatCapturedAt(t time.Time) string { return t.Format(CapturedAtLayout) }
