package calendar

import (
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

// FormatISO builds the YYYY-MM-DD value written into a target field.
// month is 0-based.
func FormatISO(year, month, day int) string {
	return fmtYear(year) + "-" + fmt2(month+1) + "-" + fmt2(day)
}

// ParseISO is the inverse of FormatISO. It returns a 0-based month.
func ParseISO(s string) (year, month, day int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, 0, errMissingDate
	}
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return 0, 0, 0, errInvalidDate
	}
	return t.Year(), int(t.Month()) - 1, t.Day(), nil
}

func fmt2(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 99 {
		n = 99
	}
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func fmtYear(y int) string {
	if y < 0 {
		y = 0
	}
	s := strconv.Itoa(y)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

var (
	errMissingDate = &dateParseErr{msg: "missing date"}
	errInvalidDate = &dateParseErr{msg: "invalid date (expected YYYY-MM-DD)"}
)

type dateParseErr struct{ msg string }

func (e *dateParseErr) Error() string { return e.msg }

// ParseYearMonth parses "YYYY-MM" and returns a 0-based month.
func ParseYearMonth(s string) (year, month int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, errMissingDate
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, &dateParseErr{msg: "invalid month (expected YYYY-MM)"}
	}
	return t.Year(), int(t.Month()) - 1, nil
}
