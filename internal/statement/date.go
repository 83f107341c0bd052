package statement

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	fullPeriodPattern = regexp.MustCompile(`(?i)(\d{1,2})\s+([a-z]{3,9})\s+(\d{4})\s+(?:to|-|until)\s+(\d{1,2})\s+([a-z]{3,9})\s+(\d{4})`)
	periodEndPattern  = regexp.MustCompile(`(?i)\bto\s+\d{1,2}\s+([a-z]{3,9})\s+(\d{4})`)
	anyYearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

func parseMonth(name string) (time.Month, bool) {
	if len(name) < 3 {
		return 0, false
	}
	m, ok := monthsByPrefix[strings.ToLower(name[:3])]
	return m, ok
}

// DateResolver turns day/month pairs from statement lines into full dates using the
// statement period's year.
type DateResolver struct {
	now       func() time.Time
	endYear   int
	startYear int
	endMonth  time.Month
}

// NewDateResolver derives the year context from a statement period such as
// "01 January 2024 to 31 January 2024". Without a usable year the current year is used.
func NewDateResolver(statementPeriod string, now func() time.Time) DateResolver {
	if now == nil {
		now = time.Now
	}
	r := DateResolver{now: now, endYear: now().Year()}

	if m := fullPeriodPattern.FindStringSubmatch(statementPeriod); m != nil {
		startYear, _ := strconv.Atoi(m[3])
		endYear, _ := strconv.Atoi(m[6])
		if endMonth, ok := parseMonth(m[5]); ok {
			r.startYear, r.endYear, r.endMonth = startYear, endYear, endMonth
			return r
		}
	}

	if m := periodEndPattern.FindStringSubmatch(statementPeriod); m != nil {
		r.endYear, _ = strconv.Atoi(m[2])
		if endMonth, ok := parseMonth(m[1]); ok {
			r.endMonth = endMonth
		}
		return r
	}

	if years := anyYearPattern.FindAllString(statementPeriod, -1); len(years) > 0 {
		r.endYear, _ = strconv.Atoi(years[len(years)-1])
	}
	return r
}

// Year returns the year assigned to a transaction in the given month.
// In a period spanning two years, months after the closing month belong to the opening year.
func (r DateResolver) Year(month time.Month) int {
	if r.startYear > 0 && r.startYear < r.endYear && r.endMonth > 0 && month > r.endMonth {
		return r.startYear
	}
	return r.endYear
}

// Resolve builds a date. Impossible dates fall back to today and report false.
func (r DateResolver) Resolve(day, month int) (time.Time, bool) {
	if month >= 1 && month <= 12 {
		m := time.Month(month)
		d := time.Date(r.Year(m), m, day, 0, 0, 0, 0, time.UTC)
		if d.Day() == day && d.Month() == m {
			return d, true
		}
	}

	now := r.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	slog.Warn("Invalid statement date, using today",
		"day", day,
		"month", month,
		"fallback", today.Format("2006-01-02"))
	return today, false
}
