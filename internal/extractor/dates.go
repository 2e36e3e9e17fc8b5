package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/grcdigest/internal/models"
)

// DateResult is either Parsed (Date and Source set) or Unparseable.
type DateResult struct {
	Date   time.Time
	Source models.DateSource
	Raw    string
	parsed bool
}

// Parsed reports whether a date was resolved.
func (d DateResult) Parsed() bool {
	return d.parsed
}

// Unparseable is the result when no candidate is present or the chosen string does not parse.
func Unparseable(raw string, source models.DateSource) DateResult {
	return DateResult{Raw: raw, Source: source}
}

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// dateRule pairs a structural matcher with a builder. Once match succeeds the
// builder's answer is final, even when it rejects the input.
type dateRule struct {
	name  string
	match func(s string) ([]string, bool)
	build func(groups []string) (time.Time, bool)
}

var (
	dayMonthYearRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	dayMonNameYearRe  = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3,})-(\d{2,4})$`)
	monNameYearRe     = regexp.MustCompile(`^([A-Za-z]{3,})-(\d{2,4})$`)
	monthFullYearRe   = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{4})$`)
	monthShortYearRe  = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{2})$`)
	timestampMillisRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2}) \d{2}:\d{2}:\d{2}\.\d{3}$`)
)

var dateRules = []dateRule{
	{
		name:  "dd/mm/yyyy",
		match: regexpMatcher(dayMonthYearRe),
		build: func(g []string) (time.Time, bool) {
			return civilDate(expandYear(g[3]), g[2], g[1])
		},
	},
	{
		name:  "dd-mon-yyyy",
		match: regexpMatcher(dayMonNameYearRe),
		build: func(g []string) (time.Time, bool) {
			return namedMonthDate(expandYear(g[3]), g[2], g[1])
		},
	},
	{
		name:  "mon-yyyy",
		match: regexpMatcher(monNameYearRe),
		build: func(g []string) (time.Time, bool) {
			return namedMonthDate(expandYear(g[2]), g[1], "1")
		},
	},
	{
		name: "two tokens",
		match: func(s string) ([]string, bool) {
			if len(strings.Split(s, " ")) != 2 {
				return nil, false
			}
			return []string{s}, true
		},
		build: buildTwoTokenDate,
	},
}

func regexpMatcher(re *regexp.Regexp) func(string) ([]string, bool) {
	return func(s string) ([]string, bool) {
		m := re.FindStringSubmatch(s)
		return m, m != nil
	}
}

// buildTwoTokenDate tries "Month YYYY", "Month YY" then a millisecond timestamp.
// The first sub-pattern that matches decides the result.
func buildTwoTokenDate(g []string) (time.Time, bool) {
	s := g[0]
	if m := monthFullYearRe.FindStringSubmatch(s); m != nil {
		return namedMonthDate(m[2], m[1], "1")
	}
	if m := monthShortYearRe.FindStringSubmatch(s); m != nil {
		return namedMonthDate("20"+m[2], m[1], "1")
	}
	if m := timestampMillisRe.FindStringSubmatch(s); m != nil {
		return civilDate(m[1], m[2], m[3])
	}
	return time.Time{}, false
}

// ParseDate parses a raw register date string. Dates are returned at UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	for _, rule := range dateRules {
		if groups, ok := rule.match(s); ok {
			return rule.build(groups)
		}
	}
	return time.Time{}, false
}

func expandYear(y string) string {
	if len(y) == 2 {
		return "20" + y
	}
	return y
}

func namedMonthDate(year, monthName, day string) (time.Time, bool) {
	if len(monthName) < 3 {
		return time.Time{}, false
	}
	month, ok := monthByPrefix[strings.ToLower(monthName[:3])]
	if !ok {
		return time.Time{}, false
	}
	return civilDate(year, strconv.Itoa(int(month)), day)
}

// civilDate rejects anything time.Date would normalise, such as 31 April or month 13.
func civilDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != time.Month(m) {
		return time.Time{}, false
	}
	return t, true
}

// DateResolver picks the first present date field and parses it.
type DateResolver struct {
	candidates []Candidate[string, models.DateSource]
}

// NewDateResolver creates a resolver with the precedence
// Remediation date, Date first found, Create Date.
func NewDateResolver() *DateResolver {
	return &DateResolver{
		candidates: []Candidate[string, models.DateSource]{
			{Label: models.DateSourceRemediationDate, Extract: nonEmptySimpleValue(FieldRemediationDate)},
			{Label: models.DateSourceDateFirstFound, Extract: nonEmptySimpleValue(FieldDateFirstFound)},
			{Label: models.DateSourceCreateDate, Extract: nonEmptySimpleValue(FieldCreateDate)},
		},
	}
}

func nonEmptySimpleValue(f FieldRef) func(Record) (string, bool) {
	return func(r Record) (string, bool) {
		return r.NonEmptySimpleValue(f)
	}
}

// Resolve returns Parsed{date, source} or Unparseable. There is no fall-through to a
// lower-precedence field once a present field fails to parse.
func (dr *DateResolver) Resolve(rec Record) DateResult {
	raw, source, ok := FirstPresent(rec, dr.candidates)
	if !ok {
		return Unparseable("", "")
	}
	t, ok := ParseDate(raw)
	if !ok {
		return Unparseable(raw, source)
	}
	return DateResult{Date: t, Source: source, Raw: raw, parsed: true}
}
