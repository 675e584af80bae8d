package resolver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Birth date extraction grammar, in priority order. First match wins.
var (
	sepDateRe = regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`)
	// The compact form must be a standalone 8-digit run: a phone or id number
	// must not have a date carved out of its prefix.
	compactDateRe = regexp.MustCompile(`(?:^|[^\d])(\d{8})(?:[^\d]|$)`)
	cjkDateRe     = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日?`)
)

// skipWords terminate an enrichment prompt without an answer.
var skipWords = map[string]struct{}{
	"跳过":   {},
	"不用":   {},
	"skip": {},
	"no":   {},
}

// ExtractBirthDate pulls the first recognizable date out of free text and
// normalizes it to zero-padded "YYYY-MM-DD". A form whose digits do not make
// a calendar date is skipped and the lower-priority forms are still tried;
// "" is returned only when no form yields a valid date.
func ExtractBirthDate(text string) string {
	if m := sepDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := normalizeDate(m[1], m[2], m[3]); ok {
			return d
		}
	}
	if m := compactDateRe.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("20060102", m[1]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if m := cjkDateRe.FindStringSubmatch(text); m != nil {
		if d, ok := normalizeDate(m[1], m[2], m[3]); ok {
			return d
		}
	}
	return ""
}

func normalizeDate(y, m, d string) (string, bool) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. month 13), so round-trip to reject it.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// IsSkipAnswer reports whether the trimmed text is an explicit decline of the
// enrichment follow-up question. Matching is case-insensitive and exact.
func IsSkipAnswer(text string) bool {
	_, ok := skipWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}
