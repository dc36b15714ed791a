package pickup

import (
	"regexp"
	"strings"
)

var (
	reviewPrefix   = regexp.MustCompile(`(?i)^(?:written|reviewed)\b[\s:,-]*`)
	zoneWithOffset = regexp.MustCompile(`\b(?:GMT|UTC)\s*([+-])(\d{1,2})(?::?(\d{2}))?\b`)
	zoneZulu       = regexp.MustCompile(`\b(?:GMT|UTC)\b`)
	zoneNames      = regexp.MustCompile(`\b(?:CEST|CET|BST|EEST|EET|WEST|WET)\b`)
	meridiem       = regexp.MustCompile(`(?i)(\d)\s*([ap])\.?m\.?(?:\b|$)`)
	ordinal        = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\b`)
	atJoiner       = regexp.MustCompile(`(?i)\s+(?:at|@|-)\s+(\d{1,2}(?:[:.]\d{2})?)`)
	commaBeforeHM  = regexp.MustCompile(`,\s*(\d{1,2}:\d{2})`)
	hourMarker     = regexp.MustCompile(`\b(\d{1,2})h(\d{2})\b`)
	trailingOffset = regexp.MustCompile(`\s+(Z|[+-]\d{2}:\d{2})$`)
	compactOffset  = regexp.MustCompile(`(\d:\d{2}(?::\d{2}(?:\.\d+)?)?)\s*([+-])(\d{2})(\d{2})?$`)
	whitespace     = regexp.MustCompile(`\s+`)

	digit     = regexp.MustCompile(`\d`)
	monthName = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\b`)
)

var trivialValues = map[string]struct{}{
	"":          {},
	"-":         {},
	"--":        {},
	"--:--":     {},
	"n/a":       {},
	"na":        {},
	"none":      {},
	"no":        {},
	"null":      {},
	"nil":       {},
	"undefined": {},
	"unknown":   {},
	"tbd":       {},
	"tba":       {},
	"false":     {},
	"0":         {},
}

// sanitize normalises a free-text candidate so the strict templates can
// match it. Zone names that imply the business zone are dropped; GMT/UTC
// markers become explicit offsets.
func sanitize(raw string) string {
	s := whitespace.ReplaceAllString(strings.TrimSpace(raw), " ")
	s = reviewPrefix.ReplaceAllString(s, "")
	s = zoneWithOffset.ReplaceAllStringFunc(s, func(match string) string {
		parts := zoneWithOffset.FindStringSubmatch(match)
		hours := parts[2]
		if len(hours) == 1 {
			hours = "0" + hours
		}
		minutes := parts[3]
		if minutes == "" {
			minutes = "00"
		}
		return " " + parts[1] + hours + ":" + minutes
	})
	s = zoneZulu.ReplaceAllString(s, " Z")
	s = zoneNames.ReplaceAllString(s, "")
	s = hourMarker.ReplaceAllString(s, "$1:$2")
	s = ordinal.ReplaceAllString(s, "$1")
	s = meridiem.ReplaceAllStringFunc(s, func(match string) string {
		parts := meridiem.FindStringSubmatch(match)
		return parts[1] + " " + strings.ToUpper(parts[2]) + "M"
	})
	s = atJoiner.ReplaceAllString(s, " $1")
	s = commaBeforeHM.ReplaceAllString(s, " $1")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
	s = strings.Trim(s, " ,;")
	s = expandOffset(s)
	s = trailingOffset.ReplaceAllString(s, "$1")
	return s
}

// expandOffset rewrites a trailing "+0200" or "+02" offset as "+02:00".
func expandOffset(s string) string {
	m := compactOffset.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	clock := s[m[2]:m[3]]
	sign := s[m[4]:m[5]]
	hours := s[m[6]:m[7]]
	minutes := "00"
	if m[8] >= 0 {
		minutes = s[m[8]:m[9]]
	}
	return s[:m[0]] + clock + sign + hours + ":" + minutes
}

// trivial reports candidates that cannot carry a date: placeholder words, or
// text with neither a digit nor a month name.
func trivial(s string) bool {
	if _, ok := trivialValues[strings.ToLower(s)]; ok {
		return true
	}
	return !digit.MatchString(s) && !monthName.MatchString(s)
}
