// Package pickup resolves the single authoritative pickup moment of a booking
// from a noisy set of candidate fields.
package pickup

import (
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/angelmondragon/crawlops-backend/internal/payload"
)

// Candidate is one source field offered to the resolver. Candidates are
// passed in priority order. Value may be a time.Time, *time.Time, Date,
// *Date, string or *string; anything else carries no signal.
type Candidate struct {
	Source string
	Value  any
}

// Date is a calendar day with no time of day, such as a DATE column.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t as observed in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Result is the resolved pickup moment.
type Result struct {
	// At is expressed in the resolver's location and truncated to the minute.
	At time.Time
	// HasTime is false when only a calendar day was known; At is then local midnight.
	HasTime bool
	Source  string
}

// Resolver parses candidates in a fixed business time zone.
type Resolver struct {
	loc *time.Location
}

// New builds a resolver for the given business time zone.
func New(loc *time.Location) (*Resolver, error) {
	if loc == nil {
		return nil, errors.New("pickup: location required")
	}
	return &Resolver{loc: loc}, nil
}

// Location returns the business time zone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

type kind int

const (
	kindNone kind = iota
	kindInstant
	kindDate
	kindClock
)

type parsed struct {
	kind   kind
	at     time.Time
	hour   int
	minute int
	source string
}

var (
	explicitOffset = regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2}(?:\.\d+)?)?\s*(?:Z|[+-]\d{2}:\d{2})$`)
	numericDate    = regexp.MustCompile(`\d{1,4}[/.-]\d{1,2}[/.-]\d{2,4}`)
	isoDate        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoDateTime    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?$`)
	looseDateTime  = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})[ T](\d{1,2}:\d{2})`)
	looseDate      = regexp.MustCompile(`(?:^|\D)(\d{4}-\d{2}-\d{2})(?:\D|$)`)
	clockColon     = regexp.MustCompile(`(?:^|[^\d:])(\d{1,2}):(\d{2})(?::\d{2})?(?:\s*(AM|PM))?(?:[^\d:]|$)`)
	clockDotted    = regexp.MustCompile(`^(\d{1,2})\.(\d{2})(?:\s*(AM|PM))?$`)
	clockMeridiem  = regexp.MustCompile(`(?:^|\D)(\d{1,2})\s*(AM|PM)\b`)
)

// Resolve returns the best pickup moment among candidates, or false when
// none carries a usable date. It never substitutes the current date.
//
// Timed instants win over bare dates; among timed instants the earliest
// wins. A bare time of day is attached to the highest-priority candidate
// that resolved to a calendar day.
func (r *Resolver) Resolve(candidates ...Candidate) (Result, bool) {
	var instants, dates, clocks []parsed
	for _, c := range candidates {
		p := r.parse(c.Value)
		p.source = c.Source
		switch p.kind {
		case kindInstant:
			instants = append(instants, p)
		case kindDate:
			dates = append(dates, p)
		case kindClock:
			clocks = append(clocks, p)
		}
	}

	if len(clocks) > 0 {
		if anchor, ok := r.anchor(dates, instants); ok {
			clock := clocks[0]
			y, m, d := anchor.Date()
			instants = append(instants, parsed{
				kind:   kindInstant,
				at:     time.Date(y, m, d, clock.hour, clock.minute, 0, 0, r.loc),
				source: clock.source,
			})
		}
	}

	if best, ok := earliest(instants); ok {
		return Result{At: best.at.In(r.loc).Truncate(time.Minute), HasTime: true, Source: best.source}, true
	}
	if best, ok := earliest(dates); ok {
		return Result{At: best.at.In(r.loc), HasTime: false, Source: best.source}, true
	}
	return Result{}, false
}

func (r *Resolver) anchor(dates, instants []parsed) (time.Time, bool) {
	if len(dates) > 0 {
		return dates[0].at.In(r.loc), true
	}
	if len(instants) > 0 {
		return instants[0].at.In(r.loc), true
	}
	return time.Time{}, false
}

func earliest(items []parsed) (parsed, bool) {
	if len(items) == 0 {
		return parsed{}, false
	}
	best := items[0]
	for _, item := range items[1:] {
		if item.at.Before(best.at) {
			best = item
		}
	}
	return best, true
}

func (r *Resolver) parse(value any) parsed {
	if t, ok := payload.Time(value); ok {
		return parsed{kind: kindInstant, at: t.In(r.loc)}
	}
	switch v := value.(type) {
	case Date:
		return r.fromDate(v)
	case *Date:
		if v == nil {
			return parsed{}
		}
		return r.fromDate(*v)
	case string:
		return r.parseString(v)
	case *string:
		if v == nil {
			return parsed{}
		}
		return r.parseString(*v)
	}
	return parsed{}
}

func (r *Resolver) fromDate(d Date) parsed {
	at := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, r.loc)
	if y, m, day := at.Date(); y != d.Year || m != d.Month || day != d.Day || d.Year <= 0 {
		return parsed{}
	}
	return parsed{kind: kindDate, at: at}
}

// ParseString classifies one free-text candidate.
func (r *Resolver) parseString(raw string) parsed {
	s := sanitize(raw)
	if trivial(s) {
		return parsed{}
	}

	hasOffset := explicitOffset.MatchString(s)
	if hasOffset {
		for _, l := range offsetLayouts {
			t, err := time.Parse(l, s)
			if err != nil {
				continue
			}
			if !plausibleOffset(t) {
				// "20:45-23:00" is a time range, not a zone.
				hasOffset = false
				break
			}
			return parsed{kind: kindInstant, at: t.In(r.loc)}
		}
		// A dated value whose offset cannot be read is no signal.
		if hasOffset && (numericDate.MatchString(s) || monthName.MatchString(s)) {
			return parsed{}
		}
	}

	if isoDate.MatchString(s) {
		if t, err := time.ParseInLocation("2006-01-02", s, r.loc); err == nil {
			return parsed{kind: kindDate, at: t}
		}
		return parsed{}
	}
	if isoDateTime.MatchString(s) {
		for _, l := range isoLocalLayouts {
			if t, err := time.ParseInLocation(l, s, r.loc); err == nil {
				return parsed{kind: kindInstant, at: t}
			}
		}
	}

	for _, l := range strictLayouts {
		t, err := time.ParseInLocation(l.value, s, r.loc)
		if err != nil {
			continue
		}
		if l.dateOnly {
			return parsed{kind: kindDate, at: t}
		}
		return parsed{kind: kindInstant, at: t}
	}

	if !hasOffset {
		if m := looseDateTime.FindStringSubmatch(s); m != nil {
			if t, err := time.ParseInLocation("2006-01-02 15:04", m[1]+" "+m[2], r.loc); err == nil {
				return parsed{kind: kindInstant, at: t}
			}
		}
		if m := looseDate.FindStringSubmatch(s); m != nil {
			if t, err := time.ParseInLocation("2006-01-02", m[1], r.loc); err == nil {
				return parsed{kind: kindDate, at: t}
			}
		}
	}

	if hour, minute, ok := parseClock(s); ok {
		return parsed{kind: kindClock, hour: hour, minute: minute}
	}
	return parsed{}
}

func plausibleOffset(t time.Time) bool {
	_, offset := t.Zone()
	return offset >= -12*3600 && offset <= 14*3600
}

// parseClock extracts a time of day: "20:45", "8:45 PM", "8 PM", or a bare "20.45".
func parseClock(s string) (int, int, bool) {
	if m := clockColon.FindStringSubmatch(s); m != nil {
		return clockParts(m[1], m[2], m[3])
	}
	if m := clockDotted.FindStringSubmatch(s); m != nil {
		return clockParts(m[1], m[2], m[3])
	}
	if m := clockMeridiem.FindStringSubmatch(s); m != nil {
		return clockParts(m[1], "00", m[2])
	}
	return 0, 0, false
}

func clockParts(hourRaw, minuteRaw, meridiem string) (int, int, bool) {
	hour, err := strconv.Atoi(hourRaw)
	if err != nil {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(minuteRaw)
	if err != nil || minute > 59 {
		return 0, 0, false
	}
	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	}
	if hour > 23 {
		return 0, 0, false
	}
	return hour, minute, true
}
