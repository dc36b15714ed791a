package pickup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func warsaw(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	return loc
}

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := New(warsaw(t))
	require.NoError(t, err)
	return r
}

func TestNewRequiresLocation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil location")
	}
}

func TestResolvePickupTimeField(t *testing.T) {
	r := newResolver(t)
	res, ok := r.Resolve(Candidate{Source: "pickupTime", Value: "2024-06-01 20:45"})
	require.True(t, ok)
	require.True(t, res.HasTime)
	require.Equal(t, "2024-06-01", res.At.Format("2006-01-02"))
	require.Equal(t, "20:45", res.At.Format("15:04"))
	require.Equal(t, "pickupTime", res.Source)
}

func TestResolveNeverFabricatesADate(t *testing.T) {
	r := newResolver(t)
	inputs := []any{
		nil,
		"",
		"n/a",
		"N/A",
		"none",
		"no",
		"TBD",
		"Pub crawl with free shots",
		"Reviewed",
		"20:45",
		"31/02/2024 20:45",
		42,
		map[string]any{"date": "2024-06-01"},
		time.Time{},
	}
	for _, in := range inputs {
		if res, ok := r.Resolve(Candidate{Source: "field", Value: in}); ok {
			t.Fatalf("input %#v resolved to %v", in, res.At)
		}
	}
	if _, ok := r.Resolve(); ok {
		t.Fatal("no candidates must not resolve")
	}
}

func TestResolveFormats(t *testing.T) {
	r := newResolver(t)
	cases := []struct {
		in   string
		want string
	}{
		{in: "2024-06-01T18:45:00Z", want: "2024-06-01 20:45"},
		{in: "2024-06-01T20:45:00+02:00", want: "2024-06-01 20:45"},
		{in: "2024-06-01T20:45:37", want: "2024-06-01 20:45"},
		{in: "2024-06-01T20:45", want: "2024-06-01 20:45"},
		{in: "2024-06-01 20:45:10", want: "2024-06-01 20:45"},
		{in: "01/06/2024 20:45", want: "2024-06-01 20:45"},
		{in: "1-6-2024 20:45", want: "2024-06-01 20:45"},
		{in: "01.06.2024 20:45", want: "2024-06-01 20:45"},
		{in: "01/06/24 20:45", want: "2024-06-01 20:45"},
		{in: "Saturday, June 1, 2024 8:45 PM", want: "2024-06-01 20:45"},
		{in: "Saturday, June 1, 2024 8:45pm", want: "2024-06-01 20:45"},
		{in: "Saturday, 1st June 2024 20:45", want: "2024-06-01 20:45"},
		{in: "Sat, 1 Jun 2024 20:45", want: "2024-06-01 20:45"},
		{in: "Sat, 01 Jun 2024 18:45:00 GMT", want: "2024-06-01 20:45"},
		{in: "1 June 2024 at 20:45", want: "2024-06-01 20:45"},
		{in: "June 1, 2024 at 8:45 PM", want: "2024-06-01 20:45"},
		{in: "2024-06-01 20:45 CEST", want: "2024-06-01 20:45"},
		{in: "2024-06-01 18:45 UTC", want: "2024-06-01 20:45"},
		{in: "2024-06-01 20:45 GMT+2", want: "2024-06-01 20:45"},
		{in: "Written 2024-06-01 20:45", want: "2024-06-01 20:45"},
		{in: "  2024-06-01    20:45  ", want: "2024-06-01 20:45"},
		{in: "Booking for 2024-06-01 20:45 confirmed", want: "2024-06-01 20:45"},
		{in: "2024-06-01 20h45", want: "2024-06-01 20:45"},
		{in: "2024-06-01T20:45:00+0200", want: "2024-06-01 20:45"},
		{in: "2024-06-01T18:45:00+00", want: "2024-06-01 20:45"},
		{in: "2024-06-01T13:45:00.000-0500", want: "2024-06-01 20:45"},
		{in: "2024-06-01 18:45 +0000", want: "2024-06-01 20:45"},
		{in: "Sat 1 Jun 2024 20:45 +02:00", want: "2024-06-01 20:45"},
		{in: "2024-06-01 20:45-23:00", want: "2024-06-01 20:45"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			res, ok := r.Resolve(Candidate{Source: "field", Value: tc.in})
			require.True(t, ok, "expected %q to resolve", tc.in)
			require.True(t, res.HasTime)
			require.Equal(t, tc.want, res.At.Format("2006-01-02 15:04"))
		})
	}
}

func TestResolveKeepsOffsetInstantOnItsOwnDay(t *testing.T) {
	r := newResolver(t)
	res, ok := r.Resolve(
		Candidate{Source: "experienceDate", Value: "2024-07-09"},
		Candidate{Source: "pickupTime", Value: "2024-06-01T20:45:00+0200"},
	)
	require.True(t, ok)
	require.True(t, res.HasTime)
	require.Equal(t, "2024-06-01 20:45", res.At.Format("2006-01-02 15:04"))
	require.Equal(t, "pickupTime", res.Source)
}

func TestResolveUnreadableOffsetValueIsNoSignal(t *testing.T) {
	r := newResolver(t)
	_, ok := r.Resolve(Candidate{Source: "pickupTime", Value: "99/99/2024 20:45+02:00"})
	require.False(t, ok)

	res, ok := r.Resolve(
		Candidate{Source: "experienceDate", Value: "2024-07-09"},
		Candidate{Source: "pickupTime", Value: "99/99/2024 20:45+02:00"},
	)
	require.True(t, ok)
	require.False(t, res.HasTime)
	require.Equal(t, "2024-07-09", res.At.Format("2006-01-02"))
}

func TestResolveDateOnly(t *testing.T) {
	r := newResolver(t)
	for _, in := range []any{"2024-06-01", "01/06/2024", "Saturday, June 1, 2024", Date{Year: 2024, Month: time.June, Day: 1}} {
		res, ok := r.Resolve(Candidate{Source: "date", Value: in})
		require.True(t, ok, "expected %v to resolve", in)
		require.False(t, res.HasTime)
		require.Equal(t, "2024-06-01 00:00", res.At.Format("2006-01-02 15:04"))
		require.Equal(t, r.Location(), res.At.Location())
	}
}

func TestResolveAttachesBareTimeToDate(t *testing.T) {
	r := newResolver(t)
	res, ok := r.Resolve(
		Candidate{Source: "experienceDate", Value: Date{Year: 2024, Month: time.June, Day: 1}},
		Candidate{Source: "pickupTime", Value: "8:45 pm"},
	)
	require.True(t, ok)
	require.True(t, res.HasTime)
	require.Equal(t, "2024-06-01 20:45", res.At.Format("2006-01-02 15:04"))
	require.Equal(t, "pickupTime", res.Source)
}

func TestResolveTimedInstantBeatsBareDate(t *testing.T) {
	r := newResolver(t)
	res, ok := r.Resolve(
		Candidate{Source: "date", Value: "2024-06-01"},
		Candidate{Source: "option", Value: "Sat, 1 Jun 2024 21:00"},
	)
	require.True(t, ok)
	require.True(t, res.HasTime)
	require.Equal(t, "21:00", res.At.Format("15:04"))
}

func TestResolveEarliestWins(t *testing.T) {
	r := newResolver(t)
	start := time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)
	res, ok := r.Resolve(
		Candidate{Source: "startAt", Value: &start},
		Candidate{Source: "option", Value: "2024-06-01 20:45"},
	)
	require.True(t, ok)
	require.Equal(t, "20:45", res.At.Format("15:04"))
	require.Equal(t, "option", res.Source)
}

func TestResolveIsRepeatable(t *testing.T) {
	r := newResolver(t)
	candidates := []Candidate{
		{Source: "a", Value: "n/a"},
		{Source: "b", Value: "2024-06-01"},
		{Source: "c", Value: "20:45"},
	}
	first, ok1 := r.Resolve(candidates...)
	second, ok2 := r.Resolve(candidates...)
	require.Equal(t, ok1, ok2)
	require.True(t, first.At.Equal(second.At))
	require.Equal(t, "b", candidates[1].Source)
}

func TestResolveHonoursZoneParameter(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	r, err := New(tokyo)
	require.NoError(t, err)

	res, ok := r.Resolve(Candidate{Value: "2024-06-01 20:45"})
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 6, 1, 11, 45, 0, 0, time.UTC), res.At.UTC())
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{in: "20:45", hour: 20, minute: 45, ok: true},
		{in: "8:45 PM", hour: 20, minute: 45, ok: true},
		{in: "12:15 AM", hour: 0, minute: 15, ok: true},
		{in: "12 PM", hour: 12, minute: 0, ok: true},
		{in: "20.45", hour: 20, minute: 45, ok: true},
		{in: "Meet at 21:00 by the fountain", hour: 21, minute: 0, ok: true},
		{in: "25:00", ok: false},
		{in: "13 PM", ok: false},
		{in: "no time", ok: false},
	}
	for _, tc := range cases {
		hour, minute, ok := parseClock(sanitize(tc.in))
		if ok != tc.ok {
			t.Fatalf("%q: expected ok=%v got %v", tc.in, tc.ok, ok)
		}
		if ok && (hour != tc.hour || minute != tc.minute) {
			t.Fatalf("%q: expected %02d:%02d got %02d:%02d", tc.in, tc.hour, tc.minute, hour, minute)
		}
	}
}
