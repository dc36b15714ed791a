package pickup

// layout is one strict template tried against a sanitized candidate.
type layout struct {
	value    string
	dateOnly bool
}

// offsetLayouts carry an explicit zone offset or Zulu marker; their result is trusted verbatim.
var offsetLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2/1/2006 15:04Z07:00",
	"Mon, 2 Jan 2006 15:04:05Z07:00",
	"Mon, 2 Jan 2006 15:04Z07:00",
	"Mon 2 Jan 2006 15:04Z07:00",
	"Monday, January 2, 2006 15:04Z07:00",
	"2 Jan 2006 15:04Z07:00",
	"2 January 2006 15:04Z07:00",
}

// isoLocalLayouts are ISO date-times without an offset, read in the business zone.
var isoLocalLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// strictLayouts is ordered: timed forms before date-only forms, numeric before
// named. Numeric dates are day-first.
var strictLayouts = []layout{
	{value: "2006-1-2 15:04"},
	{value: "2006-1-2 15:04:05"},
	{value: "2006-1-2 3:04 PM"},
	{value: "2006/1/2 15:04"},
	{value: "2006/1/2 15:04:05"},
	{value: "2/1/2006 15:04"},
	{value: "2/1/2006 15:04:05"},
	{value: "2/1/2006 3:04 PM"},
	{value: "2/1/2006 3 PM"},
	{value: "2-1-2006 15:04"},
	{value: "2-1-2006 15:04:05"},
	{value: "2-1-2006 3:04 PM"},
	{value: "2.1.2006 15:04"},
	{value: "2.1.2006 15:04:05"},
	{value: "2/1/06 15:04"},
	{value: "2-1-06 15:04"},
	{value: "2.1.06 15:04"},
	{value: "Monday, January 2, 2006 15:04"},
	{value: "Monday, January 2, 2006 3:04 PM"},
	{value: "Monday, January 2, 2006 3 PM"},
	{value: "Monday, 2 January 2006 15:04"},
	{value: "Monday, 2 January 2006 3:04 PM"},
	{value: "Monday 2 January 2006 15:04"},
	{value: "Mon, Jan 2, 2006 15:04"},
	{value: "Mon, Jan 2, 2006 3:04 PM"},
	{value: "Mon, 2 Jan 2006 15:04"},
	{value: "Mon, 2 Jan 2006 15:04:05"},
	{value: "Mon, 2 Jan 2006 3:04 PM"},
	{value: "Mon 2 Jan 2006 15:04"},
	{value: "January 2, 2006 15:04"},
	{value: "January 2, 2006 3:04 PM"},
	{value: "January 2 2006 15:04"},
	{value: "2 January 2006 15:04"},
	{value: "2 January 2006 3:04 PM"},
	{value: "Jan 2, 2006 15:04"},
	{value: "Jan 2, 2006 3:04 PM"},
	{value: "2 Jan 2006 15:04"},
	{value: "2 Jan 2006 3:04 PM"},

	{value: "2006/1/2", dateOnly: true},
	{value: "2/1/2006", dateOnly: true},
	{value: "2-1-2006", dateOnly: true},
	{value: "2.1.2006", dateOnly: true},
	{value: "2/1/06", dateOnly: true},
	{value: "2.1.06", dateOnly: true},
	{value: "Monday, January 2, 2006", dateOnly: true},
	{value: "Monday, 2 January 2006", dateOnly: true},
	{value: "Monday 2 January 2006", dateOnly: true},
	{value: "Mon, Jan 2, 2006", dateOnly: true},
	{value: "Mon, 2 Jan 2006", dateOnly: true},
	{value: "Mon 2 Jan 2006", dateOnly: true},
	{value: "January 2, 2006", dateOnly: true},
	{value: "January 2 2006", dateOnly: true},
	{value: "2 January 2006", dateOnly: true},
	{value: "Jan 2, 2006", dateOnly: true},
	{value: "2 Jan 2006", dateOnly: true},
}
