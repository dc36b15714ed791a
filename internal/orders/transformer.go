// Package orders turns persisted bookings and raw storefront orders into
// channel-independent UnifiedOrder records.
package orders

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/crawlops-backend/internal/addons"
	"github.com/angelmondragon/crawlops-backend/internal/catalog"
	"github.com/angelmondragon/crawlops-backend/internal/party"
	"github.com/angelmondragon/crawlops-backend/internal/payload"
	"github.com/angelmondragon/crawlops-backend/internal/pickup"
	"github.com/angelmondragon/crawlops-backend/pkg/enums"
)

const fallbackCustomer = "Guest"

// pickupKeys are the structured fields that may carry the pickup moment, in
// priority order.
var pickupKeys = []string{
	"pickupDateTime", "pickup_datetime", "pickupTime", "pickup_time",
	"startTime", "start_time", "time",
	"pickupDate", "pickup_date", "date",
}

var scheduleTokens = map[string]struct{}{
	"date": {}, "time": {}, "pickup": {}, "when": {}, "day": {},
	"start": {}, "departure": {}, "slot": {}, "timeslot": {},
}

var labelSplit = regexp.MustCompile(`[^a-z]+`)

// Transformer is immutable and safe for concurrent use.
type Transformer struct {
	resolver *pickup.Resolver
	catalog  *catalog.Catalog
}

// NewTransformer binds the transformer to the business zone and product catalog.
func NewTransformer(loc *time.Location, cat *catalog.Catalog) (*Transformer, error) {
	if cat == nil {
		return nil, errors.New("orders: catalog required")
	}
	resolver, err := pickup.New(loc)
	if err != nil {
		return nil, err
	}
	return &Transformer{resolver: resolver, catalog: cat}, nil
}

// Location returns the business zone dates and timeslots are rendered in.
func (t *Transformer) Location() *time.Location {
	return t.resolver.Location()
}

// source is the channel-neutral input of build.
type source struct {
	id         string
	bookingID  string
	platform   string
	customer   string
	status     enums.BookingStatus
	candidates []pickup.Candidate
	options    []payload.Option
	totals     []*int
	product    catalog.Lookup
	amount     decimal.Decimal
	currency   string
	extras     addons.Extras
}

func (t *Transformer) build(src source) *UnifiedOrder {
	res, ok := t.resolver.Resolve(src.candidates...)
	if !ok {
		return nil
	}

	local := res.At.In(t.resolver.Location())
	identity := t.catalog.Canonicalize(src.product)

	order := &UnifiedOrder{
		ID:                src.id,
		PlatformBookingID: src.bookingID,
		ProductID:         identity.ID,
		ProductName:       identity.Name,
		Date:              local.Format(dateLayout),
		Timeslot:          NoTimeslot,
		CustomerName:      src.customer,
		Platform:          src.platform,
		Status:            src.status,
		Amount:            src.amount,
		Currency:          src.currency,
	}
	if order.CustomerName == "" {
		order.CustomerName = fallbackCustomer
	}
	if res.HasTime {
		order.Timeslot = local.Format(slotLayout)
		utc := res.At.UTC()
		order.PickupDateTime = &utc
	}

	if src.status == enums.BookingStatusRebooked {
		return order
	}

	breakdown := party.Extract(party.Input{Options: src.options, Totals: src.totals, Status: src.status})
	order.MenCount = breakdown.Men
	order.WomenCount = breakdown.Women
	order.Quantity = breakdown.Total()
	order.Extras = addons.Detect(src.options).Add(src.extras)
	return order
}

// isScheduleLabel reports whether an option label names a date or time.
func isScheduleLabel(label string) bool {
	for _, token := range labelSplit.Split(strings.ToLower(label), -1) {
		if _, ok := scheduleTokens[token]; ok {
			return true
		}
	}
	return false
}

func fieldCandidates(prefix string, p payload.Payload) []pickup.Candidate {
	var out []pickup.Candidate
	for _, key := range pickupKeys {
		if v := p.Raw(key); v != nil {
			out = append(out, pickup.Candidate{Source: prefix + key, Value: payload.String(v)})
		}
	}
	return out
}

func optionCandidates(prefix string, options []payload.Option) []pickup.Candidate {
	var out []pickup.Candidate
	for _, opt := range options {
		if isScheduleLabel(opt.Label) {
			out = append(out, pickup.Candidate{Source: prefix + opt.Label, Value: payload.String(opt.Value)})
		}
	}
	return out
}

func intPtr(n int) *int {
	return &n
}
