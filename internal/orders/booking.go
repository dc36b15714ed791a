package orders

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/crawlops-backend/internal/catalog"
	"github.com/angelmondragon/crawlops-backend/internal/payload"
	"github.com/angelmondragon/crawlops-backend/internal/pickup"
	"github.com/angelmondragon/crawlops-backend/pkg/db/models"
	"github.com/angelmondragon/crawlops-backend/pkg/enums"
)

// snapshotTotalKeys may carry a party size recorded at booking time.
var snapshotTotalKeys = []string{"partySizeTotal", "party_size_total", "party_size", "total_guests", "guests", "participants"}

// FromBooking converts a persisted booking. It returns nil when no pickup
// moment can be resolved. The booking is not modified.
func (t *Transformer) FromBooking(b models.Booking) *UnifiedOrder {
	snapshot := payload.Payload(b.AddonsSnapshot)

	var candidates []pickup.Candidate
	if b.ExperienceStartAt != nil {
		candidates = append(candidates, pickup.Candidate{Source: "experience_start_at", Value: *b.ExperienceStartAt})
	}
	candidates = append(candidates, fieldCandidates("addons_snapshot.", snapshot)...)
	if b.ExperienceDate != nil {
		// DATE columns come back as UTC midnight.
		candidates = append(candidates, pickup.Candidate{Source: "experience_date", Value: pickup.DateOf(b.ExperienceDate.UTC())})
	}

	amount := decimal.Zero
	if b.PriceGross != nil {
		amount = *b.PriceGross
	}

	return t.build(source{
		id:         b.ID.String(),
		bookingID:  b.PlatformBookingID,
		platform:   b.Platform,
		customer:   firstNonEmpty(deref(b.GuestName), deref(b.GuestEmail)),
		status:     enums.NormalizeBookingStatus(string(b.Status)),
		candidates: candidates,
		options:    snapshotOptions(snapshot),
		totals:     bookingTotals(b, snapshot),
		product: catalog.Lookup{
			Name:      deref(b.ProductName),
			Variant:   deref(b.ProductVariant),
			ProductID: deref(b.ProductID),
			Platform:  b.Platform,
			BookingID: b.PlatformBookingID,
		},
		amount:   amount,
		currency: b.Currency,
	})
}

// bookingTotals lists the independent party sizes of a booking in trust order.
func bookingTotals(b models.Booking, snapshot payload.Payload) []*int {
	totals := []*int{b.PartySizeTotal}
	if b.PartySizeAdults != nil && b.PartySizeChildren != nil && *b.PartySizeChildren >= 0 {
		totals = append(totals, intPtr(*b.PartySizeAdults+*b.PartySizeChildren))
	}
	totals = append(totals, b.PartySizeAdults)
	for _, key := range snapshotTotalKeys {
		if n, ok := snapshot.Int(key); ok {
			totals = append(totals, intPtr(n))
			break
		}
	}
	return totals
}

// snapshotOptions flattens an add-ons snapshot into options. Schedule and
// total fields are skipped; nested objects are prefixed with their parent key.
func snapshotOptions(snapshot payload.Payload) []payload.Option {
	skip := make(map[string]struct{}, len(pickupKeys)+len(snapshotTotalKeys))
	for _, key := range pickupKeys {
		skip[key] = struct{}{}
	}
	for _, key := range snapshotTotalKeys {
		skip[key] = struct{}{}
	}

	var out []payload.Option
	for _, key := range payload.SortedKeys(snapshot) {
		if _, ok := skip[key]; ok {
			continue
		}
		value := snapshot[key]
		if nested, ok := payload.From(value); ok {
			for _, opt := range payload.OptionsFrom(nested) {
				out = append(out, payload.Option{Label: key + " " + opt.Label, Value: opt.Value})
			}
			continue
		}
		if _, ok := value.([]any); ok {
			out = append(out, payload.OptionsFrom(value)...)
			continue
		}
		out = append(out, payload.Option{Label: key, Value: value})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return payload.String(*s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
