package orders

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/crawlops-backend/internal/addons"
	"github.com/angelmondragon/crawlops-backend/internal/catalog"
	"github.com/angelmondragon/crawlops-backend/internal/payload"
	"github.com/angelmondragon/crawlops-backend/pkg/db/models"
	"github.com/angelmondragon/crawlops-backend/pkg/enums"
	"github.com/angelmondragon/crawlops-backend/pkg/types"
)

func warsaw(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	return loc
}

func newTestTransformer(t *testing.T) *Transformer {
	t.Helper()
	tr, err := NewTransformer(warsaw(t), catalog.Default())
	require.NoError(t, err)
	return tr
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestNewTransformerRequiresDependencies(t *testing.T) {
	_, err := NewTransformer(nil, catalog.Default())
	require.Error(t, err)

	_, err = NewTransformer(time.UTC, nil)
	require.Error(t, err)
}

func TestFromStorefrontPickupTimeInBusinessZone(t *testing.T) {
	tr := newTestTransformer(t)
	order := payload.Payload{
		"id":               float64(5001),
		"name":             "#1001",
		"pickupTime":       "2024-06-01 20:45",
		"financial_status": "paid",
		"currency":         "PLN",
		"customer":         map[string]any{"first_name": "Ana", "last_name": "Lopez"},
	}
	item := payload.Payload{
		"id":       float64(11),
		"title":    "Kraków Pub Crawl",
		"quantity": float64(2),
		"price":    "59.00",
		"properties": []any{
			map[string]any{"name": "Men", "value": "1"},
			map[string]any{"name": "Women", "value": "1"},
		},
	}

	got := tr.FromStorefront(order, item)
	require.NotNil(t, got)
	assert.Equal(t, "2024-06-01", got.Date)
	assert.Equal(t, "20:45", got.Timeslot)
	require.NotNil(t, got.PickupDateTime)
	assert.Equal(t, time.Date(2024, 6, 1, 18, 45, 0, 0, time.UTC), *got.PickupDateTime)
	assert.Equal(t, "storefront-5001-11", got.ID)
	assert.Equal(t, "#1001", got.PlatformBookingID)
	assert.Equal(t, "pub-crawl", got.ProductID)
	assert.Equal(t, "Pub Crawl", got.ProductName)
	assert.Equal(t, "Ana Lopez", got.CustomerName)
	assert.Equal(t, "storefront", got.Platform)
	assert.Equal(t, enums.BookingStatusConfirmed, got.Status)
	assert.Equal(t, 1, got.MenCount)
	assert.Equal(t, 1, got.WomenCount)
	assert.Equal(t, 2, got.Quantity)
	assert.True(t, decimal.NewFromInt(118).Equal(got.Amount), got.Amount.String())
	assert.Equal(t, "PLN", got.Currency)
}

func TestFromBookingReconcilesPartyAndDetectsAddons(t *testing.T) {
	tr := newTestTransformer(t)
	price := decimal.RequireFromString("179.00")
	b := models.Booking{
		ID:                uuid.MustParse("5f0c6a9e-3b0b-4d7e-9a55-0d7f3c1e2a10"),
		Platform:          "GetYourGuide",
		PlatformBookingID: "GYG-1",
		Status:            enums.BookingStatusConfirmed,
		ExperienceStartAt: timePtr(time.Date(2024, 6, 1, 18, 45, 0, 0, time.UTC)),
		PartySizeTotal:    intPtr(10),
		GuestName:         strPtr("  Jan Kowalski "),
		ProductName:       strPtr("Kraków: Pub Crawl with Free Shots | GetYourGuide"),
		PriceGross:        &price,
		Currency:          "EUR",
		AddonsSnapshot: types.JSONMap{
			"options": []any{
				map[string]any{"label": "Men", "value": float64(3)},
				map[string]any{"label": "Women", "value": float64(2)},
				map[string]any{"label": "T-Shirt (Size L)", "value": "2"},
			},
		},
	}

	got := tr.FromBooking(b)
	require.NotNil(t, got)
	assert.Equal(t, "5f0c6a9e-3b0b-4d7e-9a55-0d7f3c1e2a10", got.ID)
	assert.Equal(t, "2024-06-01", got.Date)
	assert.Equal(t, "20:45", got.Timeslot)
	assert.Equal(t, 6, got.MenCount)
	assert.Equal(t, 4, got.WomenCount)
	assert.Equal(t, 10, got.Quantity)
	assert.Equal(t, addons.Extras{TShirts: 2}, got.Extras)
	assert.Equal(t, "pub-crawl", got.ProductID)
	assert.Equal(t, "Jan Kowalski", got.CustomerName)
	assert.Equal(t, "GetYourGuide", got.Platform)
	assert.True(t, price.Equal(got.Amount))
	assert.Equal(t, "EUR", got.Currency)
}

func TestFromBookingRebookedIsZeroed(t *testing.T) {
	tr := newTestTransformer(t)
	b := models.Booking{
		ID:                uuid.New(),
		Platform:          "viator",
		PlatformBookingID: "V-7",
		Status:            enums.BookingStatusRebooked,
		ExperienceStartAt: timePtr(time.Date(2024, 6, 1, 18, 45, 0, 0, time.UTC)),
		PartySizeTotal:    intPtr(4),
		AddonsSnapshot: types.JSONMap{
			"men":       float64(2),
			"women":     float64(2),
			"cocktails": float64(4),
			"photos":    "1",
		},
	}

	got := tr.FromBooking(b)
	require.NotNil(t, got)
	assert.Equal(t, enums.BookingStatusRebooked, got.Status)
	assert.Zero(t, got.MenCount)
	assert.Zero(t, got.WomenCount)
	assert.Zero(t, got.Quantity)
	assert.True(t, got.Extras.IsZero())
	assert.Equal(t, "20:45", got.Timeslot)
}

func TestFromBookingWithoutPickupIsNil(t *testing.T) {
	tr := newTestTransformer(t)
	b := models.Booking{
		ID:                uuid.New(),
		Platform:          "airbnb",
		PlatformBookingID: "A-1",
		Status:            enums.BookingStatusConfirmed,
		PartySizeTotal:    intPtr(2),
		AddonsSnapshot:    types.JSONMap{"pickupTime": "n/a", "time": "TBD"},
	}
	assert.Nil(t, tr.FromBooking(b))
	assert.Nil(t, tr.FromStorefront(payload.Payload{"id": "1"}, payload.Payload{"title": "Pub Crawl"}))
}

func TestFromBookingIsIdempotentAndDoesNotMutate(t *testing.T) {
	tr := newTestTransformer(t)
	b := models.Booking{
		ID:                uuid.New(),
		Platform:          "hostelworld",
		PlatformBookingID: "H-3",
		Status:            enums.BookingStatusAmended,
		ExperienceDate:    timePtr(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		PartySizeAdults:   intPtr(3),
		AddonsSnapshot: types.JSONMap{
			"pickupTime": "8:45 pm",
			"party":      map[string]any{"men": float64(1), "women": float64(1)},
		},
	}
	before := types.JSONMap{
		"pickupTime": "8:45 pm",
		"party":      map[string]any{"men": float64(1), "women": float64(1)},
	}

	first := tr.FromBooking(b)
	second := tr.FromBooking(b)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, before, b.AddonsSnapshot)

	assert.Equal(t, "20:45", first.Timeslot)
	assert.Equal(t, 3, first.Quantity)
	assert.Equal(t, 2, first.MenCount)
	assert.Equal(t, 1, first.WomenCount)
}

func TestFromBookingDateOnly(t *testing.T) {
	tr := newTestTransformer(t)
	got := tr.FromBooking(models.Booking{
		ID:                uuid.New(),
		Platform:          "manual",
		PlatformBookingID: "M-1",
		Status:            enums.BookingStatusPending,
		ExperienceDate:    timePtr(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NotNil(t, got)
	assert.Equal(t, "2024-06-01", got.Date)
	assert.Equal(t, NoTimeslot, got.Timeslot)
	assert.Nil(t, got.PickupDateTime)
	assert.Equal(t, "Guest", got.CustomerName)
	assert.Zero(t, got.Quantity)
}

func TestFromBookingProductFallbacks(t *testing.T) {
	tr := newTestTransformer(t)
	base := models.Booking{
		ID:                uuid.New(),
		Platform:          "Viator",
		PlatformBookingID: "V-9",
		Status:            enums.BookingStatusConfirmed,
		ExperienceStartAt: timePtr(time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)),
	}

	withID := base
	withID.ProductName = strPtr("Mystery Walk")
	withID.ProductID = strPtr("8812")
	got := tr.FromBooking(withID)
	require.NotNil(t, got)
	assert.Equal(t, "8812", got.ProductID)
	assert.Equal(t, "Mystery Walk", got.ProductName)

	got = tr.FromBooking(base)
	require.NotNil(t, got)
	assert.Equal(t, "viator-V-9", got.ProductID)
}

func TestFromBookingTotalsPriority(t *testing.T) {
	tr := newTestTransformer(t)
	start := timePtr(time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC))

	cases := []struct {
		name    string
		booking models.Booking
		want    int
	}{
		{
			name:    "explicit total wins",
			booking: models.Booking{PartySizeTotal: intPtr(7), PartySizeAdults: intPtr(3), PartySizeChildren: intPtr(1)},
			want:    7,
		},
		{
			name:    "adults plus children",
			booking: models.Booking{PartySizeAdults: intPtr(3), PartySizeChildren: intPtr(1)},
			want:    4,
		},
		{
			name:    "adults alone",
			booking: models.Booking{PartySizeAdults: intPtr(2)},
			want:    2,
		},
		{
			name:    "negative total skipped",
			booking: models.Booking{PartySizeTotal: intPtr(-1), PartySizeAdults: intPtr(5)},
			want:    5,
		},
		{
			name:    "snapshot participants",
			booking: models.Booking{AddonsSnapshot: types.JSONMap{"participants": "5 people"}},
			want:    5,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.booking
			b.ID = uuid.New()
			b.Platform = "viator"
			b.PlatformBookingID = "V"
			b.Status = enums.BookingStatusConfirmed
			b.ExperienceStartAt = start

			got := tr.FromBooking(b)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Quantity)
			assert.Equal(t, tc.want, got.MenCount)
			assert.Equal(t, got.Quantity, got.MenCount+got.WomenCount)
		})
	}
}

func TestFromBookingNestedSnapshot(t *testing.T) {
	tr := newTestTransformer(t)
	got := tr.FromBooking(models.Booking{
		ID:                uuid.New(),
		Platform:          "manual",
		PlatformBookingID: "M-2",
		Status:            "Booked",
		ExperienceStartAt: timePtr(time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)),
		AddonsSnapshot: types.JSONMap{
			"party":  map[string]any{"men": float64(2), "women": float64(1)},
			"addons": map[string]any{"cocktails": float64(3)},
			"notes":  "photo package",
		},
	})
	require.NotNil(t, got)
	assert.Equal(t, enums.BookingStatusConfirmed, got.Status)
	assert.Equal(t, 2, got.MenCount)
	assert.Equal(t, 1, got.WomenCount)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, addons.Extras{Cocktails: 3}, got.Extras)
}

func TestStorefrontStatus(t *testing.T) {
	cases := []struct {
		order payload.Payload
		want  enums.BookingStatus
	}{
		{payload.Payload{"cancelled_at": "2024-05-30T10:00:00Z", "financial_status": "paid"}, enums.BookingStatusCancelled},
		{payload.Payload{"fulfillment_status": "fulfilled", "financial_status": "paid"}, enums.BookingStatusCompleted},
		{payload.Payload{"financial_status": "refunded"}, enums.BookingStatusCancelled},
		{payload.Payload{"financial_status": "paid"}, enums.BookingStatusConfirmed},
		{payload.Payload{"financial_status": "authorized"}, enums.BookingStatusPending},
		{payload.Payload{}, enums.BookingStatusPending},
		{payload.Payload{"status": "rebooked", "financial_status": "paid"}, enums.BookingStatusRebooked},
		{payload.Payload{"status": "open", "financial_status": "paid"}, enums.BookingStatusConfirmed},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, storefrontStatus(tc.order), "%v", tc.order)
	}
}

func TestFromStorefrontOrderFoldsAddOnLineItems(t *testing.T) {
	tr := newTestTransformer(t)
	order := payload.Payload{
		"id":               float64(7001),
		"pickupDateTime":   "2024-06-01T20:45:00+02:00",
		"financial_status": "paid",
		"line_items": []any{
			map[string]any{"id": float64(1), "title": "Pub Crawl", "quantity": float64(3), "price": "50"},
			map[string]any{"id": float64(2), "title": "Event T-Shirt", "quantity": float64(2), "price": "20"},
			map[string]any{"id": float64(3), "title": "Vodka Tasting", "quantity": float64(2), "price": "80"},
		},
	}

	got := tr.FromStorefrontOrder(order)
	require.Len(t, got, 2)

	assert.Equal(t, "storefront-7001-1", got[0].ID)
	assert.Equal(t, "pub-crawl", got[0].ProductID)
	assert.Equal(t, 3, got[0].Quantity)
	assert.Equal(t, addons.Extras{TShirts: 2}, got[0].Extras)

	assert.Equal(t, "storefront-7001-3", got[1].ID)
	assert.Equal(t, "vodka-tasting", got[1].ProductID)
	assert.True(t, got[1].Extras.IsZero())
	assert.Equal(t, "20:45", got[1].Timeslot)

	again := tr.FromStorefrontOrder(order)
	assert.Equal(t, got, again)
}

func TestFromStorefrontOrderCarriesExtrasPastRebookedItem(t *testing.T) {
	tr := newTestTransformer(t)
	order := payload.Payload{
		"id":               float64(7002),
		"pickupDateTime":   "2024-06-01T20:45:00+02:00",
		"financial_status": "paid",
		"line_items": []any{
			map[string]any{"id": float64(1), "title": "Pub Crawl", "quantity": float64(2), "status": "rebooked"},
			map[string]any{"id": float64(2), "title": "Event T-Shirt", "quantity": float64(2)},
			map[string]any{"id": float64(3), "title": "Vodka Tasting", "quantity": float64(2)},
		},
	}

	got := tr.FromStorefrontOrder(order)
	require.Len(t, got, 2)

	assert.Equal(t, enums.BookingStatusRebooked, got[0].Status)
	assert.True(t, got[0].Extras.IsZero())
	assert.Equal(t, 0, got[0].Quantity)

	assert.Equal(t, "vodka-tasting", got[1].ProductID)
	assert.Equal(t, enums.BookingStatusConfirmed, got[1].Status)
	assert.Equal(t, addons.Extras{TShirts: 2}, got[1].Extras)
}

func TestFromStorefrontScheduleFromProperties(t *testing.T) {
	tr := newTestTransformer(t)
	item := payload.Payload{
		"id":       "li-1",
		"title":    "Boat Party",
		"quantity": float64(2),
		"properties": []any{
			map[string]any{"name": "Tour date", "value": "2024-06-01"},
			map[string]any{"name": "Pickup time", "value": "20:45"},
			map[string]any{"name": "Add-ons", "value": "2x Cocktail"},
		},
	}

	got := tr.FromStorefront(payload.Payload{"id": "9"}, item)
	require.NotNil(t, got)
	assert.Equal(t, "2024-06-01", got.Date)
	assert.Equal(t, "20:45", got.Timeslot)
	assert.Equal(t, "boat-party", got.ProductID)
	assert.Equal(t, addons.Extras{Cocktails: 2}, got.Extras)
	assert.Equal(t, 2, got.MenCount)
}

func TestFromStorefrontOrderWithoutLineItems(t *testing.T) {
	tr := newTestTransformer(t)
	order := payload.Payload{
		"id":          "42",
		"title":       "Karaoke Night",
		"pickup_time": "01/06/2024 20:45",
		"quantity":    float64(2),
		"total_price": "99,90",
		"email":       "guest@example.com",
	}

	got := tr.FromStorefrontOrder(order)
	require.Len(t, got, 1)
	assert.Equal(t, "storefront-42", got[0].ID)
	assert.Equal(t, "karaoke-night", got[0].ProductID)
	assert.Equal(t, "2024-06-01", got[0].Date)
	assert.Equal(t, "guest@example.com", got[0].CustomerName)
	assert.True(t, decimal.RequireFromString("99.90").Equal(got[0].Amount), got[0].Amount.String())
}

func TestPreviewStorefrontReportsSkippedItems(t *testing.T) {
	tr := newTestTransformer(t)
	order := payload.Payload{
		"id": "77",
		"line_items": []any{
			map[string]any{"id": "a", "title": "Pub Crawl", "properties": []any{map[string]any{"name": "Date", "value": "2024-06-01"}}},
			map[string]any{"id": "b", "title": "Pub Crawl", "properties": []any{map[string]any{"name": "Date", "value": "tbd"}}},
		},
	}

	res := tr.previewStorefront(order)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "storefront-77-a", res.Orders[0].ID)
	assert.Equal(t, NoTimeslot, res.Orders[0].Timeslot)
	assert.Equal(t, []string{"storefront-77-b"}, res.Skipped)
}
