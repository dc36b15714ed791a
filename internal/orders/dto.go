package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/crawlops-backend/internal/addons"
	"github.com/angelmondragon/crawlops-backend/pkg/enums"
)

// NoTimeslot is shown when only the calendar day of a pickup is known.
const NoTimeslot = "--:--"

const (
	dateLayout = "2006-01-02"
	slotLayout = "15:04"
)

// UnifiedOrder is the channel-independent view of one booking. It is
// recomputed on every request and never persisted.
type UnifiedOrder struct {
	ID                string              `json:"id"`
	PlatformBookingID string              `json:"platform_booking_id"`
	ProductID         string              `json:"product_id"`
	ProductName       string              `json:"product_name"`
	Date              string              `json:"date"`
	Timeslot          string              `json:"timeslot"`
	Quantity          int                 `json:"quantity"`
	MenCount          int                 `json:"men_count"`
	WomenCount        int                 `json:"women_count"`
	CustomerName      string              `json:"customer_name"`
	Platform          string              `json:"platform"`
	PickupDateTime    *time.Time          `json:"pickup_date_time,omitempty"`
	Extras            addons.Extras       `json:"extras"`
	Status            enums.BookingStatus `json:"status"`
	Amount            decimal.Decimal     `json:"amount"`
	Currency          string              `json:"currency,omitempty"`
}

// PreviewResult is returned when a raw storefront order is previewed.
type PreviewResult struct {
	Orders []UnifiedOrder `json:"orders"`
	// Skipped lists line items that carried no resolvable pickup moment.
	Skipped []string `json:"skipped,omitempty"`
}
