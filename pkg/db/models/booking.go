package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/crawlops-backend/pkg/enums"
	"github.com/angelmondragon/crawlops-backend/pkg/types"
)

// Booking is a reservation persisted by the channel sync jobs. The manifest
// engine only reads it.
type Booking struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Platform          string              `gorm:"column:platform;not null;uniqueIndex:ux_bookings_platform_booking"`
	PlatformBookingID string              `gorm:"column:platform_booking_id;not null;uniqueIndex:ux_bookings_platform_booking"`
	Status            enums.BookingStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ExperienceDate    *time.Time          `gorm:"column:experience_date;type:date"`
	ExperienceStartAt *time.Time          `gorm:"column:experience_start_at"`
	PartySizeAdults   *int                `gorm:"column:party_size_adults"`
	PartySizeChildren *int                `gorm:"column:party_size_children"`
	PartySizeTotal    *int                `gorm:"column:party_size_total"`
	AddonsSnapshot    types.JSONMap       `gorm:"column:addons_snapshot;type:jsonb;serializer:json"`
	GuestName         *string             `gorm:"column:guest_name"`
	GuestEmail        *string             `gorm:"column:guest_email"`
	GuestPhone        *string             `gorm:"column:guest_phone"`
	ProductID         *string             `gorm:"column:product_id"`
	ProductName       *string             `gorm:"column:product_name"`
	ProductVariant    *string             `gorm:"column:product_variant"`
	PriceGross        *decimal.Decimal    `gorm:"column:price_gross;type:numeric(12,2)"`
	Currency          string              `gorm:"column:currency;type:text;not null;default:'PLN'"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table used by the booking sync jobs.
func (Booking) TableName() string { return "bookings" }
