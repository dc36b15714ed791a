package enums

import (
	"fmt"
	"strings"
)

// BookingStatus tracks the lifecycle of a booking as reported by its channel.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusAmended   BookingStatus = "amended"
	BookingStatusRebooked  BookingStatus = "rebooked"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no_show"
	BookingStatusUnknown   BookingStatus = "unknown"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusAmended,
	BookingStatusRebooked,
	BookingStatusCancelled,
	BookingStatusCompleted,
	BookingStatusNoShow,
	BookingStatusUnknown,
}

// BookingStatuses returns every known status in declaration order.
func BookingStatuses() []BookingStatus {
	out := make([]BookingStatus, len(validBookingStatuses))
	copy(out, validBookingStatuses)
	return out
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}

var bookingStatusAliases = map[string]BookingStatus{
	"canceled":  BookingStatusCancelled,
	"noshow":    BookingStatusNoShow,
	"no-show":   BookingStatusNoShow,
	"no show":   BookingStatusNoShow,
	"modified":  BookingStatusAmended,
	"changed":   BookingStatusAmended,
	"rebooking": BookingStatusRebooked,
	"paid":      BookingStatusConfirmed,
	"booked":    BookingStatusConfirmed,
	"fulfilled": BookingStatusCompleted,
	"attended":  BookingStatusCompleted,
}

// NormalizeBookingStatus maps loosely formatted channel statuses onto a known value.
// Unrecognised input yields BookingStatusUnknown.
func NormalizeBookingStatus(value string) BookingStatus {
	clean := strings.ToLower(strings.TrimSpace(value))
	if status, err := ParseBookingStatus(clean); err == nil {
		return status
	}
	if status, ok := bookingStatusAliases[clean]; ok {
		return status
	}
	return BookingStatusUnknown
}
