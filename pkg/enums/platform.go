package enums

import (
	"fmt"
	"strings"
)

// Platform identifies the sales channel a booking arrived from.
// Channels outside the known set are carried as free text.
type Platform string

const (
	PlatformStorefront   Platform = "storefront"
	PlatformGetYourGuide Platform = "getyourguide"
	PlatformViator       Platform = "viator"
	PlatformAirbnb       Platform = "airbnb"
	PlatformHostelworld  Platform = "hostelworld"
	PlatformManual       Platform = "manual"
)

var validPlatforms = []Platform{
	PlatformStorefront,
	PlatformGetYourGuide,
	PlatformViator,
	PlatformAirbnb,
	PlatformHostelworld,
	PlatformManual,
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Platform.
func (p Platform) IsValid() bool {
	for _, candidate := range validPlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlatform converts raw input into a Platform.
func ParsePlatform(value string) (Platform, error) {
	for _, candidate := range validPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid platform %q", value)
}

// Key returns the merge key used when rolling channels up: lower-cased and trimmed.
func (p Platform) Key() string {
	return strings.ToLower(strings.TrimSpace(string(p)))
}
