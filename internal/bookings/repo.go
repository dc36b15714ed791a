// Package bookings reads persisted channel bookings.
package bookings

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/crawlops-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/crawlops-backend/pkg/errors"
)

// instantSlack widens the start-time window so bookings whose UTC instant
// falls on a neighbouring calendar day in any zone are still loaded.
const instantSlack = 24 * time.Hour

// Repository defines read operations on the bookings table.
type Repository interface {
	ListByExperienceDate(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	FindByPlatformBookingID(ctx context.Context, platform, platformBookingID string) (*models.Booking, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ListByExperienceDate loads bookings whose experience date lies in the
// calendar range [from, to] or whose start instant lies near it. Only the
// calendar day of from and to is used; callers filter on resolved pickup.
func (r *repository) ListByExperienceDate(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	dayFrom := calendarDay(from)
	dayTo := calendarDay(to)
	if dayTo.Before(dayFrom) {
		return nil, nil
	}

	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("(experience_date >= ? AND experience_date <= ?) OR (experience_start_at >= ? AND experience_start_at < ?)",
			dayFrom, dayTo, dayFrom.Add(-instantSlack), dayTo.Add(24*time.Hour+instantSlack)).
		Order("platform ASC").
		Order("platform_booking_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByPlatformBookingID(ctx context.Context, platform, platformBookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("LOWER(platform) = ? AND platform_booking_id = ?", strings.ToLower(strings.TrimSpace(platform)), strings.TrimSpace(platformBookingID)).
		First(&booking).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
