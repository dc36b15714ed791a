package orders

import (
	"context"
	"fmt"

	"github.com/angelmondragon/crawlops-backend/internal/bookings"
	"github.com/angelmondragon/crawlops-backend/internal/payload"
	pkgerrors "github.com/angelmondragon/crawlops-backend/pkg/errors"
	"github.com/angelmondragon/crawlops-backend/pkg/logger"
)

// Service exposes the transformer to HTTP controllers.
type Service interface {
	PreviewStorefront(ctx context.Context, order payload.Payload) (*PreviewResult, error)
	TransformBooking(ctx context.Context, platform, platformBookingID string) (*UnifiedOrder, error)
}

type service struct {
	transformer *Transformer
	bookings    bookings.Repository
	logg        *logger.Logger
}

// NewService wires the order service.
func NewService(transformer *Transformer, repo bookings.Repository, logg *logger.Logger) (Service, error) {
	if transformer == nil {
		return nil, fmt.Errorf("transformer required")
	}
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{transformer: transformer, bookings: repo, logg: logg}, nil
}

// PreviewStorefront converts a raw storefront order without persisting anything.
func (s *service) PreviewStorefront(ctx context.Context, order payload.Payload) (*PreviewResult, error) {
	if len(order) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order payload is empty")
	}
	result := s.transformer.previewStorefront(order)
	if len(result.Orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnresolvable, "no line item has a resolvable pickup moment").
			WithDetails(map[string]any{"skipped": result.Skipped})
	}
	if len(result.Skipped) > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "skipped", result.Skipped), "storefront preview skipped line items")
	}
	return &result, nil
}

// TransformBooking loads one persisted booking and converts it.
func (s *service) TransformBooking(ctx context.Context, platform, platformBookingID string) (*UnifiedOrder, error) {
	booking, err := s.bookings.FindByPlatformBookingID(ctx, platform, platformBookingID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}

	order := s.transformer.FromBooking(*booking)
	if order == nil {
		ctx = s.logg.WithBookingID(s.logg.WithPlatform(ctx, platform), platformBookingID)
		s.logg.Warn(ctx, "booking has no resolvable pickup moment")
		return nil, pkgerrors.New(pkgerrors.CodeUnresolvable, "booking has no resolvable pickup moment")
	}
	return order, nil
}
