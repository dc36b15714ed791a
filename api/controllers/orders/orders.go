package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/crawlops-backend/api/responses"
	"github.com/angelmondragon/crawlops-backend/api/validators"
	internalorders "github.com/angelmondragon/crawlops-backend/internal/orders"
	"github.com/angelmondragon/crawlops-backend/internal/payload"
	pkgerrors "github.com/angelmondragon/crawlops-backend/pkg/errors"
	"github.com/angelmondragon/crawlops-backend/pkg/logger"
)

// PreviewRequest wraps one raw storefront order.
type PreviewRequest struct {
	Order map[string]any `json:"order" validate:"required"`
}

// Preview converts a raw storefront order into unified orders without storing it.
func Preview(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var req PreviewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PreviewStorefront(r.Context(), payload.Payload(req.Order))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BookingOrder returns the unified view of one persisted booking.
func BookingOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		platform := strings.TrimSpace(chi.URLParam(r, "platform"))
		bookingID := strings.TrimSpace(chi.URLParam(r, "bookingId"))
		if platform == "" || bookingID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "platform and booking id are required"))
			return
		}

		order, err := svc.TransformBooking(r.Context(), platform, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
