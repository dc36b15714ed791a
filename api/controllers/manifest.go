package controllers

import (
	"net/http"

	"github.com/angelmondragon/crawlops-backend/api/responses"
	"github.com/angelmondragon/crawlops-backend/api/validators"
	"github.com/angelmondragon/crawlops-backend/internal/manifest"
	pkgerrors "github.com/angelmondragon/crawlops-backend/pkg/errors"
	"github.com/angelmondragon/crawlops-backend/pkg/logger"
)

const maxFilterLen = 128

// Manifest serves GET /api/v1/manifest?from=&to=&product_id=&platform=.
// to defaults to from.
func Manifest(svc manifest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifest service unavailable"))
			return
		}

		from, err := validators.ParseQueryDate(r, "from", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if to.IsZero() {
			to = from
		}

		query := r.URL.Query()
		out, err := svc.Build(r.Context(), manifest.Request{
			From:      from,
			To:        to,
			ProductID: validators.SanitizeString(query.Get("product_id"), maxFilterLen),
			Platform:  validators.SanitizeString(query.Get("platform"), maxFilterLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// InvalidateManifest marks every cached manifest stale.
func InvalidateManifest(svc manifest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifest service unavailable"))
			return
		}
		if err := svc.Invalidate(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(r.Context(), "manifest cache invalidated")
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "invalidated"})
	}
}
