package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/crawlops-backend/internal/manifest"
	"github.com/angelmondragon/crawlops-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/crawlops-backend/pkg/errors"
	"github.com/angelmondragon/crawlops-backend/pkg/logger"
	"github.com/angelmondragon/crawlops-backend/pkg/types"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubManifestService struct {
	got           manifest.Request
	out           *manifest.Manifest
	err           error
	invalidated   int
	invalidateErr error
}

func (s *stubManifestService) Build(ctx context.Context, req manifest.Request) (*manifest.Manifest, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func (s *stubManifestService) Invalidate(ctx context.Context) error {
	s.invalidated++
	return s.invalidateErr
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return body.Error
}

func TestHealthLive(t *testing.T) {
	w := httptest.NewRecorder()
	HealthLive(testConfig())(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get(envHeader); got != "test" {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestHealthReady(t *testing.T) {
	cases := []struct {
		name   string
		db     Pinger
		redis  Pinger
		status int
	}{
		{name: "all healthy", db: stubPinger{}, redis: stubPinger{}, status: http.StatusOK},
		{name: "redis disabled", db: stubPinger{}, status: http.StatusOK},
		{name: "db down", db: stubPinger{err: errors.New("refused")}, redis: stubPinger{}, status: http.StatusServiceUnavailable},
		{name: "db missing", status: http.StatusServiceUnavailable},
		{name: "redis down", db: stubPinger{}, redis: stubPinger{err: errors.New("refused")}, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HealthReady(testConfig(), logger.Nop(), tc.db, tc.redis)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
		})
	}
}

func TestManifestParsesQuery(t *testing.T) {
	svc := &stubManifestService{out: &manifest.Manifest{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/manifest?from=2024-06-01&to=2024-06-03&product_id=pub-crawl&platform=%20Viator%20", nil)
	w := httptest.NewRecorder()
	Manifest(svc, logger.Nop())(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !svc.got.From.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", svc.got.From)
	}
	if !svc.got.To.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to %v", svc.got.To)
	}
	if svc.got.ProductID != "pub-crawl" || svc.got.Platform != "Viator" {
		t.Fatalf("unexpected filters %+v", svc.got)
	}
}

func TestManifestDefaultsToSingleDay(t *testing.T) {
	svc := &stubManifestService{out: &manifest.Manifest{}}
	w := httptest.NewRecorder()
	Manifest(svc, logger.Nop())(w, httptest.NewRequest(http.MethodGet, "/api/v1/manifest?from=2024-06-01", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !svc.got.To.Equal(svc.got.From) {
		t.Fatalf("expected to to default to from, got %v", svc.got.To)
	}
}

func TestManifestRejectsBadDates(t *testing.T) {
	for _, target := range []string{
		"/api/v1/manifest",
		"/api/v1/manifest?from=01.06.2024",
		"/api/v1/manifest?from=2024-06-01&to=tomorrow",
	} {
		svc := &stubManifestService{}
		w := httptest.NewRecorder()
		Manifest(svc, logger.Nop())(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, w.Code)
		}
		if got := decodeError(t, w).Code; got != string(pkgerrors.CodeValidation) {
			t.Fatalf("%s: unexpected code %s", target, got)
		}
	}
}

func TestManifestPropagatesServiceErrors(t *testing.T) {
	svc := &stubManifestService{err: pkgerrors.New(pkgerrors.CodeRangeTooWide, "range covers 40 days, at most 31 allowed")}
	w := httptest.NewRecorder()
	Manifest(svc, logger.Nop())(w, httptest.NewRequest(http.MethodGet, "/api/v1/manifest?from=2024-06-01&to=2024-07-10", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := decodeError(t, w).Code; got != string(pkgerrors.CodeRangeTooWide) {
		t.Fatalf("unexpected code %s", got)
	}
}

func TestInvalidateManifest(t *testing.T) {
	svc := &stubManifestService{}
	w := httptest.NewRecorder()
	InvalidateManifest(svc, logger.Nop())(w, httptest.NewRequest(http.MethodDelete, "/api/v1/manifest/cache", nil))

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if svc.invalidated != 1 {
		t.Fatalf("expected one invalidation, got %d", svc.invalidated)
	}

	svc = &stubManifestService{invalidateErr: pkgerrors.New(pkgerrors.CodeDependency, "redis down")}
	w = httptest.NewRecorder()
	InvalidateManifest(svc, logger.Nop())(w, httptest.NewRequest(http.MethodDelete, "/api/v1/manifest/cache", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
