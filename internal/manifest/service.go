package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/crawlops-backend/internal/orders"
	"github.com/angelmondragon/crawlops-backend/pkg/config"
	"github.com/angelmondragon/crawlops-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/crawlops-backend/pkg/errors"
	"github.com/angelmondragon/crawlops-backend/pkg/logger"
	"github.com/angelmondragon/crawlops-backend/pkg/metrics"
	"github.com/angelmondragon/crawlops-backend/pkg/redis"
)

const generationCounter = "manifest-generation"

// Request selects the manifest to build. From and To are calendar days,
// inclusive, read in the business time zone.
type Request struct {
	From      time.Time
	To        time.Time
	ProductID string
	Platform  string
}

// Service builds manifests from persisted bookings.
type Service interface {
	Build(ctx context.Context, req Request) (*Manifest, error)
	// Invalidate makes every cached manifest stale.
	Invalidate(ctx context.Context) error
}

type bookingsRepository interface {
	ListByExperienceDate(ctx context.Context, from, to time.Time) ([]models.Booking, error)
}

type manifestCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	ManifestKey(parts ...string) string
	CounterKey(name string) string
}

// ServiceParams bundles the dependencies of the manifest service. Cache and
// Metrics are optional.
type ServiceParams struct {
	Transformer *orders.Transformer
	Bookings    bookingsRepository
	Cache       manifestCache
	Metrics     *metrics.ManifestMetrics
	Logger      *logger.Logger
	Config      config.ManifestConfig
}

type service struct {
	transformer *orders.Transformer
	bookings    bookingsRepository
	cache       manifestCache
	metrics     *metrics.ManifestMetrics
	logg        *logger.Logger
	cfg         config.ManifestConfig
}

// NewService constructs the manifest service.
func NewService(params ServiceParams) (Service, error) {
	if params.Transformer == nil {
		return nil, fmt.Errorf("transformer required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Config.MaxRangeDays <= 0 {
		return nil, fmt.Errorf("max range days must be positive")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		transformer: params.Transformer,
		bookings:    params.Bookings,
		cache:       params.Cache,
		metrics:     params.Metrics,
		logg:        logg,
		cfg:         params.Config,
	}, nil
}

func (s *service) Build(ctx context.Context, req Request) (*Manifest, error) {
	from, to, err := s.normalizeRange(req)
	if err != nil {
		return nil, err
	}
	filter := Filter{ProductID: strings.TrimSpace(req.ProductID), Platform: strings.TrimSpace(req.Platform)}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"from":       from.Format(dateLayout),
		"to":         to.Format(dateLayout),
		"product_id": filter.ProductID,
		"platform":   filter.Platform,
	})

	key := s.cacheKey(ctx, from, to, filter)
	if cached, ok := s.readCache(ctx, key); ok {
		return cached, nil
	}

	started := time.Now()
	out, err := s.build(ctx, from, to, filter)
	if err != nil {
		s.metrics.ObserveBuild(metrics.BuildError, time.Since(started))
		return nil, err
	}
	s.metrics.ObserveBuild(metrics.BuildOK, time.Since(started))

	s.writeCache(ctx, key, out)
	return out, nil
}

func (s *service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if _, err := s.cache.Incr(ctx, s.cache.CounterKey(generationCounter)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidate manifest cache")
	}
	return nil
}

func (s *service) normalizeRange(req Request) (time.Time, time.Time, error) {
	if req.From.IsZero() || req.To.IsZero() {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	loc := s.transformer.Location()
	from := day(req.From, loc)
	to := day(req.To, loc)
	if to.Before(from) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}
	days := int(to.Sub(from).Hours()/24+0.5) + 1
	if days > s.cfg.MaxRangeDays {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeRangeTooWide,
			fmt.Sprintf("range covers %d days, at most %d allowed", days, s.cfg.MaxRangeDays)).
			WithDetails(map[string]any{"days": days, "max_days": s.cfg.MaxRangeDays})
	}
	return from, to, nil
}

// day keeps the calendar day of t as written and places it in loc.
func day(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func (s *service) build(ctx context.Context, from, to time.Time, filter Filter) (*Manifest, error) {
	rows, err := s.bookings.ListByExperienceDate(ctx, from, to)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}

	first, last := from.Format(dateLayout), to.Format(dateLayout)
	list := make([]orders.UnifiedOrder, 0, len(rows))
	for _, row := range rows {
		order := s.transformer.FromBooking(row)
		if order == nil {
			s.metrics.IncBookings(row.Platform, metrics.OutcomeDropped)
			bctx := s.logg.WithBookingID(s.logg.WithPlatform(ctx, row.Platform), row.PlatformBookingID)
			s.logg.Warn(bctx, "dropping booking without resolvable pickup moment")
			continue
		}
		// The repository over-fetches around the range edges.
		if order.Date < first || order.Date > last {
			continue
		}
		s.metrics.IncBookings(row.Platform, metrics.OutcomeIncluded)
		list = append(list, *order)
	}

	out := Aggregate(s.transformer.Location(), filter.Apply(list))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"bookings": len(rows),
		"orders":   out.Summary.Orders,
		"groups":   out.Summary.Groups,
	}), "manifest built")
	return &out, nil
}

// cacheKey returns the empty string when caching is unavailable.
func (s *service) cacheKey(ctx context.Context, from, to time.Time, filter Filter) string {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return ""
	}
	generation := "0"
	raw, err := s.cache.Get(ctx, s.cache.CounterKey(generationCounter))
	switch {
	case err == nil:
		if n, convErr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); convErr == nil {
			generation = strconv.FormatInt(n, 10)
		}
	case redis.IsMiss(err):
	default:
		s.metrics.IncCache(metrics.CacheError)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "manifest cache generation unavailable")
		return ""
	}
	return s.cache.ManifestKey(
		"g"+generation,
		from.Format(dateLayout),
		to.Format(dateLayout),
		"product="+filter.ProductID,
		"platform="+strings.ToLower(filter.Platform),
	)
}

func (s *service) readCache(ctx context.Context, key string) (*Manifest, bool) {
	if key == "" {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if redis.IsMiss(err) {
			s.metrics.IncCache(metrics.CacheMiss)
			return nil, false
		}
		s.metrics.IncCache(metrics.CacheError)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "manifest cache read failed")
		return nil, false
	}
	var out Manifest
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.metrics.IncCache(metrics.CacheError)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "manifest cache entry unreadable")
		return nil, false
	}
	s.metrics.IncCache(metrics.CacheHit)
	return &out, true
}

func (s *service) writeCache(ctx context.Context, key string, m *Manifest) {
	if key == "" {
		return
	}
	body, err := json.Marshal(m)
	if err != nil {
		s.logg.Error(ctx, "encode manifest for cache", err)
		return
	}
	if err := s.cache.Set(ctx, key, body, s.cfg.CacheTTL); err != nil {
		s.metrics.IncCache(metrics.CacheError)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "manifest cache write failed")
	}
}
