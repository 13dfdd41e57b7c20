package digest

import (
	"context"
	"log/slog"
	"time"

	"github.com/skyviewer/nightlydigest-stats/pkg/dayobs"
	apperrors "github.com/skyviewer/nightlydigest-stats/pkg/errors"
)

// Service exposes the nightly digest stats pipeline.
type Service interface {
	Run(ctx context.Context, cfg Config, q Query) (Summary, error)
}

// UpstreamClient fetches the raw digest for a [startDate, endDate) window.
type UpstreamClient interface {
	FetchRange(ctx context.Context, cfg UpstreamConfig, startDate, endDate string) (Response, error)
}

// CacheWriter delivers a cache entry and returns the cache service's
// response body. Callers treat failures as best-effort.
type CacheWriter interface {
	Store(ctx context.Context, cfg CacheConfig, entry Entry) ([]byte, error)
}

type service struct {
	upstream UpstreamClient
	cache    CacheWriter
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the digest stats domain.
func NewService(upstream UpstreamClient, cache CacheWriter, logger *slog.Logger) Service {
	return &service{
		upstream: upstream,
		cache:    cache,
		logger:   logger.With("component", "digest.service"),
		now:      time.Now,
	}
}

// Run resolves the effective mode and window, then dispatches to the
// single-window path or, when the run date is overridden, to reaccumulation
// from the survey start.
func (s *service) Run(ctx context.Context, cfg Config, q Query) (Summary, error) {
	mode := firstNonEmpty(cfg.Mode, q.Mode, ModeCurrent)
	startDate := firstNonEmpty(cfg.DayObsStart, q.StartDate, dayobs.Format(dayobs.Offset(s.now(), -1)))
	endDate := firstNonEmpty(cfg.DayObsEnd, q.EndDate, dayobs.Format(s.now()))

	if _, err := dayobs.Parse(startDate); err != nil {
		return Summary{}, apperrors.Wrap("invalid_input", "startDate must be formatted as YYYYMMDD", err)
	}
	if _, err := dayobs.Parse(endDate); err != nil {
		return Summary{}, apperrors.Wrap("invalid_input", "endDate must be formatted as YYYYMMDD", err)
	}

	if q.OverrideRunDate {
		return s.reaccumulate(ctx, cfg, cfg.SurveyStart, endDate, cfg.WindowDays)
	}
	return s.processWindow(ctx, cfg, startDate, endDate, mode)
}

// processWindow runs fetch, extract and cache-write for one window. The
// fetch failure propagates; the cache write never does.
func (s *service) processWindow(ctx context.Context, cfg Config, startDate, endDate, mode string) (Summary, error) {
	resp, err := s.upstream.FetchRange(ctx, cfg.Upstream, startDate, endDate)
	if err != nil {
		return Summary{}, apperrors.Wrap("digest_data_error", "failed to fetch nightly digest data", err)
	}

	current := ExtractCurrent(resp)
	summary := Summary{
		DomeOpen:      current.LastCanSeeSky,
		ExposureCount: current.ExposuresCount,
	}

	entry := Entry{
		Endpoint: cfg.Upstream.Endpoint,
		Params:   mode,
		Data:     summary,
	}
	if dayobs.IsNextDay(startDate, endDate) {
		entry.StartDate = startDate
	}
	s.cacheResult(ctx, cfg.Cache, entry)

	return summary, nil
}

// reaccumulate replays [rangeStart, rangeEnd) in windowDays-sized windows,
// summing exposure counts. A failing window is logged and contributes zero;
// the walk always reaches rangeEnd. DomeOpen stays nil for the whole span:
// a door status has no meaning for a multi-day total.
func (s *service) reaccumulate(ctx context.Context, cfg Config, rangeStart, rangeEnd string, windowDays int) (Summary, error) {
	cursor, err := dayobs.Parse(rangeStart)
	if err != nil {
		return Summary{}, apperrors.Wrap("invalid_input", "reaccumulation range start must be formatted as YYYYMMDD", err)
	}
	rangeEndInstant, err := dayobs.Parse(rangeEnd)
	if err != nil {
		return Summary{}, apperrors.Wrap("invalid_input", "reaccumulation range end must be formatted as YYYYMMDD", err)
	}
	if windowDays <= 0 {
		return Summary{}, apperrors.Wrap("invalid_input", "reaccumulation window size must be positive", nil)
	}

	total := Summary{}
	windows := 0
	for cursor.Before(rangeEndInstant) {
		windowEnd := dayobs.Offset(cursor, windowDays)
		windowStartDate := dayobs.Format(cursor)

		result, err := s.processWindow(ctx, cfg, windowStartDate, dayobs.Format(windowEnd), ModeReaccumulate)
		if err != nil {
			s.logger.Warn("reaccumulation window failed", "startDate", windowStartDate, "error", err)
		} else {
			total.ExposureCount += result.ExposureCount
		}

		windows++
		cursor = windowEnd
	}
	s.logger.Info("reaccumulation complete", "rangeStart", rangeStart, "rangeEnd", rangeEnd, "windows", windows, "exposureCount", total.ExposureCount)

	if windows > 0 {
		s.cacheResult(ctx, cfg.Cache, Entry{
			Endpoint: cfg.Upstream.Endpoint,
			Params: map[string]string{
				"mode":      ModeReaccumulate,
				"startDate": rangeStart,
				"endDate":   rangeEnd,
			},
			Data: total,
		})
	}

	return total, nil
}

// cacheResult performs the best-effort cache write. Failures are logged as
// warnings and never reach the caller; the returned body is nil on failure.
func (s *service) cacheResult(ctx context.Context, cfg CacheConfig, entry Entry) []byte {
	body, err := s.cache.Store(ctx, cfg, entry)
	if err != nil {
		s.logger.Warn("cache upload error", "error", err.Error())
		return nil
	}
	return body
}

// firstNonEmpty returns the first non-empty candidate, encoding the
// forced-config > request > computed-default precedence as an explicit
// ordered fallback.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
