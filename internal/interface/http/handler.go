package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyviewer/nightlydigest-stats/internal/domain/digest"
	"github.com/skyviewer/nightlydigest-stats/internal/infra/config"
	apperrors "github.com/skyviewer/nightlydigest-stats/pkg/errors"
)

// livenessBody is the fixed response of the health route, kept from the
// original deployment so existing probes stay green.
const livenessBody = "🐈‍⬛"

// StatsHandler wires the HTTP transport to the digest service.
type StatsHandler struct {
	svc     digest.Service
	baseCfg config.DigestConfig
	logger  *slog.Logger
}

// NewStatsHandler constructs the stats handler.
func NewStatsHandler(cfg *config.Config, svc digest.Service, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		svc:     svc,
		baseCfg: cfg.Digest,
		logger:  logger.With("component", "http.handler"),
	}
}

// Liveness answers the health probe.
func (h *StatsHandler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, livenessBody)
}

// Stats runs the digest pipeline for one request. Digest configuration is
// resolved fresh here and passed down explicitly; nothing below this point
// reads the environment.
func (h *StatsHandler) Stats(c *gin.Context) {
	cfg := config.LoadDigest(h.baseCfg)

	_, overrideRunDate := c.GetQuery("overrideRunDate")
	query := digest.Query{
		Mode:            c.Query("mode"),
		StartDate:       c.Query("startDate"),
		EndDate:         c.Query("endDate"),
		OverrideRunDate: overrideRunDate,
	}

	summary, err := h.svc.Run(c.Request.Context(), toDigestConfig(cfg), query)
	if err != nil {
		status := http.StatusInternalServerError
		code := "stats_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "digest_data_error"):
			status = http.StatusBadGateway
			code = "digest_data_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, summary)
}

func toDigestConfig(cfg config.DigestConfig) digest.Config {
	return digest.Config{
		Upstream: digest.UpstreamConfig{
			Endpoint:   cfg.APIEndpoint,
			Token:      cfg.UpstreamToken,
			Instrument: cfg.Instrument,
		},
		Cache: digest.CacheConfig{
			Endpoint: cfg.CacheEndpoint,
			Token:    cfg.CacheToken,
		},
		Mode:        cfg.Mode,
		DayObsStart: cfg.DayObsStart,
		DayObsEnd:   cfg.DayObsEnd,
		SurveyStart: cfg.SurveyStart,
		WindowDays:  cfg.WindowDays,
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
