package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skyviewer/nightlydigest-stats/internal/domain/digest"
	"github.com/skyviewer/nightlydigest-stats/internal/infra/config"
	apperrors "github.com/skyviewer/nightlydigest-stats/pkg/errors"
)

const testAuthToken = "router-test-token"

func TestRouter_StatsSuccess(t *testing.T) {
	domeOpen := false
	svc := &stubService{
		runFn: func(ctx context.Context, cfg digest.Config, q digest.Query) (digest.Summary, error) {
			require.Equal(t, "20260106", q.StartDate)
			require.Equal(t, "20260107", q.EndDate)
			require.False(t, q.OverrideRunDate)
			return digest.Summary{DomeOpen: &domeOpen, ExposureCount: 95}, nil
		},
	}

	recorder := performRequest(t, newRouterUnderTest(t, svc), "/nightly-digest-stats?startDate=20260106&endDate=20260107", testAuthToken)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"dome_open":false,"exposure_count":95}`, recorder.Body.String())
}

func TestRouter_StatsOverrideRunDate(t *testing.T) {
	var gotQuery digest.Query
	svc := &stubService{
		runFn: func(ctx context.Context, cfg digest.Config, q digest.Query) (digest.Summary, error) {
			gotQuery = q
			return digest.Summary{ExposureCount: 1200}, nil
		},
	}

	recorder := performRequest(t, newRouterUnderTest(t, svc), "/accumulated-exposure-count?overrideRunDate=1&endDate=20260107", testAuthToken)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, gotQuery.OverrideRunDate)
	require.JSONEq(t, `{"dome_open":null,"exposure_count":1200}`, recorder.Body.String())
}

func TestRouter_StatsUpstreamFailure(t *testing.T) {
	svc := &stubService{
		runFn: func(ctx context.Context, cfg digest.Config, q digest.Query) (digest.Summary, error) {
			return digest.Summary{}, apperrors.Wrap("digest_data_error", "failed to fetch nightly digest data", nil)
		},
	}

	recorder := performRequest(t, newRouterUnderTest(t, svc), "/nightly-digest-stats", testAuthToken)
	require.Equal(t, http.StatusBadGateway, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "digest_data_error", errBody["error"]["code"])
}

func TestRouter_StatsInvalidDates(t *testing.T) {
	svc := &stubService{
		runFn: func(ctx context.Context, cfg digest.Config, q digest.Query) (digest.Summary, error) {
			return digest.Summary{}, apperrors.Wrap("invalid_input", "startDate must be formatted as YYYYMMDD", nil)
		},
	}

	recorder := performRequest(t, newRouterUnderTest(t, svc), "/nightly-digest-stats?startDate=bogus", testAuthToken)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_Liveness(t *testing.T) {
	recorder := performRequest(t, newRouterUnderTest(t, &stubService{}), "/", testAuthToken)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, livenessBody, recorder.Body.String())
}

func TestRouter_UnknownPathReturnsBadRequest(t *testing.T) {
	recorder := performRequest(t, newRouterUnderTest(t, &stubService{}), "/unknown", testAuthToken)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.JSONEq(t, `{"status":"error","reason":"bad request"}`, recorder.Body.String())
}

func TestRouter_MissingBearerToken(t *testing.T) {
	recorder := performRequest(t, newRouterUnderTest(t, &stubService{}), "/nightly-digest-stats", "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.JSONEq(t, `{"error":"Unauthorized: Missing Bearer Token"}`, recorder.Body.String())
}

func TestRouter_InvalidBearerToken(t *testing.T) {
	recorder := performRequest(t, newRouterUnderTest(t, &stubService{}), "/nightly-digest-stats", "wrong-token")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.JSONEq(t, `{"error":"Unauthorized: Invalid Token"}`, recorder.Body.String())
}

func TestRouter_AuthGateRunsBeforeCore(t *testing.T) {
	svc := &stubService{
		runFn: func(ctx context.Context, cfg digest.Config, q digest.Query) (digest.Summary, error) {
			t.Fatal("core must not run for unauthenticated requests")
			return digest.Summary{}, nil
		},
	}

	recorder := performRequest(t, newRouterUnderTest(t, svc), "/nightly-digest-stats", "wrong-token")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func newRouterUnderTest(t *testing.T, svc digest.Service) *http.Server {
	t.Helper()
	t.Setenv("AUTH_TOKEN", testAuthToken)

	cfg := &config.Config{
		HTTP: config.HTTPConfig{Address: ":0"},
		Digest: config.DigestConfig{
			APIEndpoint:   "https://upstream.example.com/exposures",
			CacheEndpoint: "https://cache.example.com/nightly-digest-stats",
			Instrument:    "LSSTCam",
			SurveyStart:   "20250620",
			WindowDays:    30,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(cfg, NewStatsHandler(cfg, svc, logger))
}

func performRequest(t *testing.T, server *http.Server, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	server.Handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubService struct {
	runFn func(ctx context.Context, cfg digest.Config, q digest.Query) (digest.Summary, error)
}

func (s *stubService) Run(ctx context.Context, cfg digest.Config, q digest.Query) (digest.Summary, error) {
	if s.runFn == nil {
		return digest.Summary{}, nil
	}
	return s.runFn(ctx, cfg, q)
}
