package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skyviewer/nightlydigest-stats/internal/domain/digest"
)

func TestStorePostsEntryWithToken(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte(`{"status":"cached"}`))
	}))
	defer server.Close()

	client := NewClient()
	body, err := client.Store(context.Background(), digest.CacheConfig{
		Endpoint: server.URL,
		Token:    "cache-token",
	}, digest.Entry{
		Endpoint:  "https://upstream.example.com/exposures",
		Params:    "current",
		Data:      digest.Summary{ExposureCount: 95},
		StartDate: "20260106",
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"cached"}`, string(body))

	require.Equal(t, "Bearer cache-token", gotAuth)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "https://upstream.example.com/exposures", gotBody["endpoint"])
	require.Equal(t, "current", gotBody["params"])
	require.Equal(t, "20260106", gotBody["startDate"])
}

func TestStoreOmitsEmptyStartDate(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Store(context.Background(), digest.CacheConfig{Endpoint: server.URL}, digest.Entry{Params: "current"})
	require.NoError(t, err)
	require.NotContains(t, gotBody, "startDate")
}

func TestStoreReturnsErrorOnNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "relay overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Store(context.Background(), digest.CacheConfig{Endpoint: server.URL}, digest.Entry{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=503")
}
