package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/skyviewer/nightlydigest-stats/internal/domain/digest"
	"github.com/skyviewer/nightlydigest-stats/internal/infra/cache/relay"
	"github.com/skyviewer/nightlydigest-stats/internal/infra/cache/valkeycache"
	"github.com/skyviewer/nightlydigest-stats/internal/infra/config"
	"github.com/skyviewer/nightlydigest-stats/internal/infra/digest/rsp"
)

func provideUpstreamClient() *rsp.Client {
	return rsp.NewClient()
}

// provideCacheWriter prefers a direct Valkey connection when one is
// configured and reachable, otherwise falls back to the HTTP cache relay.
func provideCacheWriter(cfg *config.Config, logger *slog.Logger) digest.CacheWriter {
	fallback := relay.NewClient()
	addr := strings.TrimSpace(cfg.Digest.ValkeyAddr)
	if addr == "" {
		return fallback
	}
	opt, err := buildValkeyOptions(addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to cache relay", "error", err)
		return fallback
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to cache relay", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to cache relay", "error", err)
		return fallback
	}
	logger.Info("direct valkey cache enabled", "addr", addr)
	return valkeycache.NewStore(client, "nd", 0)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
