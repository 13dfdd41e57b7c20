// Package valkeycache writes digest summaries straight into a
// Valkey-compatible database, bypassing the HTTP cache relay.
package valkeycache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/skyviewer/nightlydigest-stats/internal/domain/digest"
)

// Store persists cache entries keyed by mode and bucket date.
type Store struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewStore constructs a Valkey-backed cache writer.
func NewStore(client valkey.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "nd"
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

// Store serializes the entry and SETs it under a mode-scoped key. The
// stored payload doubles as the returned body so callers see the same
// shape the HTTP relay reports.
func (s *Store) Store(ctx context.Context, cfg digest.CacheConfig, entry digest.Entry) ([]byte, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}

	builder := s.client.B().Set().Key(s.key(entry)).Value(string(payload))
	var cmd valkey.Completed
	if s.ttl > 0 {
		ttl := s.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}

	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return nil, fmt.Errorf("valkey set: %w", err)
	}
	return payload, nil
}

// key buckets single-day entries by their date and everything else under a
// rolling "latest" slot per mode.
func (s *Store) key(entry digest.Entry) string {
	mode := "current"
	switch params := entry.Params.(type) {
	case string:
		if params != "" {
			mode = params
		}
	case map[string]string:
		if v := params["mode"]; v != "" {
			mode = v
		}
	}
	if entry.StartDate != "" {
		return fmt.Sprintf("%s:%s:%s", s.prefix, mode, entry.StartDate)
	}
	return fmt.Sprintf("%s:%s:latest", s.prefix, mode)
}

var _ digest.CacheWriter = (*Store)(nil)
