package httpcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces response-cache entries inside the shared Redis
// instance, keeping Invalidate scans away from other keyspaces.
const keyPrefix = "respcache:"

// ResponseCache stores rendered JSON responses in Redis keyed by request
// fingerprint, each with its own TTL.
type ResponseCache struct {
	rdb *redis.Client
}

// Entry is one cached response: the status that was sent along with the
// body bytes, so a replay carries the original status.
type Entry struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

func NewResponseCache(rdb *redis.Client) *ResponseCache {
	return &ResponseCache{rdb: rdb}
}

// Get returns the cached entry for a fingerprint. The second return value
// reports whether an entry was present; a Redis failure is returned as an
// error and callers should treat it as a miss.
func (rc *ResponseCache) Get(ctx context.Context, fingerprint string) (Entry, bool, error) {
	raw, err := rc.rdb.Get(ctx, keyPrefix+fingerprint).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

// Set stores a response under a fingerprint with the given TTL.
func (rc *ResponseCache) Set(ctx context.Context, fingerprint string, entry Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return rc.rdb.Set(ctx, keyPrefix+fingerprint, raw, ttl).Err()
}

// Invalidate removes every cached entry whose fingerprint contains the
// given substring and returns how many entries were dropped. Write
// handlers call it with a path fragment such as "/api/events" so stale
// list and detail responses disappear together.
func (rc *ResponseCache) Invalidate(ctx context.Context, substring string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	match := keyPrefix + "*" + substring + "*"
	for {
		keys, next, err := rc.rdb.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := rc.rdb.Del(ctx, keys...).Result()
			removed += int(n)
			if err != nil {
				return removed, err
			}
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
