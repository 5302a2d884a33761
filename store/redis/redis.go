// Package redis implements store.LeaseKV on top of Redis.
//
// Expiry uses Redis' native per-key TTL. CreateIfAbsent maps to SET NX PX.
// Prefix operations walk SCAN with an escaped MATCH pattern; unlike etcd,
// Redis gives no snapshot isolation across a scan, so RangeScan and
// DeletePrefix are best-effort under concurrent writers.
package redis

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/leasecache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

const scanBatch = 256

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ store.LeaseKV = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Redis) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0 // no expiry
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *Redis) CreateIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	return s.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Redis) RangeScan(ctx context.Context, prefix string) ([]store.KV, error) {
	keys, err := s.scanKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]store.KV, 0, len(keys))
	for _, k := range keys {
		b, err := s.rdb.Get(ctx, k).Bytes()
		if err == goredis.Nil {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return nil, err
		}
		out = append(out, store.KV{Key: k, Value: b})
	}
	return out, nil
}

func (s *Redis) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	keys, err := s.scanKeys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return s.rdb.Del(ctx, keys...).Result()
}

func (s *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the underlying redis client only when this store owns it.
// Repeated calls become no-ops.
func (s *Redis) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

func (s *Redis) scanKeys(ctx context.Context, prefix string) ([]string, error) {
	pattern := escapeMatch(prefix) + "*"
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(keys)
	return dedupeSorted(keys), nil
}

// dedupeSorted drops adjacent duplicates from a sorted slice. SCAN may
// return a key more than once across a rehash; without this, RangeScan and
// DeletePrefix callers would double-count it.
func dedupeSorted(keys []string) []string {
	if len(keys) < 2 {
		return keys
	}
	out := keys[:1]
	for _, k := range keys[1:] {
		if k != out[len(out)-1] {
			out = append(out, k)
		}
	}
	return out
}

// escapeMatch quotes SCAN glob metacharacters so the prefix matches
// literally.
func escapeMatch(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`, `\`, `\\`)
	return r.Replace(s)
}
