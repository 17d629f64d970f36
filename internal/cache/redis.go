package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"crm-backend/internal/metrics"
)

// ViewTTL bounds how stale a cached page view can get if an invalidation is missed
const ViewTTL = 5 * time.Minute

const viewKeyPrefix = "view:"

// ViewCache stores serialized list views in redis.
// A ViewCache without a client (redis unavailable) passes every read through to the loader.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect pings redis and returns a ViewCache. On failure the returned cache is
// usable but disabled, and the error says why.
func Connect(ctx context.Context, opts Options, log logrus.FieldLogger) (*ViewCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and keep it nil for graceful degradation
		client.Close()
		return NewViewCache(nil, log), err
	}

	return NewViewCache(client, log), nil
}

func NewViewCache(client *redis.Client, log logrus.FieldLogger) *ViewCache {
	return &ViewCache{client: client, ttl: ViewTTL, log: log}
}

// Client returns the underlying redis client, nil when caching is disabled
func (c *ViewCache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

func (c *ViewCache) Enabled() bool {
	return c != nil && c.client != nil
}

// ViewKey names the cached view of path for one user. variant separates filtered views of the same page.
func ViewKey(path, userID, variant string) string {
	return viewKeyPrefix + path + ":" + userID + ":" + variant
}

func viewPattern(path string) string {
	return viewKeyPrefix + path + ":*"
}

func (c *ViewCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *ViewCache) Set(ctx context.Context, key string, data []byte) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("[Cache] Set failed")
	}
}

// Invalidate drops every cached view of path, for all users and variants
func (c *ViewCache) Invalidate(ctx context.Context, path string) {
	if !c.Enabled() {
		return
	}

	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := c.client.Scan(ctx, cursor, viewPattern(path), 100).Result()
		if err != nil {
			c.log.WithError(err).WithField("path", path).Warn("[Cache] Scan failed")
			return
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.WithError(err).WithField("path", path).Warn("[Cache] Delete failed")
	}
}

// Remember returns the cached view under key or loads, caches and returns it
func Remember[T any](ctx context.Context, c *ViewCache, key string, load func(context.Context) (T, error)) (T, error) {
	if c.Enabled() {
		if data, ok := c.Get(ctx, key); ok {
			var cached T
			if err := json.Unmarshal(data, &cached); err == nil {
				metrics.ViewCacheLookups.WithLabelValues("hit").Inc()
				return cached, nil
			}
		}
		metrics.ViewCacheLookups.WithLabelValues("miss").Inc()
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if c.Enabled() {
		if data, err := json.Marshal(v); err == nil {
			c.Set(ctx, key, data)
		}
	}

	return v, nil
}
