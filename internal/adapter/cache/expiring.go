package cache

import (
	"reflect"
	"sync"
	"time"

	"currency-convert-service/pkg/logger"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// ExpiringCache is a thread-safe map from string keys to values that expire
// a fixed TTL after they were written. Expired entries are only removed when
// a lookup runs into them; there is no background sweep.
type ExpiringCache[V any] struct {
	name    string
	entries map[string]entry[V]
	mutex   sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	log     *logger.Logger
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func NewExpiringCache[V any](name string, ttl time.Duration, log *logger.Logger, opts ...Option) *ExpiringCache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &ExpiringCache[V]{
		name:    name,
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     o.now,
		log:     log.With("cache", name),
	}
}

// Get returns the live value for key. An entry whose expiry is at or before
// the current time is deleted and reported as absent.
func (c *ExpiringCache[V]) Get(key string) (V, bool) {
	var zero V

	c.mutex.RLock()
	e, found := c.entries[key]
	c.mutex.RUnlock()

	if !found {
		c.log.Debug("Cache miss", "key", key)
		return zero, false
	}

	now := c.now()
	if e.expiresAt.After(now) {
		c.log.Debug("Cache hit", "key", key)
		return e.value, true
	}

	c.mutex.Lock()
	// A concurrent Put may have replaced the entry since the read lock was released.
	if current, ok := c.entries[key]; ok && !current.expiresAt.After(now) {
		delete(c.entries, key)
	}
	c.mutex.Unlock()

	c.log.Debug("Cache entry expired", "key", key)
	return zero, false
}

// Put stores value under key with a fresh expiry. Empty keys and nil values
// are ignored.
func (c *ExpiringCache[V]) Put(key string, value V) {
	if key == "" || isNil(value) {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
	c.log.Debug("Cache set", "key", key)
}

func (c *ExpiringCache[V]) TTL() time.Duration {
	return c.ttl
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
