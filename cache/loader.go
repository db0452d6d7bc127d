package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/jonwraymond/objcache/observe"
)

// Store is the cache surface the Loader populates. Both MemoryCache and
// ImageMemoryCache satisfy it.
type Store[V any] interface {
	Fetch(key string) (V, bool)
	Store(key string, value V) error
	StoreWithExpiry(key string, value V, expiresAt time.Time) error
	Remove(key string)
}

var (
	_ Store[int] = (*MemoryCache[int])(nil)
	_ Store[int] = (*ImageMemoryCache[int])(nil)
)

// FetchFunc loads a value from upstream on a cache miss.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Loader is a read-through front for a cache. The underlying caches are
// single-threaded by contract; the Loader is the external serialization
// point: it guards the cache with a mutex, dedupes concurrent loads for
// the same key with singleflight, and optionally rate-limits and
// retries upstream fetches.
//
// Load errors are never cached.
type Loader[V any] struct {
	name    string
	store   Store[V]
	policy  Policy
	keyer   Keyer
	logger  observe.Logger
	metrics observe.Metrics
	tracer  observe.Tracer
	limiter *rate.Limiter
	retry   *retrier

	mu    sync.Mutex // serializes access to store
	group singleflight.Group
}

// LoaderOption configures a Loader.
type LoaderOption[V any] func(*Loader[V])

// WithPolicy sets the TTL policy for stored values.
// Default: DefaultPolicy.
func WithPolicy[V any](p Policy) LoaderOption[V] {
	return func(l *Loader[V]) {
		l.policy = p
	}
}

// WithKeyer sets the keyer used by GetKeyed. Default: DefaultKeyer.
func WithKeyer[V any](k Keyer) LoaderOption[V] {
	return func(l *Loader[V]) {
		if k != nil {
			l.keyer = k
		}
	}
}

// WithLogger sets the logger. Default: no logging.
func WithLogger[V any](logger observe.Logger) LoaderOption[V] {
	return func(l *Loader[V]) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Default: no metrics.
func WithMetrics[V any](m observe.Metrics) LoaderOption[V] {
	return func(l *Loader[V]) {
		if m != nil {
			l.metrics = m
		}
	}
}

// WithTracer sets the tracer for upstream loads. Default: no tracing.
func WithTracer[V any](t observe.Tracer) LoaderOption[V] {
	return func(l *Loader[V]) {
		if t != nil {
			l.tracer = t
		}
	}
}

// WithRateLimit caps upstream fetches at r per second with the given
// burst. Zero r disables limiting.
func WithRateLimit[V any](r float64, burst int) LoaderOption[V] {
	return func(l *Loader[V]) {
		if r > 0 {
			l.limiter = rate.NewLimiter(rate.Limit(r), burst)
		}
	}
}

// WithRetry retries failed upstream fetches with exponential backoff.
// Default: no retries.
func WithRetry[V any](config RetryConfig) LoaderOption[V] {
	return func(l *Loader[V]) {
		l.retry = newRetrier(config)
	}
}

// NewLoader creates a Loader in front of the given store. The name scopes
// log entries, metrics, and spans.
func NewLoader[V any](name string, store Store[V], opts ...LoaderOption[V]) (*Loader[V], error) {
	if store == nil {
		return nil, ErrNilStore
	}
	l := &Loader[V]{
		name:    name,
		store:   store,
		policy:  DefaultPolicy(),
		keyer:   NewDefaultKeyer(),
		logger:  observe.NoopLogger(),
		metrics: observe.NoopMetrics(),
		tracer:  observe.NoopTracer(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithCache(name)
	return l, nil
}

// Get returns the cached value for key, loading it through fetch on a
// miss. Concurrent calls for the same key share one upstream load.
func (l *Loader[V]) Get(ctx context.Context, key string, fetch FetchFunc[V]) (V, error) {
	var zero V
	if fetch == nil {
		return zero, ErrNilFetch
	}
	if err := ValidateKey(key); err != nil {
		return zero, err
	}

	l.mu.Lock()
	v, ok := l.store.Fetch(key)
	l.mu.Unlock()
	if ok {
		l.metrics.RecordHit(ctx, l.name)
		return v, nil
	}
	l.metrics.RecordMiss(ctx, l.name)

	res, err, shared := l.group.Do(key, func() (any, error) {
		// A concurrent flight may have populated the entry already.
		l.mu.Lock()
		v, ok := l.store.Fetch(key)
		l.mu.Unlock()
		if ok {
			return v, nil
		}
		return l.load(ctx, key, fetch)
	})
	if err != nil {
		return zero, err
	}
	if shared {
		l.logger.Debug(ctx, "load shared between callers", observe.Field{Key: "key", Value: key})
	}
	return res.(V), nil
}

// GetKeyed derives the cache key from scope and input via the Keyer, then
// behaves like Get.
func (l *Loader[V]) GetKeyed(ctx context.Context, scope string, input any, fetch FetchFunc[V]) (V, error) {
	key, err := l.keyer.Key(scope, input)
	if err != nil {
		var zero V
		return zero, err
	}
	return l.Get(ctx, key, fetch)
}

// Invalidate removes the cached entry for key.
func (l *Loader[V]) Invalidate(key string) {
	l.mu.Lock()
	l.store.Remove(key)
	l.mu.Unlock()
}

// load performs one upstream fetch and stores the result per policy.
func (l *Loader[V]) load(ctx context.Context, key string, fetch FetchFunc[V]) (any, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, span := l.tracer.StartLoad(ctx, l.name, key)
	start := time.Now()
	var v V
	var err error
	if l.retry != nil {
		err = l.retry.execute(ctx, func(ctx context.Context) error {
			var attemptErr error
			v, attemptErr = fetch(ctx)
			return attemptErr
		})
	} else {
		v, err = fetch(ctx)
	}
	l.metrics.RecordLoad(ctx, l.name, time.Since(start), err)
	l.tracer.EndSpan(span, err)

	if err != nil {
		l.logger.Warn(ctx, "upstream load failed",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, err
	}

	if l.policy.ShouldCache() {
		expiresAt := l.policy.ExpiryFrom(time.Now(), 0)
		l.mu.Lock()
		storeErr := l.store.StoreWithExpiry(key, v, expiresAt)
		l.mu.Unlock()
		if storeErr != nil {
			// The value is still good; report the store failure and move on.
			l.logger.Warn(ctx, "failed to cache loaded value",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "error", Value: storeErr.Error()},
			)
		}
	}

	return v, nil
}
