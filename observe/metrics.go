package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache telemetry.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordHit records a cache hit.
	RecordHit(ctx context.Context, cacheName string)

	// RecordMiss records a cache miss.
	RecordMiss(ctx context.Context, cacheName string)

	// RecordEviction records an entry leaving the cache and the bytes freed.
	RecordEviction(ctx context.Context, cacheName string, freedBytes uint64)

	// AddStoredBytes adjusts the stored-bytes tally; delta may be negative.
	AddStoredBytes(ctx context.Context, cacheName string, delta int64)

	// RecordLoad records an upstream load with duration and error status.
	RecordLoad(ctx context.Context, cacheName string, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	hitCount     metric.Int64Counter
	missCount    metric.Int64Counter
	evictCount   metric.Int64Counter
	storedBytes  metric.Int64UpDownCounter
	loadCount    metric.Int64Counter
	loadErrors   metric.Int64Counter
	loadDuration metric.Float64Histogram
}

// NewMetrics creates a Metrics instance recording through the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	hitCount, err := meter.Int64Counter(
		"cache.hits",
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	missCount, err := meter.Int64Counter(
		"cache.misses",
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	evictCount, err := meter.Int64Counter(
		"cache.evictions",
		metric.WithDescription("Total number of entries evicted"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	storedBytes, err := meter.Int64UpDownCounter(
		"cache.stored_bytes",
		metric.WithDescription("Bytes currently held by the cache"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	loadCount, err := meter.Int64Counter(
		"cache.loads",
		metric.WithDescription("Total number of upstream loads"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, err
	}

	loadErrors, err := meter.Int64Counter(
		"cache.load_errors",
		metric.WithDescription("Total number of failed upstream loads"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	loadDuration, err := meter.Float64Histogram(
		"cache.load_duration_ms",
		metric.WithDescription("Upstream load duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		hitCount:     hitCount,
		missCount:    missCount,
		evictCount:   evictCount,
		storedBytes:  storedBytes,
		loadCount:    loadCount,
		loadErrors:   loadErrors,
		loadDuration: loadDuration,
	}, nil
}

func cacheAttrs(cacheName string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("cache.name", cacheName))
}

func (m *metricsImpl) RecordHit(ctx context.Context, cacheName string) {
	m.hitCount.Add(ctx, 1, cacheAttrs(cacheName))
}

func (m *metricsImpl) RecordMiss(ctx context.Context, cacheName string) {
	m.missCount.Add(ctx, 1, cacheAttrs(cacheName))
}

func (m *metricsImpl) RecordEviction(ctx context.Context, cacheName string, freedBytes uint64) {
	opt := cacheAttrs(cacheName)
	m.evictCount.Add(ctx, 1, opt)
	m.storedBytes.Add(ctx, -int64(freedBytes), opt)
}

func (m *metricsImpl) AddStoredBytes(ctx context.Context, cacheName string, delta int64) {
	m.storedBytes.Add(ctx, delta, cacheAttrs(cacheName))
}

func (m *metricsImpl) RecordLoad(ctx context.Context, cacheName string, duration time.Duration, err error) {
	opt := cacheAttrs(cacheName)
	m.loadCount.Add(ctx, 1, opt)
	if err != nil {
		m.loadErrors.Add(ctx, 1, opt)
	}
	m.loadDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (noopMetrics) RecordHit(context.Context, string)                        {}
func (noopMetrics) RecordMiss(context.Context, string)                       {}
func (noopMetrics) RecordEviction(context.Context, string, uint64)           {}
func (noopMetrics) AddStoredBytes(context.Context, string, int64)            {}
func (noopMetrics) RecordLoad(context.Context, string, time.Duration, error) {}

// NoopMetrics returns a Metrics that records nothing.
func NoopMetrics() Metrics {
	return noopMetrics{}
}

var _ Metrics = (*metricsImpl)(nil)
