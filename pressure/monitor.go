package pressure

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/jonwraymond/objcache/observe"
)

// ErrNilCallback indicates no reduction callback was provided.
var ErrNilCallback = errors.New("pressure: callback is nil")

// Config configures the memory monitor.
type Config struct {
	// Interval is how often memory usage is probed.
	// Default: 30 seconds.
	Interval time.Duration

	// HighWaterBytes is the heap allocation above which the callback
	// fires. Default: 512 MiB.
	HighWaterBytes uint64

	// Logger receives a warning each time the callback fires.
	// Default: no logging.
	Logger observe.Logger
}

// Monitor probes runtime heap usage on an interval and fires a callback
// when usage crosses the high-water mark. The callback runs on the
// monitor's goroutine; callers whose caches are not safe for concurrent
// use must serialize inside the callback.
type Monitor struct {
	config   Config
	callback func()

	// readMemStats is swappable for tests.
	readMemStats func(*runtime.MemStats)
}

// NewMonitor creates a memory monitor that invokes callback under
// pressure.
func NewMonitor(config Config, callback func()) (*Monitor, error) {
	if callback == nil {
		return nil, ErrNilCallback
	}
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	if config.HighWaterBytes == 0 {
		config.HighWaterBytes = 512 << 20
	}
	if config.Logger == nil {
		config.Logger = observe.NoopLogger()
	}
	return &Monitor{
		config:       config,
		callback:     callback,
		readMemStats: runtime.ReadMemStats,
	}, nil
}

// Run probes on the configured interval until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check performs a single probe, firing the callback if the heap is over
// the high-water mark. It returns whether the callback fired.
func (m *Monitor) Check(ctx context.Context) bool {
	var stats runtime.MemStats
	m.readMemStats(&stats)

	if stats.HeapAlloc <= m.config.HighWaterBytes {
		return false
	}

	m.config.Logger.Warn(ctx, "memory high-water mark crossed",
		observe.Field{Key: "heap_alloc", Value: stats.HeapAlloc},
		observe.Field{Key: "high_water", Value: m.config.HighWaterBytes},
	)
	m.callback()
	return true
}
