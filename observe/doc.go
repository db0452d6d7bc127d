// Package observe provides telemetry for cache operations: structured
// logging, OpenTelemetry metrics (hits, misses, evictions, stored bytes),
// and tracing for loader fetches.
package observe
