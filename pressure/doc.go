// Package pressure watches process memory usage and invokes a reduction
// callback when a high-water mark is crossed.
//
// The caches in this module never poll for memory pressure themselves;
// the host wires a Monitor (or an OS signal handler) to their
// ReduceMemoryUsage methods.
package pressure
