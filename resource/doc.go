// Package resource governs the memory, concurrency and I/O budget of the
// layers around a vector: snapshot encoding and loading, columnar import and
// blob transfers.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30,
//	    MaxEncodeWorkers:   4,
//	    IOLimitBytesPerSec: 100 << 20,
//	})
//
// ReserveMemory fails fast with ErrMemoryLimitExceeded, AcquireMemory blocks
// until memory is released or the context ends. AcquireIO splits large
// transfers into bursts so any size can pass the token bucket.
//
// All methods accept a nil *Controller and then impose no limit.
package resource
