package plane

import "sync"

// Pool is a pool of reusable transient planes, used as masks by bulk
// decoding. Thread-safe, but a plane taken from the pool belongs to a single
// caller until it is returned.
type Pool struct {
	pool  sync.Pool
	bound uint32
}

// NewPool creates a new pool handing out planes with the given bound.
func NewPool(bound uint32) *Pool {
	return &Pool{
		bound: bound,
		pool: sync.Pool{
			New: func() any {
				return New(bound)
			},
		},
	}
}

// Get retrieves an empty plane from the pool.
func (p *Pool) Get() *Plane {
	if p == nil {
		return New(MaxSize)
	}
	return p.pool.Get().(*Plane)
}

// Put returns a plane to the pool. The plane is cleared first to release
// container memory.
func (p *Pool) Put(pl *Plane) {
	if p == nil || pl == nil {
		return
	}
	pl.Reset()
	p.pool.Put(pl)
}
