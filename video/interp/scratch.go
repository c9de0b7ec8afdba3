package interp

import "sync"

// pool provides sync.Pool-based reuse of row-sized scratch slices so the
// per-row blend does not allocate in the frame loop.
type pool struct {
	pool sync.Pool
}

var scratchPool = &pool{
	pool: sync.Pool{
		New: func() any {
			s := make([]float64, 0)
			return &s
		},
	},
}

// get returns a slice of the requested length. Contents are unspecified.
func (p *pool) get(length int) []float64 {
	s := p.pool.Get().(*[]float64)
	if cap(*s) < length {
		*s = make([]float64, length)
	}
	return (*s)[:length]
}

// put returns a slice to the pool. The caller must not use it afterwards.
func (p *pool) put(s []float64) {
	p.pool.Put(&s)
}
