package supervisor

import (
	"errors"
	"sync"

	"github.com/smazurov/sidecar/internal/process"
)

// ErrDrained is returned by Store once TakeAndClear has run.
var ErrDrained = errors.New("registry already drained")

// Registry holds the single backend handle between the setup and exit hooks,
// which may run on different goroutines. It is filled at most once and
// drained at most once; after draining it stays empty.
type Registry struct {
	mu      sync.Mutex
	handle  process.Handle
	drained bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Store puts h in the slot, replacing whatever was there. It returns
// ErrDrained without storing anything after the slot has been drained, so the
// caller still owns h and must dispose of it.
func (r *Registry) Store(h process.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drained {
		return ErrDrained
	}
	r.handle = h
	return nil
}

// TakeAndClear returns the stored handle, or nil, and leaves the slot empty
// for good. A handle is returned by at most one call.
func (r *Registry) TakeAndClear() process.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.handle
	r.handle = nil
	r.drained = true
	return h
}
