package zipstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Loader builds a Store.
type Loader func(ctx context.Context) (*Store, error)

var errNotLoaded = errors.New("postal code dataset not loaded")

// Lazy loads a Store exactly once, on the first call to Get. Concurrent
// callers block until that load finishes and then share its result. A failed
// load is not retried: the error is returned to every caller.
type Lazy struct {
	load   Loader
	once   sync.Once
	store  *Store
	err    error
	loaded atomic.Bool
}

// NewLazy wraps load in a once-only initializer.
func NewLazy(load Loader) *Lazy {
	return &Lazy{load: load}
}

// Get returns the loaded Store, loading it on first use. The context of the
// first caller governs the load.
func (l *Lazy) Get(ctx context.Context) (*Store, error) {
	l.once.Do(func() {
		l.store, l.err = l.load(ctx)
		if l.err == nil {
			l.loaded.Store(true)
		}
	})
	return l.store, l.err
}

// Loaded reports whether a successful load has completed.
func (l *Lazy) Loaded() bool {
	return l.loaded.Load()
}

// CheckReadiness reports the service as ready once the dataset is loaded.
func (l *Lazy) CheckReadiness(_ context.Context) error {
	if !l.Loaded() {
		return errNotLoaded
	}
	return nil
}
