// Package image loads the raster images drawn by image primitives.
//
// Images are fetched and decoded on a bounded worker pool, kept in an LRU
// cache of decoded results, and downscaled for embedding into SVG output.
// Each load is observed through a Future.
package image

import (
	"context"
	"errors"
	"image"
	"sync"
)

var (
	// ErrNotLoaded is returned by Future.Result while the load is running.
	ErrNotLoaded = errors.New("image: not loaded")
	// ErrClosed is reported to loads submitted after Loader.Close and to
	// queued loads that Close dropped.
	ErrClosed = errors.New("image: loader closed")
	// ErrCancelled is reported to loads whose cancel function was called
	// before they finished.
	ErrCancelled = errors.New("image: load cancelled")
)

// Decoded is a loaded image.
type Decoded struct {
	Src string
	// Width and Height are the natural dimensions, before any downscaling
	// for embedding.
	Width, Height int
	// Image is the (possibly downscaled) pixel data.
	Image image.Image
	// Href is what an SVG image element should reference: the source URL
	// for remote and data URIs, a PNG data URI for local files.
	Href string
}

// Aspect returns width / height, or 1 for an empty image.
func (d *Decoded) Aspect() float64 {
	if d.Width <= 0 || d.Height <= 0 {
		return 1
	}
	return float64(d.Width) / float64(d.Height)
}

// State is the observable state of a Future.
type State int

const (
	Loading State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Future is the pending result of one image load. It is safe for
// concurrent use; the first Resolve wins.
type Future struct {
	mu    sync.Mutex
	state State
	res   *Decoded
	err   error
	done  chan struct{}
}

// NewFuture returns a Future in the Loading state.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve completes the future. It reports false if the future was
// already resolved.
func (f *Future) Resolve(d *Decoded, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Loading {
		return false
	}
	if err == nil && d == nil {
		err = errors.New("image: empty result")
	}
	if err != nil {
		f.state, f.err = Failed, err
	} else {
		f.state, f.res = Loaded, d
	}
	close(f.done)
	return true
}

// State returns the current state.
func (f *Future) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Done is closed once the future resolves.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the outcome, or ErrNotLoaded while still loading.
func (f *Future) Result() (*Decoded, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Loading {
		return nil, ErrNotLoaded
	}
	return f.res, f.err
}

// Wait blocks until the future resolves or ctx is done.
func (f *Future) Wait(ctx context.Context) (*Decoded, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
