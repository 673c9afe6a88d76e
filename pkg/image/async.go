package image

import (
	"context"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// defaultWorkers is the number of concurrent load goroutines.
	defaultWorkers = 2
	// defaultMaxEmbed bounds the longer side of images embedded as data URIs.
	defaultMaxEmbed = 1024
)

// LoaderOptions configures a Loader. Zero values select defaults.
type LoaderOptions struct {
	Workers  int
	CacheMB  int
	MaxEmbed int
	Fetcher  Fetcher
	Logger   *slog.Logger
}

// loadJob is an internal unit of work for the pool.
type loadJob struct {
	src      string
	callback func(*Decoded, error)
	cancel   <-chan struct{}
}

func (j loadJob) cancelled() bool {
	select {
	case <-j.cancel:
		return true
	default:
		return false
	}
}

// Loader fetches and decodes images on a bounded goroutine pool so that
// drawing never waits on I/O. Decoded images are cached by source.
type Loader struct {
	fetcher  Fetcher
	cache    *Cache
	logger   *slog.Logger
	maxEmbed int

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	closed   bool
	jobs     chan loadJob
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewLoader creates a Loader. The pool starts immediately.
func NewLoader(opts LoaderOptions) *Loader {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.MaxEmbed <= 0 {
		opts.MaxEmbed = defaultMaxEmbed
	}
	if opts.Fetcher == nil {
		opts.Fetcher = &DefaultFetcher{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		fetcher:  opts.Fetcher,
		cache:    NewCache(opts.CacheMB),
		logger:   opts.Logger,
		maxEmbed: opts.MaxEmbed,
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(chan loadJob, opts.Workers*4),
	}
	for i := 0; i < opts.Workers; i++ {
		l.wg.Add(1)
		go l.worker()
	}
	return l
}

// Cache returns the loader's cache for inspection or invalidation.
func (l *Loader) Cache() *Cache { return l.cache }

// Load submits src for loading. The callback runs exactly once on a worker
// goroutine: with the decoded image, with the load error, with ErrCancelled
// when the returned cancel function was called before the job finished, or
// with ErrClosed when the loader shut down first. Cancel is safe to call
// more than once.
//
// Load never blocks beyond a channel send.
func (l *Loader) Load(src string, callback func(*Decoded, error)) func() {
	cancelled := make(chan struct{})
	var once sync.Once
	cancel := func() { once.Do(func() { close(cancelled) }) }

	job := loadJob{src: src, callback: callback, cancel: cancelled}

	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		callback(nil, ErrClosed)
		return cancel
	}
	// Non-blocking send: with a full queue, load on a fresh goroutine.
	select {
	case l.jobs <- job:
	default:
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.run(job)
		}()
	}
	l.mu.RUnlock()
	return cancel
}

// Future submits src and returns a Future that resolves with the result.
func (l *Loader) Future(src string) *Future {
	f := NewFuture()
	l.Load(src, func(d *Decoded, err error) { f.Resolve(d, err) })
	return f
}

// Close cancels in-flight fetches, fails queued jobs with ErrClosed and
// waits for the workers to exit. It is idempotent.
func (l *Loader) Close() {
	l.stopOnce.Do(func() {
		l.cancel()
		l.mu.Lock()
		l.closed = true
		close(l.jobs)
		l.mu.Unlock()
		l.wg.Wait()
	})
}

// worker processes jobs from the queue until the pool is closed.
func (l *Loader) worker() {
	defer l.wg.Done()
	for job := range l.jobs {
		l.run(job)
	}
}

func (l *Loader) run(job loadJob) {
	switch {
	case job.cancelled():
		job.callback(nil, ErrCancelled)
		return
	case l.ctx.Err() != nil:
		job.callback(nil, ErrClosed)
		return
	}
	d, err := l.load(job.src)
	if err != nil {
		l.logger.Debug("image load failed", "src", shortSrc(job.src), "error", err)
	}
	if job.cancelled() {
		job.callback(nil, ErrCancelled)
		return
	}
	job.callback(d, err)
}

// load returns the decoded image for src, from the cache when possible.
func (l *Loader) load(src string) (*Decoded, error) {
	if d, ok := l.cache.Get(src); ok {
		return d, nil
	}

	rc, err := l.fetcher.Fetch(l.ctx, src)
	if err != nil {
		return nil, fmt.Errorf("image: fetch %s: %w", shortSrc(src), err)
	}
	defer rc.Close()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("image: decode %s: %w", shortSrc(src), err)
	}

	b := img.Bounds()
	d := &Decoded{
		Src:    src,
		Width:  b.Dx(),
		Height: b.Dy(),
		Image:  ToNRGBA(Fit(img, l.maxEmbed, l.maxEmbed)),
	}
	if isRemote(src) {
		d.Href = src
	} else if d.Href, err = DataURI(d.Image); err != nil {
		return nil, err
	}

	l.cache.Put(src, d)
	return d, nil
}
