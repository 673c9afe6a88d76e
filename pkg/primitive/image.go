package primitive

import (
	"context"
	"math"
	"time"

	"gitlab.com/tinyland/lab/chartkit/pkg/image"
	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
)

// ImageOptions configure AddImage.
type ImageOptions struct {
	Options
	// X and Y place the image; nil centres it in the plot.
	X, Y any
	// Width fixes the drawn width; the height follows the aspect ratio.
	Width float64
	// CornerCoords places the top left corner at (X, Y) instead of the
	// centre.
	CornerCoords bool
	// PreserveAspectRatio defaults to "xMidYMid meet".
	PreserveAspectRatio string

	// OnLoad and OnError run on the chart goroutine from Engine.Dispatch.
	OnLoad  func(img *Image, d *image.Decoded)
	OnError func(img *Image, err error)
}

// Image is an asynchronously loaded raster. Rendering before the load
// completes does nothing.
type Image struct {
	base
	src     string
	x, y    any
	width   float64
	corner  bool
	aspect  string
	onLoad  func(*Image, *image.Decoded)
	onError func(*Image, error)

	future  *image.Future
	decoded *image.Decoded
	stop    func()
}

// AddImage creates an image primitive and starts loading src.
func (e *Engine) AddImage(src string, opts ImageOptions) *Image {
	opts.Options = opts.Options.fill("none", "none", 0, DefaultClassName)
	if opts.PreserveAspectRatio == "" {
		opts.PreserveAspectRatio = "xMidYMid meet"
	}
	img := &Image{
		src:     src,
		x:       opts.X,
		y:       opts.Y,
		width:   opts.Width,
		corner:  opts.CornerCoords,
		aspect:  opts.PreserveAspectRatio,
		onLoad:  opts.OnLoad,
		onError: opts.OnError,
	}
	e.add(img, KindImage, opts.Options)
	img.render = img.draw
	e.images = append(e.images, img)
	img.Load()
	return img
}

// Load starts loading the source once and returns its future. Later calls
// return the same future.
func (img *Image) Load() *image.Future {
	if img.future != nil {
		return img.future
	}
	img.future = image.NewFuture()
	if img.removed || !img.e.Alive() {
		img.future.Resolve(nil, image.ErrClosed)
		return img.future
	}
	e := img.e
	img.stop = e.imageLoader().Load(img.src, func(d *image.Decoded, err error) {
		// queue first so a resolved future implies a queued completion
		e.post(func() { img.complete(d, err) })
		img.future.Resolve(d, err)
	})
	return img.future
}

// Future returns the load future, or nil before Load.
func (img *Image) Future() *image.Future { return img.future }

// Ready reports whether the image has loaded and been applied.
func (img *Image) Ready() bool { return img.decoded != nil }

// Source returns the image source.
func (img *Image) Source() string { return img.src }

// SetCoords moves the image on the next render; nil centres it.
func (img *Image) SetCoords(x, y any) *Image {
	img.x, img.y = x, y
	return img
}

// SetWidth fixes the drawn width; zero restores natural sizing.
func (img *Image) SetWidth(w float64) *Image {
	img.width = w
	return img
}

// cancel stops a pending load and fails its future.
func (img *Image) cancel() {
	if img.stop != nil {
		img.stop()
	}
	if img.future != nil {
		img.future.Resolve(nil, image.ErrCancelled)
	}
}

// complete applies a finished load. It runs from Dispatch and is dropped
// when the primitive or its engine is gone.
func (img *Image) complete(d *image.Decoded, err error) {
	if img.removed || !img.e.Alive() {
		return
	}
	if err != nil || d == nil {
		if err == nil {
			err = image.ErrNotLoaded
		}
		img.e.logger.Warn("image load failed", "src", img.src, "error", err)
		if img.onError != nil {
			img.onError(img, err)
		}
		return
	}
	img.decoded = d
	img.draw(0, nil)
	if img.onLoad != nil {
		img.onLoad(img, d)
	}
	img.e.track(&img.base)
}

// Size returns the drawn size: natural size scaled down to fit the plot,
// or the explicit width with the natural aspect ratio.
func (img *Image) Size() (float64, float64) {
	d := img.decoded
	if d == nil || d.Width <= 0 || d.Height <= 0 {
		return 0, 0
	}
	pw, ph := img.e.host.PlotSize()
	ratio := 1.0
	if pw > 0 && ph > 0 {
		ratio = math.Max(math.Max(float64(d.Width)/pw, float64(d.Height)/ph), 1)
	}
	if img.width > 0 {
		return img.width, img.width / d.Aspect()
	}
	return float64(d.Width) / ratio, float64(d.Height) / ratio
}

// Bounds returns the drawn rectangle in plot pixels.
func (img *Image) Bounds() (x, y, w, h float64, ok bool) {
	w, h = img.Size()
	if img.x == nil || img.y == nil {
		pw, ph := img.e.host.PlotSize()
		return pw/2 - w/2, ph/2 - h/2, w, h, true
	}
	cx, okX := img.convertX(img.x)
	cy, okY := img.convertY(img.y)
	if !okX || !okY {
		return 0, 0, w, h, false
	}
	if img.corner {
		return cx, cy, w, h, true
	}
	return cx - w/2, cy - h/2, w, h, true
}

func (img *Image) draw(d time.Duration, ease surface.Easing) {
	if img.decoded == nil {
		return
	}
	x, y, w, h, ok := img.Bounds()
	pt := paint(img.node, d, ease)
	if !pt.visible(ok) {
		return
	}
	pt.num("x", x).num("y", y).num("width", w).num("height", h).
		set("href", img.decoded.Href).
		set("preserveAspectRatio", img.aspect).
		num("opacity", img.opts.Opacity.At(nil))
}

// WaitImages blocks until every pending image load has finished or ctx
// is done, then dispatches the completions. It is meant for batch
// rendering where the caller wants a complete picture before output.
func (e *Engine) WaitImages(ctx context.Context) error {
	for _, img := range e.images {
		if img.future == nil {
			continue
		}
		if _, err := img.future.Wait(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	e.Dispatch()
	return nil
}
