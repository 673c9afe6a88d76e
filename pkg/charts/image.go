package charts

import (
	"fmt"

	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Image places one raster per record. Each record names its source under
// URLKey, its [x, y] position under CoordsKey and its drawn width under
// WidthKey.
type Image struct {
	chart.BaseTemplate

	URLKey    string
	CoordsKey string
	WidthKey  string
	// CornerCoords places the top left corner at the coordinates instead
	// of the centre.
	CornerCoords bool

	images []*primitive.Image
}

// NewImage returns an image plot reading the given keys.
func NewImage(urlKey, coordsKey, widthKey string) *Image {
	return &Image{URLKey: urlKey, CoordsKey: coordsKey, WidthKey: widthKey}
}

func (im *Image) Name() string           { return "image" }
func (im *Image) Defaults() config.Layer { return config.Preset("image") }

// Images returns the image primitives of the last pass.
func (im *Image) Images() []*primitive.Image { return im.images }

func (im *Image) Draw(c *chart.Chart) error {
	im.images = im.images[:0]
	for i, r := range c.Data() {
		src, _ := r[im.URLKey].(string)
		if src == "" {
			c.Logger().Warn("image: record has no source", "index", i, "key", im.URLKey)
			continue
		}
		opts := primitive.ImageOptions{CornerCoords: im.CornerCoords}
		if x, y, ok := pair(r[im.CoordsKey]); ok {
			opts.X, opts.Y = x, y
		}
		if w, ok := value.Finite(r[im.WidthKey]); ok {
			opts.Width = w
		}
		opts.ClassName = "image-plot"
		opts.DataID = fmt.Sprintf("image-%d", i)
		im.images = append(im.images, c.Engine().AddImage(src, opts))
	}
	return nil
}

func (im *Image) OnCleanup(*chart.Chart) { im.images = nil }
