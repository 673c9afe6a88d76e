package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// sharpenSigma is the Gaussian sigma of the sharpen pass applied after a
// downscale.
const sharpenSigma = 0.5

// Fit scales an image down to fit within maxW x maxH while keeping its
// aspect ratio. It never upscales. A non-positive bound leaves that
// dimension unconstrained, and a nil image returns nil.
func Fit(img image.Image, maxW, maxH int) image.Image {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return img
	}
	if maxW <= 0 {
		maxW = srcW
	}
	if maxH <= 0 {
		maxH = srcH
	}
	if srcW <= maxW && srcH <= maxH {
		return img
	}

	scale := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	dstW := max(1, int(math.Round(float64(srcW)*scale)))
	dstH := max(1, int(math.Round(float64(srcH)*scale)))

	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	lanczos3.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)

	// Restore edge detail lost during the downscale.
	return imaging.Sharpen(dst, sharpenSigma)
}

// lanczos3 is a Lanczos kernel with a support of 3; x/image only ships
// the lower-order kernels.
var lanczos3 = &xdraw.Kernel{Support: 3, At: lanczos3At}

func lanczos3At(t float64) float64 {
	if t < 0 {
		t = -t
	}
	if t >= 3 {
		return 0
	}
	if t == 0 {
		return 1
	}
	pt := math.Pi * t
	return (math.Sin(pt) / pt) * (math.Sin(pt/3) / (pt / 3))
}

// DataURI encodes img as a base64 PNG data URI.
func DataURI(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("image: encode: nil image")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("image: encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ToNRGBA converts any image.Image to *image.NRGBA for direct pixel access.
func ToNRGBA(src image.Image) *image.NRGBA {
	if nrgba, ok := src.(*image.NRGBA); ok {
		return nrgba
	}
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
