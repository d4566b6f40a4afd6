// Package preview draws a flyer's overlays to a PNG, for checking
// annotation geometry without a display.
package preview

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"

	"github.com/liminalpurple/flyerkit/internal/annotation"
	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/viewer"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultWidth is the output width when none is given
const DefaultWidth = 800

var (
	paper       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	tapLine     = color.RGBA{R: 0x90, G: 0x90, B: 0x90, A: 0xff}
	highlight   = color.RGBA{R: 0xff, G: 0xd6, B: 0x00, A: 0x70}
	clipLine    = color.RGBA{R: 0xd0, G: 0x20, B: 0x20, A: 0xff}
	couponFill  = color.RGBA{R: 0x20, G: 0x70, B: 0xd0, A: 0xc0}
	clippedFill = color.RGBA{R: 0x20, G: 0xa0, B: 0x40, A: 0xc0}
	labelInk    = color.RGBA{A: 0xff}
)

// Options controls the rendered image
type Options struct {
	// Width in pixels; the height follows the content aspect ratio
	Width      int
	Background image.Image
	Labels     bool
}

// Render draws the overlays scaled to opts.Width. The whole content area
// is drawn, not only the visible region.
func Render(o viewer.Overlays, opts Options) (*image.RGBA, error) {
	if o.Content.Width <= 0 || o.Content.Height <= 0 {
		return nil, errors.New("content size is empty")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}

	scale := float64(opts.Width) / o.Content.Width
	height := int(o.Content.Height * scale)
	if height < 1 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(paper), image.Point{}, draw.Src)
	if opts.Background != nil {
		draw.ApproxBiLinear.Scale(img, img.Bounds(), opts.Background, opts.Background.Bounds(), draw.Over, nil)
	}

	toPx := func(r flyer.Rect) image.Rectangle {
		return image.Rect(
			int(r.Left*scale), int(r.Top*scale),
			int(r.Right()*scale), int((r.Top+r.Height)*scale),
		)
	}

	for _, a := range o.Highlights {
		fill(img, toPx(a.Rect), highlight)
	}

	for _, a := range o.Taps {
		r := toPx(a.Rect)
		outline(img, r, tapLine)
		if opts.Labels && a.Item != nil {
			label(img, r.Min, strconv.FormatInt(a.Item.ID, 10))
		}
	}

	for _, a := range o.Badges {
		r := toPx(a.Rect)
		switch a.Image {
		case annotation.ImageCoupon:
			fill(img, r, couponFill)
		case annotation.ImageCouponClipped:
			fill(img, r, clippedFill)
		default:
			outline(img, r, clipLine)
			outline(img, r.Inset(1), clipLine)
		}
	}

	return img, nil
}

// WritePNG renders the overlays and encodes them as PNG
func WritePNG(w io.Writer, o viewer.Overlays, opts Options) error {
	img, err := Render(o, opts)
	if err != nil {
		return err
	}
	return EncodePNG(w, img)
}

// EncodePNG writes a rendered preview
func EncodePNG(w io.Writer, img image.Image) error {
	return errors.Wrap(png.Encode(w, img), "failed to encode png")
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func outline(img *image.RGBA, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		setIn(img, x, r.Min.Y, c)
		setIn(img, x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		setIn(img, r.Min.X, y, c)
		setIn(img, r.Max.X-1, y, c)
	}
}

func setIn(img *image.RGBA, x, y int, c color.Color) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.Set(x, y, c)
	}
}

func label(img *image.RGBA, at image.Point, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelInk),
		Face: face,
		Dot:  fixed.P(at.X+2, at.Y+face.Ascent+1),
	}
	d.DrawString(text)
}
