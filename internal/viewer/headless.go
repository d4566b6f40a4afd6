package viewer

import (
	"sync"

	"github.com/liminalpurple/flyerkit/internal/annotation"
	"github.com/liminalpurple/flyerkit/internal/flyer"
)

// Overlays is a snapshot of the annotations on a renderer
type Overlays struct {
	Taps       []annotation.Annotation `json:"taps" yaml:"taps"`
	Highlights []annotation.Annotation `json:"highlights" yaml:"highlights"`
	Badges     []annotation.Annotation `json:"badges" yaml:"badges"`
	Visible    flyer.Rect              `json:"visible" yaml:"visible"`
	Content    flyer.Size              `json:"content" yaml:"content"`
}

// Headless is a Renderer without a display. It keeps the latest
// annotations and a viewport that ZoomTo moves, which is enough to drive a
// View from a terminal or over HTTP.
type Headless struct {
	mu       sync.Mutex
	delegate Delegate
	flyerID  int64
	frame    flyer.Size
	content  flyer.Size
	visible  flyer.Rect
	overlays Overlays
}

// NewHeadless creates a renderer with the given frame and content sizes,
// zoomed out to show the full content height
func NewHeadless(frame, content flyer.Size) *Headless {
	return &Headless{
		frame:   frame,
		content: content,
		visible: flyer.Rect{Width: content.Width, Height: content.Height},
	}
}

// SetDelegate implements Renderer
func (h *Headless) SetDelegate(d Delegate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delegate = d
}

// SetFlyer implements Renderer. There are no pages to fetch, so loading
// finishes immediately.
func (h *Headless) SetFlyer(flyerID int64, rootURL, version, accessToken string) {
	h.mu.Lock()
	h.flyerID = flyerID
	d := h.delegate
	h.mu.Unlock()

	if d != nil {
		d.WillBeginLoading()
		d.DidFinishLoading()
	}
}

// SetTapAnnotations implements Renderer
func (h *Headless) SetTapAnnotations(a []annotation.Annotation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.overlays.Taps = a
}

// SetHighlightAnnotations implements Renderer
func (h *Headless) SetHighlightAnnotations(a []annotation.Annotation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.overlays.Highlights = a
}

// SetBadgeAnnotations implements Renderer
func (h *Headless) SetBadgeAnnotations(a []annotation.Annotation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.overlays.Badges = a
}

// ZoomTo implements Renderer and reports a scroll to the delegate
func (h *Headless) ZoomTo(rect flyer.Rect) {
	h.mu.Lock()
	h.visible = rect
	d := h.delegate
	h.mu.Unlock()

	if d != nil {
		d.DidScroll()
	}
}

// VisibleContent implements Renderer
func (h *Headless) VisibleContent() flyer.Rect {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}

// ContentSize implements Renderer
func (h *Headless) ContentSize() flyer.Size {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.content
}

// FrameSize implements Renderer
func (h *Headless) FrameSize() flyer.Size {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

// FlyerID returns the flyer last passed to SetFlyer
func (h *Headless) FlyerID() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flyerID
}

// Overlays returns the current annotations and viewport
func (h *Headless) Overlays() Overlays {
	h.mu.Lock()
	defer h.mu.Unlock()
	o := h.overlays
	o.Visible = h.visible
	o.Content = h.content
	return o
}

// DefaultFrame is the on-screen size of a headless renderer, in points
var DefaultFrame = flyer.Size{Width: 375, Height: 667}

// Fit replaces the content size and zooms out to show its full height
func (h *Headless) Fit(content flyer.Size) {
	h.mu.Lock()
	h.content = content
	h.mu.Unlock()

	h.ZoomTo(flyer.Rect{Width: content.Width, Height: content.Height})
}

// ContentBounds returns the extent of the pages, or of the items when no
// pages are loaded
func ContentBounds(pages []flyer.Page, items []flyer.Item) flyer.Size {
	var size flyer.Size
	grow := func(r flyer.Rect) {
		size.Width = max(size.Width, r.Right())
		size.Height = max(size.Height, r.Top+r.Height)
	}

	for _, p := range pages {
		grow(p.Rect)
	}
	if len(pages) == 0 {
		for _, it := range items {
			grow(it.Rect)
		}
	}
	return size
}

// FitToFlyer sizes the renderer to the view's loaded flyer. It does
// nothing when nothing has loaded.
func FitToFlyer(v *View, h *Headless) {
	pages, _ := v.Pages()
	size := ContentBounds(pages, v.Items())
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	h.Fit(size)
}
