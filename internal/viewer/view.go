// Package viewer is the flyer view model: it loads a flyer's items and
// pages, keeps the overlays on the renderer current, and turns gestures
// into navigation.
package viewer

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/liminalpurple/flyerkit/internal/annotation"
	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/navigation"
	"github.com/liminalpurple/flyerkit/internal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FixedZoomSize is the edge length of the region zoomed to when a
// double-tap lands on a fit-height view
const FixedZoomSize = 700.0

const fitEpsilon = 0.001

// FlyerSource fetches flyer data
type FlyerSource interface {
	FetchItems(ctx context.Context, flyerID int64, postalCode string) (*flyer.ItemsResult, error)
	FetchPages(ctx context.Context, flyerID int64, postalCode string) ([]flyer.Page, error)
}

// Options configures a View
type Options struct {
	FlyerID   int64
	Session   *session.Session
	API       APIInfo
	Source    FlyerSource
	Clipped   *ClippedLoader
	Renderer  Renderer
	Navigator Navigator
	Log       zerolog.Logger
}

// View is one open flyer. All methods are safe for concurrent use.
type View struct {
	id   uuid.UUID
	opts Options
	log  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	items      []flyer.Item
	pages      []flyer.Page
	itemsState LoadState
	pagesState LoadState
	pagesReady bool
	clips      *ClipSet
	clipped    flyer.CouponIDSet
	threshold  float64
	closed     bool
}

// New creates a view and registers it as the renderer's delegate
func New(opts Options) *View {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.Session == nil {
		opts.Session = session.New("")
	}

	id := uuid.New()
	v := &View{
		id:         id,
		opts:       opts,
		log:        opts.Log.With().Str("view", id.String()).Int64("flyer_id", opts.FlyerID).Logger(),
		ctx:        ctx,
		cancel:     cancel,
		itemsState: LoadState{Status: StatusPending},
		pagesState: LoadState{Status: StatusPending},
		clips:      NewClipSet(),
		clipped:    flyer.CouponIDSet{},
	}

	if opts.Renderer != nil {
		opts.Renderer.SetDelegate(v)
	}

	return v
}

// ID returns the view's unique id
func (v *View) ID() uuid.UUID {
	return v.id
}

// FlyerID returns the id of the flyer shown
func (v *View) FlyerID() int64 {
	return v.opts.FlyerID
}

// Open loads clipped coupons and then the flyer itself
func (v *View) Open(ctx context.Context) (Status, error) {
	if err := v.LoadClipped(ctx); err != nil {
		v.log.Warn().Err(err).Msg("Continuing with local clipped coupons only")
	}
	return v.Load(ctx)
}

// LoadClipped refreshes the clipped coupon set and the coupon badges. The
// set is replaced even when the remote fetch fails.
func (v *View) LoadClipped(ctx context.Context) error {
	if v.opts.Clipped == nil {
		return nil
	}

	ctx, stop := v.scoped(ctx)
	defer stop()

	set, err := v.opts.Clipped.Load(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.clipped = set
	v.updateBadgesLocked()

	return err
}

// Appear is called when the view comes back on screen. It resets the
// discount highlight and refreshes clipped coupons.
func (v *View) Appear(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.threshold = 0
	v.renderHighlightsLocked()
	v.mu.Unlock()

	return v.LoadClipped(ctx)
}

// SetDiscount highlights items discounted by more than threshold percent.
// Zero clears the highlight.
func (v *View) SetDiscount(threshold float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	v.threshold = threshold
	v.renderHighlightsLocked()
}

// Threshold returns the current discount threshold
func (v *View) Threshold() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.threshold
}

// SingleTap resolves the tapped item and dispatches its route. Anchor
// routes zoom the renderer to the target page.
func (v *View) SingleTap(itemID int64) (navigation.Route, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return navigation.Route{}, errors.New("view closed")
	}
	item, ok := v.itemLocked(itemID)
	pages := v.pageSourceLocked()
	v.mu.Unlock()

	if !ok {
		return navigation.Route{}, errors.Wrapf(flyer.ErrItemNotFound, "item %d", itemID)
	}

	route, err := navigation.Resolve(item, pages)
	if err != nil {
		v.log.Info().Err(err).Int64("item_id", itemID).Msg("Tap ignored")
		return navigation.Route{}, err
	}

	v.log.Info().Stringer("route", route).Msg("Tap")

	if err := v.dispatch(route); err != nil {
		return route, err
	}
	return route, nil
}

func (v *View) dispatch(route navigation.Route) error {
	switch route.Destination {
	case navigation.DestAnchor:
		if v.opts.Renderer != nil {
			v.opts.Renderer.ZoomTo(route.ZoomRect)
		}
		return nil
	case navigation.DestLink:
		if v.opts.Navigator == nil {
			return nil
		}
		return errors.Wrap(v.opts.Navigator.OpenURL(route.URL), "open url")
	default:
		if v.opts.Navigator == nil {
			return nil
		}
		return errors.Wrap(v.opts.Navigator.Push(route), "push")
	}
}

// LongPress toggles the item's clip state and reports whether it is now
// clipped
func (v *View) LongPress(itemID int64) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false, errors.New("view closed")
	}

	if _, ok := v.itemLocked(itemID); !ok {
		return false, errors.Wrapf(flyer.ErrItemNotFound, "item %d", itemID)
	}

	clipped := v.clips.Toggle(itemID)
	v.log.Info().Int64("item_id", itemID).Bool("clipped", clipped).Msg("Long press")
	v.updateBadgesLocked()
	return clipped, nil
}

// Clips returns the clipped item ids in clip order
func (v *View) Clips() []int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clips.IDs()
}

// DoubleTap zooms to fit height when the view is not already fit to
// height, and otherwise to a fixed region centred on point. It returns
// the rectangle zoomed to.
func (v *View) DoubleTap(point flyer.Point) (flyer.Rect, bool) {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()

	r := v.opts.Renderer
	if r == nil || closed {
		return flyer.Rect{}, false
	}

	rect, ok := doubleTapRect(point, r.VisibleContent(), r.ContentSize(), r.FrameSize())
	if !ok {
		return flyer.Rect{}, false
	}

	v.log.Debug().Stringer("rect", rect).Msg("Double tap")
	r.ZoomTo(rect)
	return rect, true
}

func doubleTapRect(point flyer.Point, visible flyer.Rect, content, frame flyer.Size) (flyer.Rect, bool) {
	if math.Abs(visible.Height-content.Height) > fitEpsilon {
		if content.Height <= 0 || frame.Height <= 0 {
			return flyer.Rect{}, false
		}
		zoomScale := frame.Height / content.Height
		size := flyer.Size{Width: frame.Width / zoomScale, Height: content.Height}
		center := visible.Center()
		return flyer.Rect{
			Left:   center.X - size.Width/2,
			Top:    center.Y - size.Height/2,
			Width:  size.Width,
			Height: size.Height,
		}, true
	}

	return flyer.Rect{
		Left:   point.X - FixedZoomSize/2,
		Top:    point.Y - FixedZoomSize/2,
		Width:  FixedZoomSize,
		Height: FixedZoomSize,
	}, true
}

// Scrolled recomputes the coupon badges for the current zoom
func (v *View) Scrolled() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	if v.opts.Renderer != nil {
		vp := v.viewportLocked()
		v.log.Debug().Float64("scale", vp.Scale()).Msg("Scrolled")
	}
	v.updateBadgesLocked()
}

// Close cancels in-flight loads. Results arriving afterwards are dropped.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.cancel()
	v.log.Info().Msg("View closed")
}

// Items returns a copy of the loaded items
func (v *View) Items() []flyer.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]flyer.Item, len(v.items))
	copy(out, v.items)
	return out
}

// Item returns the loaded item with id
func (v *View) Item(id int64) (flyer.Item, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.itemLocked(id)
}

// Pages implements navigation.PageSource
func (v *View) Pages() ([]flyer.Page, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pages, v.pagesReady
}

// WillBeginLoading implements Delegate
func (v *View) WillBeginLoading() {
	v.log.Debug().Msg("Flyer will begin loading")
}

// DidFinishLoading implements Delegate
func (v *View) DidFinishLoading() {
	v.log.Debug().Msg("Flyer finished loading")
}

// DidFailLoading implements Delegate
func (v *View) DidFailLoading(err error) {
	v.log.Warn().Err(err).Msg("Flyer failed to load")
}

// DidScroll implements Delegate
func (v *View) DidScroll() {
	v.Scrolled()
}

func (v *View) itemLocked(id int64) (flyer.Item, bool) {
	for _, item := range v.items {
		if item.ID == id {
			return item, true
		}
	}
	return flyer.Item{}, false
}

func (v *View) pageSourceLocked() navigation.PageSource {
	return loadedPages{pages: v.pages, loaded: v.pagesReady}
}

func (v *View) viewportLocked() annotation.Viewport {
	return annotation.Viewport{
		Visible: v.opts.Renderer.VisibleContent(),
		Content: v.opts.Renderer.ContentSize(),
	}
}

func (v *View) renderTapsLocked() {
	if v.opts.Renderer == nil {
		return
	}
	v.opts.Renderer.SetTapAnnotations(annotation.Taps(v.items))
}

func (v *View) renderHighlightsLocked() {
	if v.opts.Renderer == nil {
		return
	}
	v.opts.Renderer.SetHighlightAnnotations(annotation.Highlights(v.items, v.threshold))
}

func (v *View) updateBadgesLocked() {
	if v.opts.Renderer == nil {
		return
	}
	badges := annotation.Badges(v.items, v.clips, v.clipped, v.viewportLocked())
	v.opts.Renderer.SetBadgeAnnotations(badges)
}

// scoped derives a context that is also cancelled when the view closes
func (v *View) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(v.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// loadedPages snapshots the page list for route resolution
type loadedPages struct {
	pages  []flyer.Page
	loaded bool
}

func (p loadedPages) Pages() ([]flyer.Page, bool) {
	return p.pages, p.loaded
}
