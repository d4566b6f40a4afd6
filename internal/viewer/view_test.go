package viewer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/liminalpurple/flyerkit/internal/annotation"
	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/flyerapi"
	"github.com/liminalpurple/flyerkit/internal/navigation"
	"github.com/liminalpurple/flyerkit/internal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	items    []flyer.Item
	pages    []flyer.Page
	itemsErr error
	pagesErr error
	block    chan struct{}
}

func (f *fakeSource) FetchItems(ctx context.Context, flyerID int64, postalCode string) (*flyer.ItemsResult, error) {
	if f.block != nil {
		<-f.block
	}
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return &flyer.ItemsResult{Items: f.items}, nil
}

func (f *fakeSource) FetchPages(ctx context.Context, flyerID int64, postalCode string) ([]flyer.Page, error) {
	if f.block != nil {
		<-f.block
	}
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	return f.pages, nil
}

type fakeNavigator struct {
	mu     sync.Mutex
	pushed []navigation.Route
	opened []string
}

func (n *fakeNavigator) Push(route navigation.Route) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushed = append(n.pushed, route)
	return nil
}

func (n *fakeNavigator) OpenURL(url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, url)
	return nil
}

func pct(v float64) *float64 { return &v }

func sampleItems() []flyer.Item {
	return []flyer.Item{
		{ID: 1, Type: flyer.ItemTypeFlyer, Rect: flyer.Rect{Left: 0, Top: 0, Width: 100, Height: 100}, PercentOff: pct(10)},
		{ID: 2, Type: flyer.ItemTypeLink, Rect: flyer.Rect{Left: 100, Top: 0, Width: 100, Height: 100}, WebURL: "https://example.com/deal", PercentOff: pct(40)},
		{ID: 3, Type: flyer.ItemTypeAnchor, Rect: flyer.Rect{Left: 200, Top: 0, Width: 100, Height: 100}, PageDestination: 2},
		{ID: 4, Type: flyer.ItemTypeVideo, Rect: flyer.Rect{Left: 300, Top: 0, Width: 100, Height: 100}},
		{ID: 5, Type: flyer.ItemTypeMissing, Rect: flyer.Rect{Left: 400, Top: 0, Width: 100, Height: 100}},
		{ID: 6, Type: flyer.ItemTypeCoupon, Rect: flyer.Rect{Left: 500, Top: 0, Width: 300, Height: 300}, Coupons: []flyer.Coupon{{ID: 77}}},
	}
}

func samplePages() []flyer.Page {
	return []flyer.Page{
		{Number: 1, Rect: flyer.Rect{Left: 0, Top: 0, Width: 1000, Height: 1000}},
		{Number: 2, Rect: flyer.Rect{Left: 1000, Top: 0, Width: 1000, Height: 1000}},
	}
}

type fixture struct {
	view     *View
	renderer *Headless
	nav      *fakeNavigator
	source   *fakeSource
}

func newFixture(t *testing.T, source *fakeSource, clipped *ClippedLoader) *fixture {
	t.Helper()
	renderer := NewHeadless(flyer.Size{Width: 400, Height: 800}, flyer.Size{Width: 2000, Height: 1000})
	nav := &fakeNavigator{}
	v := New(Options{
		FlyerID:   42,
		Session:   session.New("10011"),
		Source:    source,
		Clipped:   clipped,
		Renderer:  renderer,
		Navigator: nav,
		Log:       zerolog.Nop(),
	})
	t.Cleanup(v.Close)
	return &fixture{view: v, renderer: renderer, nav: nav, source: source}
}

func TestLoad_Success(t *testing.T) {
	f := newFixture(t, &fakeSource{items: sampleItems(), pages: samplePages()}, nil)

	status, err := f.view.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusLoaded, status.Items.Status)
	assert.Equal(t, StatusLoaded, status.Pages.Status)
	assert.Equal(t, 6, status.ItemCount)
	assert.Equal(t, 2, status.PageCount)
	assert.Equal(t, int64(42), f.renderer.FlyerID())

	overlays := f.renderer.Overlays()
	assert.Len(t, overlays.Taps, 6)
	assert.Empty(t, overlays.Highlights)
	require.Len(t, overlays.Badges, 1)
	assert.Equal(t, annotation.ImageCoupon, overlays.Badges[0].Image)
}

func TestLoad_ItemsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/flyerkit/v4.0/publication/42/pages" {
			w.Write([]byte(`[{"left":0,"top":0,"width":10,"height":10}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := flyerapi.NewClient(srv.URL, "v4.0", "token", 5*time.Second, zerolog.Nop())
	require.NoError(t, err)

	renderer := NewHeadless(flyer.Size{Width: 100, Height: 100}, flyer.Size{Width: 100, Height: 100})
	v := New(Options{FlyerID: 42, Session: session.New("10011"), Source: client, Renderer: renderer, Log: zerolog.Nop()})
	defer v.Close()

	status, err := v.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, flyer.ErrLoadFailed))
	assert.True(t, errors.Is(err, flyer.ErrUnexpectedStatus))
	assert.Equal(t, "LOAD_FAILED", flyer.Code(err))

	assert.Equal(t, StatusFailed, status.Items.Status)
	assert.Equal(t, StatusLoaded, status.Pages.Status)
	assert.Empty(t, renderer.Overlays().Taps)
}

func TestLoad_PagesFailureLeavesItems(t *testing.T) {
	f := newFixture(t, &fakeSource{items: sampleItems(), pagesErr: errors.New("boom")}, nil)

	status, err := f.view.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusLoaded, status.Items.Status)
	assert.Equal(t, StatusFailed, status.Pages.Status)
	assert.Len(t, f.renderer.Overlays().Taps, 6)

	_, err = f.view.SingleTap(3)
	assert.True(t, errors.Is(err, flyer.ErrPageLinksUnavailable))

	route, err := f.view.SingleTap(4)
	require.NoError(t, err)
	assert.Equal(t, navigation.DestVideo, route.Destination)
}

func TestLoad_FailedReloadKeepsPriorData(t *testing.T) {
	source := &fakeSource{items: sampleItems(), pages: samplePages()}
	f := newFixture(t, source, nil)

	_, err := f.view.Load(context.Background())
	require.NoError(t, err)

	source.itemsErr = &flyer.StatusError{StatusCode: http.StatusInternalServerError}
	source.pagesErr = &flyer.StatusError{StatusCode: http.StatusInternalServerError}

	status, err := f.view.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, flyer.ErrLoadFailed))
	assert.Equal(t, StatusFailed, status.Items.Status)
	assert.Equal(t, StatusFailed, status.Pages.Status)
	assert.Equal(t, 6, status.ItemCount)
	assert.Equal(t, 2, status.PageCount)

	assert.Len(t, f.view.Items(), 6)
	assert.Len(t, f.renderer.Overlays().Taps, 6)
	assert.Len(t, f.renderer.Overlays().Badges, 1)

	route, err := f.view.SingleTap(3)
	require.NoError(t, err)
	assert.Equal(t, navigation.DestAnchor, route.Destination)
}

func TestSingleTap_Dispatch(t *testing.T) {
	f := newFixture(t, &fakeSource{items: sampleItems(), pages: samplePages()}, nil)
	_, err := f.view.Load(context.Background())
	require.NoError(t, err)

	route, err := f.view.SingleTap(2)
	require.NoError(t, err)
	assert.Equal(t, navigation.DestLink, route.Destination)
	assert.Equal(t, []string{"https://example.com/deal"}, f.nav.opened)

	route, err = f.view.SingleTap(3)
	require.NoError(t, err)
	assert.Equal(t, navigation.DestAnchor, route.Destination)
	assert.Equal(t, samplePages()[1].Rect, f.renderer.VisibleContent())

	_, err = f.view.SingleTap(6)
	require.NoError(t, err)
	_, err = f.view.SingleTap(1)
	require.NoError(t, err)
	require.Len(t, f.nav.pushed, 2)
	assert.Equal(t, navigation.DestCoupon, f.nav.pushed[0].Destination)
	assert.Equal(t, navigation.DestFlyerItem, f.nav.pushed[1].Destination)
}

func TestSingleTap_NoRoute(t *testing.T) {
	f := newFixture(t, &fakeSource{items: sampleItems(), pages: samplePages()}, nil)
	_, err := f.view.Load(context.Background())
	require.NoError(t, err)

	_, err = f.view.SingleTap(5)
	assert.True(t, errors.Is(err, flyer.ErrNoRoute))

	_, err = f.view.SingleTap(999)
	assert.True(t, errors.Is(err, flyer.ErrItemNotFound))

	assert.Empty(t, f.nav.pushed)
	assert.Empty(t, f.nav.opened)
}

func TestLongPress_TogglesBadges(t *testing.T) {
	f := newFixture(t, &fakeSource{items: sampleItems(), pages: samplePages()}, nil)
	_, err := f.view.Load(context.Background())
	require.NoError(t, err)

	clipped, err := f.view.LongPress(4)
	require.NoError(t, err)
	assert.True(t, clipped)
	_, err = f.view.LongPress(1)
	require.NoError(t, err)

	badges := f.renderer.Overlays().Badges
	require.Len(t, badges, 3)
	assert.Equal(t, int64(4), badges[0].ItemID())
	assert.Equal(t, int64(1), badges[1].ItemID())
	assert.Equal(t, annotation.ImageCoupon, badges[2].Image)

	clipped, err = f.view.LongPress(4)
	require.NoError(t, err)
	assert.False(t, clipped)
	assert.Equal(t, []int64{1}, f.view.Clips())

	_, err = f.view.LongPress(999)
	assert.True(t, errors.Is(err, flyer.ErrItemNotFound))
}

func TestSetDiscount_AndAppear(t *testing.T) {
	f := newFixture(t, &fakeSource{items: sampleItems(), pages: samplePages()}, nil)
	_, err := f.view.Load(context.Background())
	require.NoError(t, err)

	f.view.SetDiscount(20)
	highlights := f.renderer.Overlays().Highlights
	require.Len(t, highlights, 1)
	assert.Equal(t, sampleItems()[1].Rect, highlights[0].Rect)

	f.view.SetDiscount(5)
	assert.Len(t, f.renderer.Overlays().Highlights, 2)

	require.NoError(t, f.view.Appear(context.Background()))
	assert.Equal(t, 0.0, f.view.Threshold())
	assert.Empty(t, f.renderer.Overlays().Highlights)
}

func TestDoubleTap(t *testing.T) {
	f := newFixture(t, &fakeSource{}, nil)

	// Fully zoomed out: visible height equals content height
	rect, ok := f.view.DoubleTap(flyer.Point{X: 500, Y: 400})
	require.True(t, ok)
	assert.Equal(t, flyer.Rect{Left: 150, Top: 50, Width: 700, Height: 700}, rect)

	// Now zoomed in: fit height around the visible centre
	rect, ok = f.view.DoubleTap(flyer.Point{})
	require.True(t, ok)
	// zoomScale = 800/1000, width = 400/0.8
	assert.InDelta(t, 500, rect.Width, 1e-9)
	assert.InDelta(t, 1000, rect.Height, 1e-9)
	assert.InDelta(t, 500-250, rect.Left, 1e-9)
	assert.InDelta(t, 400-500, rect.Top, 1e-9)
	assert.Equal(t, rect, f.renderer.VisibleContent())
}

func TestDoubleTap_AfterClose(t *testing.T) {
	f := newFixture(t, &fakeSource{}, nil)
	before := f.renderer.VisibleContent()

	f.view.Close()

	_, ok := f.view.DoubleTap(flyer.Point{X: 500, Y: 400})
	assert.False(t, ok)
	assert.Equal(t, before, f.renderer.VisibleContent())
}

func TestDoubleTapRect_ZeroHeights(t *testing.T) {
	_, ok := doubleTapRect(flyer.Point{}, flyer.Rect{Height: 10}, flyer.Size{}, flyer.Size{Height: 10})
	assert.False(t, ok)

	_, ok = doubleTapRect(flyer.Point{}, flyer.Rect{Height: 10}, flyer.Size{Height: 20}, flyer.Size{})
	assert.False(t, ok)
}

func TestScrolled_ResizesCouponBadges(t *testing.T) {
	f := newFixture(t, &fakeSource{items: sampleItems(), pages: samplePages()}, nil)
	_, err := f.view.Load(context.Background())
	require.NoError(t, err)

	badge := f.renderer.Overlays().Badges[0]
	assert.Equal(t, annotation.CouponBadgeSize, badge.Rect.Width)

	f.renderer.ZoomTo(flyer.Rect{Width: 500, Height: 250})
	badge = f.renderer.Overlays().Badges[0]
	assert.Equal(t, annotation.CouponBadgeSize/4, badge.Rect.Width)
	assert.Equal(t, 800-annotation.CouponBadgeSize/4, badge.Rect.Left)
}

func TestClose_DiscardsLateResults(t *testing.T) {
	source := &fakeSource{items: sampleItems(), pages: samplePages(), block: make(chan struct{})}
	f := newFixture(t, source, nil)

	done := make(chan Status)
	go func() {
		status, _ := f.view.Load(context.Background())
		done <- status
	}()

	f.view.Close()
	close(source.block)

	status := <-done
	assert.Equal(t, StatusPending, status.Items.Status)
	assert.Empty(t, f.view.Items())
	assert.Empty(t, f.renderer.Overlays().Taps)
}

func TestOpen_ClippedCouponBadges(t *testing.T) {
	remote := &fakeRemote{responses: []remoteResponse{{coupons: []flyer.Coupon{{ID: 77}}}}}
	loader := NewClippedLoader(remote, nil, RetryPolicy{MaxAttempts: 1}, zerolog.Nop())
	f := newFixture(t, &fakeSource{items: sampleItems(), pages: samplePages()}, loader)

	_, err := f.view.Open(context.Background())
	require.NoError(t, err)

	badges := f.renderer.Overlays().Badges
	require.Len(t, badges, 1)
	assert.Equal(t, annotation.ImageCouponClipped, badges[0].Image)
}

func TestFitToFlyer(t *testing.T) {
	f := newFixture(t, &fakeSource{items: sampleItems(), pages: samplePages()}, nil)
	_, err := f.view.Load(context.Background())
	require.NoError(t, err)

	FitToFlyer(f.view, f.renderer)

	assert.Equal(t, flyer.Size{Width: 2000, Height: 1000}, f.renderer.ContentSize())
	assert.Equal(t, flyer.Rect{Width: 2000, Height: 1000}, f.renderer.VisibleContent())
}

func TestContentBounds_ItemsFallback(t *testing.T) {
	size := ContentBounds(nil, sampleItems())
	assert.Equal(t, flyer.Size{Width: 800, Height: 300}, size)
}
