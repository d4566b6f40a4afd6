package viewer

import (
	"github.com/liminalpurple/flyerkit/internal/annotation"
	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/navigation"
)

// Renderer is the flyer rendering component: it draws pages and
// annotations, handles zoom and pan, and reports the visible region.
type Renderer interface {
	SetDelegate(d Delegate)
	SetFlyer(flyerID int64, rootURL, version, accessToken string)
	SetTapAnnotations(a []annotation.Annotation)
	SetHighlightAnnotations(a []annotation.Annotation)
	SetBadgeAnnotations(a []annotation.Annotation)
	ZoomTo(rect flyer.Rect)
	VisibleContent() flyer.Rect
	ContentSize() flyer.Size
	FrameSize() flyer.Size
}

// Delegate receives lifecycle and scroll callbacks from a Renderer.
// Renderers must not hold their own locks while calling it.
type Delegate interface {
	WillBeginLoading()
	DidFinishLoading()
	DidFailLoading(err error)
	DidScroll()
}

// Navigator presents the detail destinations of tapped items
type Navigator interface {
	Push(route navigation.Route) error
	OpenURL(url string) error
}

// APIInfo is what the renderer needs to fetch flyer pages itself
type APIInfo struct {
	RootURL     string
	Version     string
	AccessToken string
}
