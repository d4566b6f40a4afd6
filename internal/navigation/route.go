// Package navigation decides where a tapped flyer item leads.
package navigation

import (
	"fmt"

	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/pkg/errors"
)

// Destination identifies a navigation target
type Destination string

// Destinations reachable from a single tap
const (
	DestVideo     Destination = "video"
	DestLink      Destination = "link"
	DestAnchor    Destination = "anchor"
	DestIframe    Destination = "iframe"
	DestCoupon    Destination = "coupon"
	DestFlyerItem Destination = "flyer_item"
)

// Route is the resolved action for a tapped item
type Route struct {
	Destination Destination `json:"destination" yaml:"destination"`
	ItemID      int64       `json:"item_id" yaml:"item_id"`
	URL         string      `json:"url,omitempty" yaml:"url,omitempty"`
	// ZoomRect is the page rectangle for anchor routes
	ZoomRect flyer.Rect `json:"zoom_rect,omitempty" yaml:"zoom_rect,omitempty"`
}

func (r Route) String() string {
	switch r.Destination {
	case DestLink:
		return fmt.Sprintf("%s %s", r.Destination, r.URL)
	case DestAnchor:
		return fmt.Sprintf("%s %s", r.Destination, r.ZoomRect)
	default:
		return fmt.Sprintf("%s %d", r.Destination, r.ItemID)
	}
}

// PageSource provides the pages of the current flyer. Loaded reports
// whether the pages fetch has completed successfully.
type PageSource interface {
	Pages() (pages []flyer.Page, loaded bool)
}

// Pages is a fixed, already loaded page list
type Pages []flyer.Page

// Pages implements PageSource
func (p Pages) Pages() ([]flyer.Page, bool) {
	return p, true
}

// Resolve maps an item to its route by display type
func Resolve(item flyer.Item, pages PageSource) (Route, error) {
	route := Route{ItemID: item.ID}

	switch item.Type {
	case flyer.ItemTypeMissing:
		return Route{}, errors.Wrapf(flyer.ErrNoRoute, "item %d", item.ID)
	case flyer.ItemTypeVideo:
		route.Destination = DestVideo
	case flyer.ItemTypeLink:
		route.Destination = DestLink
		route.URL = item.WebURL
	case flyer.ItemTypeAnchor:
		rect, err := anchorRect(item.PageDestination, pages)
		if err != nil {
			return Route{}, errors.Wrapf(err, "item %d", item.ID)
		}
		route.Destination = DestAnchor
		route.ZoomRect = rect
	case flyer.ItemTypeIframe:
		route.Destination = DestIframe
	case flyer.ItemTypeCoupon:
		route.Destination = DestCoupon
	default:
		route.Destination = DestFlyerItem
	}

	return route, nil
}

// anchorRect resolves a 1-based page destination
func anchorRect(destination int, source PageSource) (flyer.Rect, error) {
	if source == nil {
		return flyer.Rect{}, flyer.ErrPageLinksUnavailable
	}
	pages, loaded := source.Pages()
	if !loaded {
		return flyer.Rect{}, flyer.ErrPageLinksUnavailable
	}

	index := destination - 1
	if index < 0 || index >= len(pages) {
		return flyer.Rect{}, errors.Wrapf(flyer.ErrPageOutOfRange, "page %d of %d", destination, len(pages))
	}

	return pages[index].Rect, nil
}
