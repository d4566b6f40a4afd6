package navigation

import (
	"errors"
	"testing"

	"github.com/liminalpurple/flyerkit/internal/flyer"
)

type pendingPages struct{}

func (pendingPages) Pages() ([]flyer.Page, bool) { return nil, false }

func testPages() Pages {
	return Pages{
		{Number: 1, Rect: flyer.Rect{Width: 100, Height: 200}},
		{Number: 2, Rect: flyer.Rect{Left: 100, Width: 100, Height: 200}},
	}
}

// TestResolve_ByType verifies each display type maps to its destination
func TestResolve_ByType(t *testing.T) {
	tests := []struct {
		name string
		item flyer.Item
		want Destination
	}{
		{"video", flyer.Item{ID: 1, Type: flyer.ItemTypeVideo}, DestVideo},
		{"link", flyer.Item{ID: 2, Type: flyer.ItemTypeLink, WebURL: "https://example.com"}, DestLink},
		{"anchor", flyer.Item{ID: 3, Type: flyer.ItemTypeAnchor, PageDestination: 2}, DestAnchor},
		{"iframe", flyer.Item{ID: 4, Type: flyer.ItemTypeIframe}, DestIframe},
		{"coupon", flyer.Item{ID: 5, Type: flyer.ItemTypeCoupon}, DestCoupon},
		{"flyer item", flyer.Item{ID: 6, Type: flyer.ItemTypeFlyer}, DestFlyerItem},
		{"unknown type", flyer.Item{ID: 7, Type: flyer.ItemType(42)}, DestFlyerItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := Resolve(tt.item, testPages())
			if err != nil {
				t.Fatalf("Failed to resolve: %v", err)
			}
			if route.Destination != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, route.Destination)
			}
			if route.ItemID != tt.item.ID {
				t.Errorf("Expected item id %d, got %d", tt.item.ID, route.ItemID)
			}
		})
	}
}

// TestResolve_VideoScenario verifies the single video item scenario
func TestResolve_VideoScenario(t *testing.T) {
	item := flyer.Item{ID: 1, Type: flyer.ItemTypeVideo, Rect: flyer.Rect{Width: 10, Height: 10}}

	route, err := Resolve(item, nil)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	if route.Destination != DestVideo || route.ItemID != 1 {
		t.Errorf("Expected video 1, got %s", route)
	}
}

// TestResolve_LinkCarriesURL verifies link routes hold the web URL
func TestResolve_LinkCarriesURL(t *testing.T) {
	route, err := Resolve(flyer.Item{ID: 2, Type: flyer.ItemTypeLink, WebURL: "https://example.com/deal"}, nil)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	if route.URL != "https://example.com/deal" {
		t.Errorf("Expected URL, got %q", route.URL)
	}
}

// TestResolve_AnchorUsesPreviousIndex verifies destination N maps to page index N-1
func TestResolve_AnchorUsesPreviousIndex(t *testing.T) {
	pages := testPages()

	route, err := Resolve(flyer.Item{ID: 3, Type: flyer.ItemTypeAnchor, PageDestination: 2}, pages)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	if route.ZoomRect != pages[1].Rect {
		t.Errorf("Expected page 2 rect %s, got %s", pages[1].Rect, route.ZoomRect)
	}
}

// TestResolve_AnchorOutOfRange verifies bad destinations fail without panicking
func TestResolve_AnchorOutOfRange(t *testing.T) {
	for _, dest := range []int{0, -1, 3, 1000} {
		_, err := Resolve(flyer.Item{ID: 3, Type: flyer.ItemTypeAnchor, PageDestination: dest}, testPages())
		if !errors.Is(err, flyer.ErrPageOutOfRange) {
			t.Errorf("destination %d: expected ErrPageOutOfRange, got %v", dest, err)
		}
	}
}

// TestResolve_AnchorBeforePagesLoaded verifies the transient unavailable condition
func TestResolve_AnchorBeforePagesLoaded(t *testing.T) {
	item := flyer.Item{ID: 3, Type: flyer.ItemTypeAnchor, PageDestination: 1}

	for name, source := range map[string]PageSource{"pending": pendingPages{}, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			_, err := Resolve(item, source)
			if !errors.Is(err, flyer.ErrPageLinksUnavailable) {
				t.Errorf("Expected ErrPageLinksUnavailable, got %v", err)
			}
		})
	}
}

// TestResolve_MissingType verifies items without a discriminant do nothing
func TestResolve_MissingType(t *testing.T) {
	_, err := Resolve(flyer.Item{ID: 9}, testPages())
	if !errors.Is(err, flyer.ErrNoRoute) {
		t.Errorf("Expected ErrNoRoute, got %v", err)
	}
}
