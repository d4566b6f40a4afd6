// Package flyer defines the typed records parsed from the flyer API:
// items, pages and coupons, plus the geometry they are placed with.
package flyer

import "fmt"

// ItemType is the display type discriminant of a flyer item
type ItemType int

// Display types requested from the products endpoint
const (
	ItemTypeMissing ItemType = 0
	ItemTypeFlyer   ItemType = 1
	ItemTypeVideo   ItemType = 3
	ItemTypeLink    ItemType = 5
	ItemTypeAnchor  ItemType = 7
	ItemTypeIframe  ItemType = 15
	ItemTypeCoupon  ItemType = 25
)

// DisplayTypes is the display_type query value for the products endpoint.
// Every type listed here must be handled by the navigator.
const DisplayTypes = "1,5,3,25,7,15"

func (t ItemType) String() string {
	switch t {
	case ItemTypeMissing:
		return "missing"
	case ItemTypeFlyer:
		return "flyer_item"
	case ItemTypeVideo:
		return "video"
	case ItemTypeLink:
		return "link"
	case ItemTypeAnchor:
		return "anchor"
	case ItemTypeIframe:
		return "iframe"
	case ItemTypeCoupon:
		return "coupon"
	default:
		return fmt.Sprintf("type_%d", int(t))
	}
}

// Point is a location in flyer coordinates
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is a width/height pair in flyer coordinates
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rect is a rectangle in flyer coordinates
type Rect struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// Center returns the centre point of the rectangle
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

func (r Rect) String() string {
	return fmt.Sprintf("{%g,%g %gx%g}", r.Left, r.Top, r.Width, r.Height)
}

// Coupon is a coupon attached to a flyer item or held by the user.
// An ID of 0 means the record carried no usable id.
type Coupon struct {
	ID int64 `json:"coupon_id" yaml:"coupon_id"`
}

// CouponIDSet holds the ids of coupons the user has clipped
type CouponIDSet map[int64]struct{}

// NewCouponIDSet projects coupons to their ids
func NewCouponIDSet(coupons ...[]Coupon) CouponIDSet {
	set := make(CouponIDSet)
	for _, list := range coupons {
		for _, c := range list {
			set[c.ID] = struct{}{}
		}
	}
	return set
}

// Contains reports whether id is in the set. A nil set contains nothing.
func (s CouponIDSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Item is a tappable region on a flyer page
type Item struct {
	ID         int64    `json:"id" yaml:"id" validate:"required"`
	Type       ItemType `json:"item_type" yaml:"item_type" validate:"gte=0"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Rect       Rect     `json:"rect" yaml:"rect"`
	PercentOff *float64 `json:"percent_off,omitempty" yaml:"percent_off,omitempty"`
	Coupons    []Coupon `json:"coupons,omitempty" yaml:"coupons,omitempty"`

	// WebURL is set for link items
	WebURL string `json:"web_url,omitempty" yaml:"web_url,omitempty" validate:"required_if=Type 5"`

	// PageDestination is the 1-based target page of anchor items
	PageDestination int `json:"page_destination,omitempty" yaml:"page_destination,omitempty" validate:"required_if=Type 7,gte=0"`
}

// HasCoupons reports whether the item carries at least one coupon
func (i *Item) HasCoupons() bool {
	return len(i.Coupons) > 0
}

// AnyCouponIn reports whether any of the item's coupons is in the set
func (i *Item) AnyCouponIn(set CouponIDSet) bool {
	for _, c := range i.Coupons {
		if c.ID != 0 && set.Contains(c.ID) {
			return true
		}
	}
	return false
}

// Page is a flyer page used to resolve anchor targets
type Page struct {
	Number int  `json:"number" yaml:"number"`
	Rect   Rect `json:"rect" yaml:"rect"`
}
