// Package annotation derives flyer overlays from items and view state.
//
// Every function here is pure: geometry is recomputed from the items and
// the current viewport on each call and never cached, so overlays cannot
// go stale after a zoom or pan.
package annotation

import (
	"math"

	"github.com/liminalpurple/flyerkit/internal/flyer"
)

// CouponBadgeSize is the badge edge length at full zoom-out
const CouponBadgeSize = 200.0

// Image is the display variant of an annotation
type Image string

// Image variants
const (
	ImageNone          Image = ""
	ImageBadge         Image = "badge"
	ImageCoupon        Image = "coupon_badge"
	ImageCouponClipped Image = "coupon_badge_clipped"
)

// Annotation is an overlay drawn at a rectangle on the flyer
type Annotation struct {
	Rect  flyer.Rect  `json:"rect" yaml:"rect"`
	Item  *flyer.Item `json:"item,omitempty" yaml:"item,omitempty"`
	Image Image       `json:"image,omitempty" yaml:"image,omitempty"`
}

// ItemID returns the id of the referenced item, or 0 when there is none
func (a Annotation) ItemID() int64 {
	if a.Item == nil {
		return 0
	}
	return a.Item.ID
}

// Viewport is the part of the flyer currently on screen
type Viewport struct {
	Visible flyer.Rect
	Content flyer.Size
}

// Scale returns visible height over content height, clamped to [0, 1].
// A non-positive content height yields 1.
func (v Viewport) Scale() float64 {
	if v.Content.Height <= 0 {
		return 1
	}
	return clamp(v.Visible.Height/v.Content.Height, 0, 1)
}

// ClipSet is the set of items the user marked with a long-press
type ClipSet interface {
	Contains(id int64) bool
	IDs() []int64
}

// Taps returns one tap target per item, unfiltered
func Taps(items []flyer.Item) []Annotation {
	out := make([]Annotation, 0, len(items))
	for i := range items {
		out = append(out, Annotation{Rect: items[i].Rect, Item: &items[i], Image: ImageBadge})
	}
	return out
}

// Highlights returns the rectangles of items discounted by more than
// threshold. A threshold of zero or less highlights nothing.
func Highlights(items []flyer.Item, threshold float64) []Annotation {
	out := []Annotation{}
	if threshold <= 0 {
		return out
	}
	for i := range items {
		pct := items[i].PercentOff
		if pct == nil || *pct <= threshold {
			continue
		}
		out = append(out, Annotation{Rect: items[i].Rect})
	}
	return out
}

// Badges returns circle badges followed by coupon badges
func Badges(items []flyer.Item, clips ClipSet, clipped flyer.CouponIDSet, vp Viewport) []Annotation {
	return append(CircleBadges(items, clips), CouponBadges(items, clipped, vp)...)
}

// CircleBadges returns one plain badge per clipped item, in clip order.
// Clip ids with no matching item are skipped.
func CircleBadges(items []flyer.Item, clips ClipSet) []Annotation {
	out := []Annotation{}
	if clips == nil {
		return out
	}

	byID := make(map[int64]*flyer.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	for _, id := range clips.IDs() {
		item, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, Annotation{Rect: item.Rect, Item: item, Image: ImageBadge})
	}
	return out
}

// CouponBadges returns one badge per item carrying coupons, anchored to the
// item's top-right corner and sized by the viewport scale
func CouponBadges(items []flyer.Item, clipped flyer.CouponIDSet, vp Viewport) []Annotation {
	out := []Annotation{}
	size := BadgeSize(vp)

	for i := range items {
		item := &items[i]
		if !item.HasCoupons() {
			continue
		}

		image := ImageCoupon
		if item.AnyCouponIn(clipped) {
			image = ImageCouponClipped
		}

		out = append(out, Annotation{
			Rect: flyer.Rect{
				Left:   item.Rect.Right() - size,
				Top:    item.Rect.Top,
				Width:  size,
				Height: size,
			},
			Item:  item,
			Image: image,
		})
	}
	return out
}

// BadgeSize returns the coupon badge edge length for the viewport
func BadgeSize(vp Viewport) float64 {
	return CouponBadgeSize * vp.Scale()
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
