package storage

import "time"

// ClippedCoupon is a coupon saved to the local loyalty card
type ClippedCoupon struct {
	CouponID  int64     `json:"coupon_id"`          // Coupon id as used by the flyer API
	ClippedAt time.Time `json:"clipped_at"`         // When the coupon was clipped
	FlyerID   int64     `json:"flyer_id,omitempty"` // Flyer the coupon was clipped from, if known
	ItemID    int64     `json:"item_id,omitempty"`  // Flyer item carrying the coupon, if known
	Note      string    `json:"note,omitempty"`     // Free-form note
}

// LoyaltyCard holds all locally clipped coupons
type LoyaltyCard struct {
	CardNumber string          `json:"card_number,omitempty"`
	Clipped    []ClippedCoupon `json:"clipped"`
}
