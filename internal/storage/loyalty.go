// Package storage provides the local loyalty store: coupons clipped to the
// user's loyalty card, kept in loyalty.json under the data directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/liminalpurple/flyerkit/internal/flyer"
)

const loyaltyFile = "loyalty.json"

// Loyalty is the loyalty store rooted at a data directory
type Loyalty struct {
	DataDir string
}

// NewLoyalty returns the loyalty store for dataDir
func NewLoyalty(dataDir string) *Loyalty {
	return &Loyalty{DataDir: dataDir}
}

// GetClippedCoupons returns the locally clipped coupons
func (l *Loyalty) GetClippedCoupons() ([]flyer.Coupon, error) {
	clipped, err := ListClipped(l.DataDir)
	if err != nil {
		return nil, err
	}

	coupons := make([]flyer.Coupon, 0, len(clipped))
	for _, c := range clipped {
		coupons = append(coupons, flyer.Coupon{ID: c.CouponID})
	}
	return coupons, nil
}

// ClipCoupon adds a coupon to the loyalty card. Clipping an already clipped
// coupon replaces its record.
func ClipCoupon(dataDir string, coupon ClippedCoupon) error {
	card, err := LoadLoyalty(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load loyalty card: %w", err)
	}

	for i, existing := range card.Clipped {
		if existing.CouponID == coupon.CouponID {
			card.Clipped[i] = coupon
			return SaveLoyalty(dataDir, card)
		}
	}

	card.Clipped = append(card.Clipped, coupon)
	return SaveLoyalty(dataDir, card)
}

// UnclipCoupon removes a coupon from the loyalty card
func UnclipCoupon(dataDir string, couponID int64) error {
	card, err := LoadLoyalty(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load loyalty card: %w", err)
	}

	for i, existing := range card.Clipped {
		if existing.CouponID == couponID {
			card.Clipped = append(card.Clipped[:i], card.Clipped[i+1:]...)
			return SaveLoyalty(dataDir, card)
		}
	}

	return fmt.Errorf("coupon not clipped: %d", couponID)
}

// ListClipped returns all clipped coupons
func ListClipped(dataDir string) ([]ClippedCoupon, error) {
	card, err := LoadLoyalty(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load loyalty card: %w", err)
	}

	return card.Clipped, nil
}

// IsClipped reports whether a coupon is on the loyalty card
func IsClipped(dataDir string, couponID int64) (bool, error) {
	clipped, err := ListClipped(dataDir)
	if err != nil {
		return false, err
	}

	for _, c := range clipped {
		if c.CouponID == couponID {
			return true, nil
		}
	}
	return false, nil
}

// LoadLoyalty loads the loyalty card from disk
func LoadLoyalty(dataDir string) (*LoyaltyCard, error) {
	path := filepath.Join(dataDir, loyaltyFile)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &LoyaltyCard{Clipped: []ClippedCoupon{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read loyalty file: %w", err)
	}

	var card LoyaltyCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("failed to unmarshal loyalty card: %w", err)
	}
	if card.Clipped == nil {
		card.Clipped = []ClippedCoupon{}
	}

	return &card, nil
}

// SaveLoyalty saves the loyalty card to disk
func SaveLoyalty(dataDir string, card *LoyaltyCard) error {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, loyaltyFile)

	data, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal loyalty card: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write loyalty file: %w", err)
	}

	return nil
}
