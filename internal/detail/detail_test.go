package detail

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/navigation"
)

// TestForRoute_Destinations verifies every routed destination gets its page
func TestForRoute_Destinations(t *testing.T) {
	tests := []struct {
		route navigation.Route
		title string
	}{
		{navigation.Route{Destination: navigation.DestVideo, ItemID: 1}, "Video"},
		{navigation.Route{Destination: navigation.DestIframe, ItemID: 2}, "Iframe"},
		{navigation.Route{Destination: navigation.DestCoupon, ItemID: 3}, "Coupon"},
		{navigation.Route{Destination: navigation.DestFlyerItem, ItemID: 4}, "Flyer Item"},
		{navigation.Route{Destination: navigation.DestLink, URL: "https://example.com"}, "Link"},
	}

	for _, tt := range tests {
		t.Run(string(tt.route.Destination), func(t *testing.T) {
			page, err := ForRoute(tt.route, nil)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if page.Title() != tt.title {
				t.Errorf("Expected title %q, got %q", tt.title, page.Title())
			}
		})
	}
}

// TestForRoute_Anchor verifies anchors have no detail page
func TestForRoute_Anchor(t *testing.T) {
	if _, err := ForRoute(navigation.Route{Destination: navigation.DestAnchor}, nil); err == nil {
		t.Error("Expected error for anchor route")
	}
}

// TestForRoute_UsesLookup verifies item names and coupons are filled in
func TestForRoute_UsesLookup(t *testing.T) {
	lookup := func(id int64) (flyer.Item, bool) {
		return flyer.Item{ID: id, Name: "Cheddar", Coupons: []flyer.Coupon{{ID: 55}}}, true
	}

	page, err := ForRoute(navigation.Route{Destination: navigation.DestCoupon, ItemID: 9}, lookup)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	md := page.Markdown()
	for _, want := range []string{"Cheddar", "`9`", "`55`"} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q, got:\n%s", want, md)
		}
	}
}

// TestHTML verifies markdown is rendered and links open in a new tab
func TestHTML(t *testing.T) {
	out := HTML(Link{URL: "https://example.com/deal"})

	if !strings.Contains(out, "<h1") {
		t.Errorf("Expected heading, got %s", out)
	}
	if !strings.Contains(out, `href="https://example.com/deal"`) {
		t.Errorf("Expected link, got %s", out)
	}
	if !strings.Contains(out, `target="_blank"`) {
		t.Errorf("Expected target blank, got %s", out)
	}
}

// TestCoupon_QRCode verifies the QR code is a PNG of the requested size
func TestCoupon_QRCode(t *testing.T) {
	data, err := Coupon{ItemID: 12}.QRCode(128)
	if err != nil {
		t.Fatalf("QRCode failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected PNG output: %v", err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("Expected width 128, got %d", img.Bounds().Dx())
	}
}

// TestHTML_CouponEmbedsQRCode verifies coupon pages carry their redemption code inline
func TestHTML_CouponEmbedsQRCode(t *testing.T) {
	c := Coupon{ItemID: 12, Name: "Yogurt"}
	out := HTML(c)

	const prefix = `src="data:image/png;base64,`
	start := strings.Index(out, prefix)
	if start < 0 {
		t.Fatalf("Expected inline QR image, got %s", out)
	}
	rest := out[start+len(prefix):]
	encoded := rest[:strings.Index(rest, `"`)]

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Invalid base64 payload: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected PNG payload: %v", err)
	}
	if img.Bounds().Dx() != QRSize {
		t.Errorf("Expected width %d, got %d", QRSize, img.Bounds().Dx())
	}
	if !strings.Contains(out, c.RedemptionCode()) {
		t.Errorf("Expected alt text with redemption code, got %s", out)
	}

	if strings.Contains(HTML(Video{ItemID: 1}), "data:image/png") {
		t.Error("Expected no QR image on non-coupon pages")
	}
}
