package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/liminalpurple/flyerkit/internal/annotation"
	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/viewer"
)

func sampleOverlays() viewer.Overlays {
	item := &flyer.Item{ID: 7, Rect: flyer.Rect{Left: 100, Top: 100, Width: 200, Height: 200}}
	return viewer.Overlays{
		Taps:       []annotation.Annotation{{Rect: item.Rect, Item: item, Image: annotation.ImageBadge}},
		Highlights: []annotation.Annotation{{Rect: item.Rect}},
		Badges: []annotation.Annotation{
			{Rect: flyer.Rect{Left: 500, Top: 500, Width: 100, Height: 100}, Item: item, Image: annotation.ImageCouponClipped},
		},
		Content: flyer.Size{Width: 1000, Height: 800},
	}
}

// TestRender_Size verifies output keeps the content aspect ratio
func TestRender_Size(t *testing.T) {
	img, err := Render(sampleOverlays(), Options{Width: 500})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if img.Bounds().Dx() != 500 || img.Bounds().Dy() != 400 {
		t.Errorf("Expected 500x400, got %v", img.Bounds().Size())
	}
}

// TestRender_DrawsBadges verifies coupon badges are filled at scaled positions
func TestRender_DrawsBadges(t *testing.T) {
	img, err := Render(sampleOverlays(), Options{Width: 1000})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	inside := img.RGBAAt(550, 550)
	if inside == (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Error("Expected badge fill inside coupon badge")
	}

	outside := img.RGBAAt(900, 50)
	if outside != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Errorf("Expected paper outside overlays, got %v", outside)
	}
}

// TestRender_EmptyContent verifies a zero content size is rejected
func TestRender_EmptyContent(t *testing.T) {
	if _, err := Render(viewer.Overlays{}, Options{}); err == nil {
		t.Error("Expected error for empty content")
	}
}

// TestWritePNG_Labels verifies labelled output still encodes
func TestWritePNG_Labels(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, sampleOverlays(), Options{Labels: true}); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != DefaultWidth {
		t.Errorf("Expected default width %d, got %d", DefaultWidth, img.Bounds().Dx())
	}
}

// TestDecodeBackground verifies a PNG page image decodes with metadata
func TestDecodeBackground(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 30))); err != nil {
		t.Fatal(err)
	}

	img, info, err := DecodeBackground(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBackground failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || info.Height != 30 {
		t.Errorf("Unexpected size %v", img.Bounds())
	}
	if info.MimeType != "image/png" {
		t.Errorf("Expected image/png, got %s", info.MimeType)
	}
}

// TestDetectMimeType verifies signature detection
func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D}, "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"gif", []byte("GIF89a"), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"short", []byte{0x01}, "application/octet-stream"},
		{"unknown", []byte("hello world"), "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMimeType(tt.data); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

// TestDecodeBackground_Unknown verifies unrecognised data is rejected
func TestDecodeBackground_Unknown(t *testing.T) {
	if _, _, err := DecodeBackground([]byte("not an image")); err == nil {
		t.Error("Expected error for unknown format")
	}
}
