package preview

import (
	"bytes"
	"image"
	_ "image/gif"  // Import for image format support
	_ "image/jpeg" // Import for image format support
	_ "image/png"  // Import for image format support

	"github.com/pkg/errors"
	_ "golang.org/x/image/webp" // Import for image format support
)

// ImageInfo contains metadata about a page image
type ImageInfo struct {
	Width     int
	Height    int
	SizeBytes int64
	MimeType  string
}

// DecodeBackground decodes a page image to draw overlays on
func DecodeBackground(data []byte) (image.Image, *ImageInfo, error) {
	mimeType := detectMimeType(data)
	if mimeType == "application/octet-stream" {
		return nil, nil, errors.New("unrecognised image format")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to decode image")
	}

	b := img.Bounds()
	return img, &ImageInfo{
		Width:     b.Dx(),
		Height:    b.Dy(),
		SizeBytes: int64(len(data)),
		MimeType:  formatToMimeType(format),
	}, nil
}

// detectMimeType attempts to detect MIME type from data
func detectMimeType(data []byte) string {
	if len(data) < 4 {
		return "application/octet-stream"
	}

	// Check PNG signature
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}

	// Check JPEG signature
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}

	// Check GIF signature
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 {
		return "image/gif"
	}

	// Check WebP signature
	if len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return "image/webp"
	}

	return "application/octet-stream"
}

// formatToMimeType converts image format string to MIME type
func formatToMimeType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	default:
		return "image/" + format
	}
}
