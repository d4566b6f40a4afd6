package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/liminalpurple/flyerkit/internal/detail"
	"github.com/liminalpurple/flyerkit/internal/navigation"
)

// printNavigator shows detail pages by printing them
type printNavigator struct {
	out    io.Writer
	lookup detail.ItemLookup
	html   bool
	// qrPath receives the redemption QR code of coupon pages when set
	qrPath string
}

// Push implements viewer.Navigator
func (n *printNavigator) Push(route navigation.Route) error {
	page, err := detail.ForRoute(route, n.lookup)
	if err != nil {
		return err
	}

	if n.html {
		_, err = fmt.Fprint(n.out, detail.HTML(page))
	} else {
		_, err = fmt.Fprintln(n.out, page.Markdown())
	}
	if err != nil {
		return err
	}

	if c, ok := page.(detail.Coupon); ok && n.qrPath != "" {
		if err := writeQRCode(c, n.qrPath); err != nil {
			return err
		}
		fmt.Fprintf(n.out, "🔳 Redemption code saved to %s\n", n.qrPath)
	}
	return nil
}

func writeQRCode(c detail.Coupon, path string) error {
	data, err := c.QRCode(detail.QRSize)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write QR code: %w", err)
	}
	return nil
}

// OpenURL implements viewer.Navigator
func (n *printNavigator) OpenURL(url string) error {
	_, err := fmt.Fprintf(n.out, "🔗 Open in browser: %s\n", url)
	return err
}
