// Package detail builds the screens shown after tapping a flyer item.
package detail

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/navigation"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the edge length of QR codes embedded in detail HTML
const QRSize = 256

// Page is a detail screen
type Page interface {
	Title() string
	Markdown() string
}

// Video shows a video item
type Video struct {
	ItemID int64
}

// Title implements Page
func (v Video) Title() string { return "Video" }

// Markdown implements Page
func (v Video) Markdown() string {
	return itemMarkdown(v.Title(), v.ItemID, "")
}

// Iframe shows an embedded web item
type Iframe struct {
	ItemID int64
}

// Title implements Page
func (f Iframe) Title() string { return "Iframe" }

// Markdown implements Page
func (f Iframe) Markdown() string {
	return itemMarkdown(f.Title(), f.ItemID, "")
}

// Coupon shows a coupon item and the coupons attached to it
type Coupon struct {
	ItemID  int64
	Name    string
	Coupons []flyer.Coupon
}

// Title implements Page
func (c Coupon) Title() string { return "Coupon" }

// Markdown implements Page
func (c Coupon) Markdown() string {
	var b strings.Builder
	b.WriteString(itemMarkdown(c.Title(), c.ItemID, c.Name))

	if len(c.Coupons) > 0 {
		b.WriteString("\n**Coupons:**\n\n")
		for i, cp := range c.Coupons {
			fmt.Fprintf(&b, "%d. `%d`\n", i+1, cp.ID)
		}
	}
	return b.String()
}

// RedemptionCode is the payload encoded in the coupon's QR code
func (c Coupon) RedemptionCode() string {
	return fmt.Sprintf("flyerkit:item:%d", c.ItemID)
}

// QRCode renders the redemption code as a size×size PNG
func (c Coupon) QRCode(size int) ([]byte, error) {
	png, err := qrcode.Encode(c.RedemptionCode(), qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrapf(err, "qr code for item %d", c.ItemID)
	}
	return png, nil
}

// QRDataURI renders the QR code as a data URI for inline images
func (c Coupon) QRDataURI(size int) (string, error) {
	png, err := c.QRCode(size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// FlyerItem shows any other item
type FlyerItem struct {
	ItemID int64
	Name   string
}

// Title implements Page
func (f FlyerItem) Title() string { return "Flyer Item" }

// Markdown implements Page
func (f FlyerItem) Markdown() string {
	return itemMarkdown(f.Title(), f.ItemID, f.Name)
}

// Link opens a web page
type Link struct {
	URL string
}

// Title implements Page
func (l Link) Title() string { return "Link" }

// Markdown implements Page
func (l Link) Markdown() string {
	return fmt.Sprintf("# %s\n\n[%s](%s)\n", l.Title(), l.URL, l.URL)
}

func itemMarkdown(title string, itemID int64, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if name != "" {
		fmt.Fprintf(&b, "%s\n\n", name)
	}
	fmt.Fprintf(&b, "- **Item ID:** `%d`\n", itemID)
	return b.String()
}

// ItemLookup finds a loaded item by id
type ItemLookup func(id int64) (flyer.Item, bool)

// ForRoute builds the detail page for a route. Anchor routes have no
// detail page and return an error. lookup may be nil.
func ForRoute(route navigation.Route, lookup ItemLookup) (Page, error) {
	var item flyer.Item
	if lookup != nil {
		item, _ = lookup(route.ItemID)
	}

	switch route.Destination {
	case navigation.DestVideo:
		return Video{ItemID: route.ItemID}, nil
	case navigation.DestIframe:
		return Iframe{ItemID: route.ItemID}, nil
	case navigation.DestCoupon:
		return Coupon{ItemID: route.ItemID, Name: item.Name, Coupons: item.Coupons}, nil
	case navigation.DestFlyerItem:
		return FlyerItem{ItemID: route.ItemID, Name: item.Name}, nil
	case navigation.DestLink:
		return Link{URL: route.URL}, nil
	default:
		return nil, errors.Errorf("no detail page for %s", route.Destination)
	}
}

// HTML renders a page's Markdown to HTML. Coupon pages also get their
// redemption QR code as an inline image.
func HTML(p Page) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	md := parser.NewWithExtensions(extensions)
	doc := md.Parse([]byte(p.Markdown()))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})

	out := string(markdown.Render(doc, renderer))

	if c, ok := p.(Coupon); ok {
		if uri, err := c.QRDataURI(QRSize); err == nil {
			out += fmt.Sprintf("<p><img class=\"redemption\" alt=\"Redemption code %s\" width=\"%d\" height=\"%d\" src=\"%s\"></p>\n",
				c.RedemptionCode(), QRSize, QRSize, uri)
		}
	}

	return out
}
