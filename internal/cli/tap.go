package cli

import (
	"fmt"

	"github.com/liminalpurple/flyerkit/internal/viewer"
	"github.com/spf13/cobra"
)

// NewTapCmd creates the tap command
func NewTapCmd() *cobra.Command {
	var flyerID int64
	var postal string
	var html bool
	var qrPath string

	cmd := &cobra.Command{
		Use:   "tap <item-id>",
		Short: "Tap a flyer item and show where it leads",
		Long: `Load a flyer and single-tap one of its items.

The item's type decides the destination: video, iframe, coupon and other
items open a detail page, links are opened in the browser, and anchors
jump to another page of the flyer. Items with no type do nothing.

With --qr, a coupon's redemption code is also written as a PNG QR code.`,
		Example: `  flyerkit tap 1234 --flyer 42
  flyerkit tap 1234 --qr coupon.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			itemID, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			if flyerID == 0 {
				flyerID = a.cfg.Flyer.DefaultFlyerID
			}

			out := cmd.OutOrStdout()
			nav := &printNavigator{out: out, html: html, qrPath: qrPath}
			view, renderer := a.newView(flyerID, a.session(postal), nav)
			nav.lookup = view.Item
			defer view.Close()

			status, loadErr := view.Open(cmd.Context())
			if status.Items.Status != viewer.StatusLoaded {
				return fmt.Errorf("flyer %d could not be loaded: %w", flyerID, loadErr)
			}
			viewer.FitToFlyer(view, renderer)

			route, err := view.SingleTap(itemID)
			if err != nil {
				return fmt.Errorf("tap on item %d: %w", itemID, err)
			}

			fmt.Fprintf(out, "👆 %s\n", route)
			return nil
		},
	}

	cmd.Flags().Int64Var(&flyerID, "flyer", 0, "Flyer id (defaults to the configured flyer)")
	cmd.Flags().StringVar(&postal, "postal", "", "Postal code (defaults to the saved one)")
	cmd.Flags().BoolVar(&html, "html", false, "Print detail pages as HTML")
	cmd.Flags().StringVar(&qrPath, "qr", "", "Write a coupon's redemption QR code to this PNG file")

	return cmd
}
