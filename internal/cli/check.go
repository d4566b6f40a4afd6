package cli

import (
	"fmt"
	"time"

	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/storage"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check configuration, API access and storage",
		Long: `Check that all components are working correctly:

  - Configuration loads properly
  - Flyer items and pages can be fetched for the default flyer
  - The clipped coupon list is reachable
  - The loyalty store can be read and written

This is useful for verifying setup before opening flyers.`,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "🧪 Running flyerkit checks...")
	fmt.Fprintln(out)

	// Check 1: Load configuration
	fmt.Fprint(out, "📋 Loading configuration... ")
	a, err := loadApp()
	if err != nil {
		fmt.Fprintf(out, "❌\n   Error: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✅\n   API: %s (%s), flyer %d, postal code %q\n",
		a.cfg.API.RootURL, a.cfg.API.Version, a.cfg.Flyer.DefaultFlyerID, a.cfg.Session.PostalCode)

	if a.cfg.API.AccessToken == "" {
		return fmt.Errorf("no access token configured - set FLYERKIT_ACCESS_TOKEN or add to config.yaml")
	}

	flyerID := a.cfg.Flyer.DefaultFlyerID
	postal := a.cfg.Session.PostalCode

	// Check 2: Items
	fmt.Fprint(out, "🛒 Fetching flyer items... ")
	items, err := a.client.FetchItems(ctx, flyerID, postal)
	if err != nil {
		fmt.Fprintf(out, "❌\n   Error: %v (%s)\n", err, flyer.Code(err))
		return err
	}
	fmt.Fprintf(out, "✅\n   %d items, %d malformed\n", len(items.Items), len(items.Malformed))

	// Check 3: Pages
	fmt.Fprint(out, "📄 Fetching flyer pages... ")
	pages, err := a.client.FetchPages(ctx, flyerID, postal)
	if err != nil {
		fmt.Fprintf(out, "❌\n   Error: %v (%s)\n", err, flyer.Code(err))
		return err
	}
	fmt.Fprintf(out, "✅\n   %d pages\n", len(pages))

	// Check 4: Clipped coupons. Failure here is not fatal: the viewer
	// falls back to the loyalty card.
	fmt.Fprint(out, "✂️  Fetching clipped coupons... ")
	if coupons, err := a.client.FetchClippedCoupons(ctx); err != nil {
		fmt.Fprintf(out, "⚠️\n   Unavailable: %v\n", err)
	} else {
		fmt.Fprintf(out, "✅\n   %d clipped\n", len(coupons))
	}

	// Check 5: Storage round trip
	fmt.Fprint(out, "💾 Testing loyalty store... ")
	dataDir := a.cfg.Storage.DataDir
	marker := storage.ClippedCoupon{CouponID: time.Now().UnixNano(), ClippedAt: time.Now(), Note: "flyerkit check"}

	if err := storage.ClipCoupon(dataDir, marker); err != nil {
		fmt.Fprintf(out, "❌\n   Error: %v\n", err)
		return err
	}
	ok, err := storage.IsClipped(dataDir, marker.CouponID)
	if err == nil && !ok {
		err = fmt.Errorf("check coupon not found after clipping")
	}
	if err != nil {
		fmt.Fprintf(out, "❌\n   Error: %v\n", err)
		return err
	}
	if err := storage.UnclipCoupon(dataDir, marker.CouponID); err != nil {
		fmt.Fprintf(out, "❌\n   Error: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✅\n   %s\n", dataDir)
	fmt.Fprintln(out)

	// All checks passed!
	fmt.Fprintln(out, "🎉 All checks passed!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To open the default flyer, run:")
	fmt.Fprintln(out, "  flyerkit view")
	fmt.Fprintln(out)

	return nil
}
