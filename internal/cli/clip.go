package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/liminalpurple/flyerkit/internal/config"
	"github.com/liminalpurple/flyerkit/internal/storage"
	"github.com/spf13/cobra"
)

// NewClipCmd creates the clip command and its subcommands
func NewClipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip",
		Short: "Manage coupons clipped to the local loyalty card",
		Long: `Manage the local loyalty card.

Coupons clipped here are merged with the account's clipped coupons when a
flyer is opened, and their items show the clipped coupon badge.`,
	}

	cmd.AddCommand(newClipAddCmd())
	cmd.AddCommand(newClipRemoveCmd())
	cmd.AddCommand(newClipListCmd())

	return cmd
}

func newClipAddCmd() *cobra.Command {
	var flyerID, itemID int64
	var note string

	cmd := &cobra.Command{
		Use:   "add <coupon-id>",
		Short: "Clip a coupon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			couponID, err := parseCouponID(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			coupon := storage.ClippedCoupon{
				CouponID:  couponID,
				ClippedAt: time.Now(),
				FlyerID:   flyerID,
				ItemID:    itemID,
				Note:      note,
			}
			if err := storage.ClipCoupon(cfg.Storage.DataDir, coupon); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✂️  Clipped coupon %d\n", couponID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&flyerID, "flyer", 0, "Flyer the coupon came from")
	cmd.Flags().Int64Var(&itemID, "item", 0, "Item the coupon is attached to")
	cmd.Flags().StringVar(&note, "note", "", "Free-form note")

	return cmd
}

func newClipRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <coupon-id>",
		Aliases: []string{"rm"},
		Short:   "Unclip a coupon",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			couponID, err := parseCouponID(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := storage.UnclipCoupon(cfg.Storage.DataDir, couponID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Unclipped coupon %d\n", couponID)
			return nil
		},
	}
}

func newClipListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List clipped coupons",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			clipped, err := storage.ListClipped(cfg.Storage.DataDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(clipped) == 0 {
				fmt.Fprintln(out, "No coupons clipped")
				return nil
			}

			for _, c := range clipped {
				fmt.Fprintf(out, "  %-10d %s", c.CouponID, c.ClippedAt.Format(time.DateOnly))
				if c.FlyerID != 0 {
					fmt.Fprintf(out, "  flyer %d", c.FlyerID)
				}
				if c.ItemID != 0 {
					fmt.Fprintf(out, "  item %d", c.ItemID)
				}
				if c.Note != "" {
					fmt.Fprintf(out, "  %s", c.Note)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func parseCouponID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid coupon id %q", s)
	}
	return id, nil
}
