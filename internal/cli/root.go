package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the flyerkit command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flyerkit",
		Short: "Browse retail flyers from the terminal",
		Long: `FlyerKit - browse localised retail flyers.

Set a postal code, open a flyer, and interact with it: tap items to see
their details, long-press to clip them, and filter by discount. Coupons
clipped to your account or your local loyalty card are badged on the
flyer.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add commands
	cmd.AddCommand(NewPostalCmd())
	cmd.AddCommand(NewFlyerCmd())
	cmd.AddCommand(NewTapCmd())
	cmd.AddCommand(NewViewCmd())
	cmd.AddCommand(NewClipCmd())
	cmd.AddCommand(NewPreviewCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewServeCmd())

	return cmd
}
