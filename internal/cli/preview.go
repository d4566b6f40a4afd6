package cli

import (
	"fmt"
	"image"
	"os"

	"github.com/liminalpurple/flyerkit/internal/preview"
	"github.com/liminalpurple/flyerkit/internal/viewer"
	"github.com/spf13/cobra"
)

// NewPreviewCmd creates the preview command
func NewPreviewCmd() *cobra.Command {
	var output, background, postal string
	var width int
	var discount float64
	var clips []int64
	var labels bool

	cmd := &cobra.Command{
		Use:   "preview [flyer-id]",
		Short: "Render a flyer's overlays to a PNG",
		Long: `Load a flyer and draw its overlays: tap targets, discount highlights,
clip badges and coupon badges.

A page image can be given as the background (PNG, JPEG, GIF or WebP);
it is stretched to the flyer's content area.`,
		Example: `  flyerkit preview 4242 -o flyer.png --discount 25 --clip 101 --clip 102`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			flyerID, err := a.flyerID(args)
			if err != nil {
				return err
			}

			var bg image.Image
			if background != "" {
				data, err := os.ReadFile(background)
				if err != nil {
					return fmt.Errorf("failed to read background: %w", err)
				}
				img, info, err := preview.DecodeBackground(data)
				if err != nil {
					return err
				}
				a.log.Debug().Int("width", info.Width).Int("height", info.Height).Str("mime", info.MimeType).Msg("Background loaded")
				bg = img
			}

			view, renderer := a.newView(flyerID, a.session(postal), nil)
			defer view.Close()

			status, loadErr := view.Open(cmd.Context())
			if status.Items.Status != viewer.StatusLoaded {
				return fmt.Errorf("flyer %d could not be loaded: %w", flyerID, loadErr)
			}
			viewer.FitToFlyer(view, renderer)

			view.SetDiscount(discount)
			for _, id := range clips {
				if _, err := view.LongPress(id); err != nil {
					return err
				}
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer f.Close()

			opts := preview.Options{Width: width, Background: bg, Labels: labels}
			if err := preview.WritePNG(f, renderer.Overlays(), opts); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🖼️  Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "flyer.png", "Output PNG file")
	cmd.Flags().StringVar(&background, "background", "", "Page image to draw under the overlays")
	cmd.Flags().StringVar(&postal, "postal", "", "Postal code (defaults to the saved one)")
	cmd.Flags().IntVar(&width, "width", preview.DefaultWidth, "Output width in pixels")
	cmd.Flags().Float64Var(&discount, "discount", 0, "Highlight items discounted by more than this percent")
	cmd.Flags().Int64SliceVar(&clips, "clip", nil, "Item ids to clip before rendering")
	cmd.Flags().BoolVar(&labels, "labels", true, "Label tap targets with item ids")

	return cmd
}
