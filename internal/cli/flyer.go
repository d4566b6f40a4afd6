package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/liminalpurple/flyerkit/internal/annotation"
	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/viewer"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// flyerReport is the printable state of a loaded flyer
type flyerReport struct {
	FlyerID    int64                   `json:"flyer_id" yaml:"flyer_id"`
	PostalCode string                  `json:"postal_code" yaml:"postal_code"`
	Status     viewer.Status           `json:"status" yaml:"status"`
	Errors     []string                `json:"errors,omitempty" yaml:"errors,omitempty"`
	Items      []flyer.Item            `json:"items" yaml:"items"`
	Pages      []flyer.Page            `json:"pages" yaml:"pages"`
	Highlights []annotation.Annotation `json:"highlights" yaml:"highlights"`
	Badges     []annotation.Annotation `json:"badges" yaml:"badges"`
}

// NewFlyerCmd creates the flyer command
func NewFlyerCmd() *cobra.Command {
	var output string
	var postal string
	var discount float64

	cmd := &cobra.Command{
		Use:   "flyer [flyer-id]",
		Short: "Load a flyer and print its items and overlays",
		Long: `Load a flyer's items and pages and print what the viewer would show:
the items, the discount highlights and the clip/coupon badges.

Fetch failures are reported rather than hidden. A failed items fetch
leaves the flyer without tap targets; a failed pages fetch only disables
anchor links.`,
		Example: `  # Default flyer, summary output
  flyerkit flyer

  # Flyer 4242 as YAML, highlighting items over 30% off
  flyerkit flyer 4242 --output yaml --discount 30`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			flyerID, err := a.flyerID(args)
			if err != nil {
				return err
			}

			s := a.session(postal)
			view, renderer := a.newView(flyerID, s, nil)
			defer view.Close()

			status, loadErr := view.Open(cmd.Context())
			viewer.FitToFlyer(view, renderer)
			view.SetDiscount(discount)

			pages, _ := view.Pages()
			overlays := renderer.Overlays()
			report := flyerReport{
				FlyerID:    flyerID,
				PostalCode: s.PostalCode,
				Status:     status,
				Items:      view.Items(),
				Pages:      pages,
				Highlights: overlays.Highlights,
				Badges:     overlays.Badges,
			}
			for _, st := range []viewer.LoadState{status.Items, status.Pages} {
				if msg := st.Message(); msg != "" {
					report.Errors = append(report.Errors, msg)
				}
			}

			if err := writeReport(cmd.OutOrStdout(), output, report); err != nil {
				return err
			}

			if status.Items.Status == viewer.StatusFailed {
				return fmt.Errorf("flyer %d could not be loaded: %w", flyerID, loadErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "summary", "Output format: summary, yaml or json")
	cmd.Flags().StringVar(&postal, "postal", "", "Postal code (defaults to the saved one)")
	cmd.Flags().Float64Var(&discount, "discount", 0, "Highlight items discounted by more than this percent")

	return cmd
}

func writeReport(w io.Writer, format string, r flyerReport) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(&r)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "summary", "":
		writeSummary(w, r)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeSummary(w io.Writer, r flyerReport) {
	fmt.Fprintf(w, "📰 Flyer %d (postal code %q)\n", r.FlyerID, r.PostalCode)
	fmt.Fprintf(w, "   Items: %s (%d)", r.Status.Items.Status, r.Status.ItemCount)
	if r.Status.Malformed > 0 {
		fmt.Fprintf(w, ", %d malformed skipped", r.Status.Malformed)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "   Pages: %s (%d)\n", r.Status.Pages.Status, r.Status.PageCount)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "   ⚠️  %s\n", e)
	}
	fmt.Fprintln(w)

	for _, it := range r.Items {
		name := it.Name
		if name == "" {
			name = "-"
		}
		line := fmt.Sprintf("  %-10d %-8s %s", it.ID, it.Type, name)
		if it.PercentOff != nil {
			line += fmt.Sprintf(" (%g%% off)", *it.PercentOff)
		}
		if it.HasCoupons() {
			line += fmt.Sprintf(" [%d coupon(s)]", len(it.Coupons))
		}
		fmt.Fprintln(w, line)
	}

	if len(r.Highlights) > 0 {
		fmt.Fprintf(w, "\n✨ %d item(s) highlighted\n", len(r.Highlights))
	}
	if len(r.Badges) > 0 {
		fmt.Fprintf(w, "🏷️  %d badge(s)\n", len(r.Badges))
	}
}
