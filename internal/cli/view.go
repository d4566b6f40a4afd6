package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/liminalpurple/flyerkit/internal/flyer"
	"github.com/liminalpurple/flyerkit/internal/preview"
	"github.com/liminalpurple/flyerkit/internal/viewer"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const viewHelp = `Commands:
  tap <item>          single-tap an item
  press <item>        long-press an item to clip or unclip it
  zoom <x> <y>        double-tap at a flyer point
  discount <percent>  highlight items over this discount (0 clears)
  appear              leave and come back to the flyer
  reload              fetch items and pages again
  status              show load state and overlays
  preview <file.png>  write the overlays to a PNG
  help                show this help
  quit                close the flyer`

// NewViewCmd creates the view command
func NewViewCmd() *cobra.Command {
	var postal string

	cmd := &cobra.Command{
		Use:   "view [flyer-id]",
		Short: "Open a flyer and interact with it",
		Long: `Open a flyer in an interactive session.

Loads clipped coupons and the flyer, then reads gestures from the prompt:
taps, long-presses, double-taps and the discount slider. Overlays are
recomputed after every change. Type 'help' for the command list.

The session runs until 'quit', end of input, or Ctrl+C.`,
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

			reader, restore, err := newLineReader(os.Stdin, cmd.OutOrStdout(), "flyer> ")
			if err != nil {
				return err
			}
			defer restore()

			var out io.Writer = cmd.OutOrStdout()
			if term.IsTerminal(int(os.Stdin.Fd())) {
				out = newlineWriter{out}
			}
			nav := &printNavigator{out: out}
			view, renderer := a.newView(flyerID, a.session(postal), nav)
			nav.lookup = view.Item
			defer view.Close()

			fmt.Fprintf(out, "📰 Opening flyer %d...\n", flyerID)
			status, err := view.Open(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "⚠️  %v\n", err)
			}
			viewer.FitToFlyer(view, renderer)
			fmt.Fprintf(out, "%s\n\n%s\n", status, viewHelp)

			// Set up graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			s := &viewSession{view: view, renderer: renderer, out: out}

			// Run the prompt loop in a goroutine
			errChan := make(chan error, 1)
			go func() {
				errChan <- s.run(cmd.Context(), reader)
			}()

			// Wait for either the loop to end or a shutdown signal
			select {
			case err := <-errChan:
				return err
			case sig := <-sigChan:
				a.log.Info().Stringer("signal", sig).Msg("Received signal")
				return nil
			case <-cmd.Context().Done():
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&postal, "postal", "", "Postal code (defaults to the saved one)")

	return cmd
}

// viewSession applies prompt commands to an open view
type viewSession struct {
	view     *viewer.View
	renderer *viewer.Headless
	out      io.Writer
}

func (s *viewSession) run(ctx context.Context, reader lineReader) error {
	for {
		line, err := reader.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		quit, err := s.exec(ctx, line)
		if err != nil {
			fmt.Fprintf(s.out, "⚠️  %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the session should end
func (s *viewSession) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "quit", "exit", "q":
		return true, nil

	case "help", "?":
		fmt.Fprintln(s.out, viewHelp)

	case "status":
		s.printStatus()

	case "tap":
		id, err := oneItem(args)
		if err != nil {
			return false, err
		}
		route, err := s.view.SingleTap(id)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "👆 %s\n", route)

	case "press":
		id, err := oneItem(args)
		if err != nil {
			return false, err
		}
		clipped, err := s.view.LongPress(id)
		if err != nil {
			return false, err
		}
		if clipped {
			fmt.Fprintf(s.out, "📌 Item %d clipped\n", id)
		} else {
			fmt.Fprintf(s.out, "Item %d unclipped\n", id)
		}

	case "zoom":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: zoom <x> <y>")
		}
		x, errX := strconv.ParseFloat(args[0], 64)
		y, errY := strconv.ParseFloat(args[1], 64)
		if errX != nil || errY != nil {
			return false, fmt.Errorf("invalid point %q %q", args[0], args[1])
		}
		rect, ok := s.view.DoubleTap(flyer.Point{X: x, Y: y})
		if !ok {
			return false, fmt.Errorf("nothing to zoom")
		}
		fmt.Fprintf(s.out, "🔍 Zoomed to %s\n", rect)

	case "discount":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: discount <percent>")
		}
		pct, err := strconv.ParseFloat(args[0], 64)
		if err != nil || pct < 0 || pct > 100 {
			return false, fmt.Errorf("discount must be a number from 0 to 100")
		}
		s.view.SetDiscount(pct)
		fmt.Fprintf(s.out, "✨ %d item(s) highlighted\n", len(s.renderer.Overlays().Highlights))

	case "appear":
		if err := s.view.Appear(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, "Discount reset, clipped coupons refreshed")

	case "reload":
		status, err := s.view.Load(ctx)
		viewer.FitToFlyer(s.view, s.renderer)
		fmt.Fprintln(s.out, status)
		return false, err

	case "preview":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: preview <file.png>")
		}
		f, err := os.Create(args[0])
		if err != nil {
			return false, err
		}
		defer f.Close()
		if err := preview.WritePNG(f, s.renderer.Overlays(), preview.Options{Labels: true}); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "🖼️  Wrote %s\n", args[0])

	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", name)
	}

	return false, nil
}

func (s *viewSession) printStatus() {
	status := s.view.Status()
	o := s.renderer.Overlays()
	fmt.Fprintln(s.out, status)
	for _, st := range []viewer.LoadState{status.Items, status.Pages} {
		if msg := st.Message(); msg != "" {
			fmt.Fprintf(s.out, "⚠️  %s\n", msg)
		}
	}
	fmt.Fprintf(s.out, "taps=%d highlights=%d badges=%d visible=%s\n",
		len(o.Taps), len(o.Highlights), len(o.Badges), o.Visible)
	if clips := s.view.Clips(); len(clips) > 0 {
		fmt.Fprintf(s.out, "clipped items: %v\n", clips)
	}
}

func oneItem(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one item id")
	}
	return parseItemID(args[0])
}

// newlineWriter writes CRLF line endings so output lines up while the
// terminal is in raw mode
type newlineWriter struct {
	w io.Writer
}

func (n newlineWriter) Write(p []byte) (int, error) {
	if _, err := n.w.Write([]byte(strings.ReplaceAll(string(p), "\n", "\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
