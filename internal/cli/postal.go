package cli

import (
	"fmt"
	"os"

	"github.com/liminalpurple/flyerkit/internal/config"
	"github.com/liminalpurple/flyerkit/internal/session"
	"github.com/spf13/cobra"
)

// NewPostalCmd creates the postal command
func NewPostalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "postal [code]",
		Short: "Set the postal code used to localise flyers",
		Long: `Set the postal code sent with every flyer request.

With no argument, prompts for the code. The code is saved to the
configuration file and used by later commands. It is not validated:
whatever is entered is sent to the flyer API.

With --default, postal code entry is skipped and the default flyer is
reported with the saved postal code.`,
		Example: `  flyerkit postal "M5V 2T6"
  flyerkit postal --default`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPostal,
	}

	cmd.Flags().Bool("default", false, "Skip postal code entry and go to the default flyer")

	return cmd
}

func runPostal(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	s := session.New(cfg.Session.PostalCode)
	entry := session.NewEntry(s, cfg.Flyer.DefaultFlyerID)
	out := cmd.OutOrStdout()

	if skip, _ := cmd.Flags().GetBool("default"); skip {
		if len(args) > 0 {
			return fmt.Errorf("--default does not take a postal code")
		}
		next := entry.DefaultFlyer()
		fmt.Fprintf(out, "Next: %s\n", next.Screen)
		fmt.Fprintf(out, "Flyer: %d\n", next.FlyerID)
		fmt.Fprintf(out, "Postal code: %q\n", next.PostalCode)
		return nil
	}

	var input string
	if len(args) == 1 {
		input = args[0]
	} else {
		input, err = promptLine(os.Stdin, cmd.OutOrStdout(), fmt.Sprintf("Postal code [%s]: ", s.PostalCode))
		if err != nil {
			return fmt.Errorf("failed to read postal code: %w", err)
		}
	}

	next := entry.Submit(input)

	cfg.Session.PostalCode = next.PostalCode
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "📮 Postal code set to %q\n", next.PostalCode)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Next: %s\n", next.Screen)
	fmt.Fprintf(out, "Or open the default flyer with 'flyerkit flyer %d'\n", entry.DefaultFlyer().FlyerID)

	return nil
}
