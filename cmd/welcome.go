package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ebbieaden/ensdapp/networks"
	"github.com/ebbieaden/ensdapp/page"
	"github.com/ebbieaden/ensdapp/ui"
	"github.com/ebbieaden/ensdapp/wallet"
)

var welcomeCmd = &cobra.Command{
	Use:   "welcome",
	Short: "Connect your wallet and show the welcome page (default command)",
	Long:  ``,
	RunE:  runWelcome,
}

func runWelcome(cmd *cobra.Command, args []string) error {
	r, err := networks.Default()
	if err != nil {
		return err
	}
	s, err := newSession(cfg, appUI, r)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext()
	defer cancel()

	interactive := !JSONOutput && term.IsTerminal(int(os.Stdin.Fd()))
	return welcome(ctx, appUI, s, cfg.Network, interactive, JSONOutput)
}

// welcome connects once, shows the page and, while the wallet isn't
// connected, offers to try again.
func welcome(ctx context.Context, u ui.UI, s *wallet.Session, network string, interactive bool, asJSON bool) error {
	// failures are already logged or alerted by the session and end up in
	// the page's status line
	_ = s.Connect(ctx)
	for {
		v := page.ViewOf(s, network)
		if asJSON {
			enc := json.NewEncoder(u.Writer())
			enc.SetIndent("", "  ")
			return enc.Encode(page.Snapshot(v))
		}
		page.Render(u, v)

		if s.State() == wallet.Connected || !interactive || ctx.Err() != nil {
			return nil
		}
		if !u.Confirm(page.ConnectAction+"?", true) {
			return nil
		}
		// same as above, the next render shows the outcome
		_ = s.Connect(ctx)
	}
}

func init() {
	rootCmd.AddCommand(welcomeCmd)
}
