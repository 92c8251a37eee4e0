// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/ebbieaden/ensdapp/config"
	"github.com/ebbieaden/ensdapp/networks"
	"github.com/ebbieaden/ensdapp/ui"
)

var log = logging.Logger("cmd")

var (
	cfgPath string
	cfg     = config.DefaultConfig()
)

var appUI ui.UI = ui.NewTerminalUI()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ensdapp",
	Short: "Connect your wallet and get welcomed to Aden Punks by your ENS name",
	Long: fmt.Sprintf(`ensdapp connects to your wallet, makes sure it is on Goerli and welcomes
you to Aden Punks by your ENS name, or by your address when it has none.

Wallets it can connect to:

	1. injected: a wallet serving JSON-RPC to dapps, Frame by default
	(%s). Use --connector injected and ENSDAPP_INJECTED_URL to point
	it somewhere else.

	2. keystore: a keystore file unlocked with its passphrase, either
	--keystore <path> or --from <hint> to pick one of your registered wallets.

	3. ledger and trezor: the first device attached, at --path (default
	%s) or the path of a registered wallet picked with --from.

Local wallets read the chain through the network's nodes. You can use your own
node with --node or by setting %s for Goerli.

Settings are read from %s, then ENSDAPP_* env vars, then flags.`,
		"http://127.0.0.1:1248",
		"m/44'/60'/0'/0/0",
		networks.Goerli.GetNodeVariableName(),
		config.DefaultPath(),
	),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runWelcome,
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, &c)
	if err := logging.SetLogLevel("*", c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", c.LogLevel, err)
	}
	networks.CustomNetworksDir = c.NetworksDir()
	cfg = c
	return nil
}

// commandContext is cancelled on Ctrl-C and, when a timeout is configured,
// once it elapses.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if cfg.Timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", fmt.Sprintf("config file (default %s)", config.DefaultPath()))
	AddCommonFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		appUI.Error("%s", err)
		os.Exit(1)
	}
}
