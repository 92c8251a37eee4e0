package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ebbieaden/ensdapp/config"
)

var (
	Network        string
	Connector      string
	Node           string
	Keystore       string
	From           string
	DerivationPath string
	JSONOutput     bool
	Timeout        time.Duration
	LogLevel       string
)

func AddCommonFlags(c *cobra.Command) {
	c.PersistentFlags().
		StringVarP(&Network, "network", "k", "goerli", "network the wallet has to be on. See 'ensdapp network list' for the valid values.")
	c.PersistentFlags().
		StringVarP(&Connector, "connector", "c", "", "wallet to connect: injected, keystore, ledger or trezor. By default every configured wallet is offered.")
	c.PersistentFlags().
		StringVar(&Node, "node", "", "RPC node local wallets and lookups use instead of the network's nodes")
	c.PersistentFlags().
		StringVar(&Keystore, "keystore", "", "keystore file of the keystore wallet")
	c.PersistentFlags().
		StringVarP(&From, "from", "f", "", "hint to look up one of your registered wallets. See 'ensdapp wallet list'.")
	c.PersistentFlags().
		StringVar(&DerivationPath, "path", "", "derivation path of the ledger/trezor account")
	c.PersistentFlags().
		BoolVar(&JSONOutput, "json", false, "print the result as json")
	c.PersistentFlags().
		DurationVar(&Timeout, "timeout", 0, "give up connecting after this long, 0 waits until Ctrl-C")
	c.PersistentFlags().
		StringVar(&LogLevel, "log-level", "error", "log level: debug, info, warn or error")
}

// applyFlags overrides c with the flags the user actually set.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("network") {
		c.Network = Network
	}
	if flags.Changed("connector") {
		c.Connector = Connector
	}
	if flags.Changed("node") {
		c.Node = Node
	}
	if flags.Changed("keystore") {
		c.Keystore = Keystore
	}
	if flags.Changed("from") {
		c.From = From
	}
	if flags.Changed("path") {
		c.DerivationPath = DerivationPath
	}
	if flags.Changed("timeout") {
		c.Timeout = Timeout
	}
	if flags.Changed("log-level") {
		c.LogLevel = LogLevel
	}
}
