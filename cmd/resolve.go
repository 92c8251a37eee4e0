package cmd

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/ebbieaden/ensdapp/provider"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [names...]",
	Short: "Show the address ENS names point at",
	Long:  ``,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		stop := spinner("Resolving names...")
		p, release, err := readProvider(ctx)
		if err != nil {
			stop()
			return err
		}
		defer release()
		results := resolve(ctx, p, args)
		stop()
		return printLookups(appUI, [2]string{"Name", "Address"}, results, JSONOutput)
	},
}

func resolve(ctx context.Context, p *provider.Provider, names []string) []lookupResult {
	results := make([]lookupResult, 0, len(names))
	for _, name := range names {
		res := lookupResult{Query: provider.NormalizeName(name)}
		addr, err := p.ResolveName(ctx, name)
		switch {
		case err != nil:
			res.Error = err.Error()
		case addr == (common.Address{}):
			res.Error = "not resolved"
		default:
			res.Result = addr.Hex()
		}
		results = append(results, res)
	}
	return results
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
