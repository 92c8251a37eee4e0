package cmd

import (
	"context"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/ebbieaden/ensdapp/provider"
)

var addressPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)

// ScanForAddresses finds every address in s, in order.
func ScanForAddresses(s string) []string {
	return addressPattern.FindAllString(s, -1)
}

var whoisCmd = &cobra.Command{
	Use:   "whois [addresses...]",
	Short: "Show the primary ENS name of one or multiple addresses",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		addresses := ScanForAddresses(strings.Join(args, " "))
		if len(addresses) == 0 {
			appUI.Error("Couldn't find any addresses in the params")
			return nil
		}

		ctx, cancel := commandContext()
		defer cancel()
		stop := spinner("Looking up names...")
		p, release, err := readProvider(ctx)
		if err != nil {
			stop()
			return err
		}
		defer release()
		results := whois(ctx, p, addresses)
		stop()
		return printLookups(appUI, [2]string{"Address", "Name"}, results, JSONOutput)
	},
}

func whois(ctx context.Context, p *provider.Provider, addresses []string) []lookupResult {
	results := make([]lookupResult, 0, len(addresses))
	for _, a := range addresses {
		addr := common.HexToAddress(a)
		res := lookupResult{Query: addr.Hex()}
		name, err := p.LookupAddress(ctx, addr)
		switch {
		case err != nil:
			res.Error = err.Error()
		case name == "":
			res.Error = "no primary name"
		default:
			res.Result = name
		}
		results = append(results, res)
	}
	return results
}

func init() {
	rootCmd.AddCommand(whoisCmd)
}
