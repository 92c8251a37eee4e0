package cmd

import (
	"context"
	"encoding/json"

	"github.com/ebbieaden/ensdapp/connector"
	"github.com/ebbieaden/ensdapp/networks"
	"github.com/ebbieaden/ensdapp/provider"
	"github.com/ebbieaden/ensdapp/ui"
)

// readProvider dials a node of the configured network for lookups that need
// no wallet.
func readProvider(ctx context.Context) (*provider.Provider, func(), error) {
	r, err := networks.Default()
	if err != nil {
		return nil, nil, err
	}
	client, err := connector.DialNode(ctx, r, cfg.Network, cfg.Node)
	if err != nil {
		return nil, nil, err
	}
	raw := provider.FromRPC(client)
	p := provider.New(raw, provider.WithNetworks(r))
	info, err := p.Network(ctx)
	if err != nil {
		raw.Close()
		return nil, nil, err
	}
	log.Debugw("reading chain", "network", info.Name, "chain_id", info.ChainID)
	return p, raw.Close, nil
}

// spinner stays quiet when the output is json.
func spinner(msg string) func() {
	if JSONOutput {
		return func() {}
	}
	return appUI.Spinner(msg)
}

type lookupResult struct {
	Query  string `json:"query"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func printLookups(u ui.UI, header [2]string, results []lookupResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(u.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		value := r.Result
		if r.Error != "" {
			value = u.Style(ui.StyledText{Text: r.Error, Severity: ui.SeverityError})
		}
		rows = append(rows, []string{r.Query, value})
	}
	u.Table(header[:], rows)
	return nil
}
