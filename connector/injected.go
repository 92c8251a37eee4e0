package connector

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ebbieaden/ensdapp/provider"
)

// injectedWallet talks to a wallet that exposes its own JSON-RPC endpoint
// and manages the accounts itself (Frame, a local clef/geth with unlocked
// accounts...). Connecting asks it for access to the accounts.
type injectedWallet struct {
	url string
}

func (w *injectedWallet) Name() string {
	return Injected
}

func (w *injectedWallet) Connect(ctx context.Context) (provider.External, error) {
	client, err := rpc.DialContext(ctx, w.url)
	if err != nil {
		return nil, fmt.Errorf("couldn't reach wallet at %s: %w", w.url, err)
	}

	var accs []common.Address
	if err := client.CallContext(ctx, &accs, "eth_requestAccounts"); err != nil {
		client.Close()
		return nil, fmt.Errorf("account access request failed: %w", err)
	}
	if len(accs) == 0 {
		client.Close()
		return nil, errors.New("wallet granted access to no accounts")
	}
	return provider.FromRPC(client), nil
}
