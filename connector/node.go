package connector

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ebbieaden/ensdapp/networks"
)

// nodeDialer connects local wallets to a node of the configured network.
type nodeDialer struct {
	network  string
	override string
	networks *networks.Registry
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

func (d *nodeDialer) Dial(ctx context.Context) (*rpc.Client, error) {
	return DialNode(ctx, d.networks, d.network, d.override)
}

// DialNode connects to url when given, otherwise to the first node of the
// network that answers.
func DialNode(ctx context.Context, r *networks.Registry, network string, url string) (*rpc.Client, error) {
	nodes := []networks.Node{{Name: "custom-node", URL: url}}
	if url == "" {
		n, err := r.GetNetwork(network)
		if err != nil {
			return nil, err
		}
		nodes = networks.GetNodes(n)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("network %s has no nodes", network)
	}

	errs := []error{}
	for _, node := range nodes {
		client, err := rpc.DialContext(ctx, node.URL)
		if err == nil {
			log.Debugw("dialed node", "node", node.Name, "url", node.URL)
			return client, nil
		}
		errs = append(errs, wrapError(err, node.Name))
	}
	return nil, fmt.Errorf("couldn't connect to any node: %w", errors.Join(errs...))
}

// localExternal is the raw provider of a wallet whose key lives on this
// machine or on a device attached to it: chain queries go to a node, the
// account comes from the wallet.
type localExternal struct {
	client  *rpc.Client
	address common.Address
	release func()
}

func (l *localExternal) RPC() *rpc.Client {
	return l.client
}

func (l *localExternal) Accounts(ctx context.Context) ([]common.Address, error) {
	return []common.Address{l.address}, nil
}

func (l *localExternal) Close() {
	l.client.Close()
	if l.release != nil {
		l.release()
	}
}
