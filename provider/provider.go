// Package provider wraps the raw provider handle a wallet connector hands
// out into a network aware provider: chain id detection, the signer of the
// connected account and ENS lookups.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	logging "github.com/ipfs/go-log/v2"

	"github.com/ebbieaden/ensdapp/networks"
)

var log = logging.Logger("provider")

var ErrNoAccounts = errors.New("unknown account #0")

// External is the raw handle produced by a wallet connector.
type External interface {
	// RPC is the JSON-RPC client used for every chain query.
	RPC() *rpc.Client
	// Accounts lists the accounts the wallet exposes, in wallet order.
	Accounts(ctx context.Context) ([]common.Address, error)
	Close()
}

// NetworkResolver maps a chain id to a known network.
type NetworkResolver interface {
	GetNetworkByID(id uint64) (networks.Network, error)
}

type NetworkInfo struct {
	ChainID uint64
	Name    string
}

type Provider struct {
	raw         External
	client      *ethclient.Client
	networks    NetworkResolver
	ensRegistry common.Address
	pinned      bool
}

type Option func(*Provider)

// WithNetworks names detected networks and picks their ENS registry.
func WithNetworks(r NetworkResolver) Option {
	return func(p *Provider) {
		p.networks = r
	}
}

// WithENSRegistry pins the ENS registry, regardless of the detected network.
func WithENSRegistry(registry common.Address) Option {
	return func(p *Provider) {
		p.ensRegistry = registry
		p.pinned = true
	}
}

func New(raw External, opts ...Option) *Provider {
	p := &Provider{
		raw:         raw,
		client:      ethclient.NewClient(raw.RPC()),
		ensRegistry: networks.ENSRegistryAddress,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Network queries the chain id the provider is connected to. When the chain
// is a known network its ENS registry is used for later lookups.
func (p *Provider) Network(ctx context.Context) (NetworkInfo, error) {
	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		return NetworkInfo{}, fmt.Errorf("couldn't get chain id: %w", err)
	}
	info := NetworkInfo{ChainID: chainID.Uint64(), Name: "unknown"}
	if p.networks == nil {
		return info, nil
	}
	n, err := p.networks.GetNetworkByID(info.ChainID)
	if err != nil {
		log.Debugw("chain is not a known network", "chain_id", info.ChainID)
		if !p.pinned {
			p.ensRegistry = common.Address{}
		}
		return info, nil
	}
	info.Name = n.GetName()
	if !p.pinned {
		p.ensRegistry = n.GetENSRegistry()
	}
	return info, nil
}

// Signer returns the signer of the wallet's first account.
func (p *Provider) Signer() *Signer {
	return &Signer{provider: p, index: 0}
}

type Signer struct {
	provider *Provider
	index    int
}

func (s *Signer) Address(ctx context.Context) (common.Address, error) {
	accs, err := s.provider.raw.Accounts(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("couldn't get accounts: %w", err)
	}
	if len(accs) <= s.index {
		if s.index == 0 {
			return common.Address{}, ErrNoAccounts
		}
		return common.Address{}, fmt.Errorf("unknown account #%d", s.index)
	}
	return accs[s.index], nil
}

// FromRPC turns a plain JSON-RPC client into an External whose accounts are
// whatever the node reports through eth_accounts.
func FromRPC(client *rpc.Client) External {
	return &rpcExternal{client: client}
}

type rpcExternal struct {
	client *rpc.Client
}

func (r *rpcExternal) RPC() *rpc.Client {
	return r.client
}

func (r *rpcExternal) Accounts(ctx context.Context) ([]common.Address, error) {
	var accs []common.Address
	if err := r.client.CallContext(ctx, &accs, "eth_accounts"); err != nil {
		return nil, err
	}
	return accs, nil
}

func (r *rpcExternal) Close() {
	r.client.Close()
}
