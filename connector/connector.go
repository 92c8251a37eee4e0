// Package connector is the wallet picker. It offers the wallets the config
// enables, lets the user pick one and performs that wallet's handshake,
// handing back the raw provider handle.
package connector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	logging "github.com/ipfs/go-log/v2"

	"github.com/ebbieaden/ensdapp/accounts"
	"github.com/ebbieaden/ensdapp/networks"
	"github.com/ebbieaden/ensdapp/provider"
	"github.com/ebbieaden/ensdapp/ui"
	"github.com/ebbieaden/ensdapp/util/cache"
)

var log = logging.Logger("connector")

const (
	Injected = "injected"
	Keystore = accounts.KindKeystore
	Ledger   = accounts.KindLedger
	Trezor   = accounts.KindTrezor

	// DefaultInjectedURL is the RPC endpoint Frame exposes to dapps.
	DefaultInjectedURL = "http://127.0.0.1:1248"
	// DefaultDerivationPath is the first account of the standard Ethereum
	// derivation.
	DefaultDerivationPath = "m/44'/60'/0'/0/0"

	cachedProviderKey = "cached_provider"
)

var (
	ErrNoWallets      = errors.New("no wallets available")
	ErrUnknownWallet  = errors.New("unknown wallet")
	ErrNoWalletChosen = errors.New("no wallet chosen")
)

// Config mirrors what a dapp hands its wallet modal.
type Config struct {
	// Network is the name of the network local wallets dial nodes of.
	Network string
	// ProviderOptions enables wallets besides the injected one, keyed by
	// wallet name.
	ProviderOptions         map[string]Options
	DisableInjectedProvider bool
	// CacheProvider remembers the last wallet that connected and skips the
	// picker next time.
	CacheProvider bool
}

type Options struct {
	// URL is the wallet's own RPC endpoint for the injected wallet, and a
	// node overriding the network's nodes for local wallets.
	URL string
	// Keystore is the key file of the keystore wallet.
	Keystore string
	// From is a hint matched against registered accounts when Keystore or
	// DerivationPath is not given.
	From           string
	DerivationPath string
}

// Wallet is one entry of the picker.
type Wallet interface {
	Name() string
	Connect(ctx context.Context) (provider.External, error)
}

type Modal struct {
	config   Config
	ui       ui.UI
	wallets  []Wallet
	cache    *cache.Cache
	accounts *accounts.Store
	networks *networks.Registry
}

type Option func(*Modal)

func WithAccounts(store *accounts.Store) Option {
	return func(m *Modal) {
		m.accounts = store
	}
}

func WithCache(c *cache.Cache) Option {
	return func(m *Modal) {
		m.cache = c
	}
}

func WithNetworks(r *networks.Registry) Option {
	return func(m *Modal) {
		m.networks = r
	}
}

func NewModal(config Config, u ui.UI, opts ...Option) (*Modal, error) {
	m := &Modal{
		config: config,
		ui:     u,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.networks == nil {
		r, err := networks.Default()
		if err != nil {
			return nil, err
		}
		m.networks = r
	}

	if !config.DisableInjectedProvider {
		opt := config.ProviderOptions[Injected]
		url := opt.URL
		if url == "" {
			url = DefaultInjectedURL
		}
		m.wallets = append(m.wallets, &injectedWallet{url: url})
	}

	names := make([]string, 0, len(config.ProviderOptions))
	for name := range config.ProviderOptions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == Injected {
			continue
		}
		w, err := m.newWallet(name, config.ProviderOptions[name])
		if err != nil {
			return nil, err
		}
		m.wallets = append(m.wallets, w)
	}
	return m, nil
}

func (m *Modal) newWallet(name string, opt Options) (Wallet, error) {
	switch name {
	case Keystore:
		return &keystoreWallet{
			path:     opt.Keystore,
			from:     opt.From,
			accounts: m.accounts,
			ui:       m.ui,
			dialer:   m.dialer(opt.URL),
		}, nil
	case Ledger, Trezor:
		return newUSBWallet(name, opt, m)
	}
	return nil, fmt.Errorf("'%s': %w", name, ErrUnknownWallet)
}

func (m *Modal) dialer(url string) *nodeDialer {
	return &nodeDialer{
		network:  m.config.Network,
		override: url,
		networks: m.networks,
	}
}

// WalletNames lists the wallets in the order the picker shows them.
func (m *Modal) WalletNames() []string {
	res := make([]string, 0, len(m.wallets))
	for _, w := range m.wallets {
		res = append(res, w.Name())
	}
	return res
}

// Connect picks a wallet and runs its handshake.
func (m *Modal) Connect(ctx context.Context) (provider.External, error) {
	w, cached, err := m.pick()
	if err != nil {
		return nil, err
	}

	log.Debugw("connecting", "wallet", w.Name(), "cached", cached)
	raw, err := w.Connect(ctx)
	if err != nil {
		if cached {
			m.ClearCachedProvider()
		}
		return nil, fmt.Errorf("%s: %w", w.Name(), err)
	}

	if m.config.CacheProvider && m.cache != nil {
		if err := m.cache.Set(cachedProviderKey, w.Name()); err != nil {
			log.Warnw("couldn't remember wallet", "wallet", w.Name(), "err", err)
		}
	}
	return raw, nil
}

func (m *Modal) pick() (Wallet, bool, error) {
	if len(m.wallets) == 0 {
		return nil, false, ErrNoWallets
	}
	if name, found := m.CachedProvider(); found {
		for _, w := range m.wallets {
			if w.Name() == name {
				return w, true, nil
			}
		}
	}
	if len(m.wallets) == 1 {
		return m.wallets[0], false, nil
	}
	m.ui.Info("Available wallets:")
	idx := m.ui.Indent().Choose("Select a wallet", m.WalletNames())
	if idx < 0 || idx >= len(m.wallets) {
		return nil, false, ErrNoWalletChosen
	}
	return m.wallets[idx], false, nil
}

// CachedProvider returns the remembered wallet when caching is on.
func (m *Modal) CachedProvider() (string, bool) {
	if !m.config.CacheProvider || m.cache == nil {
		return "", false
	}
	return m.cache.Get(cachedProviderKey)
}

func (m *Modal) ClearCachedProvider() {
	if m.cache == nil {
		return
	}
	if err := m.cache.Delete(cachedProviderKey); err != nil {
		log.Warnw("couldn't forget cached wallet", "err", err)
	}
}
