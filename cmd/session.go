package cmd

import (
	"github.com/ebbieaden/ensdapp/accounts"
	"github.com/ebbieaden/ensdapp/config"
	"github.com/ebbieaden/ensdapp/connector"
	"github.com/ebbieaden/ensdapp/networks"
	"github.com/ebbieaden/ensdapp/provider"
	"github.com/ebbieaden/ensdapp/ui"
	"github.com/ebbieaden/ensdapp/util/cache"
	"github.com/ebbieaden/ensdapp/wallet"
)

// modalConfig turns the settings into the wallets the picker offers. A
// preselected connector is the only wallet offered.
func modalConfig(c config.Config) connector.Config {
	local := connector.Options{
		URL:            c.Node,
		Keystore:       c.Keystore,
		From:           c.From,
		DerivationPath: c.DerivationPath,
	}
	result := connector.Config{
		Network:                 c.Network,
		ProviderOptions:         map[string]connector.Options{},
		DisableInjectedProvider: c.DisableInjected,
		CacheProvider:           c.CacheProvider,
	}

	switch c.Connector {
	case "":
		if c.InjectedURL != "" {
			result.ProviderOptions[connector.Injected] = connector.Options{URL: c.InjectedURL}
		}
		if c.Keystore != "" || c.From != "" {
			result.ProviderOptions[connector.Keystore] = local
		}
	case connector.Injected:
		result.ProviderOptions[connector.Injected] = connector.Options{URL: c.InjectedURL}
		result.DisableInjectedProvider = false
		result.CacheProvider = false
	default:
		result.ProviderOptions[c.Connector] = local
		result.DisableInjectedProvider = true
		result.CacheProvider = false
	}
	return result
}

// newSession builds the wallet session for c. The wallet picker itself is
// only built on the first Connect.
func newSession(c config.Config, u ui.UI, r *networks.Registry) (*wallet.Session, error) {
	n, err := r.GetNetwork(c.Network)
	if err != nil {
		return nil, err
	}
	store := accounts.NewStore(c.WalletsDir())
	memory := cache.New(c.CachePath())

	newConnector := func() (wallet.Connector, error) {
		m, err := connector.NewModal(
			modalConfig(c), u,
			connector.WithAccounts(store),
			connector.WithCache(memory),
			connector.WithNetworks(r),
		)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return wallet.NewSession(
		newConnector,
		wallet.PolicyFor(n),
		u,
		wallet.WithProviderOptions(provider.WithNetworks(r)),
	), nil
}
