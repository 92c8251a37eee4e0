package cmd

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gethaccounts "github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/ebbieaden/ensdapp/accounts"
	"github.com/ebbieaden/ensdapp/config"
	"github.com/ebbieaden/ensdapp/connector"
	"github.com/ebbieaden/ensdapp/networks"
	"github.com/ebbieaden/ensdapp/page"
	"github.com/ebbieaden/ensdapp/provider"
	"github.com/ebbieaden/ensdapp/provider/ethtest"
	"github.com/ebbieaden/ensdapp/ui"
	"github.com/ebbieaden/ensdapp/wallet"
)

var aden = common.HexToAddress("0xABC0000000000000000000000000000000000001")

func testRegistry(t *testing.T) *networks.Registry {
	t.Helper()
	r, err := networks.NewRegistry(filepath.Join(t.TempDir(), "networks"))
	require.NoError(t, err)
	return r
}

func withUI(t *testing.T, u ui.UI) {
	t.Helper()
	old := appUI
	appUI = u
	t.Cleanup(func() { appUI = old })
}

func injectedConfig(t *testing.T, b *ethtest.Backend) config.Config {
	t.Helper()
	srv := httptest.NewServer(b.Server())
	t.Cleanup(srv.Close)
	c := config.DefaultConfig()
	c.DataDir = t.TempDir()
	c.Connector = connector.Injected
	c.InjectedURL = srv.URL
	return c
}

func TestModalConfig(t *testing.T) {
	c := config.DefaultConfig()
	mc := modalConfig(c)
	require.Empty(t, mc.ProviderOptions)
	require.False(t, mc.DisableInjectedProvider)
	require.True(t, mc.CacheProvider)
	require.Equal(t, "goerli", mc.Network)

	c.Keystore = "/keys/aden.json"
	c.Node = "http://localhost:8545"
	mc = modalConfig(c)
	require.Equal(t, connector.Options{URL: "http://localhost:8545", Keystore: "/keys/aden.json"}, mc.ProviderOptions[connector.Keystore])

	c.Connector = connector.Ledger
	c.DerivationPath = "m/44'/60'/0'/0/2"
	mc = modalConfig(c)
	require.True(t, mc.DisableInjectedProvider)
	require.False(t, mc.CacheProvider)
	require.Len(t, mc.ProviderOptions, 1)
	require.Equal(t, "m/44'/60'/0'/0/2", mc.ProviderOptions[connector.Ledger].DerivationPath)

	c.Connector = connector.Injected
	c.DisableInjected = true
	mc = modalConfig(c)
	require.False(t, mc.DisableInjectedProvider)
	require.Len(t, mc.ProviderOptions, 1)
}

func TestApplyFlags(t *testing.T) {
	c := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	AddCommonFlags(c)
	require.NoError(t, c.ParseFlags([]string{"--network", "sepolia", "-c", "trezor", "--timeout", "5s"}))

	loaded := config.DefaultConfig()
	loaded.Keystore = "/keys/aden.json"
	applyFlags(c, &loaded)
	require.Equal(t, "sepolia", loaded.Network)
	require.Equal(t, "trezor", loaded.Connector)
	require.Equal(t, "5s", loaded.Timeout.String())
	require.Equal(t, "/keys/aden.json", loaded.Keystore)
	require.Equal(t, "error", loaded.LogLevel)
}

func TestWelcomeWithName(t *testing.T) {
	b := ethtest.NewBackend(5)
	b.SetAccounts(aden)
	b.SetPrimaryName(aden, "aden.eth")
	u := ui.NewRecordingUI()

	s, err := newSession(injectedConfig(t, b), u, testRegistry(t))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, welcome(context.Background(), u, s, "goerli", true, false))
	require.Equal(t, wallet.Connected, s.State())
	require.Equal(t, []string{"Welcome to Aden Punks aden.eth!"}, u.CriticalMessages())
	require.True(t, u.HasMessage(page.WalletConnected))
	require.Empty(t, u.AlertMessages())
}

func TestWelcomeWrongNetworkRetry(t *testing.T) {
	b := ethtest.NewBackend(1)
	b.SetAccounts(aden)
	u := ui.NewRecordingUI("y", "n")

	s, err := newSession(injectedConfig(t, b), u, testRegistry(t))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, welcome(context.Background(), u, s, "goerli", true, false))
	require.Equal(t, wallet.Failed, s.State())
	require.Equal(t, wallet.ReasonWrongNetwork, s.Reason())
	require.Equal(t, []string{"Change the network to Goerli", "Change the network to Goerli"}, u.AlertMessages())
	require.Equal(t, 2, b.Calls("eth_requestAccounts"))
	require.Equal(t, []string{"Welcome to Aden Punks!", "Welcome to Aden Punks!"}, u.CriticalMessages())
}

func TestWelcomeClosedInput(t *testing.T) {
	b := ethtest.NewBackend(5)
	b.SetAccounts(aden)
	c := injectedConfig(t, b)
	c.Connector = ""
	c.Keystore = filepath.Join(t.TempDir(), "aden.json")

	out := &strings.Builder{}
	u := ui.NewTerminalUIWith(out, strings.NewReader(""))
	s, err := newSession(c, u, testRegistry(t))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, welcome(context.Background(), u, s, "goerli", true, false))
	require.Equal(t, wallet.Failed, s.State())
	require.Equal(t, wallet.ReasonUnknown, s.Reason())
	require.Zero(t, b.Calls("eth_requestAccounts"))
	require.Contains(t, out.String(), page.ConnectAction+"? [Y/n]")
}

func TestWelcomeJSON(t *testing.T) {
	b := ethtest.NewBackend(5)
	b.SetAccounts(aden)
	u := ui.NewRecordingUI()

	s, err := newSession(injectedConfig(t, b), u, testRegistry(t))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, welcome(context.Background(), u, s, "goerli", false, true))
	doc := page.Document{}
	require.NoError(t, json.Unmarshal([]byte(u.Output()), &doc))
	require.Equal(t, "Wallet connected", doc.Status)
	require.Equal(t, aden.Hex(), doc.Identity.Address)
	require.Empty(t, doc.Identity.Name)
}

func TestNewSessionUnknownNetwork(t *testing.T) {
	c := config.DefaultConfig()
	c.Network = "ropsten"
	_, err := newSession(c, ui.NewRecordingUI(), testRegistry(t))
	require.ErrorIs(t, err, networks.ErrNetworkNotFound)
}

func TestWhoisAndResolve(t *testing.T) {
	b := ethtest.NewBackend(5)
	b.SetPrimaryName(aden, "aden.eth")
	other := common.HexToAddress("0x00000000000000000000000000000000000000b2")
	ctx := context.Background()

	p := provider.New(b.External(), provider.WithNetworks(testRegistry(t)))
	_, err := p.Network(ctx)
	require.NoError(t, err)

	addresses := ScanForAddresses("send to " + aden.Hex() + ", and " + other.Hex())
	require.Len(t, addresses, 2)
	require.Equal(t, []lookupResult{
		{Query: aden.Hex(), Result: "aden.eth"},
		{Query: other.Hex(), Error: "no primary name"},
	}, whois(ctx, p, addresses))

	require.Equal(t, []lookupResult{
		{Query: "aden.eth", Result: aden.Hex()},
		{Query: "nobody.eth", Error: "not resolved"},
	}, resolve(ctx, p, []string{"Aden.eth", "nobody.eth"}))

	u := ui.NewRecordingUI()
	require.NoError(t, printLookups(u, [2]string{"Address", "Name"}, whois(ctx, p, addresses[:1]), false))
	require.True(t, u.HasMessage("aden.eth"))
}

func TestAddAndListNetworks(t *testing.T) {
	u := ui.NewRecordingUI()
	withUI(t, u)
	r := testRegistry(t)

	content, err := networkJSON(`{"name": "holesky", "chain_id": 17000, "default_nodes": {"publicnode": "https://ethereum-holesky-rpc.publicnode.com"}}`)
	require.NoError(t, err)
	n, err := networks.NewNetworkFromJSON(content)
	require.NoError(t, err)
	require.NoError(t, addNetwork(r, n, false))
	require.Error(t, addNetwork(r, n, false))
	require.NoError(t, addNetwork(r, n, true))

	listNetworks(r)
	require.True(t, u.HasMessage("holesky"))
	require.True(t, u.HasMessage("17000"))
	require.True(t, u.HasMessage("goerli"))
}

type fakeHW struct{}

func (fakeHW) Derive(path gethaccounts.DerivationPath, pin bool) (gethaccounts.Account, error) {
	return gethaccounts.Account{Address: common.BigToAddress(new(big.Int).SetUint64(uint64(path[len(path)-1]) + 1))}, nil
}

func TestHandleHWPaging(t *testing.T) {
	store := accounts.NewStore(t.TempDir())
	u := ui.NewRecordingUI("next", "2", "cold storage")

	require.NoError(t, handleHW(u, store, fakeHW{}, accounts.KindTrezor, TREZOR_BASE_PATH))
	acc, err := store.GetAccount("cold", accounts.KindTrezor)
	require.NoError(t, err)
	require.Equal(t, "m/44'/60'/0'/0/7", acc.Derpath)
	require.Equal(t, common.BigToAddress(big.NewInt(8)).Hex(), acc.Address)
}

func TestHandleHWClosedInput(t *testing.T) {
	store := accounts.NewStore(t.TempDir())
	out := &strings.Builder{}
	u := ui.NewTerminalUIWith(out, strings.NewReader("next\nforward"))

	done := make(chan error, 1)
	go func() { done <- handleHW(u, store, fakeHW{}, accounts.KindTrezor, TREZOR_BASE_PATH) }()
	select {
	case err := <-done:
		require.ErrorIs(t, err, errInputClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("handleHW kept prompting after the input ended")
	}
	require.Contains(t, out.String(), "m/44'/60'/0'/0/5")
	require.Empty(t, store.GetAccounts())
}

func TestAddKeystoreWallet(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "aden.json")
	require.NoError(t, os.WriteFile(keyPath, []byte(`{"address":"abc0000000000000000000000000000000000001","version":3}`), 0600))
	store := accounts.NewStore(filepath.Join(dir, "wallets"))
	u := ui.NewRecordingUI("keystore", keyPath, "aden deployer")

	require.NoError(t, addWallet(u, store, filepath.Join(dir, "keystores")))
	accs := store.GetAccounts()
	require.Len(t, accs, 1)
	require.Equal(t, aden.Hex(), accs[0].Address)
	require.Equal(t, keyPath, accs[0].Keypath)

	listWallets(u, store)
	require.True(t, u.HasMessage("aden deployer"))

	require.Error(t, addWallet(ui.NewRecordingUI("walletconnect"), store, dir))
}

func TestShowConfig(t *testing.T) {
	c := config.DefaultConfig()
	c.Timeout = 30 * time.Second
	out := &strings.Builder{}

	require.NoError(t, showConfig(ui.NewTerminalUIWith(out, strings.NewReader("")), c, "~/.ensdapp/config.toml"))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Equal(t, "# ~/.ensdapp/config.toml", lines[0])
	require.Contains(t, lines, `  network = "goerli"`)
	for _, line := range lines[1:] {
		if line != "" {
			require.True(t, strings.HasPrefix(line, "  "), line)
		}
	}

	// the nested output still decodes to the same settings
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(out.String()), 0600))
	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "goerli", loaded.Network)
	require.Equal(t, 30*time.Second, loaded.Timeout)
}
