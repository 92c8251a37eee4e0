package wallet_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/ebbieaden/ensdapp/networks"
	"github.com/ebbieaden/ensdapp/provider"
	"github.com/ebbieaden/ensdapp/provider/ethtest"
	"github.com/ebbieaden/ensdapp/ui"
	"github.com/ebbieaden/ensdapp/wallet"
)

var aden = common.HexToAddress("0xABC0000000000000000000000000000000000001")

// fakeConnector hands out providers of an ethtest backend. When entered is
// set it signals on it and then waits for release before connecting.
type fakeConnector struct {
	backend  *ethtest.Backend
	err      error
	connects atomic.Int32
	entered  chan struct{}
	release  chan struct{}
}

func (f *fakeConnector) Connect(ctx context.Context) (provider.External, error) {
	f.connects.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.backend.External(), nil
}

type fixture struct {
	backend   *ethtest.Backend
	connector *fakeConnector
	ui        *ui.RecordingUI
	session   *wallet.Session
	built     int
}

func newFixture(t *testing.T, chainID uint64) *fixture {
	t.Helper()
	registry, err := networks.NewRegistry("")
	require.NoError(t, err)

	f := &fixture{
		backend: ethtest.NewBackend(chainID),
		ui:      ui.NewRecordingUI(),
	}
	f.backend.SetAccounts(aden)
	f.connector = &fakeConnector{backend: f.backend}
	f.session = wallet.NewSession(
		func() (wallet.Connector, error) {
			f.built++
			return f.connector, nil
		},
		wallet.PolicyFor(networks.Goerli),
		f.ui,
		wallet.WithProviderOptions(provider.WithNetworks(registry)),
	)
	t.Cleanup(f.session.Close)
	return f
}

func TestConnectResolvesName(t *testing.T) {
	f := newFixture(t, 5)
	f.backend.SetPrimaryName(aden, "aden.eth")

	require.Equal(t, wallet.Disconnected, f.session.State())
	require.NoError(t, f.session.Connect(context.Background()))

	require.Equal(t, wallet.Connected, f.session.State())
	require.Equal(t, wallet.ReasonNone, f.session.Reason())
	require.Equal(t, wallet.Identity{Name: "aden.eth"}, f.session.Identity())
	require.Equal(t, "aden.eth", f.session.Identity().Display())
	require.Empty(t, f.ui.AlertMessages())
}

func TestConnectFallsBackToAddress(t *testing.T) {
	f := newFixture(t, 5)

	require.NoError(t, f.session.Connect(context.Background()))

	require.Equal(t, wallet.Connected, f.session.State())
	require.Equal(t, wallet.Identity{Address: aden.Hex()}, f.session.Identity())
}

func TestConnectRejectsOtherNetworks(t *testing.T) {
	for _, chainID := range []uint64{1, 3, 11155111, 424242} {
		f := newFixture(t, chainID)
		f.backend.SetPrimaryName(aden, "aden.eth")

		err := f.session.Connect(context.Background())
		require.ErrorIs(t, err, wallet.ErrWrongNetwork, "chain %d", chainID)

		require.Equal(t, wallet.Failed, f.session.State())
		require.Equal(t, wallet.ReasonWrongNetwork, f.session.Reason())
		require.True(t, f.session.Identity().IsZero())
		require.Equal(t, []string{"Change the network to Goerli"}, f.ui.AlertMessages())
		// the network check comes before anything about the account
		require.Zero(t, f.backend.Calls("eth_accounts"))
		require.Zero(t, f.backend.Calls("eth_call"))
	}
}

func TestConnectorRejection(t *testing.T) {
	f := newFixture(t, 5)
	f.connector.err = errors.New("user rejected")

	err := f.session.Connect(context.Background())
	require.EqualError(t, err, "user rejected")

	require.Equal(t, wallet.Failed, f.session.State())
	require.Equal(t, wallet.ReasonUnknown, f.session.Reason())
	require.Equal(t, err, f.session.Err())
	require.True(t, f.session.Identity().IsZero())
	require.Empty(t, f.ui.AlertMessages())
}

func TestResolverFailureIsUnknown(t *testing.T) {
	f := newFixture(t, 5)
	f.backend.FailCalls(errors.New("resolver unavailable"))

	err := f.session.Connect(context.Background())
	require.ErrorContains(t, err, "resolver unavailable")
	require.Equal(t, wallet.ReasonUnknown, f.session.Reason())
	require.True(t, f.session.Identity().IsZero())
	require.Empty(t, f.ui.AlertMessages())
}

func TestNoAccountsIsUnknown(t *testing.T) {
	f := newFixture(t, 5)
	f.backend.SetAccounts()

	err := f.session.Connect(context.Background())
	require.ErrorIs(t, err, provider.ErrNoAccounts)
	require.Equal(t, wallet.ReasonUnknown, f.session.Reason())
}

func TestConnectorSetupFailure(t *testing.T) {
	s := wallet.NewSession(
		func() (wallet.Connector, error) { return nil, errors.New("no wallets available") },
		wallet.PolicyFor(networks.Goerli),
		ui.NewRecordingUI(),
	)
	require.ErrorContains(t, s.Connect(context.Background()), "no wallets available")
	require.Equal(t, wallet.Failed, s.State())
	require.Equal(t, wallet.ReasonUnknown, s.Reason())
}

func TestConnectIsNotReentrant(t *testing.T) {
	f := newFixture(t, 5)
	f.connector.entered = make(chan struct{})
	f.connector.release = make(chan struct{})

	var (
		wg         sync.WaitGroup
		connectErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		connectErr = f.session.Connect(context.Background())
	}()

	<-f.connector.entered
	require.Equal(t, wallet.Connecting, f.session.State())
	// coalesced into the handshake in flight
	require.NoError(t, f.session.Connect(context.Background()))
	require.NoError(t, f.session.Connect(context.Background()))

	close(f.connector.release)
	wg.Wait()

	require.NoError(t, connectErr)
	require.Equal(t, wallet.Connected, f.session.State())
	require.NoError(t, f.session.Connect(context.Background()))
	require.EqualValues(t, 1, f.connector.connects.Load())
	require.Equal(t, 1, f.backend.Calls("eth_chainId"))
}

func TestRetryAfterFailure(t *testing.T) {
	f := newFixture(t, 1)

	require.ErrorIs(t, f.session.Connect(context.Background()), wallet.ErrWrongNetwork)
	require.Equal(t, wallet.Failed, f.session.State())

	// the user switches network and clicks connect again
	f.backend.SetChainID(5)
	require.NoError(t, f.session.Connect(context.Background()))

	require.Equal(t, wallet.Connected, f.session.State())
	require.Equal(t, wallet.ReasonNone, f.session.Reason())
	require.NoError(t, f.session.Err())
	require.Equal(t, wallet.Identity{Address: aden.Hex()}, f.session.Identity())
	require.EqualValues(t, 2, f.connector.connects.Load())
	require.Equal(t, 1, f.built)
	require.Len(t, f.ui.AlertMessages(), 1)
}
