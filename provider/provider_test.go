package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/ebbieaden/ensdapp/networks"
	"github.com/ebbieaden/ensdapp/provider"
	"github.com/ebbieaden/ensdapp/provider/ethtest"
)

var (
	aden  = common.HexToAddress("0xABC0000000000000000000000000000000000001")
	other = common.HexToAddress("0x00000000000000000000000000000000000000B2")
)

func newProvider(t *testing.T, b *ethtest.Backend) *provider.Provider {
	t.Helper()
	r, err := networks.NewRegistry("")
	require.NoError(t, err)
	ext := b.External()
	t.Cleanup(ext.Close)
	return provider.New(ext, provider.WithNetworks(r))
}

func TestNetwork(t *testing.T) {
	ctx := context.Background()

	p := newProvider(t, ethtest.NewBackend(5))
	info, err := p.Network(ctx)
	require.NoError(t, err)
	require.Equal(t, provider.NetworkInfo{ChainID: 5, Name: "goerli"}, info)

	p = newProvider(t, ethtest.NewBackend(424242))
	info, err = p.Network(ctx)
	require.NoError(t, err)
	require.Equal(t, provider.NetworkInfo{ChainID: 424242, Name: "unknown"}, info)
}

func TestSignerAddress(t *testing.T) {
	ctx := context.Background()
	b := ethtest.NewBackend(5)

	p := newProvider(t, b)
	_, err := p.Signer().Address(ctx)
	require.ErrorIs(t, err, provider.ErrNoAccounts)

	b.SetAccounts(aden, other)
	addr, err := p.Signer().Address(ctx)
	require.NoError(t, err)
	require.Equal(t, aden, addr)
}

func TestLookupAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("primary name", func(t *testing.T) {
		b := ethtest.NewBackend(5)
		b.SetPrimaryName(aden, "aden.eth")
		p := newProvider(t, b)
		_, err := p.Network(ctx)
		require.NoError(t, err)

		name, err := p.LookupAddress(ctx, aden)
		require.NoError(t, err)
		require.Equal(t, "aden.eth", name)
	})

	t.Run("no reverse record", func(t *testing.T) {
		p := newProvider(t, ethtest.NewBackend(5))
		name, err := p.LookupAddress(ctx, aden)
		require.NoError(t, err)
		require.Empty(t, name)
	})

	t.Run("empty reverse record", func(t *testing.T) {
		b := ethtest.NewBackend(5)
		b.SetReverseRecord(aden, "")
		name, err := newProvider(t, b).LookupAddress(ctx, aden)
		require.NoError(t, err)
		require.Empty(t, name)
	})

	t.Run("name points elsewhere", func(t *testing.T) {
		b := ethtest.NewBackend(5)
		b.SetReverseRecord(aden, "vitalik.eth")
		b.SetAddressRecord("vitalik.eth", other)
		name, err := newProvider(t, b).LookupAddress(ctx, aden)
		require.NoError(t, err)
		require.Empty(t, name)
	})

	t.Run("rpc failure", func(t *testing.T) {
		b := ethtest.NewBackend(5)
		b.FailCalls(errors.New("header not found"))
		_, err := newProvider(t, b).LookupAddress(ctx, aden)
		require.ErrorContains(t, err, "header not found")
	})

	t.Run("network without ens", func(t *testing.T) {
		b := ethtest.NewBackend(424242)
		p := newProvider(t, b)
		_, err := p.Network(ctx)
		require.NoError(t, err)
		_, err = p.LookupAddress(ctx, aden)
		require.ErrorIs(t, err, provider.ErrENSNotSupported)
	})

	t.Run("pinned registry", func(t *testing.T) {
		b := ethtest.NewBackend(424242)
		b.Registry = common.HexToAddress("0x0000000000000000000000000000000000E75000")
		b.SetPrimaryName(aden, "aden.eth")
		ext := b.External()
		defer ext.Close()
		p := provider.New(ext, provider.WithENSRegistry(b.Registry))
		_, err := p.Network(ctx)
		require.NoError(t, err)
		name, err := p.LookupAddress(ctx, aden)
		require.NoError(t, err)
		require.Equal(t, "aden.eth", name)
	})
}

func TestResolveName(t *testing.T) {
	ctx := context.Background()
	b := ethtest.NewBackend(5)
	b.SetAddressRecord("aden.eth", aden)
	p := newProvider(t, b)

	addr, err := p.ResolveName(ctx, "Aden.eth")
	require.NoError(t, err)
	require.Equal(t, aden, addr)

	addr, err = p.ResolveName(ctx, "nobody.eth")
	require.NoError(t, err)
	require.Equal(t, common.Address{}, addr)
}
