package networks_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ebbieaden/ensdapp/networks"
)

const holeskyJSON = `{
	"name": "holesky",
	"display_name": "Holesky",
	"chain_id": 17000,
	"native_token_symbol": "ETH",
	"native_token_decimal": 18,
	"node_variable_name": "ETHEREUM_HOLESKY_NODE",
	"default_nodes": {"holesky-publicnode": "https://ethereum-holesky-rpc.publicnode.com"},
	"ens_registry": "0x00000000000c2e074ec69a0dfb2997ba6c7d2e1e"
}`

func TestBuiltinNetworks(t *testing.T) {
	r, err := networks.NewRegistry("")
	require.NoError(t, err)

	goerli, err := r.GetNetwork("goerli")
	require.NoError(t, err)
	require.EqualValues(t, 5, goerli.GetChainID())
	require.Equal(t, "Goerli", goerli.GetDisplayName())
	require.Equal(t, networks.ENSRegistryAddress, goerli.GetENSRegistry())

	alt, err := r.GetNetwork("goerli-testnet")
	require.NoError(t, err)
	require.Equal(t, goerli, alt)

	byID, err := r.GetNetworkByID(1)
	require.NoError(t, err)
	require.Equal(t, "mainnet", byID.GetName())

	_, err = r.GetNetwork("ropsten")
	require.ErrorIs(t, err, networks.ErrNetworkNotFound)
	_, err = r.GetNetworkByID(3)
	require.ErrorIs(t, err, networks.ErrNetworkNotFound)

	ns := r.GetSupportedNetworks()
	require.Len(t, ns, 3)
	require.EqualValues(t, 1, ns[0].GetChainID())
	require.Contains(t, r.GetSupportedNetworkNames(), "ethereum")
}

func TestCustomNetworks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "holesky.json"), []byte(holeskyJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))

	r, err := networks.NewRegistry(dir)
	require.NoError(t, err)

	holesky, err := r.GetNetworkByID(17000)
	require.NoError(t, err)
	require.Equal(t, "holesky", holesky.GetName())
	require.Equal(t, networks.ENSRegistryAddress, holesky.GetENSRegistry())
}

func TestAddNetworkPersists(t *testing.T) {
	dir := t.TempDir()
	r, err := networks.NewRegistry(dir)
	require.NoError(t, err)

	n, err := networks.NewNetworkFromJSON([]byte(holeskyJSON))
	require.NoError(t, err)
	require.NoError(t, r.AddNetwork(n))

	_, err = os.Stat(filepath.Join(dir, "holesky.json"))
	require.NoError(t, err)

	reloaded, err := networks.NewRegistry(dir)
	require.NoError(t, err)
	got, err := reloaded.GetNetwork("holesky")
	require.NoError(t, err)
	require.EqualValues(t, 17000, got.GetChainID())
}

func TestNewNetworkFromJSONValidates(t *testing.T) {
	_, err := networks.NewNetworkFromJSON([]byte(`{"chain_id": 10}`))
	require.Error(t, err)
	_, err = networks.NewNetworkFromJSON([]byte(`{"name": "x"}`))
	require.Error(t, err)
}

func TestGetNodesPrefersEnvNode(t *testing.T) {
	t.Setenv("ETHEREUM_GOERLI_NODE", " http://localhost:8545 ")

	nodes := networks.GetNodes(networks.Goerli)
	require.Len(t, nodes, 3)
	require.Equal(t, networks.Node{Name: "custom-node", URL: "http://localhost:8545"}, nodes[0])
	require.Equal(t, "goerli-ankr", nodes[1].Name)
	require.Equal(t, "goerli-publicnode", nodes[2].Name)
}
