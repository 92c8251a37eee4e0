package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("networks")

var (
	EthereumMainnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:               "mainnet",
		DisplayName:        "Ethereum Mainnet",
		AlternativeNames:   []string{"ethereum"},
		ChainID:            1,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		NodeVariableName:   "ETHEREUM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"mainnet-publicnode": "https://ethereum-rpc.publicnode.com",
			"mainnet-llamarpc":   "https://eth.llamarpc.com",
		},
		ENSRegistry: ENSRegistryAddress,
	})

	Goerli Network = NewGenericNetwork(GenericNetworkConfig{
		Name:               "goerli",
		DisplayName:        "Goerli",
		AlternativeNames:   []string{"goerli-testnet"},
		ChainID:            5,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		NodeVariableName:   "ETHEREUM_GOERLI_NODE",
		DefaultNodes: map[string]string{
			"goerli-publicnode": "https://ethereum-goerli-rpc.publicnode.com",
			"goerli-ankr":       "https://rpc.ankr.com/eth_goerli",
		},
		ENSRegistry: ENSRegistryAddress,
	})

	Sepolia Network = NewGenericNetwork(GenericNetworkConfig{
		Name:               "sepolia",
		DisplayName:        "Sepolia",
		ChainID:            11155111,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		NodeVariableName:   "ETHEREUM_SEPOLIA_NODE",
		DefaultNodes: map[string]string{
			"sepolia-publicnode": "https://ethereum-sepolia-rpc.publicnode.com",
		},
		ENSRegistry: ENSRegistryAddress,
	})
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	EthereumMainnet,
	Goerli,
	Sepolia,
}

var ErrNetworkNotFound = fmt.Errorf("network not found")

// Registry indexes networks by name, alternative name and chain id. Custom
// networks found in its directory override built-ins with the same name or
// chain id.
type Registry struct {
	mu           sync.RWMutex
	dir          string
	networks     map[string]Network
	networksByID map[uint64]Network
}

// NewRegistry builds a registry from the built-in networks plus every
// *.json network config in dir. An empty dir skips custom networks.
func NewRegistry(dir string) (*Registry, error) {
	result := &Registry{
		dir:          dir,
		networks:     map[string]Network{},
		networksByID: map[uint64]Network{},
	}
	for _, n := range supportedNetworks {
		if err := result.add(n, false); err != nil {
			return nil, err
		}
	}
	if dir == "" {
		return result, nil
	}

	customNetworks, err := loadCustomNetworks(dir)
	if err != nil {
		return nil, err
	}
	for _, n := range customNetworks {
		if _, found := result.networks[n.GetName()]; found {
			log.Infof("network with name '%s' already exists, using custom network", n.GetName())
		}
		if _, found := result.networksByID[n.GetChainID()]; found {
			log.Infof("network with id '%d' already exists, using custom network", n.GetChainID())
		}
		if err := result.add(n, true); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *Registry) add(n Network, replace bool) error {
	names := append([]string{n.GetName()}, n.GetAlternativeNames()...)
	if !replace {
		for _, name := range names {
			if _, found := r.networks[name]; found {
				return fmt.Errorf("network with name or alternative name of '%s' already exists", name)
			}
		}
	}
	for _, name := range names {
		r.networks[name] = n
	}
	r.networksByID[n.GetChainID()] = n
	return nil
}

func (r *Registry) GetNetwork(name string) (Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, found := r.networks[name]
	if !found {
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

func (r *Registry) GetNetworkByID(id uint64) (Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, found := r.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

// GetSupportedNetworks returns each network once, ordered by chain id.
func (r *Registry) GetSupportedNetworks() []Network {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := []Network{}
	for _, n := range r.networksByID {
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].GetChainID() < res[j].GetChainID()
	})
	return res
}

func (r *Registry) GetSupportedNetworkNames() []string {
	res := []string{}
	for _, n := range r.GetSupportedNetworks() {
		res = append(res, n.GetName())
		res = append(res, n.GetAlternativeNames()...)
	}
	return res
}

// AddNetwork registers the network and stores it as <dir>/<name>.json so it
// is loaded again next time.
func (r *Registry) AddNetwork(network Network) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.add(network, true); err != nil {
		return err
	}
	if r.dir == "" {
		return nil
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.dir, err)
	}
	content, err := network.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}
	err = os.WriteFile(filepath.Join(r.dir, fmt.Sprintf("%s.json", network.GetName())), content, 0644)
	if err != nil {
		return fmt.Errorf("failed to write the new network to file: %w", err)
	}
	return nil
}

func loadCustomNetworks(dir string) ([]Network, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	networks := []Network{}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		network, err := NewNetworkFromJSON(content)
		if err != nil {
			log.Warnf("failed to parse network from file %s: %s, ignored", file, err)
			continue
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericNetworkConfig{}
	if err := json.Unmarshal(content, &networkConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" {
		return nil, fmt.Errorf("network config has no name")
	}
	if networkConfig.ChainID == 0 {
		return nil, fmt.Errorf("network config '%s' has no chain id", networkConfig.Name)
	}
	return NewGenericNetwork(networkConfig), nil
}
