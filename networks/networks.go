package networks

import (
	"os"
	"sort"
	"strings"
	"sync"
)

var (
	// CustomNetworksDir is where Default looks for custom network configs.
	// It must be set before the first call to Default.
	CustomNetworksDir string

	defaultRegistry *Registry
	defaultErr      error
	once            sync.Once
)

// Default returns the process wide registry, built on first use.
func Default() (*Registry, error) {
	once.Do(func() {
		defaultRegistry, defaultErr = NewRegistry(CustomNetworksDir)
		if defaultErr != nil {
			log.Warnf("failed to load custom networks: %s, continue with built-in networks", defaultErr)
			defaultRegistry, defaultErr = NewRegistry("")
		}
	})
	return defaultRegistry, defaultErr
}

func GetNetwork(name string) (Network, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return r.GetNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return r.GetNetworkByID(id)
}

// Node is a named RPC endpoint of a network.
type Node struct {
	Name string
	URL  string
}

// GetNodes returns the network's nodes in the order they should be tried:
// the endpoint from the network's node env var first, then the default
// nodes sorted by name.
func GetNodes(n Network) []Node {
	res := []Node{}
	if v := n.GetNodeVariableName(); v != "" {
		customNode := strings.TrimSpace(os.Getenv(v))
		if customNode != "" {
			res = append(res, Node{Name: "custom-node", URL: customNode})
		}
	}
	names := make([]string, 0, len(n.GetDefaultNodes()))
	for name := range n.GetDefaultNodes() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		res = append(res, Node{Name: name, URL: n.GetDefaultNodes()[name]})
	}
	return res
}
