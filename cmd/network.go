package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebbieaden/ensdapp/networks"
)

var (
	NetworkFile  string
	NetworkForce bool
)

var addNetworkCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new network to the supported networks list locally",
	Long: `--file flag takes a network config json filepath OR a json string. The json should be in the following format:
	{
		"name": "network_name",
		"display_name": "Network Name",
		"alternative_names": ["alternative_name_1", "alternative_name_2"],
		"chain_id": 1,
		"native_token_symbol": "ETH",
		"native_token_decimal": 18,
		"node_variable_name": "ENSDAPP_NODE_1",
		"default_nodes": {
			"node_name_1": "node_url_1",
			"node_name_2": "node_url_2"
		},
		"ens_registry": "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"
	}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := networkJSON(strings.TrimSpace(NetworkFile))
		if err != nil {
			return err
		}
		newNetwork, err := networks.NewNetworkFromJSON(content)
		if err != nil {
			return fmt.Errorf("the provided json is not a valid network config: %w", err)
		}

		r, err := networks.Default()
		if err != nil {
			return err
		}
		return addNetwork(r, newNetwork, NetworkForce)
	},
}

// networkJSON takes either inline json or a path to a json file.
func networkJSON(input string) ([]byte, error) {
	if input == "" {
		return nil, fmt.Errorf("pass the network config with --file")
	}
	if strings.HasPrefix(input, "{") && strings.HasSuffix(input, "}") {
		return []byte(input), nil
	}
	content, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the provided json file: %w", err)
	}
	return content, nil
}

func addNetwork(r *networks.Registry, n networks.Network, force bool) error {
	allNames := append([]string{n.GetName()}, n.GetAlternativeNames()...)
	for _, name := range allNames {
		if _, err := r.GetNetwork(name); err == nil {
			if !force {
				return fmt.Errorf("network with name %s already exists. If you want to update the network, use flag --force", name)
			}
			appUI.Warn("Network with name %s already exists. It will be replaced.", name)
		}
	}
	if err := r.AddNetwork(n); err != nil {
		return fmt.Errorf("failed to add the new network: %w", err)
	}
	appUI.Success("Network %s with chain ID %d added and saved to %s.", n.GetName(), n.GetChainID(), cfg.NetworksDir())
	return nil
}

var listNetworkCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all of supported networks",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := networks.Default()
		if err != nil {
			return err
		}
		listNetworks(r)
		return nil
	},
}

func listNetworks(r *networks.Registry) {
	groups := [][][]string{}
	for _, n := range r.GetSupportedNetworks() {
		group := [][]string{}
		for i, node := range networks.GetNodes(n) {
			row := []string{"", "", "", node.Name, node.URL}
			if i == 0 {
				row[0] = n.GetName()
				row[1] = fmt.Sprintf("%d", n.GetChainID())
				row[2] = n.GetENSRegistry().Hex()
			}
			group = append(group, row)
		}
		if len(group) == 0 {
			group = append(group, []string{n.GetName(), fmt.Sprintf("%d", n.GetChainID()), n.GetENSRegistry().Hex(), "", ""})
		}
		groups = append(groups, group)
	}
	appUI.TableWithGroups([]string{"Network", "Chain ID", "ENS registry", "Node", "URL"}, groups)
	appUI.Info("If you want to add more networks to the list, use following command:\n> ensdapp network add --file <json>")
	appUI.Info("If you want to delete a network, just delete the corresponding json file in %s.", cfg.NetworksDir())
}

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage all networks that ensdapp supports",
	Long:  ``,
}

func init() {
	addNetworkCmd.Flags().StringVar(&NetworkFile, "file", "", "Path to the network config json file, or the json itself")
	addNetworkCmd.Flags().BoolVar(&NetworkForce, "force", false, "Replace the network if it already exists")

	networkCmd.AddCommand(listNetworkCmd)
	networkCmd.AddCommand(addNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}
