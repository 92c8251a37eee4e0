package networks

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
)

// ENSRegistryAddress is the canonical ENS registry shared by mainnet and the
// public Ethereum testnets.
var ENSRegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

type GenericNetworkConfig struct {
	Name               string            `json:"name"`
	DisplayName        string            `json:"display_name"`
	AlternativeNames   []string          `json:"alternative_names"`
	ChainID            uint64            `json:"chain_id"`
	NativeTokenSymbol  string            `json:"native_token_symbol"`
	NativeTokenDecimal uint64            `json:"native_token_decimal"`
	NodeVariableName   string            `json:"node_variable_name"`
	DefaultNodes       map[string]string `json:"default_nodes"`
	ENSRegistry        common.Address    `json:"ens_registry"`
}

// GenericNetwork is a Network fully described by its config, which is what
// both the built-in networks and the custom json networks use.
type GenericNetwork struct {
	config GenericNetworkConfig
}

func NewGenericNetwork(config GenericNetworkConfig) *GenericNetwork {
	return &GenericNetwork{config: config}
}

func (gn *GenericNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericNetwork) GetDisplayName() string {
	if gn.config.DisplayName == "" {
		return gn.config.Name
	}
	return gn.config.DisplayName
}

func (gn *GenericNetwork) GetChainID() uint64 {
	return gn.config.ChainID
}

func (gn *GenericNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericNetwork) GetNativeTokenSymbol() string {
	return gn.config.NativeTokenSymbol
}

func (gn *GenericNetwork) GetNativeTokenDecimal() uint64 {
	return gn.config.NativeTokenDecimal
}

func (gn *GenericNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

func (gn *GenericNetwork) GetENSRegistry() common.Address {
	return gn.config.ENSRegistry
}

func (gn *GenericNetwork) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(gn.config, "", "  ")
}
