package networks

import (
	"github.com/ethereum/go-ethereum/common"
)

type Network interface {
	GetName() string
	GetDisplayName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64

	GetNodeVariableName() string
	GetDefaultNodes() map[string]string

	// GetENSRegistry returns the zero address when the network has no ENS
	// deployment.
	GetENSRegistry() common.Address

	MarshalJSON() ([]byte, error)
}
