package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	ensRegistryABI = `[{
		"type": "function", "name": "resolver", "stateMutability": "view",
		"inputs": [{"name": "node", "type": "bytes32"}],
		"outputs": [{"name": "", "type": "address"}]
	}]`

	ensResolverABI = `[{
		"type": "function", "name": "name", "stateMutability": "view",
		"inputs": [{"name": "node", "type": "bytes32"}],
		"outputs": [{"name": "", "type": "string"}]
	}, {
		"type": "function", "name": "addr", "stateMutability": "view",
		"inputs": [{"name": "node", "type": "bytes32"}],
		"outputs": [{"name": "", "type": "address"}]
	}]`
)

var (
	RegistryABI = mustParseABI(ensRegistryABI)
	ResolverABI = mustParseABI(ensResolverABI)

	ErrENSNotSupported = errors.New("network does not support ENS")
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// NormalizeName case folds and NFC normalizes an ENS name.
func NormalizeName(name string) string {
	return norm.NFC.String(cases.Fold().String(strings.TrimSpace(name)))
}

// NameHash implements the EIP-137 namehash of an already normalized name.
func NameHash(name string) common.Hash {
	node := common.Hash{}
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = common.BytesToHash(crypto.Keccak256(node.Bytes(), labelHash))
	}
	return node
}

// ReverseName is the name under addr.reverse that holds the primary name of
// addr.
func ReverseName(addr common.Address) string {
	return strings.ToLower(addr.Hex()[2:]) + ".addr.reverse"
}

func (p *Provider) registry() (common.Address, error) {
	if p.ensRegistry == (common.Address{}) {
		return common.Address{}, ErrENSNotSupported
	}
	return p.ensRegistry, nil
}

func (p *Provider) call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("couldn't pack %s: %w", method, err)
	}
	out, err := p.client.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling %s on %s: %w", method, contract.Hex(), err)
	}
	// a call to an address without code returns no data at all
	if len(out) == 0 {
		return nil, nil
	}
	res, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("couldn't unpack %s: %w", method, err)
	}
	return res, nil
}

func (p *Provider) resolver(ctx context.Context, node common.Hash) (common.Address, error) {
	registry, err := p.registry()
	if err != nil {
		return common.Address{}, err
	}
	res, err := p.call(ctx, registry, RegistryABI, "resolver", [32]byte(node))
	if err != nil || len(res) == 0 {
		return common.Address{}, err
	}
	return res[0].(common.Address), nil
}

// LookupAddress returns the primary ENS name of addr, or "" when addr has no
// primary name or the name doesn't resolve back to addr.
func (p *Provider) LookupAddress(ctx context.Context, addr common.Address) (string, error) {
	node := NameHash(ReverseName(addr))
	resolver, err := p.resolver(ctx, node)
	if err != nil {
		return "", fmt.Errorf("looking up resolver of %s: %w", addr.Hex(), err)
	}
	if resolver == (common.Address{}) {
		return "", nil
	}

	res, err := p.call(ctx, resolver, ResolverABI, "name", [32]byte(node))
	if err != nil {
		return "", fmt.Errorf("looking up name of %s: %w", addr.Hex(), err)
	}
	if len(res) == 0 {
		return "", nil
	}
	name := res[0].(string)
	if name == "" {
		return "", nil
	}

	forward, err := p.ResolveName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("verifying %s: %w", name, err)
	}
	if forward != addr {
		log.Debugw("primary name doesn't resolve back", "address", addr.Hex(), "name", name, "resolved", forward.Hex())
		return "", nil
	}
	return name, nil
}

// ResolveName returns the address name points to, or the zero address when
// it has no resolver or no address record.
func (p *Provider) ResolveName(ctx context.Context, name string) (common.Address, error) {
	node := NameHash(NormalizeName(name))
	resolver, err := p.resolver(ctx, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("looking up resolver of %s: %w", name, err)
	}
	if resolver == (common.Address{}) {
		return common.Address{}, nil
	}
	res, err := p.call(ctx, resolver, ResolverABI, "addr", [32]byte(node))
	if err != nil || len(res) == 0 {
		return common.Address{}, err
	}
	return res[0].(common.Address), nil
}
