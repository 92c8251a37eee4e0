// Package ethtest serves an in-process JSON-RPC backend that answers the
// handful of methods a wallet session needs: chain id, accounts and the ENS
// registry/resolver calls. Tests dial it with rpc.DialInProc or mount
// Server() on an httptest server.
package ethtest

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ebbieaden/ensdapp/networks"
	"github.com/ebbieaden/ensdapp/provider"
)

// ResolverAddress is where the backend pretends the public resolver lives.
var ResolverAddress = common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")

type Backend struct {
	mu sync.Mutex

	Registry common.Address

	chainID     uint64
	accounts    []common.Address
	requestErr  error
	callErr     error
	withResolve map[common.Hash]bool
	names       map[common.Hash]string
	addrs       map[common.Hash]common.Address
	calls       map[string]int

	server *rpc.Server
}

func NewBackend(chainID uint64) *Backend {
	b := &Backend{
		Registry:    networks.ENSRegistryAddress,
		chainID:     chainID,
		withResolve: map[common.Hash]bool{},
		names:       map[common.Hash]string{},
		addrs:       map[common.Hash]common.Address{},
		calls:       map[string]int{},
		server:      rpc.NewServer(),
	}
	if err := b.server.RegisterName("eth", &ethService{b}); err != nil {
		panic(err)
	}
	return b
}

func (b *Backend) SetChainID(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chainID = id
}

func (b *Backend) SetAccounts(accs ...common.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts = accs
}

// RejectRequests makes eth_requestAccounts fail with err, the way a wallet
// does when the user dismisses the connection request.
func (b *Backend) RejectRequests(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requestErr = err
}

// FailCalls makes every eth_call fail with err.
func (b *Backend) FailCalls(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callErr = err
}

// SetReverseRecord sets the name stored in the reverse record of addr
// without touching the forward record of name.
func (b *Backend) SetReverseRecord(addr common.Address, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	node := provider.NameHash(provider.ReverseName(addr))
	b.withResolve[node] = true
	b.names[node] = name
}

// SetAddressRecord points name at addr.
func (b *Backend) SetAddressRecord(name string, addr common.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	node := provider.NameHash(provider.NormalizeName(name))
	b.withResolve[node] = true
	b.addrs[node] = addr
}

// SetPrimaryName sets both the reverse and the forward record, which is what
// a properly configured primary name looks like.
func (b *Backend) SetPrimaryName(addr common.Address, name string) {
	b.SetReverseRecord(addr, name)
	b.SetAddressRecord(name, addr)
}

// Calls returns how many times method was served, e.g. "eth_chainId".
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

func (b *Backend) Server() *rpc.Server {
	return b.server
}

func (b *Backend) Dial() *rpc.Client {
	return rpc.DialInProc(b.server)
}

// External returns a raw provider handle backed by an in-process client.
func (b *Backend) External() provider.External {
	return provider.FromRPC(b.Dial())
}

func (b *Backend) count(method string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[method]++
}

type CallArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
}

func (a CallArgs) payload() []byte {
	if a.Input != nil {
		return *a.Input
	}
	if a.Data != nil {
		return *a.Data
	}
	return nil
}

type ethService struct {
	b *Backend
}

func (s *ethService) ChainId() (*hexutil.Big, error) {
	s.b.count("eth_chainId")
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return (*hexutil.Big)(new(big.Int).SetUint64(s.b.chainID)), nil
}

func (s *ethService) Accounts() ([]common.Address, error) {
	s.b.count("eth_accounts")
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return append([]common.Address{}, s.b.accounts...), nil
}

func (s *ethService) RequestAccounts() ([]common.Address, error) {
	s.b.count("eth_requestAccounts")
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.b.requestErr != nil {
		return nil, s.b.requestErr
	}
	return append([]common.Address{}, s.b.accounts...), nil
}

func (s *ethService) Call(args CallArgs, block string) (hexutil.Bytes, error) {
	s.b.count("eth_call")
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.b.callErr != nil {
		return nil, s.b.callErr
	}
	if args.To == nil {
		return nil, fmt.Errorf("contract creation is not supported")
	}

	var contractABI abi.ABI
	switch *args.To {
	case s.b.Registry:
		contractABI = provider.RegistryABI
	case ResolverAddress:
		contractABI = provider.ResolverABI
	default:
		// no code at that address
		return hexutil.Bytes{}, nil
	}

	data := args.payload()
	if len(data) < 4 {
		return nil, fmt.Errorf("execution reverted")
	}
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted")
	}
	inputs, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	node := common.Hash(inputs[0].([32]byte))

	var out []byte
	switch method.Name {
	case "resolver":
		resolver := common.Address{}
		if s.b.withResolve[node] {
			resolver = ResolverAddress
		}
		out, err = method.Outputs.Pack(resolver)
	case "name":
		out, err = method.Outputs.Pack(s.b.names[node])
	case "addr":
		out, err = method.Outputs.Pack(s.b.addrs[node])
	}
	return out, err
}
