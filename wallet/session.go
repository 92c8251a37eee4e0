// Package wallet drives a single wallet connection: it asks a connector for
// a provider, refuses any network but the required one, and resolves what to
// call the connected account.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/ebbieaden/ensdapp/networks"
	"github.com/ebbieaden/ensdapp/provider"
)

var log = logging.Logger("wallet")

var ErrWrongNetwork = errors.New("wrong network")

// Connector performs the wallet handshake and hands out the raw provider.
type Connector interface {
	Connect(ctx context.Context) (provider.External, error)
}

// Alerter shows a notification the user must acknowledge.
type Alerter interface {
	Alert(format string, args ...any)
}

// Policy is the network every connection must be on.
type Policy struct {
	ChainID     uint64
	DisplayName string
}

func PolicyFor(n networks.Network) Policy {
	return Policy{ChainID: n.GetChainID(), DisplayName: n.GetDisplayName()}
}

// Session owns one wallet connection for the life of the process.
type Session struct {
	newConnector func() (Connector, error)
	policy       Policy
	alerter      Alerter
	providerOpts []provider.Option

	// connector is built on the first Connect and reused afterwards.
	connector Connector

	mu       sync.Mutex
	state    State
	reason   Reason
	err      error
	identity Identity
	raw      provider.External
}

type Option func(*Session)

// WithProviderOptions is passed to provider.New for every connection.
func WithProviderOptions(opts ...provider.Option) Option {
	return func(s *Session) {
		s.providerOpts = append(s.providerOpts, opts...)
	}
}

func NewSession(newConnector func() (Connector, error), policy Policy, alerter Alerter, opts ...Option) *Session {
	s := &Session{
		newConnector: newConnector,
		policy:       policy,
		alerter:      alerter,
		state:        Disconnected,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect runs the handshake unless one is already running or has already
// succeeded, in which case it returns nil right away. Only the wrong network
// failure is shown to the user; every other failure is logged.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state == Connecting || s.state == Connected {
		s.mu.Unlock()
		return nil
	}
	s.state = Connecting
	s.reason = ReasonNone
	s.err = nil
	s.identity = Identity{}
	s.mu.Unlock()

	attempt := uuid.NewString()
	log.Debugw("connecting wallet", "attempt", attempt)

	raw, identity, err := s.handshake(ctx)
	if err != nil {
		if raw != nil {
			raw.Close()
		}
		return s.fail(attempt, err)
	}

	s.mu.Lock()
	s.state = Connected
	s.identity = identity
	s.raw = raw
	s.mu.Unlock()

	log.Infow("wallet connected", "attempt", attempt, "identity", identity.Display())
	return nil
}

func (s *Session) handshake(ctx context.Context) (provider.External, Identity, error) {
	if s.connector == nil {
		c, err := s.newConnector()
		if err != nil {
			return nil, Identity{}, fmt.Errorf("couldn't set up wallet connector: %w", err)
		}
		s.connector = c
	}

	raw, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, Identity{}, err
	}
	p := provider.New(raw, s.providerOpts...)

	network, err := p.Network(ctx)
	if err != nil {
		return raw, Identity{}, err
	}
	if network.ChainID != s.policy.ChainID {
		return raw, Identity{}, fmt.Errorf(
			"%w: connected to chain %d, need %s (chain %d)",
			ErrWrongNetwork, network.ChainID, s.policy.DisplayName, s.policy.ChainID,
		)
	}

	address, err := p.Signer().Address(ctx)
	if err != nil {
		return raw, Identity{}, err
	}
	identity, err := resolveIdentity(ctx, p, address)
	if err != nil {
		return raw, Identity{}, err
	}
	return raw, identity, nil
}

func (s *Session) fail(attempt string, err error) error {
	reason := ReasonUnknown
	if errors.Is(err, ErrWrongNetwork) {
		reason = ReasonWrongNetwork
	}

	s.mu.Lock()
	s.state = Failed
	s.reason = reason
	s.err = err
	s.mu.Unlock()

	if reason == ReasonWrongNetwork {
		log.Warnw("wallet is on the wrong network", "attempt", attempt, "err", err)
		s.alerter.Alert("Change the network to %s", s.policy.DisplayName)
	} else {
		log.Errorw("couldn't connect wallet", "attempt", attempt, "err", err)
	}
	return err
}

// resolveIdentity prefers the address's ENS name and falls back to the
// address itself.
func resolveIdentity(ctx context.Context, p *provider.Provider, address common.Address) (Identity, error) {
	name, err := p.LookupAddress(ctx, address)
	if err != nil {
		return Identity{}, err
	}
	if name != "" {
		return Identity{Name: name}, nil
	}
	return Identity{Address: address.Hex()}, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reason is ReasonNone unless the session is Failed.
func (s *Session) Reason() Reason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Close releases the provider of the current connection, if any.
func (s *Session) Close() {
	s.mu.Lock()
	raw := s.raw
	s.raw = nil
	s.mu.Unlock()
	if raw != nil {
		raw.Close()
	}
}
