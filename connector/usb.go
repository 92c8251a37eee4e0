package connector

import (
	"context"
	"errors"
	"fmt"

	gethaccounts "github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/usbwallet"

	"github.com/ebbieaden/ensdapp/accounts"
	"github.com/ebbieaden/ensdapp/provider"
	"github.com/ebbieaden/ensdapp/ui"
)

// usbWallet is a Ledger or Trezor device. The account is derived on the
// device; nothing leaves it but the address.
type usbWallet struct {
	kind     string
	path     gethaccounts.DerivationPath
	from     string
	accounts *accounts.Store
	ui       ui.UI
	dialer   *nodeDialer
	open     func(u ui.UI, kind string) (gethaccounts.Wallet, error)
}

func newUSBWallet(kind string, opt Options, m *Modal) (*usbWallet, error) {
	w := &usbWallet{
		kind:     kind,
		from:     opt.From,
		accounts: m.accounts,
		ui:       m.ui,
		dialer:   m.dialer(opt.URL),
		open:     OpenDevice,
	}
	if opt.DerivationPath != "" || opt.From == "" {
		path, err := parsePath(opt.DerivationPath)
		if err != nil {
			return nil, err
		}
		w.path = path
	}
	return w, nil
}

func parsePath(p string) (gethaccounts.DerivationPath, error) {
	if p == "" {
		p = DefaultDerivationPath
	}
	path, err := gethaccounts.ParseDerivationPath(p)
	if err != nil {
		return nil, fmt.Errorf("can't parse derivation path '%s': %w", p, err)
	}
	return path, nil
}

func (w *usbWallet) Name() string {
	return w.kind
}

func (w *usbWallet) derivationPath() (gethaccounts.DerivationPath, error) {
	if w.path != nil {
		return w.path, nil
	}
	if w.accounts == nil {
		return parsePath("")
	}
	acc, err := w.accounts.GetAccount(w.from, w.kind)
	if err != nil {
		return nil, err
	}
	w.ui.Interpret(fmt.Sprintf("%s (%s)", acc.Address, acc.Desc))
	return parsePath(acc.Derpath)
}

// OpenDevice opens the first Ledger or Trezor attached, asking for the trezor
// PIN and passphrase when the device wants them.
func OpenDevice(u ui.UI, kind string) (gethaccounts.Wallet, error) {
	var hubs []func() (*usbwallet.Hub, error)
	switch kind {
	case Ledger:
		hubs = []func() (*usbwallet.Hub, error){usbwallet.NewLedgerHub}
	case Trezor:
		hubs = []func() (*usbwallet.Hub, error){
			usbwallet.NewTrezorHubWithWebUSB,
			usbwallet.NewTrezorHubWithHID,
		}
	default:
		return nil, fmt.Errorf("'%s' is not a hardware wallet: %w", kind, ErrUnknownWallet)
	}

	dev, err := firstDevice(kind, hubs)
	if err != nil {
		return nil, err
	}
	if err := unlock(u, dev); err != nil {
		return nil, fmt.Errorf("can't unlock your %s: %w", kind, err)
	}
	return dev, nil
}

func firstDevice(kind string, hubs []func() (*usbwallet.Hub, error)) (gethaccounts.Wallet, error) {
	errs := []error{}
	for _, newHub := range hubs {
		hub, err := newHub()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if wallets := hub.Wallets(); len(wallets) > 0 {
			return wallets[0], nil
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("can't establish communication channel to your %s: %w", kind, errors.Join(errs...))
	}
	return nil, fmt.Errorf("%s device is not found", kind)
}

func unlock(u ui.UI, dev gethaccounts.Wallet) error {
	err := dev.Open("")
	if errors.Is(err, usbwallet.ErrTrezorPINNeeded) {
		pin := u.Secret("Trezor PIN (positions as shown on the device)")
		err = dev.Open(pin)
	}
	if errors.Is(err, usbwallet.ErrTrezorPassphraseNeeded) {
		passphrase := u.Secret("Trezor passphrase")
		err = dev.Open(passphrase)
	}
	return err
}

func (w *usbWallet) Connect(ctx context.Context) (provider.External, error) {
	path, err := w.derivationPath()
	if err != nil {
		return nil, err
	}
	dev, err := w.open(w.ui, w.kind)
	if err != nil {
		return nil, err
	}

	w.ui.Info("Confirm on your %s if asked (%s)", w.kind, path.String())
	acc, err := dev.Derive(path, false)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("can't derive %s from your %s: %w", path.String(), w.kind, err)
	}

	client, err := w.dialer.Dial(ctx)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return &localExternal{
		client:  client,
		address: acc.Address,
		release: func() { _ = dev.Close() },
	}, nil
}
