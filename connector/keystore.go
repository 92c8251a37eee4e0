package connector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/mitchellh/go-homedir"

	"github.com/ebbieaden/ensdapp/accounts"
	"github.com/ebbieaden/ensdapp/provider"
	"github.com/ebbieaden/ensdapp/ui"
)

type keystoreWallet struct {
	path     string
	from     string
	accounts *accounts.Store
	ui       ui.UI
	dialer   *nodeDialer
}

func (w *keystoreWallet) Name() string {
	return Keystore
}

func (w *keystoreWallet) keyPath() (string, error) {
	if w.path != "" {
		return homedir.Expand(w.path)
	}
	if w.accounts == nil {
		return "", errors.New("no keystore given")
	}
	acc, err := w.accounts.GetAccount(w.from, accounts.KindKeystore)
	if err != nil {
		return "", err
	}
	w.ui.Interpret(fmt.Sprintf("%s (%s)", acc.Address, acc.Desc))
	return homedir.Expand(acc.Keypath)
}

// Connect unlocks the keystore with a passphrase from the user. The
// decrypted key only proves the user controls the account; it is dropped
// right away.
func (w *keystoreWallet) Connect(ctx context.Context) (provider.External, error) {
	path, err := w.keyPath()
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	w.ui.Info("Using keystore: %s", path)
	pwd := w.ui.Secret(fmt.Sprintf("Passphrase for %s", filepath.Base(path)))
	key, err := keystore.DecryptKey(content, pwd)
	if err != nil {
		return nil, fmt.Errorf("unlocking keystore '%s' failed: %w", path, err)
	}
	address := key.Address
	key.PrivateKey.D.SetUint64(0)

	client, err := w.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	return &localExternal{client: client, address: address}, nil
}
