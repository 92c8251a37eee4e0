package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	gethaccounts "github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/ebbieaden/ensdapp/accounts"
	"github.com/ebbieaden/ensdapp/connector"
	"github.com/ebbieaden/ensdapp/ui"
)

const (
	TREZOR_BASE_PATH      string = "m/44'/60'/0'/0/%d"
	LEDGER_LIVE_BASE_PATH string = "m/44'/60'/%d'/0/0"
	LEDGER_BASE_PATH      string = "m/44'/60'/0'/%d"

	WALLET_PAGING int = 5
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage your wallets",
	Long:  ``,
}

// HW derives accounts on a hardware wallet.
type HW interface {
	Derive(path gethaccounts.DerivationPath, pin bool) (gethaccounts.Account, error)
}

func getAccDescFromHW(u ui.UI, hw HW, kind string, path string) (*accounts.AccDesc, error) {
	p, err := gethaccounts.ParseDerivationPath(path)
	if err != nil {
		u.Error("Can't parse your %s path, %s", kind, err)
		return nil, err
	}
	acc, err := hw.Derive(p, false)
	if err != nil {
		u.Error("Can't read/derive your %s to get wallets, %s. Please check if your %s is unlocked.", kind, err, kind)
		return nil, err
	}
	return &accounts.AccDesc{
		Address: acc.Address.Hex(),
		Kind:    kind,
		Derpath: p.String(),
	}, nil
}

// handleHW pages through the device's accounts until the user picks one and
// stores it under kind.
func handleHW(u ui.UI, store *accounts.Store, hw HW, kind string, pathTemplate string) error {
	var accDesc *accounts.AccDesc
	batch := 0
	for {
		accs := []*accounts.AccDesc{}
		for i := 0; i < WALLET_PAGING; i++ {
			path := fmt.Sprintf(pathTemplate, batch*WALLET_PAGING+i)
			acc, err := getAccDescFromHW(u, hw, kind, path)
			if err != nil {
				return err
			}
			accs = append(accs, acc)
		}
		for i, acc := range accs {
			u.Info("%d. %s (%s)", i, acc.Address, acc.Derpath)
		}

		index := PromptIndex(u, "Please enter the wallet index you want to add (0, 1, 2,..., next, back, custom)", 0, len(accs)-1)
		if index == ABORT {
			return errInputClosed
		} else if index == NEXT {
			batch += 1
			continue
		} else if index == BACK {
			if batch > 0 {
				batch -= 1
			} else {
				u.Warn("It can't be back. Continue with path 0")
			}
			continue
		} else if index == CUSTOM {
			path := PromptInput(u, "Please enter custom derivation path (eg: m/44'/60'/0'/88)")
			var err error
			accDesc, err = getAccDescFromHW(u, hw, kind, path)
			if err != nil {
				return err
			}
			u.Interpret(fmt.Sprintf("%s (%s)", accDesc.Address, accDesc.Derpath))
		} else {
			accDesc = accs[index]
		}
		return storeWallet(u, store, accDesc)
	}
}

func storeWallet(u ui.UI, store *accounts.Store, accDesc *accounts.AccDesc) error {
	accDesc.Desc = PromptInput(u, "Please enter description of this wallet, it will be used to search your wallet by keywords")
	path, err := store.StoreAccountRecord(*accDesc)
	if err != nil {
		u.Error("Couldn't store your wallet info: %s. Abort.", err)
		return err
	}
	u.Success("Created %s to store the wallet info.", path)
	u.Info("Your wallet is added successfully. You can check your list of wallets using the following command:\n> ensdapp wallet list")
	return nil
}

func handleHardware(u ui.UI, store *accounts.Store, keyType string) error {
	kind := keyType
	pathTemplate := TREZOR_BASE_PATH
	switch keyType {
	case "ledger":
		pathTemplate = LEDGER_BASE_PATH
	case "ledger-live":
		kind = accounts.KindLedger
		pathTemplate = LEDGER_LIVE_BASE_PATH
	}
	dev, err := connector.OpenDevice(u, kind)
	if err != nil {
		u.Error("%s", err)
		return err
	}
	defer dev.Close()
	return handleHW(u, store, dev, kind, pathTemplate)
}

func handleAddKeystoreGivenPath(u ui.UI, store *accounts.Store, keystorePath string) error {
	keystorePath, err := homedir.Expand(keystorePath)
	if err != nil {
		return err
	}
	address, err := accounts.VerifyKeystore(keystorePath)
	if err != nil {
		u.Error("Keystore path verification failed. %s. Abort.", err)
		return err
	}
	u.Info("This keystore is with %s", address)
	return storeWallet(u, store, &accounts.AccDesc{
		Address: address,
		Kind:    accounts.KindKeystore,
		Keypath: keystorePath,
	})
}

func handleAddKeystore(u ui.UI, store *accounts.Store) error {
	u.Warn("Keystore is convenient but not so safe. I recommend you to use it only for unimportant frequent tasks.")
	return handleAddKeystoreGivenPath(u, store, PromptInput(u, "Please enter the path to your keystore file"))
}

// handleAddPrivateKey encrypts a private key into a keystore under the data
// dir and registers that keystore.
func handleAddPrivateKey(u ui.UI, store *accounts.Store, keystoreDir string) error {
	u.Warn("Storing plain private key is NOT secure. Let's encrypt it to a Keystore.")
	privHex := u.Secret("Private key in hex format")
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privHex), "0x"))
	if err != nil {
		u.Error("That is not a private key: %s. Abort.", err)
		return err
	}
	passphrase := u.Secret("Passphrase to encrypt the private key")
	ks := keystore.NewKeyStore(keystoreDir, keystore.StandardScryptN, keystore.StandardScryptP)
	acc, err := ks.ImportECDSA(priv, passphrase)
	if err != nil {
		u.Error("Private key encryption failed: %s. Abort.", err)
		return err
	}
	u.Success("Stored encrypted private key at %s.", acc.URL.Path)
	return handleAddKeystoreGivenPath(u, store, acc.URL.Path)
}

func addWallet(u ui.UI, store *accounts.Store, keystoreDir string) error {
	keyType := PromptInput(u, "Enter key type (enter either trezor, ledger, ledger-live, keystore or privatekey):")
	switch keyType {
	case "trezor", "ledger", "ledger-live":
		return handleHardware(u, store, keyType)
	case "keystore":
		return handleAddKeystore(u, store)
	case "privatekey":
		return handleAddPrivateKey(u, store, keystoreDir)
	}
	err := fmt.Errorf("key type %s is not supported", keyType)
	u.Error("%s. Abort.", err)
	return err
}

var addWalletCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a wallet to ensdapp",
	RunE: func(cmd *cobra.Command, args []string) error {
		return addWallet(appUI, accounts.NewStore(cfg.WalletsDir()), filepath.Join(cfg.DataDir, "keystores"))
	},
}

func listWallets(u ui.UI, store *accounts.Store) {
	accs := store.GetAccounts()
	u.Info("You have %d wallets:", len(accs))
	rows := make([][]string, 0, len(accs))
	for i, acc := range accs {
		location := acc.Keypath
		if acc.Kind != accounts.KindKeystore {
			location = acc.Derpath
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), acc.Address, acc.Kind, acc.Desc, location})
	}
	u.Table([]string{"#", "Address", "Kind", "Description", "Keystore / Path"}, rows)
	u.Info("If you want to add more wallets to the list, use following command:\n> ensdapp wallet add")
}

var listWalletCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all of your wallets",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		listWallets(appUI, accounts.NewStore(cfg.WalletsDir()))
	},
}

func init() {
	walletCmd.AddCommand(listWalletCmd)
	walletCmd.AddCommand(addWalletCmd)
	rootCmd.AddCommand(walletCmd)
}
