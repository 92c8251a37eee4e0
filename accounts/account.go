package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	logging "github.com/ipfs/go-log/v2"
	"github.com/sahilm/fuzzy"
)

var log = logging.Logger("accounts")

var ErrAccountNotFound = errors.New("no account found")

const (
	KindKeystore = "keystore"
	KindLedger   = "ledger"
	KindTrezor   = "trezor"
)

// AccDesc describes a registered wallet. Hardware wallets carry the
// derivation path of the account, keystores the path of the key file.
type AccDesc struct {
	Address string
	Kind    string
	Keypath string
	Derpath string
	Desc    string
}

// Store keeps one json file per account in its directory, named after the
// account's address.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) StoreAccountRecord(accDesc AccDesc) (string, error) {
	if !common.IsHexAddress(accDesc.Address) {
		return "", fmt.Errorf("'%s' is not an address", accDesc.Address)
	}
	accDesc.Address = common.HexToAddress(accDesc.Address).Hex()
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s.json", accDesc.Address))
	content, err := json.MarshalIndent(accDesc, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, content, 0644)
}

// GetAccounts returns every readable record, sorted by address. Broken
// records are logged and skipped.
func (s *Store) GetAccounts() []AccDesc {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		log.Warnf("getting accounts failed: %s", err)
		return nil
	}
	result := []AccDesc{}
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			log.Warnf("reading account description %s failed: %s, ignored", p, err)
			continue
		}
		desc := AccDesc{}
		if err = json.Unmarshal(content, &desc); err != nil {
			log.Warnf("parsing account description %s failed: %s, ignored", p, err)
			continue
		}
		result = append(result, desc)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})
	return result
}

// GetAccount returns the best fuzzy match of input among the records of the
// given kinds. No kinds means any kind.
func (s *Store) GetAccount(input string, kinds ...string) (AccDesc, error) {
	source := FuzzySource{}
	for _, acc := range s.GetAccounts() {
		if len(kinds) == 0 || contains(kinds, acc.Kind) {
			source = append(source, acc)
		}
	}
	matches := fuzzy.FindFrom(strings.Replace(input, " ", "_", -1), source)
	if len(matches) == 0 {
		return AccDesc{}, fmt.Errorf("'%s': %w", input, ErrAccountNotFound)
	}
	return source[matches[0].Index], nil
}

type keystoreFile struct {
	Address string `json:"address"`
}

// VerifyKeystore reads the address a keystore file claims to hold without
// decrypting it.
func VerifyKeystore(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	k := &keystoreFile{}
	if err = json.Unmarshal(content, k); err != nil {
		return "", err
	}
	address := "0x" + strings.TrimPrefix(k.Address, "0x")
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%s doesn't look like a keystore", path)
	}
	return common.HexToAddress(address).Hex(), nil
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
