// Package config layers the settings of ensdapp: built-in defaults, then the
// TOML file, then ENSDAPP_* environment variables. Command line flags are
// applied last by the cmd package.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	logging "github.com/ipfs/go-log/v2"
	"github.com/mitchellh/go-homedir"
)

var log = logging.Logger("config")

const (
	EnvPrefix      = "ENSDAPP_"
	DefaultDataDir = "~/.ensdapp"
	FileName       = "config.toml"
)

type Config struct {
	// DataDir holds custom networks, registered wallets and the cache.
	DataDir string `toml:"data_dir" env:"DATA_DIR"`
	Network string `toml:"network" env:"NETWORK"`
	// Connector preselects a wallet. Empty offers every configured wallet.
	Connector       string `toml:"connector" env:"CONNECTOR"`
	InjectedURL     string `toml:"injected_url" env:"INJECTED_URL"`
	DisableInjected bool   `toml:"disable_injected" env:"DISABLE_INJECTED"`
	CacheProvider   bool   `toml:"cache_provider" env:"CACHE_PROVIDER"`
	// Node overrides the network's nodes for local wallets and lookups.
	Node           string        `toml:"node" env:"NODE"`
	Keystore       string        `toml:"keystore" env:"KEYSTORE"`
	From           string        `toml:"from" env:"FROM"`
	DerivationPath string        `toml:"derivation_path" env:"DERIVATION_PATH"`
	Timeout        time.Duration `toml:"timeout" env:"TIMEOUT"`
	LogLevel       string        `toml:"log_level" env:"LOG_LEVEL"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:       DefaultDataDir,
		Network:       "goerli",
		CacheProvider: true,
		LogLevel:      "error",
	}
}

// DefaultPath is config.toml inside the default data dir.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir, FileName)
}

// Load reads the config file at path on top of the defaults and applies the
// environment. An empty path means DefaultPath, which may be missing; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("expand config path: %w", err)
	}

	meta, err := toml.DecodeFile(expanded, &cfg)
	switch {
	case err == nil:
		for _, key := range meta.Undecoded() {
			log.Warnw("unknown config key", "file", expanded, "key", key.String())
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		log.Debugw("no config file", "file", expanded)
	default:
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.DataDir, err = homedir.Expand(strings.TrimSpace(cfg.DataDir))
	if err != nil {
		return Config{}, fmt.Errorf("expand data dir: %w", err)
	}
	cfg.Network = strings.TrimSpace(cfg.Network)
	return cfg, nil
}

func (c Config) NetworksDir() string {
	return filepath.Join(c.DataDir, "networks")
}

func (c Config) WalletsDir() string {
	return filepath.Join(c.DataDir, "wallets")
}

func (c Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache.json")
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes c to path, creating its directory.
func (c Config) Save(path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return err
	}
	f, err := os.Create(expanded)
	if err != nil {
		return err
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
