// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads hook miner settings from a file, DEXHOOKS_ environment
// variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/luxfi/dexhooks/hooks"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "DEXHOOKS"

// Keys
const (
	DeployerKey      = "deployer"
	InitCodeHashKey  = "init-code-hash"
	PermissionsKey   = "permissions"
	MaxIterationsKey = "max-iterations"
	LogLevelKey      = "log-level"
)

const (
	defaultMaxIterations uint64 = 1 << 24
	defaultLogLevel             = "info"
)

var (
	ErrInvalidDeployer      = errors.New("invalid deployer address")
	ErrInvalidInitCodeHash  = errors.New("invalid init code hash")
	ErrInvalidMaxIterations = errors.New("max iterations must be positive")
	ErrInvalidLogLevel      = errors.New("invalid log level")
)

// Config describes one mining run
type Config struct {
	Deployer      string   `json:"deployer" mapstructure:"deployer"`
	InitCodeHash  string   `json:"initCodeHash" mapstructure:"init-code-hash"`
	Permissions   []string `json:"permissions" mapstructure:"permissions"`
	MaxIterations uint64   `json:"maxIterations" mapstructure:"max-iterations"`
	LogLevel      string   `json:"logLevel" mapstructure:"log-level"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault(MaxIterationsKey, defaultMaxIterations)
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(PermissionsKey, []string{})
}

// BindFlags adds a flag for every key to fs and binds it to v
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String(DeployerKey, "", "address of the deploying contract")
	fs.String(InitCodeHashKey, "", "32-byte hash of the hook's init code")
	fs.StringSlice(PermissionsKey, nil, "permissions the hook address must encode, e.g. beforeSwap,afterSwap")
	fs.Uint64(MaxIterationsKey, defaultMaxIterations, "number of salts to try before giving up")
	fs.String(LogLevelKey, defaultLogLevel, "log level (debug, info, warn, error)")
	return v.BindPFlags(fs)
}

// Load reads the config file, if any, then the environment, and verifies
// the result. Flags bound with BindFlags take precedence over both.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Verify(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Verify checks every field
func (c Config) Verify() error {
	if !common.IsHexAddress(c.Deployer) {
		return fmt.Errorf("%w: %q", ErrInvalidDeployer, c.Deployer)
	}
	if _, err := c.CodeHash(); err != nil {
		return err
	}
	if _, err := c.Flags(); err != nil {
		return err
	}
	if c.MaxIterations == 0 {
		return ErrInvalidMaxIterations
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}

// DeployerAddress returns the deployer as an address
func (c Config) DeployerAddress() common.Address {
	return common.HexToAddress(c.Deployer)
}

// CodeHash decodes the init code hash
func (c Config) CodeHash() (common.Hash, error) {
	raw, err := hexutil.Decode(c.InitCodeHash)
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %q", ErrInvalidInitCodeHash, c.InitCodeHash)
	}
	return common.BytesToHash(raw), nil
}

// Flags combines the named permissions into a bitmap
func (c Config) Flags() (hooks.Flags, error) {
	var flags hooks.Flags
	for _, name := range c.Permissions {
		flag, err := hooks.FlagByName(strings.TrimSpace(name))
		if err != nil {
			return 0, err
		}
		flags |= flag
	}
	return flags, nil
}

// Logger builds a production zap logger at the configured level
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
