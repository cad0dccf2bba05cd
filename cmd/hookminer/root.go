// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/luxfi/geth/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/luxfi/dexhooks/config"
	"github.com/luxfi/dexhooks/hooks"
)

const configFlag = "config"

// NewRootCmd builds the hookminer command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hookminer",
		Short:        "Mine and inspect hook addresses",
		SilenceUsage: true,
	}
	root.PersistentFlags().String(configFlag, "", "path to a config file (json, yaml or toml)")

	root.AddCommand(newMineCmd(), newDecodeCmd())
	return root
}

// MineResult is printed by the mine command
type MineResult struct {
	Address     common.Address `json:"address"`
	Salt        common.Hash    `json:"salt"`
	Flags       string         `json:"flags"`
	Permissions []string       `json:"permissions"`
}

func newMineCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Find a salt whose deployment address encodes the requested permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := cmd.Flags().GetString(configFlag)
			if err != nil {
				return err
			}
			cfg, err := config.Load(v, file)
			if err != nil {
				return err
			}
			log, err := cfg.Logger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			flags, err := cfg.Flags()
			if err != nil {
				return err
			}
			codeHash, err := cfg.CodeHash()
			if err != nil {
				return err
			}

			log.Info("mining salt",
				zap.Stringer("deployer", cfg.DeployerAddress()),
				zap.Stringer("flags", flags),
				zap.Uint64("maxIterations", cfg.MaxIterations),
			)
			start := time.Now()
			addr, salt, err := hooks.MineSalt(cmd.Context(), cfg.DeployerAddress(), codeHash, flags, cfg.MaxIterations)
			if err != nil {
				log.Error("mining failed", zap.Error(err))
				return err
			}
			log.Info("salt found", zap.Stringer("address", addr), zap.Duration("elapsed", time.Since(start)))

			return writeJSON(cmd.OutOrStdout(), MineResult{
				Address:     addr,
				Salt:        common.Hash(salt),
				Flags:       flags.String(),
				Permissions: flags.Names(),
			})
		},
	}
	if err := config.BindFlags(cmd.Flags(), v); err != nil {
		panic(err)
	}
	return cmd
}

// DecodeResult is printed by the decode command
type DecodeResult struct {
	Address       common.Address `json:"address"`
	Flags         string         `json:"flags"`
	Permissions   []string       `json:"permissions"`
	ValidStatic   bool           `json:"validStaticFee"`
	ValidDynamic  bool           `json:"validDynamicFee"`
	LayoutVersion int            `json:"layoutVersion"`
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <address>",
		Short: "Print the permissions encoded in a hook address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(args[0]) {
				return fmt.Errorf("%q is not an address", args[0])
			}
			addr := common.HexToAddress(args[0])
			flags := hooks.FlagsFromAddress(addr)

			return writeJSON(cmd.OutOrStdout(), DecodeResult{
				Address:       addr,
				Flags:         flags.String(),
				Permissions:   flags.Names(),
				ValidStatic:   hooks.IsValidHookAddress(addr, 3000),
				ValidDynamic:  hooks.IsValidHookAddress(addr, hooks.DynamicFeeFlag),
				LayoutVersion: hooks.LayoutVersion,
			})
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
