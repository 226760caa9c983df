package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evmscope/evmscope/internal/service"
)

const (
	flagBlockTag = "block"
	flagData     = "data"
	flagFunction = "function"
	flagArgs     = "args"
	flagDecimals = "decimals"
)

func init() {
	rootCmd.AddCommand(newGetStorageAtCmd())
	rootCmd.AddCommand(newCallFunctionCmd())
	rootCmd.AddCommand(newEncodeFunctionDataCmd())
}

func newGetStorageAtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-storage-at [address] [slot]",
		Short: "read a raw 32-byte storage word",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFlag(cmd)
			if err != nil {
				return err
			}
			block, err := cmd.Flags().GetString(flagBlockTag)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			val, err := s.GetStorageAt(context.Background(), args[0], args[1], network, block)
			if err != nil {
				return err
			}
			return printJSON(val)
		},
	}
	cmd.Flags().String(flagBlockTag, "latest", "block number, hex, or tag (latest/earliest/pending)")
	return cmd
}

// parseCallArgs splits a comma-separated arg list into values. Each
// value is passed through to the ABI encoder as a string; the encoder
// coerces numeric and boolean types from their string forms.
func parseCallArgs(raw string) []any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func newCallFunctionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call-function [address]",
		Short: "perform a read-only eth_call, optionally encoding a function+args",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFlag(cmd)
			if err != nil {
				return err
			}
			block, err := cmd.Flags().GetString(flagBlockTag)
			if err != nil {
				return err
			}
			data, err := cmd.Flags().GetString(flagData)
			if err != nil {
				return err
			}
			function, err := cmd.Flags().GetString(flagFunction)
			if err != nil {
				return err
			}
			rawArgs, err := cmd.Flags().GetString(flagArgs)
			if err != nil {
				return err
			}
			decimalsFlag, err := cmd.Flags().GetString(flagDecimals)
			if err != nil {
				return err
			}
			hint, err := parseDecimalsHint(decimalsFlag)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			result, err := s.CallFunction(context.Background(), args[0], data, network, block, function, parseCallArgs(rawArgs), hint)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().String(flagBlockTag, "latest", "block number, hex, or tag (latest/earliest/pending)")
	cmd.Flags().String(flagData, "", "raw calldata (0x-prefixed, at least a 4-byte selector)")
	cmd.Flags().String(flagFunction, "", `function signature, e.g. "balanceOf(address)"`)
	cmd.Flags().String(flagArgs, "", "comma-separated positional arguments for --function")
	cmd.Flags().String(flagDecimals, "", "decimals hint applied to numeric outputs (a single integer)")
	return cmd
}

// parseDecimalsHint accepts an empty string (no hint) or a plain
// integer, applied to every numeric output.
func parseDecimalsHint(raw string) (service.DecimalsHint, error) {
	if strings.TrimSpace(raw) == "" {
		return service.DecimalsHint{}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return service.DecimalsHint{}, err
	}
	return service.DecimalsHint{Global: &n}, nil
}

func newEncodeFunctionDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode-function-data [function]",
		Short: "ABI-encode a function signature and positional arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawArgs, err := cmd.Flags().GetString(flagArgs)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			selector, data, err := s.EncodeFunctionData(args[0], parseCallArgs(rawArgs))
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"function": args[0], "selector": selector, "data": data})
		},
	}
	cmd.Flags().String(flagArgs, "", "comma-separated positional arguments")
	return cmd
}
