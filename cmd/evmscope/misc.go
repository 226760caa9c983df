package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/evmscope/evmscope/internal/convert"
	"github.com/evmscope/evmscope/internal/service"
)

const (
	flagInputType = "input-type"
	flagFrom      = "from"
	flagTo        = "to"
)

func init() {
	rootCmd.AddCommand(newKeccakCmd())
	rootCmd.AddCommand(newConvertCmd())
}

func newKeccakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keccak [values...]",
		Short: "compute the Keccak-256 digest of one or more values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputType, err := cmd.Flags().GetString(flagInputType)
			if err != nil {
				return err
			}
			digest, err := service.Keccak(args, inputType)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"digest": digest})
		},
	}
	cmd.Flags().String(flagInputType, "text", "text, hex, or bytes")
	return cmd
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [value]",
		Short: "convert a signed integer between hex, dec, human, wei, gwei, and eth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := cmd.Flags().GetString(flagFrom)
			if err != nil {
				return err
			}
			to, err := cmd.Flags().GetString(flagTo)
			if err != nil {
				return err
			}
			decimals, err := cmd.Flags().GetInt(flagDecimals)
			if err != nil {
				return err
			}
			result, err := service.Convert(args[0], convert.Unit(strings.ToLower(from)), convert.Unit(strings.ToLower(to)), decimals)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().String(flagFrom, "dec", "source unit: hex, dec, human, wei, gwei, eth")
	cmd.Flags().String(flagTo, "human", "destination unit: hex, dec, human, wei, gwei, eth")
	cmd.Flags().Int(flagDecimals, 18, "decimal scale for wei/gwei/eth/human conversions")
	return cmd
}
