package main

import (
	"context"

	"github.com/spf13/cobra"
)

const (
	flagInlineLimit = "inline-limit"
	flagForceInline = "force-inline"
	flagFileOffset  = "offset"
	flagFileLength  = "length"
)

func init() {
	rootCmd.AddCommand(newFetchContractCmd())
	rootCmd.AddCommand(newGetSourceFileCmd())
	rootCmd.AddCommand(newGetContractCreationCmd())
	rootCmd.AddCommand(newDetectProxyCmd())
}

func newFetchContractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch-contract [address]",
		Short: "fetch a verified contract's ABI, source, and compiler metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFlag(cmd)
			if err != nil {
				return err
			}
			inlineLimit, err := cmd.Flags().GetInt(flagInlineLimit)
			if err != nil {
				return err
			}
			forceInline, err := cmd.Flags().GetBool(flagForceInline)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			rec, err := s.FetchContract(context.Background(), args[0], network, inlineLimit, forceInline)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}
	cmd.Flags().Int(flagInlineLimit, 0, "max combined source length to inline before omitting file content (0 selects the default)")
	cmd.Flags().Bool(flagForceInline, false, "always inline source content regardless of length")
	return cmd
}

func newGetSourceFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-source-file [address] [filename]",
		Short: "read a byte-offset window of one verified source file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFlag(cmd)
			if err != nil {
				return err
			}
			offset, err := cmd.Flags().GetInt(flagFileOffset)
			if err != nil {
				return err
			}
			length, err := cmd.Flags().GetInt(flagFileLength)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			content, truncated, err := s.GetSourceFile(context.Background(), args[0], network, args[1], offset, length)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"content": content, "truncated": truncated})
		},
	}
	cmd.Flags().Int(flagFileOffset, 0, "byte offset to start reading from")
	cmd.Flags().Int(flagFileLength, 0, "number of bytes to read (0 reads to the end)")
	return cmd
}

func newGetContractCreationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-contract-creation [address]",
		Short: "resolve a contract's creator, deployment tx, and block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFlag(cmd)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			rec, err := s.GetContractCreation(context.Background(), args[0], network)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}
}

func newDetectProxyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect-proxy [address]",
		Short: "detect EIP-1967 proxy structure via storage slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFlag(cmd)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			rec, err := s.DetectProxy(context.Background(), args[0], network)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}
}
