package main

import (
	"context"

	"github.com/spf13/cobra"
)

const flagFullTransactions = "full-transactions"
const flagTxHashesOnly = "tx-hashes-only"

func init() {
	rootCmd.AddCommand(newGetTransactionCmd())
	rootCmd.AddCommand(newGetBlockCmd())
	rootCmd.AddCommand(newGetBlockTimeCmd())
}

func newGetTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-transaction [hash]",
		Short: "fetch a transaction and its receipt by hash",
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
			detail, err := s.GetTransaction(context.Background(), args[0], network)
			if err != nil {
				return err
			}
			return printJSON(detail)
		},
	}
}

func newGetBlockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-block [number]",
		Short: "fetch a block by number, hex, or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFlag(cmd)
			if err != nil {
				return err
			}
			fullTransactions, err := cmd.Flags().GetBool(flagFullTransactions)
			if err != nil {
				return err
			}
			txHashesOnly, err := cmd.Flags().GetBool(flagTxHashesOnly)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			detail, err := s.GetBlockByNumber(context.Background(), args[0], network, fullTransactions, txHashesOnly)
			if err != nil {
				return err
			}
			return printJSON(detail)
		},
	}
	cmd.Flags().Bool(flagFullTransactions, false, "return full transaction objects instead of hashes")
	cmd.Flags().Bool(flagTxHashesOnly, false, "force the transactions list to hashes even when full objects were returned")
	return cmd
}

func newGetBlockTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-block-time [number]",
		Short: "derive a block's timestamp in hex, Unix-seconds, and UTC ISO-8601 form",
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
			bt, err := s.GetBlockTime(context.Background(), args[0], network)
			if err != nil {
				return err
			}
			return printJSON(bt)
		},
	}
}
