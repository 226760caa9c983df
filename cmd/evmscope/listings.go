package main

import (
	"context"

	"github.com/spf13/cobra"
)

const (
	flagStartBlock = "start-block"
	flagEndBlock   = "end-block"
	flagPage       = "page"
	flagOffset     = "offset-results"
	flagSort       = "sort"
	flagTokenType  = "token-type"
	flagTopic0     = "topic0"
	flagTopic1     = "topic1"
	flagTopic2     = "topic2"
	flagTopic3     = "topic3"
)

func init() {
	rootCmd.AddCommand(newListTransactionsCmd())
	rootCmd.AddCommand(newListTokenTransfersCmd())
	rootCmd.AddCommand(newQueryLogsCmd())
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Int64(flagStartBlock, 0, "start block (0 selects the default)")
	cmd.Flags().Int64(flagEndBlock, 0, "end block (0 selects the default)")
	cmd.Flags().Int(flagPage, 0, "page number (0 selects the default)")
	cmd.Flags().Int(flagOffset, 0, "results per page (0 selects the default)")
	cmd.Flags().String(flagSort, "", "asc or desc (default asc)")
}

func rangeArgs(cmd *cobra.Command) (start, end int64, page, offset int, sort string, err error) {
	if start, err = cmd.Flags().GetInt64(flagStartBlock); err != nil {
		return
	}
	if end, err = cmd.Flags().GetInt64(flagEndBlock); err != nil {
		return
	}
	if page, err = cmd.Flags().GetInt(flagPage); err != nil {
		return
	}
	if offset, err = cmd.Flags().GetInt(flagOffset); err != nil {
		return
	}
	sort, err = cmd.Flags().GetString(flagSort)
	return
}

func newListTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-transactions [address]",
		Short: "list an address's native transactions over a block range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFlag(cmd)
			if err != nil {
				return err
			}
			start, end, page, offset, sort, err := rangeArgs(cmd)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			list, err := s.ListTransactions(context.Background(), args[0], network, start, end, page, offset, sort)
			if err != nil {
				return err
			}
			return printJSON(list)
		},
	}
	addRangeFlags(cmd)
	return cmd
}

func newListTokenTransfersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-token-transfers [address]",
		Short: "list an address's ERC-20/721/1155 transfers over a block range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFlag(cmd)
			if err != nil {
				return err
			}
			tokenType, err := cmd.Flags().GetString(flagTokenType)
			if err != nil {
				return err
			}
			start, end, page, offset, sort, err := rangeArgs(cmd)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			list, err := s.ListTokenTransfers(context.Background(), args[0], network, tokenType, start, end, page, offset, sort)
			if err != nil {
				return err
			}
			return printJSON(list)
		},
	}
	cmd.Flags().String(flagTokenType, "erc20", "erc20, erc721, or erc1155")
	addRangeFlags(cmd)
	return cmd
}

func newQueryLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query-logs [address]",
		Short: "query event logs emitted by an address over a block range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFlag(cmd)
			if err != nil {
				return err
			}
			topics, err := topicArgs(cmd)
			if err != nil {
				return err
			}
			start, end, page, offset, _, err := rangeArgs(cmd)
			if err != nil {
				return err
			}
			s, err := svc()
			if err != nil {
				return err
			}
			list, err := s.QueryLogs(context.Background(), args[0], network, topics, start, end, page, offset)
			if err != nil {
				return err
			}
			return printJSON(list)
		},
	}
	cmd.Flags().String(flagTopic0, "", "topic0 (event signature hash) filter")
	cmd.Flags().String(flagTopic1, "", "topic1 filter")
	cmd.Flags().String(flagTopic2, "", "topic2 filter")
	cmd.Flags().String(flagTopic3, "", "topic3 filter")
	addRangeFlags(cmd)
	return cmd
}

func topicArgs(cmd *cobra.Command) (topics [4]string, err error) {
	flags := [4]string{flagTopic0, flagTopic1, flagTopic2, flagTopic3}
	for i, flag := range flags {
		if topics[i], err = cmd.Flags().GetString(flag); err != nil {
			return [4]string{}, err
		}
	}
	return topics, nil
}
