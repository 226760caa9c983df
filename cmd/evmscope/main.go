package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goware/logger"
	"github.com/spf13/cobra"

	"github.com/evmscope/evmscope/internal/config"
	"github.com/evmscope/evmscope/internal/service"
)

const version = "v0.1"

var rootCmd = &cobra.Command{
	Use:   "evmscope",
	Short: "evmscope - multi-chain EVM contract inspection toolkit",
	Args:  cobra.MinimumNArgs(1),
}

func init() {
	rootCmd.PersistentFlags().String(flagNetwork, "", "network label or numeric chain id (default: configured default network)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("evmscope", version)
		},
	})
}

const flagNetwork = "network"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// svc builds a new Service from the process environment on every call.
// Subcommands call this once per invocation rather than sharing a
// package-level instance, keeping each cobra command self-contained.
func svc() (*service.Service, error) {
	cfg := config.Load()
	log := logger.NewLogger(logger.LogLevel_WARN)
	return service.New(cfg, log)
}

func networkFlag(cmd *cobra.Command) (string, error) {
	return cmd.Flags().GetString(flagNetwork)
}

// printJSON renders v as indented JSON to stdout.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
