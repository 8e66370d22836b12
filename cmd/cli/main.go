package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	baseURL  string
	timeout  time.Duration
	token    string
	tenantID int64
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ledgersync-cli",
		Short:         "LedgerSync CLI tool",
		Long:          `A command line interface for inspecting ERP synchronization through the LedgerSync API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the LedgerSync API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("LEDGERSYNC_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().Int64Var(&opts.tenantID, "tenant", 0, "Tenant id sent as X-Tenant-ID when no token is used")

	rootCmd.AddCommand(
		newMappingCmd(opts),
		newTasksCmd(opts),
		newTokenCmd(),
	)

	return rootCmd
}
