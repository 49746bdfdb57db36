package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkoehler/jKV/cmd/kv"
	"github.com/tkoehler/jKV/cmd/util"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "jkv",
		Short: "JSON-file-backed key-value store",
		Long: fmt.Sprintf(`jKV (v%s)

A key-value store persisted as a single JSON file, with declarative
queries (prefix match, value filters, ordering, pagination) evaluated
over the stored entries.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of jKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("jKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("Log level (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
