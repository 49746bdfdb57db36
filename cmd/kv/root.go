package kv

import (
	"github.com/spf13/cobra"

	"github.com/tkoehler/jKV/cmd/util"
	"github.com/tkoehler/jKV/lib/ds"
)

var (
	store ds.IDatastore[ds.Bytes]

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform datastore operations on a JSON file",
		PersistentPreRunE: setupStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Best-effort persistence when the process winds down; mutating
	// commands flush explicitly and report errors themselves.
	cobra.OnFinalize(util.Stores.CloseAll)

	// Add flags
	key := "file"
	KeyValueCommands.PersistentFlags().String(key, "jkv.json", util.WrapString("Path of the datastore file (env JKV_FILE)"))

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(flushCmd)
	KeyValueCommands.AddCommand(infoCmd)
	KeyValueCommands.AddCommand(queryCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupStore opens (or reuses) the datastore configured via --file
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := util.SetupLogging(); err != nil {
		return err
	}

	var err error
	store, err = util.Stores.Open(util.GetStorePath())
	return err
}
