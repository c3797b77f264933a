package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wsobjects/wsd/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := GetConfigFile()
		if path == "" {
			path = config.DefaultConfigPath()
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
		fmt.Printf("config OK: %s\n", path)
		fmt.Printf("  db-path:          %s\n", cfg.DBPath)
		fmt.Printf("  api-root:         %s\n", cfg.APIRoot)
		fmt.Printf("  http-addr:        %s\n", cfg.HTTPAddr)
		fmt.Printf("  shock_server:     %s\n", cfg.ShockServer)
		fmt.Printf("  db-lane-workers:  %d\n", cfg.DBLaneWorkers)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
