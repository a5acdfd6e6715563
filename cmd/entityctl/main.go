/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command entityctl inspects, converts and stores registered entities.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suparena/entity/config"
	"github.com/suparena/entity/logger"
	_ "github.com/suparena/entity/models"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "entityctl",
		Short: "Inspect, convert and store entities",
		Long: `entityctl works with the entity types compiled into it.

Examples:
  entityctl types                                  # List registered types
  entityctl attrs User                             # Show attributes and accessors
  entityctl convert User --in user.json --to yaml  # Re-encode a document
  entityctl put Post --in post.yaml                # Store in DynamoDB
  entityctl get User john@example.com              # Load from DynamoDB`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}
			if err := logger.InitializeLevel(loaded.Log.JSON, logger.ParseLevel(loaded.Log.Level)); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			cfg = loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML, TOML or JSON)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newVersionCmd(),
		newTypesCmd(),
		newAttrsCmd(),
		newConvertCmd(),
		newDumpCmd(),
		newPutCmd(),
		newGetCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
