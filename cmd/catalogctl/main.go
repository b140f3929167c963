// catalogctl is the operator CLI for the catalog database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/virendra-maker/urmaxx-clone/internal/config"
	"github.com/virendra-maker/urmaxx-clone/internal/database"
	"github.com/virendra-maker/urmaxx-clone/internal/logging"
	"gorm.io/gorm"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Operate the APK catalog database",
	Long: `Operator commands for the APK catalog database.

Configuration is read from the same environment as the server
(DATABASE_URL or DB_TYPE, DB_HOST, DB_DATABASE, ...).

Examples:
  catalogctl migrate
  catalogctl admin set --username admin --password 's3cret'
  catalogctl schema --sqlite`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "f", "", "path to a .env file to load")
}

// connect loads configuration and opens the configured database
func connect() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
