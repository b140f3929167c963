package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/virendra-maker/urmaxx-clone/data"
	"github.com/virendra-maker/urmaxx-clone/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the catalog schema",
	Long: `Print the MariaDB DDL for the catalog tables.

With --sqlite, migrate an in-memory SQLite database and print the
schema GORM generates instead.`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().Bool("sqlite", false, "print the schema GORM generates on SQLite")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	useSQLite, _ := cmd.Flags().GetBool("sqlite")
	if !useSQLite {
		fmt.Fprint(out, data.InitdbMariaDBTables)
		return nil
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}
	defer database.Close(db)

	// Auto-migrate to see what GORM creates
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	var tables []string
	if err := db.Raw("SELECT name FROM sqlite_master WHERE type='table' ORDER BY name").Scan(&tables).Error; err != nil {
		return err
	}

	for _, table := range tables {
		fmt.Fprintf(out, "\n=== Table: %s ===\n", table)
		var ddl string
		if err := db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&ddl).Error; err != nil {
			return err
		}
		fmt.Fprintln(out, ddl)
	}
	return nil
}
