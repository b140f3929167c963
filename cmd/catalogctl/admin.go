package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/virendra-maker/urmaxx-clone/internal/database"
	"github.com/virendra-maker/urmaxx-clone/internal/services"
	"golang.org/x/crypto/bcrypt"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin credentials",
}

var adminSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Provision or rotate an admin credential",
	Long: `Store a bcrypt hash of the password for the given admin username.
An existing credential for the username is replaced.

Examples:
  catalogctl admin set --username admin --password 's3cret'`,
	RunE: runAdminSet,
}

func init() {
	adminSetCmd.Flags().StringP("username", "u", "", "admin username")
	adminSetCmd.Flags().StringP("password", "p", "", "admin password")
	adminSetCmd.Flags().Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	_ = adminSetCmd.MarkFlagRequired("username")
	_ = adminSetCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminSetCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminSet(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	cost, _ := cmd.Flags().GetInt("cost")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	db, err := connect()
	if err != nil {
		return err
	}
	defer database.Close(db)

	store := services.NewStore(db)
	if err := store.SetAdminCredential(cmd.Context(), username, string(hash)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Admin credential set for %q\n", username)
	return nil
}
