package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"multipark/backoffice/internal/constants"
	"multipark/backoffice/internal/db"
	"multipark/backoffice/internal/db/repositories"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	label string
	role  string
)

var rootCmd = &cobra.Command{
	Use:          "api_key_gen",
	Short:        "Issue an API key and store its hash in api_keys",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiRole := constants.APIRole(role)
		if apiRole != constants.RoleAnon && apiRole != constants.RoleService {
			return fmt.Errorf("role must be %q or %q", constants.RoleAnon, constants.RoleService)
		}

		// Only the dashboard store is needed; the other required settings may be absent here
		dsn := os.Getenv("DASHBOARD_DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DASHBOARD_DATABASE_URL is required")
		}

		conn, err := db.InitPostgres(dsn, 1)
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := db.WaitForPostgres(ctx, conn); err != nil {
			return err
		}

		key := uuid.NewString()
		id, err := repositories.NewApiKeysRepo(conn).Create(ctx, key, label, apiRole)
		if err != nil {
			return fmt.Errorf("insert api key: %w", err)
		}

		fmt.Println("Key ID: ", id)
		fmt.Println("New API Key:", key)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&label, "label", "", "who the key is for")
	rootCmd.Flags().StringVar(&role, "role", string(constants.RoleAnon), "anon or service")
	_ = rootCmd.MarkFlagRequired("label")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
