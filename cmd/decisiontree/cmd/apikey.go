package cmd

import (
	"fmt"

	"github.com/solatis/decisiontree/internal/core/auth"
	"github.com/solatis/decisiontree/internal/core/config"
	"github.com/solatis/decisiontree/internal/core/db"
	"github.com/solatis/decisiontree/internal/types"
	"github.com/spf13/cobra"
)

var (
	apikeyName     string
	apikeySecretID string
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys for the gRPC service",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an API key; the key is printed once and not stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		secrets, err := config.HMACSecrets()
		if err != nil {
			return fmt.Errorf("failed to load HMAC secrets: %w", err)
		}

		database, queries, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := db.RequireMigrations(ctx, database); err != nil {
			return err
		}

		issued, err := auth.Issue(ctx, queries, secrets, apikeySecretID, apikeyName)
		if err != nil {
			return err
		}

		logger.Info("api key created", "api_key_id", issued.ID, "name", issued.Name, "secret_id", issued.SecretID)
		fmt.Fprintln(cmd.OutOrStdout(), issued.Key)
		return nil
	},
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke API_KEY_ID",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		database, queries, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := auth.Revoke(ctx, queries, types.APIKeyID(args[0])); err != nil {
			return err
		}
		logger.Info("api key revoked", "api_key_id", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyRevokeCmd)
	apikeyCreateCmd.Flags().StringVar(&apikeyName, "name", "", "human-readable key name")
	apikeyCreateCmd.Flags().StringVar(&apikeySecretID, "secret-id", "", "HMAC secret to sign with (default: newest)")
	apikeyCreateCmd.MarkFlagRequired("name")
}
