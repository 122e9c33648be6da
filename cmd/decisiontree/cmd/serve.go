package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/solatis/decisiontree/internal/core/api"
	"github.com/solatis/decisiontree/internal/core/auth"
	"github.com/solatis/decisiontree/internal/core/config"
	"github.com/solatis/decisiontree/internal/core/db"
	"github.com/solatis/decisiontree/internal/core/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC decision service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50052, "gRPC server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Server.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Server.Port = port
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	database, queries, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RequireMigrations(ctx, database); err != nil {
		return err
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return auth.ErrNoSecrets
	}

	svc, err := api.NewService(db.NewTreeStore(queries), logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	handler, err := api.NewGRPCHandler(svc)
	if err != nil {
		return err
	}

	grpcServer, err := server.NewGRPCServer(&cfg.Server, handler, auth.NewAuthenticator(secrets, queries, logger), logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting decision service", "version", Version, "addr", grpcServer.Addr())
	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("shutting down gracefully", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout*2)
		defer cancel()
		return grpcServer.Shutdown(shutdownCtx)
	}
}
