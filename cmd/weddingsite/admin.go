package main

import (
	"errors"
	"fmt"
	"os"

	"weddingsite/internal/adapters/auth"
	"weddingsite/internal/adapters/whatsapp"
	"weddingsite/internal/repository/postgres"
	"weddingsite/internal/services"

	"github.com/spf13/cobra"
)

const defaultAdminEmail = "admin@wedding.com"

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			db, err := postgres.Open(ctx, cfg.DBUrl)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

func newCreateAdminCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required (--password or ADMIN_PASSWORD)")
			}
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			db, err := postgres.Open(ctx, cfg.DBUrl)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			svc := services.NewAuthService(postgres.NewAdminUserRepository(db), auth.NewBcryptHasher(0),
				auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry, cfg.RequestTimeout)
			admin, err := svc.CreateAdmin(ctx, email, password)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			logger.Info("admin created", "id", admin.ID, "email", admin.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "Admin user %s created\n", admin.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", defaultAdminEmail, "Administrator email")
	cmd.Flags().StringVar(&password, "password", "", "Administrator password (or ADMIN_PASSWORD)")
	return cmd
}

func newWhatsAppLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whatsapp-link",
		Short: "Pair the WhatsApp device used for guest notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			wa, err := whatsapp.New(ctx, whatsapp.Config{DataDir: cfg.WhatsApp.DataDir}, logger)
			if err != nil {
				return err
			}
			defer wa.Disconnect()
			if err := wa.Link(ctx, cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "WhatsApp device linked")
			return nil
		},
	}
}
