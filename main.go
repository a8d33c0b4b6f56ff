package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"GEMA-backend/internal/platform/auth"
	"GEMA-backend/internal/platform/db"
	"GEMA-backend/internal/platform/session"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

type globalFlags struct {
	config string
	env    string
}

func main() {
	var g globalFlags
	root := &cobra.Command{
		Use:           "gema",
		Short:         "GEMA dashboard backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.config, "config", db.DefaultConfigFilePath, "config file")
	root.PersistentFlags().StringVar(&g.env, "env", db.DefaultEnvFilePath, ".env file with overrides (optional)")

	root.AddCommand(serveCmd(&g), migrateCmd(&g), userCmd(&g), purgeCmd(&g))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// open loads the config and connects; the caller closes the DB.
func open(g *globalFlags) (*db.Config, *sql.DB, error) {
	cfg, err := db.LoadConfig(g.config, g.env)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Mode != "dev" && cfg.Mode != "release" {
		return nil, nil, fmt.Errorf("mode must be dev or release, got %q", cfg.Mode)
	}
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[INFO] mode:%s connected to DB: %s", cfg.Mode, cfg.DB.DBName)
	return cfg, conn, nil
}

func newAuthService(cfg *db.Config, conn *sql.DB) (*auth.Service, error) {
	if len(cfg.Auth.JWTSecret) < 32 {
		return nil, errors.New("auth.jwt_secret must be at least 32 characters")
	}
	return auth.NewService(
		auth.NewStore(conn),
		session.NewSQLBackend(conn),
		[]byte(cfg.Auth.JWTSecret),
		auth.WithSessionDuration(cfg.SessionDuration()),
	), nil
}

func migrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, conn, err := open(g)
			if err != nil {
				return err
			}
			defer conn.Close()
			return db.Migrate(cmd.Context(), conn)
		},
	}
}

func userCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard accounts",
	}

	var role string
	add := &cobra.Command{
		Use:   "add <username> <password>",
		Short: "Create an account (role admin or limited)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuth(g, func(svc *auth.Service) error {
				if err := svc.Register(cmd.Context(), args[0], args[1], auth.Role(role)); err != nil {
					return err
				}
				log.Printf("[INFO] account created: %s (%s)", args[0], role)
				return nil
			})
		},
	}
	add.Flags().StringVar(&role, "role", string(auth.RoleAdmin), "admin or limited")

	reset := &cobra.Command{
		Use:   "reset-password <username> <password>",
		Short: "Replace an account's password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuth(g, func(svc *auth.Service) error {
				return svc.ResetPassword(cmd.Context(), args[0], args[1])
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <username>",
		Short: "Remove an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuth(g, func(svc *auth.Service) error {
				return svc.Delete(cmd.Context(), args[0])
			})
		},
	}

	cmd.AddCommand(add, reset, del)
	return cmd
}

func withAuth(g *globalFlags, fn func(*auth.Service) error) error {
	cfg, conn, err := open(g)
	if err != nil {
		return err
	}
	defer conn.Close()
	svc, err := newAuthService(cfg, conn)
	if err != nil {
		return err
	}
	return fn(svc)
}

func purgeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete sessions older than the session duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, conn, err := open(g)
			if err != nil {
				return err
			}
			defer conn.Close()
			_, err = purgeSessions(cmd.Context(), session.NewSQLBackend(conn), cfg.SessionDuration())
			return err
		},
	}
}

func purgeSessions(ctx context.Context, b *session.SQLBackend, d time.Duration) (int64, error) {
	n, err := b.PurgeBefore(ctx, time.Now().Add(-d))
	if err != nil {
		log.Printf("[ERROR] purge sessions: %v", err)
		return 0, err
	}
	if n > 0 {
		log.Printf("[INFO] purged %d expired session(s)", n)
	}
	return n, nil
}
