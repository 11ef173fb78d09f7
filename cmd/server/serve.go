package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	authmodels "romportal/internal/auth/models"
	"romportal/internal/platform/httpserver"
)

var serveFlags = struct {
	autoMigrate       bool
	bootstrapEmail    string
	bootstrapPassword string
}{}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the audit relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&serveFlags.autoMigrate, "auto-migrate", true, "apply schema migrations before serving")
	cmd.Flags().StringVar(&serveFlags.bootstrapEmail, "bootstrap-admin-email", os.Getenv("ROMPORTAL_BOOTSTRAP_ADMIN_EMAIL"), "create this admin when none exist")
	cmd.Flags().StringVar(&serveFlags.bootstrapPassword, "bootstrap-admin-password", os.Getenv("ROMPORTAL_BOOTSTRAP_ADMIN_PASSWORD"), "password for the bootstrap admin")
	return cmd
}

func serveRun(parent context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	if serveFlags.autoMigrate {
		applied, err := a.migrate(ctx)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			log.Info("schema migrations applied", "migrations", applied)
		}
	}
	if err := a.bootstrapAdmin(ctx, serveFlags.bootstrapEmail, serveFlags.bootstrapPassword); err != nil {
		return err
	}
	a.ensureTopic(ctx)

	log.Info("starting "+programName,
		"addr", cfg.Addr,
		"store_driver", cfg.StoreDriver,
		"redis", cfg.Redis.URL != "",
		"kafka", len(cfg.KafkaBrokers) > 0,
	)

	srv := httpserver.New(cfg.Addr, a.router())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, log)
	})
	g.Go(func() error {
		if err := a.relay().Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if purge := a.revocationPurger(); purge != nil {
		g.Go(func() error { return purge(gctx) })
	}
	return g.Wait()
}

// bootstrapAdmin creates the first admin so a fresh deployment can sign in.
func (a *app) bootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	has, err := a.auth.HasAdmins(ctx)
	if err != nil || has {
		return err
	}
	if _, err := a.auth.CreateAdmin(ctx, authmodels.CreateAdmin{
		Email:    email,
		Password: password,
		Role:     authmodels.RoleAdmin,
	}); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "bootstrap admin created", "email", email)
	return nil
}
