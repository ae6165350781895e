package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/justsurfingit/hirepath/internal/config"
	"github.com/justsurfingit/hirepath/internal/database"
	"github.com/justsurfingit/hirepath/internal/logger"
	"github.com/justsurfingit/hirepath/internal/metrics"
	"github.com/justsurfingit/hirepath/internal/pricing"
	"github.com/justsurfingit/hirepath/internal/seed"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hirepath-seed",
		Short: "Seed reference data and synchronise pricing",
		Long: `hirepath-seed populates roles, permissions, modules, pricing and users
through idempotent upserts, and pushes packs to Stripe as products and prices.

Configuration comes from the environment (or a .env file), see DATABASE_URL,
SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD, SEED_FIXTURE and STRIPE_SECRET_KEY.`,
		SilenceUsage: true,
	}

	var fixturePath string
	runCmd := &cobra.Command{
		Use:       "run [steps...]",
		Short:     "Run seed steps (all when none are given)",
		ValidArgs: seed.AllSteps,
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), fixturePath, args)
		},
	}
	runCmd.Flags().StringVar(&fixturePath, "fixture", "", "Path to a YAML fixture (overrides SEED_FIXTURE)")
	rootCmd.AddCommand(runCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "stripe-sync",
		Short: "Create or update Stripe products and prices for every pack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStripeSync(cmd.Context())
		},
	})
	return rootCmd
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(log)
	return cfg, log, nil
}

func runSeed(ctx context.Context, fixturePath string, steps []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if fixturePath == "" {
		fixturePath = cfg.Seed.FixturePath
	}

	fixture, err := seed.DefaultFixture()
	if fixturePath != "" {
		fixture, err = seed.LoadFixture(fixturePath)
	}
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	report, err := seed.New(db, log, fixture, seed.Options{
		AdminEmail: cfg.Seed.AdminEmail,
		Password:   cfg.Seed.AdminPassword,
	}).Run(ctx, steps...)
	for step, n := range report {
		log.Info("Seed step finished", "step", step, "rows", n)
	}
	return err
}

func runStripeSync(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if !cfg.StripeEnabled() {
		return fmt.Errorf("STRIPE_SECRET_KEY is required for stripe-sync")
	}

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	gateway := pricing.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, log)
	report, err := pricing.NewSyncer(db, gateway, log, metrics.SyncObserver{}).Sync(ctx)
	if url := cfg.Metrics.PushgatewayURL; url != "" {
		if pushErr := metrics.PushSync(ctx, url); pushErr != nil {
			log.Warn("Failed to push sync metrics", "error", pushErr)
		}
	}
	if err != nil {
		return err
	}
	log.Info("Stripe sync finished",
		"created", report.Count(pricing.OutcomeCreated),
		"updated", report.Count(pricing.OutcomeUpdated),
		"unchanged", report.Count(pricing.OutcomeUnchanged),
		"failed", report.Count(pricing.OutcomeFailed))
	if n := report.Count(pricing.OutcomeFailed); n > 0 {
		return fmt.Errorf("%d pack(s) failed to sync", n)
	}
	return nil
}
