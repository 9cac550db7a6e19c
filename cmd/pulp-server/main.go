package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pulpai/pulp/internal/config"
	"github.com/pulpai/pulp/internal/domain/adjustment"
	"github.com/pulpai/pulp/internal/domain/eligibility"
	"github.com/pulpai/pulp/internal/domain/mtc"
	"github.com/pulpai/pulp/internal/domain/oon"
	"github.com/pulpai/pulp/internal/domain/verification"
	"github.com/pulpai/pulp/internal/platform/apierror"
	"github.com/pulpai/pulp/internal/platform/db"
	"github.com/pulpai/pulp/internal/platform/hipaa"
	"github.com/pulpai/pulp/internal/platform/middleware"
	"github.com/pulpai/pulp/internal/platform/stedi"
	"github.com/pulpai/pulp/migrations"
)

const serviceName = "pulp-verification"

var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pulp-server",
		Short:        "Dental insurance eligibility verification API",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(verifyCmd())
	root.AddCommand(fixturesCmd())
	return root
}

func newLogger(env string, w io.Writer) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the verification API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetInt("to")
			return withMigrator(cmd.Context(), func(ctx context.Context, m *db.Migrator) error {
				count, err := m.UpTo(ctx, target)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().Int("to", 0, "Stop after this version (0 applies everything)")
	cmd.AddCommand(upCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				printStatuses(cmd.OutOrStdout(), statuses)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(ctx context.Context, fn func(context.Context, *db.Migrator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.HasDatabase() {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, migrations.FS))
}

func printStatuses(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func verifyCmd() *cobra.Command {
	var req verification.Request
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run one eligibility verification and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.PatientID == "" {
				return fmt.Errorf("--patient-id is required")
			}
			req.Trigger = "cli"

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env, cmd.ErrOrStderr())

			fixtures, err := eligibility.LoadFixtures()
			if err != nil {
				return err
			}
			svc := verification.NewService(fixtures, newProvider(cfg, logger), nil, cfg.PracticeID, logger)
			return runVerify(cmd.Context(), svc, req, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.PatientID, "patient-id", "", "Patient id (p1..p7 select reference patients)")
	f.StringVar(&req.MemberID, "member-id", "", "Subscriber member id")
	f.StringVar(&req.FirstName, "first-name", "", "Subscriber first name")
	f.StringVar(&req.LastName, "last-name", "", "Subscriber last name")
	f.StringVar(&req.DateOfBirth, "dob", "", "Subscriber date of birth (YYYY-MM-DD)")
	f.StringVar(&req.InsuranceName, "insurance", "", "Insurance carrier name")
	f.StringVar(&req.PayerID, "payer-id", "", "Explicit payer id")
	return cmd
}

func runVerify(ctx context.Context, svc *verification.Service, req verification.Request, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := svc.Verify(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func fixturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fixtures",
		Short: "List the reference patients served without a live provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := eligibility.LoadFixtures()
			if err != nil {
				return err
			}
			printFixtures(cmd.OutOrStdout(), fixtures.List())
			return nil
		},
	}
}

func printFixtures(w io.Writer, list []eligibility.FixtureInfo) {
	fmt.Fprintf(w, "%-8s %-40s %s\n", "PATIENT", "FIXTURE", "DESCRIPTION")
	for _, f := range list {
		fmt.Fprintf(w, "%-8s %-40s %s\n", f.PatientID, f.FixtureID, f.Description)
	}
}

// newProvider returns nil when no credential is configured so the
// orchestrator sees an unconfigured provider rather than a typed nil.
func newProvider(cfg *config.Config, logger zerolog.Logger) verification.Provider {
	if !cfg.HasStedi() {
		return nil
	}
	return stedi.NewClient(stedi.Config{
		APIKey:       cfg.StediAPIKey,
		BaseURL:      cfg.StediBaseURL,
		Timeout:      cfg.StediTimeout,
		ProviderNPI:  cfg.ProviderNPI,
		ProviderName: cfg.ProviderName,
	}, logger)
}

// serverDeps are the collaborators the HTTP server is built from. Outcomes
// and Pool are nil when no database is configured.
type serverDeps struct {
	Fixtures *eligibility.FixtureTable
	Provider verification.Provider
	Outcomes verification.OutcomeRepository
	Pool     *pgxpool.Pool
}

func newServer(cfg *config.Config, deps serverDeps, logger zerolog.Logger) (*echo.Echo, *verification.Service) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apierror.ErrorHandler(logger)

	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rl.BurstSize = cfg.RateLimitBurst
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", healthHandler)
	if deps.Pool != nil {
		e.GET("/health/db", db.HealthHandler(deps.Pool, logger))
	}

	var sink verification.OutcomeSink
	if deps.Outcomes != nil {
		sink = deps.Outcomes
	}
	svc := verification.NewService(deps.Fixtures, deps.Provider, sink, cfg.PracticeID, logger)
	verifyHandler := verification.NewHandler(svc, deps.Outcomes, logger)
	oonHandler := oon.NewHandler(oon.NewService(oon.SandboxClaimHistory(), oon.SandboxFeeSchedule(), logger))
	codesHandler := adjustment.NewHandler()
	mtcHandler := mtc.NewHandler(deps.Fixtures, logger)

	// Routes are served both at the root and under /api.
	for _, prefix := range []string{"", "/api"} {
		g := e.Group(prefix)
		g.Use(middleware.RateLimit(rl))
		verifyHandler.RegisterRoutes(g)
		oonHandler.RegisterRoutes(g)
		codesHandler.RegisterRoutes(g)
		mtcHandler.RegisterRoutes(g)
	}

	return e, svc
}

func healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": version,
	})
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env, os.Stdout)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	fixtures, err := eligibility.LoadFixtures()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load fixtures")
	}

	deps := serverDeps{
		Fixtures: fixtures,
		Provider: newProvider(cfg, logger),
	}
	if deps.Provider == nil {
		logger.Info().Msg("STEDI_API_KEY not set, serving fixture data only")
	}

	ctx := context.Background()
	if cfg.HasDatabase() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")

		var enc *hipaa.PayloadEncryptor
		if cfg.HIPAAEncryptionKey != "" {
			enc, err = hipaa.NewPayloadEncryptorFromHex(cfg.HIPAAEncryptionKey)
			if err != nil {
				logger.Fatal().Err(err).Msg("invalid HIPAA_ENCRYPTION_KEY")
			}
		} else {
			logger.Warn().Msg("HIPAA_ENCRYPTION_KEY not set, stored payloads are not encrypted")
		}
		deps.Pool = pool
		deps.Outcomes = verification.NewOutcomeRepoPG(pool, enc, cfg.PersistTimeout)
	} else {
		logger.Info().Msg("DATABASE_URL not set, verification outcomes are not persisted")
	}

	e, svc := newServer(cfg, deps, logger)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	// Let in-flight outcome writes finish before the pool closes.
	svc.Wait()
	logger.Info().Msg("server stopped")
	return nil
}
