package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mediconnet/api/internal/config"
	"github.com/mediconnet/api/internal/domain/centralhistory"
	"github.com/mediconnet/api/internal/domain/hospital"
	"github.com/mediconnet/api/internal/domain/patient"
	"github.com/mediconnet/api/internal/domain/pharmacy"
	"github.com/mediconnet/api/internal/domain/record"
	"github.com/mediconnet/api/internal/domain/staff"
	syncpkg "github.com/mediconnet/api/internal/domain/sync"
	"github.com/mediconnet/api/internal/platform/auth"
	"github.com/mediconnet/api/internal/platform/db"
	"github.com/mediconnet/api/internal/platform/gateway"
	"github.com/mediconnet/api/internal/platform/middleware"
)

func main() {
	root := &cobra.Command{
		Use:   "mediconnet-server",
		Short: "Multi-tenant hospital management backend with a central patient registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the sync worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(true)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(false)
			},
		},
	)

	hospitalCmd := &cobra.Command{
		Use:   "hospital",
		Short: "Hospital registry commands",
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a hospital and print its secret key",
		RunE:  runHospitalCreate,
	}
	createCmd.Flags().String("name", "", "hospital name")
	createCmd.Flags().String("location", "", "hospital location")
	createCmd.Flags().String("contact", "", "contact number")
	createCmd.Flags().String("type", "General", "hospital type")
	createCmd.Flags().String("license", "", "license number")
	createCmd.Flags().Bool("managed", true, "hospital runs on this deployment")
	hospitalCmd.AddCommand(createCmd)

	root.AddCommand(serveCmd, migrateCmd, hospitalCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func runMigrate(apply bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator := db.NewMigrator(pool, "migrations")
	if apply {
		count, err := migrator.Up(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("applied %d migration(s)\n", count)
		return nil
	}

	statuses, err := migrator.Status(ctx)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied " + s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Printf("%3d  %-40s %s\n", s.Version, s.Name, state)
	}
	return nil
}

func runHospitalCreate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	name, _ := cmd.Flags().GetString("name")
	location, _ := cmd.Flags().GetString("location")
	contact, _ := cmd.Flags().GetString("contact")
	hospitalType, _ := cmd.Flags().GetString("type")
	license, _ := cmd.Flags().GetString("license")
	managed, _ := cmd.Flags().GetBool("managed")

	svc := hospital.NewService(hospital.NewRepo(pool))
	h, secretKey, err := svc.Register(ctx, hospital.RegisterInput{
		Name:          name,
		Location:      location,
		ContactNumber: contact,
		HospitalType:  hospitalType,
		LicenseNumber: license,
		IsInOurSystem: managed,
	})
	if err != nil {
		return err
	}

	fmt.Printf("hospital created: %s (%s)\n", h.Name, h.ID)
	fmt.Printf("secret key (shown once, store it safely): %s\n", secretKey)
	return nil
}

// hospitalLookupAdapter bridges the hospital repository to the gateway's
// narrower view of it.
type hospitalLookupAdapter struct {
	repo hospital.Repository
}

func (a *hospitalLookupAdapter) LookupHospital(ctx context.Context, id uuid.UUID) (*gateway.Hospital, error) {
	h, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, hospital.ErrNotFound) {
			return nil, gateway.ErrHospitalNotFound
		}
		return nil, err
	}
	return &gateway.Hospital{
		ID:            h.ID,
		Name:          h.Name,
		SecretKey:     h.SecretKey,
		IsInOurSystem: h.IsInOurSystem,
		Status:        h.Status,
	}, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("database pool established")

	// Repositories.
	hospitalRepo := hospital.NewRepo(pool)
	staffRepo := staff.NewRepo(pool)
	patientRepo := patient.NewRepo(pool)
	recordRepo := record.NewRepo(pool)
	rxRepo := record.NewPrescriptionRepo(pool)
	labRepo := record.NewLabRequestRepo(pool)
	historyRepo := centralhistory.NewRepo(pool)
	outbox := syncpkg.NewOutbox(pool)

	// Services.
	hospitalSvc := hospital.NewService(hospitalRepo)
	staffSvc := staff.NewService(staffRepo)
	recordSvc := record.NewService(recordRepo, rxRepo, labRepo, outbox, staffRepo, log)
	patientSvc := patient.NewService(patientRepo, recordSvc)
	pharmacySvc := pharmacy.NewService(patientRepo, rxRepo, labRepo)
	historySvc := centralhistory.NewService(historyRepo)

	// Sync worker delivering completed visits to the central registry.
	engine := syncpkg.NewEngine(recordRepo, rxRepo, labRepo, patientRepo, historySvc, log)
	worker := syncpkg.NewWorker(outbox, engine, cfg.SyncPollEvery, cfg.SyncMaxAttempts, log)
	go worker.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, gateway.APIKeyHeader, gateway.HospitalIDHeader},
	}))

	e.GET("/health", db.HealthHandler(pool))
	e.GET("/health/sync", func(c echo.Context) error {
		stats, err := outbox.Stats(c.Request().Context())
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to read sync stats")
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"outbox": stats})
	})

	// Staff-facing API, authenticated by JWT (or wide open in dev mode).
	api := e.Group("/api/v1")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware(auth.JWTConfig{Secret: []byte(cfg.JWTSecret)}))
	}
	hospital.NewHandler(hospitalSvc).RegisterRoutes(api)
	staff.NewHandler(staffSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	record.NewHandler(recordSvc).RegisterRoutes(api)
	pharmacy.NewHandler(pharmacySvc).RegisterRoutes(api)

	// Hospital-facing ingress. The API-key handshake guards writes only;
	// reads stay open so any hospital can consult the shared ledger.
	central := e.Group("/central-history")
	centralhistory.NewHandler(historySvc, log).RegisterRoutes(central,
		gateway.Middleware(&hospitalLookupAdapter{repo: hospitalRepo}))

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("shutdown complete")
	return nil
}
