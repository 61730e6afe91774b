package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lino07w/sistema-clinica-sub000/internal/config"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/authn"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/billing"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/clinicconfig"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/identity"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/medicalrecord"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/scheduling"
	"github.com/lino07w/sistema-clinica-sub000/internal/domain/users"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/db"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/mailer"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/middleware"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/response"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
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
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// seedAdminCmd creates the initial admin account from ADMIN_EMAIL,
// ADMIN_PASSWORD and ADMIN_NAME. It is a no-op when the account exists.
func seedAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the initial admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
				return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := users.NewRepo(pool)
			if _, err := repo.GetByEmail(ctx, cfg.AdminEmail); err == nil {
				fmt.Printf("Admin account %s already exists.\n", cfg.AdminEmail)
				return nil
			} else if !apperr.IsKind(err, apperr.KindNotFound) {
				return err
			}

			hash, err := users.HashPassword(cfg.AdminPassword)
			if err != nil {
				return err
			}
			u := &users.User{
				Email:        cfg.AdminEmail,
				PasswordHash: hash,
				Name:         cfg.AdminName,
				Role:         auth.RoleAdmin,
				Status:       users.StatusActive,
			}
			if err := repo.Create(ctx, u); err != nil {
				return err
			}
			fmt.Printf("Admin account %s created.\n", cfg.AdminEmail)
			return nil
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = response.ErrorHandler(logger, cfg.IsProduction())

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		Window:      cfg.RateLimitWindow,
		MaxRequests: cfg.RateLimitMax,
	}
	if rateLimitCfg.Window <= 0 || rateLimitCfg.MaxRequests <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTExpiry)

	var sender mailer.EmailSender
	if cfg.SendGridAPIKey != "" {
		sender = mailer.NewSendGridSender(mailer.Config{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
	} else {
		logger.Warn().Msg("no SendGrid API key configured, emails go to the log")
		sender = &mailer.LogSender{Logger: logger}
	}

	txRunner := func(ctx context.Context, fn func(context.Context) error) error {
		return db.RunInTx(ctx, pool, fn)
	}

	// Repositories
	patientRepo := identity.NewPatientRepo(pool)
	doctorRepo := identity.NewDoctorRepo(pool)
	apptRepo := scheduling.NewRepo(pool)
	invoiceRepo := billing.NewRepo(pool)
	recordRepo := medicalrecord.NewRepo(pool)
	configRepo := clinicconfig.NewRepo(pool)
	auditRepo := audit.NewRepo(pool)
	userRepo := users.NewRepo(pool)

	recorder := audit.NewRecorder(auditRepo, logger)

	// Services
	identitySvc := identity.NewService(patientRepo, doctorRepo, recorder)
	schedulingSvc := scheduling.NewService(apptRepo, patientRepo, doctorRepo, scheduling.TxRunner(txRunner), recorder)
	billingSvc := billing.NewService(invoiceRepo, patientRepo, recorder)
	recordSvc := medicalrecord.NewService(recordRepo, patientRepo, doctorRepo, recorder)
	configSvc := clinicconfig.NewService(configRepo, recorder)
	userSvc := users.NewService(userRepo, patientRepo, doctorRepo, users.TxRunner(txRunner), recorder)
	authnSvc := authn.NewService(userRepo, doctorRepo, issuer, sender, recorder, authn.TxRunner(txRunner))

	// Public routes
	public := e.Group("/api")
	public.Use(middleware.RateLimit(rateLimitCfg))
	authn.NewHandler(authnSvc).RegisterRoutes(public)

	// Protected routes
	api := e.Group("/api")
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(auth.Middleware(issuer))
	identity.NewHandler(identitySvc).RegisterRoutes(api)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)
	billing.NewHandler(billingSvc).RegisterRoutes(api)
	medicalrecord.NewHandler(recordSvc).RegisterRoutes(api)
	clinicconfig.NewHandler(configSvc).RegisterRoutes(api)
	audit.NewHandler(auditRepo).RegisterRoutes(api)
	users.NewHandler(userSvc).RegisterRoutes(api)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
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
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
