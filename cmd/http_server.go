package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-policy/api"
	"github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/auth"
	authPostgres "github.com/frahmantamala/expense-policy/internal/auth/postgres"
	"github.com/frahmantamala/expense-policy/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-policy/internal/category/postgres"
	"github.com/frahmantamala/expense-policy/internal/core/events"
	"github.com/frahmantamala/expense-policy/internal/expense"
	expensePostgres "github.com/frahmantamala/expense-policy/internal/expense/postgres"
	"github.com/frahmantamala/expense-policy/internal/organization"
	organizationPostgres "github.com/frahmantamala/expense-policy/internal/organization/postgres"
	"github.com/frahmantamala/expense-policy/internal/policy"
	policyPostgres "github.com/frahmantamala/expense-policy/internal/policy/postgres"
	"github.com/frahmantamala/expense-policy/internal/transport"
	"github.com/frahmantamala/expense-policy/internal/transport/middleware"
	"github.com/frahmantamala/expense-policy/internal/transport/rest"
	"github.com/frahmantamala/expense-policy/internal/user"
	userPostgres "github.com/frahmantamala/expense-policy/internal/user/postgres"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Services is the wired application shared by the server and the seeder.
type Services struct {
	Auth         *auth.Service
	User         *user.Service
	Organization *organization.Service
	Category     *category.Service
	Policy       *policy.Service
	Expense      *expense.Service
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	EventBus *events.EventBus
	Services Services
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	router, err := setupRoutes(deps)
	if err != nil {
		lg.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info("Starting HTTP server", "address", addr, "base_url", deps.Config.Server.BaseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			lg.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			lg.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	lg.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) (*chi.Mux, error) {
	validator, err := middleware.NewRequestValidator(context.Background(), api.Spec)
	if err != nil {
		return nil, err
	}

	base := transport.NewBaseHandler(deps.Logger)
	s := deps.Services

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, deps.DB, rest.Handlers{
		Auth:         auth.NewHandler(base, s.Auth),
		User:         user.NewHandler(base, s.User),
		Organization: organization.NewHandler(base, s.Organization),
		Category:     category.NewHandler(base, s.Category),
		Policy:       policy.NewHandler(base, s.Policy),
		Expense:      expense.NewHandler(base, s.Expense),
	}, validator, deps.Logger)
	return router, nil
}

func initializeDependencies() (*Dependencies, error) {
	cfg, lg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	expense.NewAuditHandler(lg).RegisterEventHandlers(bus)

	services, err := buildServices(cfg, db, gormDB, bus, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Dependencies{
		Config:   cfg,
		DB:       db,
		Gorm:     gormDB,
		EventBus: bus,
		Services: services,
		Logger:   lg,
	}, nil
}

func buildServices(cfg *internal.Config, db *sqlx.DB, gormDB *gorm.DB, bus *events.EventBus, lg *slog.Logger) (Services, error) {
	ceiling, err := cfg.Expense.Ceiling()
	if err != nil {
		return Services{}, err
	}
	loc, err := cfg.Expense.Location()
	if err != nil {
		return Services{}, err
	}

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokens, cfg.Security.BCryptCost, lg)

	users := userPostgres.NewUserRepository(gormDB)
	organizations := organizationPostgres.NewOrganizationRepository(gormDB)
	categories := categoryPostgres.NewCategoryRepository(gormDB)
	policies := policyPostgres.NewPolicyRepository(gormDB)
	expenses := expensePostgres.NewExpenseRepository(gormDB)

	authz := auth.NewMembershipAuthorization(organizations, lg)
	policyService := policy.NewService(policies, authz, categories, lg)
	engine := expense.NewEngine(policyService.Resolver(), expenses, bus, loc, lg)

	return Services{
		Auth:         authService,
		User:         user.NewService(users, authService, lg),
		Organization: organization.NewService(organizations, authz, users, lg),
		Category:     category.NewService(categories, authz, lg),
		Policy:       policyService,
		Expense: expense.NewService(engine, expenses, expensePostgres.NewStatsRepository(db), authz, categories,
			expense.ServiceConfig{Ceiling: ceiling, Location: loc}, lg),
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see the same connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
