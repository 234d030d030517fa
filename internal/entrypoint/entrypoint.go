package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/shelf/internal/catalog"
	"github.com/mrlokans/shelf/internal/cli"
	"github.com/mrlokans/shelf/internal/config"
	"github.com/mrlokans/shelf/internal/database"
	http_controllers "github.com/mrlokans/shelf/internal/http"
	"github.com/mrlokans/shelf/internal/inventory"
	"github.com/mrlokans/shelf/internal/inventorystore"
	"github.com/mrlokans/shelf/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the components shared by the server and the CLI commands.
type App struct {
	DB         *database.Database
	Catalog    *catalog.OpenLibraryClient
	Controller *inventory.Controller
}

// Open connects the database, loads the inventory and builds the controller.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	strategy, err := inventory.ParseFetchStrategy(cfg.Inventory.FetchStrategy)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	client := catalog.NewOpenLibraryClient(catalog.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		CoversURL:         cfg.Catalog.CoversURL,
		UserAgent:         cfg.Catalog.UserAgent,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	})

	controller := inventory.NewController(ctx, inventorystore.New(db), client, inventory.Options{
		Strategy:     strategy,
		FetchTimeout: cfg.Inventory.FetchTimeout,
	})

	return &App{
		DB:         db,
		Catalog:    client,
		Controller: controller,
	}, nil
}

// Close stops all lookups and closes the database.
func (a *App) Close() {
	a.Controller.Close()
	if err := a.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// StartBackground fetches metadata for the loaded list and starts the
// periodic refresh. Only the server calls it, so CLI commands do not
// refetch the whole list on every run.
func (a *App) StartBackground(ctx context.Context, schedule string) (*scheduler.MetadataRefreshScheduler, error) {
	refresher := scheduler.NewMetadataRefreshScheduler(a.Controller, schedule)
	if err := refresher.Start(ctx); err != nil {
		return nil, err
	}

	started := a.Controller.Refresh(ctx)
	log.Printf("Started %d metadata lookup(s) for the loaded inventory", started)

	return refresher, nil
}

// Session adapts Open to the CLI.
func Session(cfg *config.Config) cli.Opener {
	return func(ctx context.Context) (*cli.Session, error) {
		app, err := Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &cli.Session{Inventory: app.Controller, Close: app.Close}, nil
	}
}

// CSRFSecret decodes the configured secret. Hex is preferred, anything else
// is used as raw bytes. An empty value disables CSRF protection.
func CSRFSecret(value string) []byte {
	if value == "" {
		return nil
	}
	if secret, err := hex.DecodeString(value); err == nil {
		return secret
	}
	return []byte(value)
}

func Serve(ctx context.Context, router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit.Done():
	}

	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

// Run serves the web interface until SIGINT or SIGTERM.
func Run(ctx context.Context, cfg *config.Config, version string) error {
	log.Printf("Starting shelf v%s", version)

	app, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	refresher, err := app.StartBackground(ctx, cfg.Scheduler.RefreshSchedule)
	if err != nil {
		return err
	}

	csrfSecret := CSRFSecret(cfg.Security.CSRFSecret)
	if len(csrfSecret) == 0 {
		log.Printf("WARNING: CSRF_SECRET is not set. Form posts are not CSRF protected.")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Inventory:     app.Controller,
		Database:      app.DB,
		Version:       version,
		CSRFSecret:    csrfSecret,
		SecureCookies: cfg.Security.SecureCookies,
	})

	onShutdown := func(ctx context.Context) {
		refresher.Stop()
	}

	return Serve(ctx, router, cfg, onShutdown)
}

// Execute runs the shelf command line with os.Args.
func Execute(version string) {
	cfg := config.NewConfig()

	root := cli.NewRootCmd(version, Session(cfg), func(ctx context.Context) error {
		return Run(ctx, cfg, version)
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
