// Package server wires the simplog server together: storage, services, the
// gRPC endpoint and the ops HTTP endpoint, and runs them until shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/simplog/internal/keylock"
	"github.com/dmitrijs2005/simplog/internal/logging"
	"github.com/dmitrijs2005/simplog/internal/server/auth"
	"github.com/dmitrijs2005/simplog/internal/server/config"
	"github.com/dmitrijs2005/simplog/internal/server/images"
	"github.com/dmitrijs2005/simplog/internal/server/metrics"
	"github.com/dmitrijs2005/simplog/internal/server/ops"
	"github.com/dmitrijs2005/simplog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/simplog/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/simplog/internal/server/grpc"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	store           repomanager.RepositoryManager
	registry        *prometheus.Registry
	userService     *services.UserService
	employeeService *services.EmployeeService
	grpcServer      *gs.GRPCServer
	opsServer       *ops.Server
}

// openStore picks PostgreSQL when a DSN is configured and the in-memory
// store otherwise.
var openStore = func(ctx context.Context, c *config.Config, opts ...repomanager.Option) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		return repomanager.NewMemoryRepositoryManager(opts...), nil
	}
	return repomanager.OpenPostgres(ctx, c.DatabaseDSN, opts...)
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if c.DatabaseDSN != "" && c.UsesDefaultSecret() {
		logger.Warn(ctx, "tokens are signed with the default secret key, set "+config.EnvSecretKey)
	}

	var opts []repomanager.Option
	if c.S3Bucket != "" {
		client, err := images.NewClient(ctx, images.ClientConfig{
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		opts = append(opts, repomanager.WithImageStore(images.NewStore(client, c.S3Bucket)))
		logger.Info(ctx, "employee images offloaded to S3", "bucket", c.S3Bucket)
	}

	store, err := openStore(ctx, c, opts...)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := store.RunMigrations(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	locks := keylock.New()
	issuer := auth.NewIssuer([]byte(c.SecretKey), c.TokenIssuer)

	us := services.NewUserService(store, issuer, locks, logger, collector)
	es := services.NewEmployeeService(store, locks, logger, collector)

	app := &App{
		config:          c,
		logger:          logger,
		store:           store,
		registry:        registry,
		userService:     us,
		employeeService: es,
	}

	app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, es, issuer,
		gs.WithMetrics(collector), gs.WithAuthRateLimit(c.AuthRateLimit))

	if c.EndpointAddrHTTP != "" {
		app.opsServer = ops.NewServer(c.EndpointAddrHTTP, ops.NewRouter(store, registry, logger), c.ShutdownTimeout, logger)
	}

	return app, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves until ctx is cancelled, a signal arrives or one of the
// endpoints fails. The store is closed on return.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				app.logger.Error(ctx, "server failed", "server", name, "error", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", name, err)
				}
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	run("grpc", app.grpcServer.Run)
	if app.opsServer != nil {
		run("ops", app.opsServer.Run)
	}

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(context.Background(), "closing store", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")

	return firstErr
}
