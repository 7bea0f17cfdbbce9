package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	server         *http.Server
	books          BookStorage
	redisClient    *redis.Client
	cleanups       []func()
	queueConsumers []func(context.Context) error
}

// NewApp provides an instance of App. It fails when the books
// store cannot be loaded since there is nothing to serve then.
func NewApp(configFile, envFile string) (AppProvider, error) {
	config, err := LoadAndInitConfigs(configFile, envFile, GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %w", err)
	}

	if err = os.MkdirAll(config.LogFolder, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %w", err)
	}

	app := &App{config: config}
	clock := NewClock(config.IsProduction)
	logWriter := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, NewTickClock(clock))
	app.logger = logger
	app.cleanups = append(app.cleanups,
		func() {
			if ferr := flusher(); ferr != nil {
				fmt.Println("error during flushing of logs: ", ferr)
			}
		},
		func() {
			if cerr := logWriter.Close(); cerr != nil {
				fmt.Println("error during closing of log file: ", cerr)
			}
		},
	)

	store, err := LoadFileBookStorage(logger, &config.Store)
	if err != nil {
		logger.Error("failed to load books store", zap.String("store.file", config.Store.FilePath), zap.Error(err))
		app.Clean()
		return nil, fmt.Errorf("failed to load books store: %w", err)
	}
	app.books = store

	queue, err := app.setupEvents()
	if err != nil {
		app.Clean()
		return nil, err
	}

	api := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		NewIDsHandler(),
		NewBookService(logger, config, clock, store, queue),
	)
	if config.GitTag == "" {
		api.stats.version = config.GitCommit
	}

	public, ops := api.MiddlewaresStacks()
	router := api.SetupRoutes(httprouter.New(), &MiddlewareMap{public: public.Chain, ops: ops.Chain})

	app.server = &http.Server{
		Addr: fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler: http.TimeoutHandler(
			router,
			config.Server.RequestTimeout,
			"Timeout. Processing taking too long. Please reach out to support.",
		),
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

// setupEvents picks the queue receiving books mutation events. Without
// redis the events are dropped and no consumer is started.
func (app *App) setupEvents() (Queuer, error) {
	if !app.config.Redis.Enabled {
		return NewNoopQueue(), nil
	}

	client, err := GetRedisClient(app.config)
	if err != nil {
		if client != nil {
			_ = client.Close()
		}
		return nil, fmt.Errorf("failed to connect to redis server: %w", err)
	}
	app.redisClient = client

	queue := NewRedisQueue(client)
	audit := NewAuditConsumer(app.logger, queue)
	app.queueConsumers = append(app.queueConsumers, func(ctx context.Context) error {
		return audit.Consume(ctx, CreateQueue, UpdateQueue, DeleteQueue)
	})
	return queue, nil
}

// Run serves the api until an interrupt or termination signal
// is received or until the server fails to listen.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)
	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.address", app.server.Addr),
		zap.Error(err),
	)
	return err
}

// Clean runs the registered cleanups once. Logs are flushed
// before the log file gets closed.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
	app.cleanups = nil
}

// Serve listens for incoming requests. A server closed
// by Stop is not reported as a failure.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.address", app.server.Addr),
			zap.String("store.file", app.config.Store.FilePath),
			zap.Bool("events.enabled", app.config.Redis.Enabled),
		)
		if err := app.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Stop waits for the group context then shuts the server down. It falls back to
// a hard close when the graceful shutdown does not complete in time. It always
// returns nil so only Serve decides the group result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		reason := "errored at running"
		if nCtx.Err() != nil {
			reason = "requested to stop"
		}
		app.logger.Info("api server stopping", zap.String("reason", reason))

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()

		err := app.server.Shutdown(sCtx)
		switch {
		case err == nil:
			app.logger.Info("api server graceful shutdown succeeded")
		case errors.Is(err, context.DeadlineExceeded):
			app.logger.Warn("api server graceful shutdown timed out", zap.NamedError("close.error", app.server.Close()))
		default:
			app.logger.Error("api server graceful shutdown failed", zap.Error(err), zap.NamedError("close.error", app.server.Close()))
		}

		if app.books != nil {
			app.logger.Info("books store state at stop", zap.Int("store.count", len(app.books.GetAll(context.Background()))))
		}

		if app.redisClient != nil {
			if cerr := app.redisClient.Close(); cerr != nil {
				app.logger.Error("failed to close redis client", zap.Error(cerr))
			}
		}
		return nil
	}
}

// ConsumeQueues starts each events consumer inside the group.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.queueConsumers {
			consume := consume
			g.Go(func() error { return consume(gCtx) })
		}
		return nil
	}
}
