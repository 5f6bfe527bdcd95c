package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pritam-2002/firness-track/internal/appstate"
	"github.com/Pritam-2002/firness-track/internal/config"
	"github.com/Pritam-2002/firness-track/internal/db"
	"github.com/Pritam-2002/firness-track/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	// Postgres only holds the state snapshot.
	var pg *pgxpool.Pool
	if cfg.StateBackend == config.BackendPostgres {
		var err error
		pg, err = deps.connectPostgres(cfg)
		if err != nil {
			log.Printf("postgres connection failed: %v", err)
		}
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	srv, err := server.NewServer(cfg, pg, rdb)
	if err != nil {
		return err
	}
	logStartup(cfg, srv.Store.Snapshot())

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if err := srv.Close(shutdownCtx); err != nil {
		log.Printf("final state flush failed: %v", err)
	}
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}

func logStartup(cfg config.Config, st appstate.State) {
	backend := cfg.StateBackend
	if backend == "" {
		backend = config.BackendMemory
	}
	coach := "canned"
	if cfg.CoachURL != "" {
		coach = cfg.CoachURL
	}
	log.Printf("state backend %s: restored %d templates, %d scheduled, %d sessions; coach %s",
		backend, len(st.WorkoutTemplates), len(st.ScheduledWorkouts), len(st.WorkoutSessions), coach)
}
