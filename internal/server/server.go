package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Pritam-2002/firness-track/internal/appstate"
	"github.com/Pritam-2002/firness-track/internal/coach"
	"github.com/Pritam-2002/firness-track/internal/config"
	"github.com/Pritam-2002/firness-track/internal/db"
	"github.com/Pritam-2002/firness-track/internal/nutrition"
	"github.com/Pritam-2002/firness-track/internal/persist"
	"github.com/Pritam-2002/firness-track/internal/report"
	"github.com/Pritam-2002/firness-track/internal/stream"
	"github.com/Pritam-2002/firness-track/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
)

// StateTopic carries the full app state after every change.
const StateTopic = "state"

const restoreTimeout = 10 * time.Second

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Store    *appstate.Store
	Tracking *tracking.Service
	Diary    *nutrition.Diary
	Coach    *coach.Service

	cron *cron.Cron
}

func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client) (*Server, error) {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     pg,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
		cron:   cron.New(),
	}

	store, err := s.openStore()
	if err != nil {
		s.Stream.Close()
		return nil, err
	}
	s.Store = store
	s.Tracking = tracking.NewService(s.Stream, store, cfg.TickInterval)
	s.Diary = nutrition.NewDiary(cfg.CalorieGoal, cfg.HydrationGoalL, time.Now)
	s.Coach = coach.NewService(newResponder(cfg), time.Now)

	if cfg.RolloverSpec != "" {
		if err := nutrition.ScheduleRollover(s.cron, cfg.RolloverSpec, s.Diary); err != nil {
			s.Tracking.Close()
			s.Stream.Close()
			return nil, fmt.Errorf("schedule rollover: %w", err)
		}
	}
	s.cron.Start()

	registerRoutes(s)
	return s, nil
}

func (s *Server) openStore() (*appstate.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	// A nil pool must stay a nil Querier.
	var q db.Querier
	if s.DB != nil {
		q = s.DB
	}
	p, err := persist.New(ctx, s.Cfg, q, s.Redis)
	if err != nil {
		return nil, fmt.Errorf("state backend: %w", err)
	}
	initial, err := appstate.Restore(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("restore state: %w", err)
	}

	opts := []appstate.Option{appstate.WithListener(s.broadcastState)}
	if p != nil {
		opts = append(opts, appstate.WithPersister(p))
	}
	return appstate.NewStore(initial, opts...), nil
}

func (s *Server) broadcastState(st appstate.State) {
	payload, err := json.Marshal(st)
	if err != nil {
		log.Printf("server: encode state: %v", err)
		return
	}
	s.Stream.Broadcast(StateTopic, payload)
}

func (s *Server) currentState(topic string) ([]byte, bool) {
	if topic != StateTopic {
		return nil, false
	}
	payload, err := json.Marshal(s.Store.Snapshot())
	if err != nil {
		return nil, false
	}
	return payload, true
}

func newResponder(cfg config.Config) coach.Responder {
	if cfg.CoachURL == "" {
		return coach.CannedResponder{}
	}
	return coach.NewHTTPResponder(cfg.CoachURL)
}

// Close stops background work and writes a final state snapshot.
func (s *Server) Close(ctx context.Context) error {
	s.cron.Stop()
	s.Tracking.Close()
	s.Stream.Close()
	return s.Store.Flush(ctx)
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "backend": backendName(s.Cfg)})
	})

	state := s.App.Group("/state")
	appstate.RegisterRoutes(state, s.Store, time.Now)
	report.RegisterRoutes(state, s.Store, time.Now)
	tracking.RegisterRoutes(s.App.Group("/tracking"), s.Tracking)
	nutrition.RegisterRoutes(s.App.Group("/nutrition"), s.Diary)
	coach.RegisterRoutes(s.App.Group("/coach"), s.Coach)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, s.currentState)
}

func backendName(cfg config.Config) string {
	if cfg.StateBackend == "" {
		return config.BackendMemory
	}
	return cfg.StateBackend
}
