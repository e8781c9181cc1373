package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atom-sv/leadagent/internal/eventlog"
	"github.com/atom-sv/leadagent/internal/httpapi"
	"github.com/atom-sv/leadagent/internal/store"
)

type App struct {
	cfg      Config
	logger   *log.Logger
	db       *pgxpool.Pool
	store    *store.Store
	eventLog *eventlog.Logger
}

func New(cfg Config, logger *log.Logger) (*App, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s := store.New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		store:    s,
		eventLog: eventlog.New(db),
	}, nil
}

func (a *App) Router(sessions *httpapi.SessionRegistry) http.Handler {
	routerCfg := httpapi.RouterConfig{
		OpenAIAPIKey:      a.cfg.OpenAIAPIKey,
		OpenAIModel:       a.cfg.OpenAIModel,
		ElevenLabsAPIKey:  a.cfg.ElevenLabsAPIKey,
		TTSVoiceID:        a.cfg.TTSVoiceID,
		TTSStability:      a.cfg.TTSStability,
		TTSSimilarity:     a.cfg.TTSSimilarity,
		DashboardKey:      a.cfg.DashboardKey,
		JWTSecret:         a.cfg.JWTSecret,
		JWTExpiry:         a.cfg.JWTExpiry,
		DiscordWebhookURL: a.cfg.DiscordWebhookURL,
	}
	return httpapi.NewRouter(routerCfg, a.logger, a.store, a.eventLog, sessions)
}

func (a *App) Close() error {
	if a.db != nil {
		a.db.Close()
	}
	return nil
}
