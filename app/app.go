package app

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mbolis/waterlily/auth"
	"github.com/mbolis/waterlily/config"
	"github.com/mbolis/waterlily/database"
	"github.com/mbolis/waterlily/metrics"
	"github.com/mbolis/waterlily/survey"
)

// App bundles what the HTTP handlers need.
type App struct {
	*database.DB
	config.Config

	Auth      *auth.Service
	Surveys   *survey.Service
	TokenAuth *jwtauth.JWTAuth

	Metrics  *metrics.Collector
	Registry *prometheus.Registry

	Started time.Time
}

// New wires the services over an open database.
func New(cfg config.Config, db *database.DB) App {
	tokens := auth.NewTokenAuth(cfg.TokenSecret)
	registry := prometheus.NewRegistry()

	return App{
		DB:        db,
		Config:    cfg,
		Auth:      auth.NewService(db, tokens, cfg.TokenTTL, cfg.BcryptCost),
		Surveys:   survey.NewService(db, cfg.RecordRespondent),
		TokenAuth: tokens,
		Metrics:   metrics.NewCollector(registry),
		Registry:  registry,
		Started:   time.Now(),
	}
}
