package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/waterlily/app"
	"github.com/mbolis/waterlily/config"
	"github.com/mbolis/waterlily/database"
	"github.com/mbolis/waterlily/log"
	"github.com/mbolis/waterlily/routes"
	"github.com/mbolis/waterlily/routes/middlewares"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal("main.config: ", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if cfg.InsecureSecret() {
		log.Warnf("main.config: signing tokens with the built-in secret %q, set JWT_SECRET", config.DefaultTokenSecret)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open: ", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := app.New(cfg, db)

	if cfg.SeedDemo {
		seeded, err := app.Surveys.SeedDemo(ctx)
		if err != nil {
			log.Fatal("main.seed: ", err)
		}
		if seeded {
			log.Info("Seeded demo survey")
		}
	}

	var authLimit *middlewares.RateLimiter
	if cfg.AuthRateLimit > 0 {
		authLimit = middlewares.NewRateLimiter(cfg.AuthRateLimit, 5*time.Minute)
		defer authLimit.Stop()
	}

	handler := routes.Wire(app, authLimit)

	err = runServer(ctx, cfg, handler)
	if err != nil {
		log.Errorf("main.server: %s", err)
	}
}

// runServer serves until ctx is cancelled, then drains in-flight requests.
func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", cfg.Url())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return err
	}
	if err = <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
