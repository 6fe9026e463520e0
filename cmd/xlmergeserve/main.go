// xlmergeserve - HTTP service around the xlmerge reconciliation engine.
//
// Usage:
//
//	xlmergeserve [--config xlmergeserve.yaml] [--addr :8080]
//
// The service accepts multipart uploads of two or more .xlsx files,
// merges them by the inferred (or caller-chosen) key column, and keeps
// a persistent history of saved merge artifacts.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/xlmerge/pkg/history"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	addrOverride := flag.String("addr", "", "listen address override (e.g. :8080)")
	flag.Parse()

	// Pretty console log; switch to JSON in production via log.Logger = zerolog.New(os.Stderr)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("config load failed")
	}
	if *addrOverride != "" {
		cfg.Server.Addr = *addrOverride
	}

	repo, err := history.OpenSQLite(cfg.Storage.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.Storage.DBPath).Msg("history store open failed")
	}
	defer repo.Close()

	saver, err := history.NewSaver(cfg.Storage.Dir, repo)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Storage.Dir).Msg("artifact directory init failed")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(cfg, repo, saver),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("dir", cfg.Storage.Dir).Msg("xlmergeserve listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("bye")
}
