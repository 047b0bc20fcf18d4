package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"supplier-match/internal/config"
	"supplier-match/internal/metrics"
	serverhttp "supplier-match/server/http"
)

func main() {
	cfgFile := pflag.String("config", "", "path to supplier-match.yaml")
	pflag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg)

	m, err := cfg.Matcher()
	if err != nil {
		logger.Fatal().Err(err).Msg("matcher")
	}
	vocab := m.Tokenizer().Vocabulary()
	logger.Info().
		Str("vocabulary", vocab.Name).
		Str("vocabulary_version", vocab.Version).
		Float64("threshold", m.Threshold()).
		Msg("matcher ready")

	var rec *metrics.Recorder
	if cfg.Metrics.Enabled {
		rec = metrics.New()
	}

	r := serverhttp.NewRouter(cfg, logger, m, rec)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info().Msg("server shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("bye")
}
