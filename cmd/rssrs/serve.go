// ABOUTME: Serve command wiring store, event bus, poller and HTTP API together
// ABOUTME: Runs until SIGINT/SIGTERM, then shuts the pieces down in order

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rssrs/rssrs/internal/adapter"
	"github.com/rssrs/rssrs/internal/events"
	"github.com/rssrs/rssrs/internal/poller"
	"github.com/rssrs/rssrs/internal/server"
	"github.com/rssrs/rssrs/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the aggregation daemon",
	Long:  "Start the polling scheduler and the JSON API, and run until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func runServe() error {
	log := newLogger(cfg.Debug)

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	bus := events.NewBus(pubsub, log)
	defer bus.Close()

	dbPath := filepath.Join(cfg.GetDataDir(), store.DBFileName)
	st, err := store.Open(dbPath, bus, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	p := poller.New(st, dbPath, adapter.DefaultRegistry(), cfg.Debug, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		p.Run(ctx)
	}()

	httpSrv := &http.Server{
		Addr:    cfg.GetAddr(),
		Handler: server.New(st, p, log).Handler(),
	}
	httpErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("listening")
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-httpErr:
		stop()
		<-pollerDone
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	<-pollerDone
	return nil
}
