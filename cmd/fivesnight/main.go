package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JoshPaulie/fivesnight/internal/config"
	"github.com/JoshPaulie/fivesnight/internal/discord"
	"github.com/JoshPaulie/fivesnight/internal/httpapi"
	"github.com/JoshPaulie/fivesnight/internal/hub"
	"github.com/JoshPaulie/fivesnight/internal/ledger"
	"github.com/JoshPaulie/fivesnight/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting fivesnight",
		"http_addr", cfg.HTTPAddr,
		"ledger", cfg.LedgerPath,
		"session_timeout", cfg.SessionTimeout,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	led := ledger.New(cfg.LedgerPath)
	h := hub.NewHub(ctx, led, cfg.SessionTimeout)

	bot, err := discord.New(cfg.Token, cfg.GuildID, h, led)
	if err != nil {
		logger.Fatal("failed to create bot", "error", err)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.SetupRoutes(h, led),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := bot.Start(); err != nil {
			return err
		}
		<-gctx.Done()
		logger.Info("closing discord session")
		return bot.Stop()
	})

	g.Go(func() error {
		logger.Info("http server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("shutdown with error", "error", err)
	}

	logger.Info("fivesnight exited")
}
