package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"contentdesk/internal/config"
	"contentdesk/internal/db"
	"contentdesk/internal/router"
	"contentdesk/internal/services"
	"contentdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogger()
	gin.SetMode(cfg.GinMode)

	// Initialize Database
	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	posts := store.NewPostStore(gdb)
	snapshots := store.NewAnalyticsStore(gdb)

	r := router.New(router.Deps{
		Posts:     services.NewPostService(posts),
		Analytics: services.NewAnalyticsService(posts, snapshots),
		DB:        posts,
	}, cfg.CORSAllowOrigin)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("contentdesk server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}
