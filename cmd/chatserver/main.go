package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/AnychainX/Live-Commerce-Chat/internal/config"
	"github.com/AnychainX/Live-Commerce-Chat/internal/handler"
	"github.com/AnychainX/Live-Commerce-Chat/internal/hub"
	"github.com/AnychainX/Live-Commerce-Chat/internal/logging"
	"github.com/AnychainX/Live-Commerce-Chat/internal/room"
	"github.com/AnychainX/Live-Commerce-Chat/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(logging.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "live-commerce-chat",
	})
	logger := logging.L()

	// Room registry: the single owner of all room state, passed by
	// reference to everything that needs it.
	registry := room.NewRegistry(room.SystemClock(), room.Limits{
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		LogCapacity:      cfg.Chat.LogCapacity,
		SlowModeInterval: cfg.Chat.SlowModeInterval,
		PinDuration:      cfg.Chat.PinDuration,
	})

	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run()

	chatSvc := service.NewChatService(registry, wsHub)

	wsHandler := handler.NewWSHandler(wsHub, chatSvc, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(registry)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	httpHandler.RegisterRoutes(r)
	r.GET("/chat/ws", gin.WrapF(wsHandler.HandleWebSocket))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("chat server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down chat server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("chat server stopped")
}
