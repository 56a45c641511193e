package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "inkwell/internal/config"
	"inkwell/internal/feed"
	router "inkwell/internal/http"
	"inkwell/internal/store/sqlstore"

	"github.com/gin-gonic/gin"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db := intconfig.ConnectDB(env.DBDSN)
	defer intconfig.CloseDB()

	hub := feed.NewHub()
	broadcaster := &feed.Broadcaster{
		Interval: env.FeedInterval,
		Sources: []feed.Source{
			sqlstore.Quotes{DB: db},
			sqlstore.Manga{DB: db},
		},
		Hub: hub,
	}

	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	go broadcaster.Run(feedCtx)

	r := router.NewRouter(env, hub)

	// no WriteTimeout: /api/updates holds connections open indefinitely
	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	stopFeed()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly.")
}
