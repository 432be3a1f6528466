package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/varmanaa/seed/cache"
	"github.com/varmanaa/seed/db"
	"github.com/varmanaa/seed/leaderboard"
	"github.com/varmanaa/seed/logger/dlog"
	"github.com/varmanaa/seed/platform"
)

func main() {
	if err := godotenv.Load(); err != nil {
		dlog.Warn("no .env file loaded", "error", err)
	}

	ctx := context.Background()

	store, err := db.Connect(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		dlog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		dlog.Error("failed to create tables", "error", err)
		os.Exit(1)
	}

	var board *leaderboard.Board
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		board, err = leaderboard.Connect(ctx, redisURL)
		if err != nil {
			dlog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer board.Close()
	} else {
		dlog.Warn("REDIS_URL not set, standings served from postgres only")
	}

	bot := platform.New(cache.New(), store, board)
	if err := bot.Setup(); err != nil {
		dlog.Error("failed to start bot", "error", err)
		os.Exit(1)
	}
	defer bot.Close()

	dlog.Info("Bot is now running. Press CTRL-C to exit.")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	dlog.Info("Graceful shutdown")
}
