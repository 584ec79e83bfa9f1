package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/judgegodwins/chess-rooms/api"
	"github.com/judgegodwins/chess-rooms/archive"
	"github.com/judgegodwins/chess-rooms/engine"
	"github.com/judgegodwins/chess-rooms/game"
	"github.com/judgegodwins/chess-rooms/util"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	util.InitValidator()

	config, err := util.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the archive stays a nil interface when disabled
	var archiver archive.Archiver
	if config.ArchiveEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
			DB:       0,
		})
		defer func() { _ = rdb.Close() }()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis unreachable at %s: %w", config.RedisAddress, err)
		}
		archiver = archive.NewRedis(rdb, config.ArchiveTTL, log)
		log.Info("game archive enabled", "addr", config.RedisAddress, "ttl", config.ArchiveTTL)
	}

	registry := game.NewRegistry(game.Settings{
		Engine:      engine.NewChess(),
		ClockBudget: config.ClockBudget,
		IDLength:    config.RoomIDLength,
	})

	server := api.NewServer(config, registry, archiver, log)

	return server.Start(ctx)
}
