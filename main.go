package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"fairtickets/internal/app"
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	log.Init(config.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var redisClient *redis.Client
	if config.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: config.RedisAddr,
		})
		defer redisClient.Close()
	}

	var db *sqlx.DB
	if config.PostgresURL != "" {
		db, err = sqlx.Open("postgres", config.PostgresURL)
		if err != nil {
			panic(err)
		}
		defer db.Close()
	}

	application, err := app.NewApp(
		app.Config{
			HTTPAddr:            config.HTTPAddr,
			CollaboratorTimeout: config.CollaboratorTimeout,
			JaegerEndpoint:      config.JaegerEndpoint,
		},
		watermill.NewStdLogger(config.LogLevel >= logrus.DebugLevel, config.LogLevel >= logrus.TraceLevel),
		redisClient,
		db,
	)
	if err != nil {
		panic(err)
	}

	logrus.Info("Server starting...")

	if err := application.Run(ctx); err != nil {
		logrus.WithError(err).Error("Service stopped with error")
		os.Exit(1)
	}
}
