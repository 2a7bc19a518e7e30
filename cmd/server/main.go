package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/cache"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/config"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/database"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/scheduler"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/server"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/weatherapi"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load("./config.yaml")
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.NewDB(config.GetDatabaseDSN(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	redisCfg := config.GetRedisConfig()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	responseCache := cache.New(redisClient, cfg.CacheTTL())

	apiKey := config.GetWeatherAPIKey()
	if apiKey == "" {
		log.Warn("WEATHER_API_KEY is not set; live weather fetches will fail")
	}
	var clientOpts []weatherapi.Option
	if base := config.GetWeatherAPIBase(); base != "" {
		clientOpts = append(clientOpts, weatherapi.WithBaseURL(base))
	}
	fetcher := weatherapi.NewClient(apiKey, clientOpts...)

	collector := scheduler.New(cfg.Monitoring.Locations, cfg.FetchInterval(),
		cfg.Monitoring.RetentionDays, fetcher, db, log)
	if err := collector.Start(); err != nil {
		log.WithError(err).Fatal("failed to start collector")
	}

	srv := server.New(cfg, db, fetcher, responseCache, log)

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("starting server")
		if err := srv.Listen(cfg.Server.Addr); err != nil {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	collector.Stop()
}
