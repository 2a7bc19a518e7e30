// Command collect runs a single collection pass over the configured
// locations and exits. Useful for cron-style setups and for seeding a fresh
// database before the server's scheduler takes over.
package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/config"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/database"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/scheduler"
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

	apiKey := config.GetWeatherAPIKey()
	if apiKey == "" {
		log.Fatal("WEATHER_API_KEY is not set")
	}
	var clientOpts []weatherapi.Option
	if base := config.GetWeatherAPIBase(); base != "" {
		clientOpts = append(clientOpts, weatherapi.WithBaseURL(base))
	}
	fetcher := weatherapi.NewClient(apiKey, clientOpts...)

	collector := scheduler.New(cfg.Monitoring.Locations, cfg.FetchInterval(),
		cfg.Monitoring.RetentionDays, fetcher, db, log)
	collector.CollectAll()

	log.Info("collection pass completed")
}
