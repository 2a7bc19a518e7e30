package config

import (
	"fmt"
	"os"
)

// Returns the database connection string
// It checks for environment variables first, then falls back to a default
func GetDatabaseDSN() string {
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_NAME")

	if user != "" && password != "" && host != "" && port != "" && database != "" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, password, host, port, database)
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn
	}

	return "envmon:envmon123@tcp(localhost:3306)/envmon?parseTime=true"
}

// GetWeatherAPIKey returns the weatherapi.com key from the environment.
// An empty key disables collection; the API layer still serves stored data.
func GetWeatherAPIKey() string {
	return os.Getenv("WEATHER_API_KEY")
}

// GetWeatherAPIBase returns an override for the upstream endpoint, empty
// when the provider default applies.
func GetWeatherAPIBase() string {
	return os.Getenv("WEATHER_API_BASE")
}
