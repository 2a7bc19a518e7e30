package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/metrics"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
	log  *logrus.Logger
}

// NewDB creates a new database connection and initializes the schema
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
// example: "user:pass@tcp(localhost:3306)/envmon?parseTime=true"
func NewDB(dsn string, log *logrus.Logger) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn, log: log}

	// Initialize schema
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	// MySQL doesn't support multiple statements in one Exec, so we need to split them
	statements := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			location VARCHAR(255) NOT NULL,
			timestamp DATETIME(6) NOT NULL,
			temp_c DOUBLE NULL,
			humidity DOUBLE NULL,
			wind_kph DOUBLE NULL,
			wind_dir VARCHAR(10) NOT NULL DEFAULT '',
			pressure_mb DOUBLE NULL,
			visibility_km DOUBLE NULL,
			uv_index DOUBLE NULL,
			pm2_5 DOUBLE NULL,
			pm10 DOUBLE NULL,
			o3 DOUBLE NULL,
			no2 DOUBLE NULL,
			so2 DOUBLE NULL,
			co DOUBLE NULL,
			condition_text VARCHAR(255) NOT NULL DEFAULT '',
			is_day BOOLEAN NOT NULL DEFAULT FALSE,
			INDEX idx_readings_location_timestamp (location, timestamp),
			INDEX idx_readings_timestamp (timestamp)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS predictions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			location VARCHAR(255) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			prediction_for DATETIME(6) NOT NULL,
			predicted_temp_c DOUBLE NOT NULL,
			predicted_humidity DOUBLE NOT NULL,
			predicted_pm2_5 DOUBLE NOT NULL,
			confidence_score DOUBLE NOT NULL,
			algorithm VARCHAR(100) NOT NULL,
			data_points_used INT NOT NULL,
			INDEX idx_predictions_location (location),
			INDEX idx_predictions_for (prediction_for)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// InsertReading stores one observation row
func (db *DB) InsertReading(r *models.Reading) error {
	defer db.publishPoolStats()

	query := `INSERT INTO readings
		(location, timestamp, temp_c, humidity, wind_kph, wind_dir, pressure_mb,
		 visibility_km, uv_index, pm2_5, pm10, o3, no2, so2, co, condition_text, is_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryStart := time.Now()
	res, err := db.conn.Exec(query,
		r.Location, r.Timestamp,
		nullable(r.TempC), nullable(r.Humidity), nullable(r.WindKph), r.WindDir,
		nullable(r.PressureMb), nullable(r.VisibilityKm), nullable(r.UVIndex),
		nullable(r.PM25), nullable(r.PM10), nullable(r.O3), nullable(r.NO2),
		nullable(r.SO2), nullable(r.CO), r.ConditionText, r.IsDay)
	metrics.RecordDBQuery("INSERT", "readings", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to insert reading for %s: %w", r.Location, err)
	}

	if id, err := res.LastInsertId(); err == nil {
		r.ID = id
	}
	return nil
}

// GetHistory returns all readings for a location over the trailing window,
// oldest first. The prediction engine depends on that ordering.
func (db *DB) GetHistory(location string, hours int) ([]models.Reading, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	query := `SELECT id, location, timestamp, temp_c, humidity, wind_kph, wind_dir,
		pressure_mb, visibility_km, uv_index, pm2_5, pm10, o3, no2, so2, co,
		condition_text, is_day
		FROM readings WHERE location = ? AND timestamp >= ? ORDER BY timestamp ASC`

	queryStart := time.Now()
	rows, err := db.conn.Query(query, location, since)
	metrics.RecordDBQuery("SELECT", "readings", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", location, err)
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}

	return readings, rows.Err()
}

// LatestReading returns the most recent reading for a location, or nil when
// the location has no data yet.
func (db *DB) LatestReading(location string) (*models.Reading, error) {
	query := `SELECT id, location, timestamp, temp_c, humidity, wind_kph, wind_dir,
		pressure_mb, visibility_km, uv_index, pm2_5, pm10, o3, no2, so2, co,
		condition_text, is_day
		FROM readings WHERE location = ? ORDER BY timestamp DESC LIMIT 1`

	queryStart := time.Now()
	rows, err := db.conn.Query(query, location)
	metrics.RecordDBQuery("SELECT", "readings", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest reading for %s: %w", location, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	r, err := scanReading(rows)
	if err != nil {
		return nil, err
	}
	return &r, rows.Err()
}

// InsertPrediction stores a generated single-step prediction
func (db *DB) InsertPrediction(location string, p *models.Prediction) error {
	query := `INSERT INTO predictions
		(location, created_at, prediction_for, predicted_temp_c, predicted_humidity,
		 predicted_pm2_5, confidence_score, algorithm, data_points_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryStart := time.Now()
	res, err := db.conn.Exec(query,
		location, time.Now(), p.PredictionFor,
		p.PredictedTempC, p.PredictedHumidity, p.PredictedPM25,
		p.ConfidenceScore, p.Algorithm, p.DataPointsUsed)
	metrics.RecordDBQuery("INSERT", "predictions", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to insert prediction for %s: %w", location, err)
	}

	if id, err := res.LastInsertId(); err == nil {
		p.ID = id
	}
	return nil
}

// RecentPredictions returns stored predictions for a location, newest first.
func (db *DB) RecentPredictions(location string, limit int) ([]models.Prediction, error) {
	query := `SELECT id, location, prediction_for, predicted_temp_c, predicted_humidity,
		predicted_pm2_5, confidence_score, algorithm, data_points_used
		FROM predictions WHERE location = ? ORDER BY created_at DESC LIMIT ?`

	queryStart := time.Now()
	rows, err := db.conn.Query(query, location, limit)
	metrics.RecordDBQuery("SELECT", "predictions", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions for %s: %w", location, err)
	}
	defer rows.Close()

	var predictions []models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.ID, &p.Location, &p.PredictionFor, &p.PredictedTempC,
			&p.PredictedHumidity, &p.PredictedPM25, &p.ConfidenceScore,
			&p.Algorithm, &p.DataPointsUsed); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// Stats reports row counts and per-location coverage
func (db *DB) Stats() (*models.DatabaseStats, error) {
	stats := &models.DatabaseStats{Locations: map[string]models.LocationStats{}}

	queryStart := time.Now()
	row := db.conn.QueryRow(`SELECT COUNT(*) FROM readings`)
	err := row.Scan(&stats.TotalReadings)
	metrics.RecordDBQuery("SELECT", "readings", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count readings: %w", err)
	}

	queryStart = time.Now()
	row = db.conn.QueryRow(`SELECT COUNT(*) FROM predictions`)
	err = row.Scan(&stats.TotalPredictions)
	metrics.RecordDBQuery("SELECT", "predictions", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count predictions: %w", err)
	}

	query := `SELECT location, COUNT(*), MIN(timestamp), MAX(timestamp)
		FROM readings GROUP BY location`
	queryStart = time.Now()
	rows, err := db.conn.Query(query)
	metrics.RecordDBQuery("SELECT", "readings", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query location stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var location string
		var ls models.LocationStats
		if err := rows.Scan(&location, &ls.Readings, &ls.Oldest, &ls.Newest); err != nil {
			return nil, err
		}
		stats.Locations[location] = ls
	}

	return stats, rows.Err()
}

// CleanupOldReadings deletes readings older than the retention window and
// returns how many rows were removed.
func (db *DB) CleanupOldReadings(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	queryStart := time.Now()
	res, err := db.conn.Exec(`DELETE FROM readings WHERE timestamp < ?`, cutoff)
	metrics.RecordDBQuery("DELETE", "readings", time.Since(queryStart), err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old readings: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		db.log.WithFields(logrus.Fields{"deleted": deleted, "days": days}).
			Info("cleaned up old readings")
	}
	return deleted, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func (db *DB) publishPoolStats() {
	stats := db.conn.Stats()
	metrics.UpdateDBConnectionStats(stats.OpenConnections, stats.InUse, stats.Idle)
}

// nullable converts an optional field to its SQL representation.
func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func scanReading(rows *sql.Rows) (models.Reading, error) {
	var r models.Reading
	var tempC, humidity, windKph, pressureMb, visibilityKm, uvIndex sql.NullFloat64
	var pm25, pm10, o3, no2, so2, co sql.NullFloat64

	if err := rows.Scan(&r.ID, &r.Location, &r.Timestamp,
		&tempC, &humidity, &windKph, &r.WindDir, &pressureMb, &visibilityKm,
		&uvIndex, &pm25, &pm10, &o3, &no2, &so2, &co,
		&r.ConditionText, &r.IsDay); err != nil {
		return r, fmt.Errorf("failed to scan reading: %w", err)
	}

	r.TempC = fromNullable(tempC)
	r.Humidity = fromNullable(humidity)
	r.WindKph = fromNullable(windKph)
	r.PressureMb = fromNullable(pressureMb)
	r.VisibilityKm = fromNullable(visibilityKm)
	r.UVIndex = fromNullable(uvIndex)
	r.PM25 = fromNullable(pm25)
	r.PM10 = fromNullable(pm10)
	r.O3 = fromNullable(o3)
	r.NO2 = fromNullable(no2)
	r.SO2 = fromNullable(so2)
	r.CO = fromNullable(co)
	return r, nil
}
