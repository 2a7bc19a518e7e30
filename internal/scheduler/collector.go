// Package scheduler drives periodic collection: every interval it fetches
// current conditions for each monitored location and persists them, plus a
// daily retention sweep over old readings.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
)

// fetchTimeout bounds one location's fetch plus store.
const fetchTimeout = 30 * time.Second

// Fetcher retrieves current conditions for a location.
type Fetcher interface {
	FetchCurrent(ctx context.Context, location string) (*models.Reading, error)
}

// Store persists fetched readings.
type Store interface {
	InsertReading(r *models.Reading) error
	CleanupOldReadings(days int) (int64, error)
}

// Collector periodically fetches readings for the configured locations.
type Collector struct {
	scheduler     *gocron.Scheduler
	fetcher       Fetcher
	store         Store
	locations     []string
	interval      time.Duration
	retentionDays int
	log           *logrus.Logger
}

// New creates a Collector.
func New(locations []string, interval time.Duration, retentionDays int,
	fetcher Fetcher, store Store, log *logrus.Logger) *Collector {
	return &Collector{
		scheduler:     gocron.NewScheduler(time.UTC),
		fetcher:       fetcher,
		store:         store,
		locations:     locations,
		interval:      interval,
		retentionDays: retentionDays,
		log:           log,
	}
}

// Start schedules the collection and cleanup jobs and runs the collection
// once immediately, so a fresh deployment has data before the first tick.
func (c *Collector) Start() error {
	if len(c.locations) == 0 {
		c.log.Warn("no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(c.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	if _, err := c.scheduler.Every(minutes).Minutes().StartImmediately().Do(c.CollectAll); err != nil {
		return err
	}

	if c.retentionDays > 0 {
		if _, err := c.scheduler.Every(1).Day().At("03:00").Do(c.cleanup); err != nil {
			return err
		}
	}

	c.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (c *Collector) Stop() {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
}

// CollectAll fetches and stores current conditions for every location,
// concurrently. One location failing never blocks the others.
func (c *Collector) CollectAll() {
	c.log.WithField("locations", len(c.locations)).Info("running collection job")

	var wg sync.WaitGroup
	for _, location := range c.locations {
		location := location
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()

			if err := c.collectOne(ctx, location); err != nil {
				c.log.WithField("location", location).WithError(err).Error("collection failed")
			}
		}()
	}
	wg.Wait()

	c.log.Info("collection job completed")
}

func (c *Collector) collectOne(ctx context.Context, location string) error {
	reading, err := c.fetcher.FetchCurrent(ctx, location)
	if err != nil {
		return err
	}
	return c.store.InsertReading(reading)
}

func (c *Collector) cleanup() {
	deleted, err := c.store.CleanupOldReadings(c.retentionDays)
	if err != nil {
		c.log.WithError(err).Error("retention cleanup failed")
		return
	}
	c.log.WithField("deleted", deleted).Info("retention cleanup completed")
}
