package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonnyWalker81/moodtrack/backend/internal/config"
	"github.com/JonnyWalker81/moodtrack/backend/internal/database"
	"github.com/JonnyWalker81/moodtrack/backend/internal/logger"
	"github.com/JonnyWalker81/moodtrack/backend/internal/metrics"
	"github.com/JonnyWalker81/moodtrack/backend/internal/repository"
	"github.com/JonnyWalker81/moodtrack/backend/internal/service"
	"github.com/JonnyWalker81/moodtrack/backend/pkg/supabase"
)

// app holds the wired dependencies shared by serve and report
type app struct {
	supabase *supabase.Client
	metrics  *metrics.Metrics
	insights *service.InsightsService
	access   *service.AccessResolver

	closers []func() error
}

// newApp connects the configured stores and builds the insights engine
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (_ *app, err error) {
	a := &app{
		supabase: supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey),
		metrics:  metrics.New(),
	}
	defer func() {
		if err != nil {
			a.close(log)
		}
	}()

	var (
		checkIns repository.CheckInRepository
		insights repository.InsightRepository
		users    repository.UserRepository
	)

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgresDB(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { return database.Close(db) })

		if cfg.Database.AutoMigrate {
			if err := repository.AutoMigrate(db); err != nil {
				return nil, err
			}
			log.Info("insights table migrated")
		}

		checkIns = repository.NewGormCheckInRepository(db)
		insights = repository.NewGormInsightRepository(db)
		users = repository.NewGormUserRepository(db)
	case config.DriverSupabase:
		checkIns = repository.NewCheckInRepository(a.supabase)
		insights = repository.NewInsightRepository(a.supabase)
		users = repository.NewUserRepository(a.supabase)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Redis.URL != "" {
		client, err := repository.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		insights = repository.NewRedisInsightCache(client, insights, cfg.Redis.TTL)
		log.Info("redis insight cache enabled", logger.Duration("ttl", cfg.Redis.TTL))
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a.insights = service.NewInsightsService(checkIns, insights, service.InsightsConfig{
		Location:          loc,
		StoreTimeout:      cfg.Store.Timeout,
		CacheWriteTimeout: cfg.Insights.CacheWriteTimeout,
	}, a.metrics)
	a.access = service.NewAccessResolver(users)

	log.Info("insights engine ready",
		logger.String("store", cfg.Store.Driver),
		logger.String("timezone", loc.String()),
	)

	return a, nil
}

// close drains pending insight writes, then releases store connections in
// reverse order of acquisition
func (a *app) close(log logger.Logger) {
	if a.insights != nil {
		a.insights.Wait()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn("error releasing resources", logger.Err(err))
	}
}
