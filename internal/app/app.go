// Package app wires the collections engine from configuration. Both binaries share it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	advanceStore "github.com/MrJamesThe3rd/harvest/internal/advance/store"
	"github.com/MrJamesThe3rd/harvest/internal/aging"
	"github.com/MrJamesThe3rd/harvest/internal/collection"
	collectionStore "github.com/MrJamesThe3rd/harvest/internal/collection/store"
	"github.com/MrJamesThe3rd/harvest/internal/config"
	"github.com/MrJamesThe3rd/harvest/internal/database"
	"github.com/MrJamesThe3rd/harvest/internal/job"
	"github.com/MrJamesThe3rd/harvest/internal/lifecycle"
	"github.com/MrJamesThe3rd/harvest/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/harvest/internal/matching/store"
	"github.com/MrJamesThe3rd/harvest/internal/notify"
	"github.com/MrJamesThe3rd/harvest/internal/statement"
	"github.com/MrJamesThe3rd/harvest/internal/webhook"
)

type App struct {
	Config *config.Config

	DB    *sql.DB
	Redis *redis.Client
	push  *notify.PushSender

	Advances    *advance.Service
	Collections *collectionStore.Store
	Dispatcher  *collection.Dispatcher
	Runner      *job.Runner
	Aging       *aging.Generator
	Matching    *matching.Service
	Statements  *statement.Service
	Webhooks    *webhook.Processor
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	a := &App{Config: cfg, DB: db, Redis: rdb}

	var push collection.Sender

	if len(cfg.Kafka.Brokers) > 0 {
		ps, err := notify.NewPushSender(cfg.Kafka.Brokers, cfg.Kafka.PushTopic)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("init push sender: %w", err)
		}

		a.push = ps
		push = ps
	} else {
		slog.Warn("push channel disabled, no kafka brokers configured", "module", "app")
	}

	var (
		advances    = advanceStore.New(db)
		collections = collectionStore.New(db)
	)

	a.Advances = advance.NewService(advances, cfg.Location())
	a.Collections = collections
	a.Dispatcher = collection.NewDispatcher(collections, collection.DefaultRules(), notify.Senders(cfg, push), collection.Options{
		Concurrency:    cfg.Collections.Concurrency,
		ChannelTimeout: cfg.Collections.ChannelTimeout,
	})
	a.Runner = job.NewRunner(
		job.NewRedisLocker(rdb),
		lifecycle.NewUpdater(advances),
		a.Dispatcher,
		cfg.Location(),
		cfg.Collections.RunLockTTL,
	)
	a.Aging = aging.NewGenerator(advances, cfg.Location())
	a.Matching = matching.NewService(matchingStore.New(db))
	a.Statements = statement.NewService(a.Matching, a.Advances, cfg.Location())
	a.Webhooks = webhook.NewProcessor(a.Advances)

	return a, nil
}

// Scheduler fires the daily run at COLLECTIONS_RUN_AT local time.
func (a *App) Scheduler() (*job.Scheduler, error) {
	hour, minute, err := a.Config.RunAt()
	if err != nil {
		return nil, err
	}

	return job.NewScheduler(a.Runner, hour, minute, a.Config.Location()), nil
}

func (a *App) Close() error {
	var errs []error

	if a.push != nil {
		errs = append(errs, a.push.Close())
	}

	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}

	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}

	return errors.Join(errs...)
}
