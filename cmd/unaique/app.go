package main

import (
	"os"
	"time"

	"github.com/zllovesuki/unaique/airtable"
	"github.com/zllovesuki/unaique/broker"
	"github.com/zllovesuki/unaique/config"
	"github.com/zllovesuki/unaique/customer"
	"github.com/zllovesuki/unaique/db"
	"github.com/zllovesuki/unaique/idea"
	"github.com/zllovesuki/unaique/lock"
	"github.com/zllovesuki/unaique/memstore"
	"github.com/zllovesuki/unaique/order"
	"github.com/zllovesuki/unaique/template"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v7"
	extErrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries what every subcommand shares
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	sentry  bool
	closers []func()
}

func (a *app) init(component string) error {
	var err error

	// Determine running environment and initialize structural logger
	if config.Environment(os.Getenv("API_ENV")) == config.EnvProduction {
		a.logger, err = zap.NewProduction()
	} else {
		a.logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return extErrors.Wrap(err, "Cannot initialize logger")
	}
	a.logger = a.logger.With(zap.String("Version", Version))

	a.cfg, err = config.Load(config.DotFile())
	if err != nil {
		return err
	}

	if a.cfg.SentryDSN == "" {
		return nil
	}

	// Initialize sentry for error reporting
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         a.cfg.SentryDSN,
		Environment: string(a.cfg.Environment),
		Release:     Version,
		Debug:       !a.cfg.IsProduction(),
	}); err != nil {
		return extErrors.Wrap(err, "Cannot initialize sentry")
	}
	a.sentry = true

	// Attach sentry to zap so we can do automatic error capturing
	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level: zapcore.ErrorLevel,
		Tags: map[string]string{
			"component": component,
		},
	}, zapsentry.NewSentryClientFromClient(sentry.CurrentHub().Client()))
	if err != nil {
		return extErrors.Wrap(err, "Cannot attach sentry to logger")
	}
	a.logger = zapsentry.AttachCoreToLogger(core, a.logger)
	return nil
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	if a.sentry {
		sentry.Flush(time.Second * 2)
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

// stores is one record store backend
type stores struct {
	customers customer.Repository
	templates template.Repository
	ideas     idea.Repository
	orders    order.Repository
}

func (a *app) openStores() (*stores, error) {
	if err := a.cfg.ValidateStore(); err != nil {
		return nil, err
	}
	logger := a.logger.With(zap.String("Backend", string(a.cfg.StoreBackend)))

	switch a.cfg.StoreBackend {
	case config.BackendPostgres:
		gdb, err := db.New(db.Options{
			Logger: logger,
			URI:    a.cfg.PostgresURI,
		})
		if err != nil {
			return nil, err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			a.onClose(func() { sqlDB.Close() })
		}
		if err := db.Migrate(gdb); err != nil {
			return nil, err
		}
		return &stores{
			customers: db.NewCustomers(gdb),
			templates: db.NewTemplates(gdb),
			ideas:     db.NewIdeas(gdb),
			orders:    db.NewOrders(gdb),
		}, nil

	case config.BackendMemory:
		logger.Warn("Using in-memory record store, data is lost on exit")
		s := memstore.New()
		return &stores{
			customers: s.Customers,
			templates: s.Templates,
			ideas:     s.Ideas,
			orders:    s.Orders,
		}, nil

	default:
		client, err := airtable.New(airtable.Options{
			APIKey:  a.cfg.AirtableAPIKey,
			BaseID:  a.cfg.AirtableBaseID,
			BaseURL: a.cfg.AirtableBaseURL,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		return &stores{
			customers: client.Customers(),
			templates: client.Templates(),
			ideas:     client.Ideas(),
			orders:    client.Orders(),
		}, nil
	}
}

// openLocker returns a Redis backed Locker when REDIS_URI is set, a process local one otherwise
func (a *app) openLocker() (lock.Locker, error) {
	if a.cfg.RedisURI == "" {
		return lock.NewLocal(), nil
	}
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{a.cfg.RedisURI},
		Password: a.cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping().Result(); err != nil {
		rdb.Close()
		return nil, extErrors.Wrap(err, "Cannot connect to Redis")
	}
	a.onClose(func() { rdb.Close() })

	return lock.NewRedis(lock.RedisOptions{
		Redis:  rdb,
		Logger: a.logger,
	})
}

// openPublisher returns an AMQP publisher when AMQP_URI is set, a no-op one otherwise
func (a *app) openPublisher() (broker.Publisher, error) {
	if a.cfg.AMQPURI == "" {
		return broker.Nop{}, nil
	}
	p, err := broker.NewAMQPPublisher(broker.AMQPOptions{
		URI:      a.cfg.AMQPURI,
		Exchange: a.cfg.AMQPExchange,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.onClose(p.Close)
	return p, nil
}

func (a *app) customerManager(s *stores, locker lock.Locker) (*customer.Manager, error) {
	return customer.NewManager(customer.ManagerOptions{
		Repository:           s.customers,
		Locker:               locker,
		Logger:               a.logger,
		EnforcePhoneOnUpdate: a.cfg.EnforcePhoneOnUpdate,
	})
}
