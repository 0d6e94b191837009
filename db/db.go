package db

import (
	"context"
	"fmt"
	"time"

	"github.com/zllovesuki/unaique/customer"
	"github.com/zllovesuki/unaique/template"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

type patchedLogger struct {
	zapgorm2.Logger
}

// ErrRecordNotFound will be handled in application logic, let's not forward this to zap/sentry
func (l *patchedLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	l.Logger.Trace(ctx, begin, fc, err)
}

// Options contains the configuration for the database connection
type Options struct {
	Logger *zap.Logger
	// URI is a PostgreSQL connection string, used when Dialector is nil
	URI string
	// Dialector overrides the PostgreSQL driver, e.g. sqlite in tests
	Dialector gorm.Dialector
}

func (o *Options) validate() error {
	if o == nil {
		return fmt.Errorf("nil option is invalid")
	}
	if o.Logger == nil {
		return fmt.Errorf("nil Logger is invalid")
	}
	if o.Dialector == nil && o.URI == "" {
		return fmt.Errorf("Empty URI is invalid")
	}
	return nil
}

// New returns an instance for interacting with the PostgreSQL database
func New(option Options) (*gorm.DB, error) {
	if err := option.validate(); err != nil {
		return nil, err
	}
	gLogger := zapgorm2.Logger{
		ZapLogger:        option.Logger,
		LogLevel:         gormlogger.Warn,
		SlowThreshold:    time.Second,
		SkipCallerLookup: false,
	}
	dialector := option.Dialector
	if dialector == nil {
		dialector = postgres.Open(option.URI)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: &patchedLogger{
			Logger: gLogger,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "Cannot connect to database")
	}
	pool, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "Cannot get the connection pool")
	}
	pool.SetMaxIdleConns(1)
	pool.SetMaxOpenConns(20)
	pool.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate creates or updates the tables of every repository
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&customer.Customer{},
		&template.Template{},
		&ideaRow{},
		&orderRow{},
	); err != nil {
		return errors.Wrap(err, "Cannot migrate database")
	}
	return nil
}

// Ping checks the connection pool can reach the database
func Ping(ctx context.Context, db *gorm.DB) error {
	pool, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "Cannot get the connection pool")
	}
	return pool.PingContext(ctx)
}
