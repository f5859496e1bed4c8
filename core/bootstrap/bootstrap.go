package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/giveabot/core/config"
	coredatabase "github.com/m3rciful/giveabot/core/database"
	"github.com/m3rciful/giveabot/core/logger"
	coreredis "github.com/m3rciful/giveabot/core/redis"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	Redis    coreredis.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
	OpenRedis  func(context.Context, coreredis.Config) (*coreredis.Client, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB    *sqlx.DB
	Redis *coreredis.Client
}

// Run initializes the logger, connects to the database, applies
// migrations, and opens the Redis client.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	openRedis := opts.OpenRedis
	if openRedis == nil {
		openRedis = coreredis.Open
	}
	rdb, err := openRedis(ctx, opts.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
	}

	return &Result{DB: db, Redis: rdb}, nil
}
