package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/grvbrk/videotube_server/internal/auth"
	"github.com/grvbrk/videotube_server/internal/config"
	"github.com/grvbrk/videotube_server/internal/handlers"
	handler_analytics "github.com/grvbrk/videotube_server/internal/handlers/analytics"
	"github.com/grvbrk/videotube_server/internal/media"
	"github.com/grvbrk/videotube_server/internal/middlewares"
	"github.com/grvbrk/videotube_server/internal/services"
	"github.com/grvbrk/videotube_server/internal/store"
	"github.com/grvbrk/videotube_server/internal/store/analytics"
	"github.com/grvbrk/videotube_server/internal/store/memory"
	"github.com/grvbrk/videotube_server/migrations"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
)

type Application struct {
	Config                *config.AppConfig
	Logger                *slog.Logger
	db                    *sql.DB
	redisClient           *redis.Client
	clickhouseConn        driver.Conn
	Authenticator         *auth.Authenticator
	MiddlewareHandler     *middlewares.MiddlewareHandler
	VideoHandler          *handlers.VideoHandler
	CommentHandler        *handlers.CommentHandler
	DashboardHandler      *handlers.DashboardHandler
	AnalyticsVideoHandler *handler_analytics.AnalyticsVideoHandler
	// LocalMediaDir is set when uploaded media is served by this process.
	LocalMediaDir string
}

type storeSet struct {
	videos   store.VideoStore
	comments store.CommentStore
	history  store.WatchHistoryStore
	stats    store.DashboardStore
	views    analytics.AnalyticsVideoStore
}

func NewApplication(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	logger := NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	app := &Application{Config: cfg, Logger: logger}

	stores, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	uploader, err := app.newUploader(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		logger.Warn("JWT_SECRET not set, generating a random secret; tokens will not survive a restart")
		secret = []byte(randomSecret())
	}
	sessionStore := auth.NewSessionStore([]byte(cfg.SessionAuthKey), []byte(cfg.SessionEncryptionKey), cfg.IsProduction())
	app.Authenticator = auth.NewAuthenticator(secret, cfg.TokenValidity, sessionStore, cfg.SessionName)

	videoService := services.NewVideoService(stores.videos, stores.history, stores.views, uploader, logger)
	commentService := services.NewCommentService(stores.comments)
	analyticsService := services.NewAnalyticsService(stores.views)

	app.MiddlewareHandler = middlewares.NewMiddlewareHandler(logger, app.Authenticator)
	app.VideoHandler = handlers.NewVideoHandler(videoService, media.NewStager(cfg.StagingDir), cfg.MaxUploadBytes, logger)
	app.CommentHandler = handlers.NewCommentHandler(commentService, logger)
	app.DashboardHandler = handlers.NewDashboardHandler(stores.stats, logger)
	app.AnalyticsVideoHandler = handler_analytics.NewAnalyticsVideoHandler(analyticsService, logger)

	return app, nil
}

func (app *Application) openStores(ctx context.Context) (storeSet, error) {
	cfg := app.Config
	var set storeSet

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem := memory.NewStore()
		set.videos, set.comments, set.history, set.stats = mem, mem, mem, mem
		app.Logger.Warn("using in-memory store, data is lost on restart")

	default:
		pgDB, err := store.ConnectPGDB(ctx, cfg.DatabaseURL, app.Logger)
		if err != nil {
			app.Logger.Error("Error connecting to db", "err", err)
			return set, err
		}
		app.db = pgDB

		if cfg.RunMigrations {
			if err := store.MigrateFS(pgDB, migrations.FS, "db"); err != nil {
				return set, fmt.Errorf("postgresql migration failed: %w", err)
			}
			app.Logger.Info("database migrated")
		}

		set.videos = store.NewPostgresVideoStore(pgDB)
		set.comments = store.NewPostgresCommentStore(pgDB)
		set.history = store.NewPostgresUserStore(pgDB)
		set.stats = store.NewPostgresDashboardStore(pgDB)
	}

	if cfg.WatchHistoryStore == config.WatchHistoryRedis {
		client, err := store.ConnectRedis(ctx, store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			app.Logger.Error("Error connecting to redis", "err", err)
			return set, err
		}
		app.redisClient = client
		set.history = store.NewRedisWatchHistoryStore(client)
	}

	switch {
	case cfg.AnalyticsEnabled():
		opts := store.ClickhouseOptions{
			Addr:     cfg.ClickhouseURL,
			Database: cfg.ClickhouseDatabase,
			Username: cfg.ClickhouseUsername,
			Password: cfg.ClickhousePassword,
		}
		conn, err := store.ConnectClickhouse(ctx, opts, app.Logger)
		if err != nil {
			app.Logger.Error("Error connecting to clickhouse", "err", err)
			return set, err
		}
		app.clickhouseConn = conn

		if err := store.MigrateClickhouse(cfg.ClickhouseMigrations, opts); err != nil {
			return set, fmt.Errorf("clickhouse migration failed: %w", err)
		}
		set.views = analytics.NewClickhouseVideoStore(conn)

	case cfg.StoreDriver == config.StoreDriverMemory:
		set.views = memory.NewAnalyticsStore()
	}

	return set, nil
}

func (app *Application) newUploader(ctx context.Context) (media.Uploader, error) {
	cfg := app.Config
	if cfg.MediaStore == config.MediaStoreS3 {
		return media.NewS3Uploader(ctx, media.S3Options{
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	}

	app.LocalMediaDir = cfg.LocalMediaDir
	return media.NewLocalUploader(cfg.LocalMediaDir, cfg.LocalMediaURL), nil
}

// Ping checks every backing service the application holds a connection to.
func (app *Application) Ping(ctx context.Context) error {
	if app.db != nil {
		if err := app.db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if app.redisClient != nil {
		if err := app.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if app.clickhouseConn != nil {
		if err := app.clickhouseConn.Ping(ctx); err != nil {
			return fmt.Errorf("clickhouse: %w", err)
		}
	}
	return nil
}

func (app *Application) Close() error {
	var errs []error
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if app.redisClient != nil {
		errs = append(errs, app.redisClient.Close())
	}
	if app.clickhouseConn != nil {
		errs = append(errs, app.clickhouseConn.Close())
	}
	return errors.Join(errs...)
}
