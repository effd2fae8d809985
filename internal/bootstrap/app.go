// Package bootstrap wires configuration into running services.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/magungh1/exporo-sme-export-assistant/internal/assessments"
	"github.com/magungh1/exporo-sme-export-assistant/internal/chat"
	"github.com/magungh1/exporo-sme-export-assistant/internal/llm"
	anthropicengine "github.com/magungh1/exporo-sme-export-assistant/internal/llm/anthropic"
	geminiengine "github.com/magungh1/exporo-sme-export-assistant/internal/llm/gemini"
	openaiengine "github.com/magungh1/exporo-sme-export-assistant/internal/llm/openai"
	"github.com/magungh1/exporo-sme-export-assistant/internal/llm/rediscache"
	"github.com/magungh1/exporo-sme-export-assistant/internal/profiles"
	"github.com/magungh1/exporo-sme-export-assistant/internal/services/health"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/config"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/storage/db"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/storage/object"
	localstore "github.com/magungh1/exporo-sme-export-assistant/internal/shared/storage/object/local"
	s3store "github.com/magungh1/exporo-sme-export-assistant/internal/shared/storage/object/s3"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Redis    *redis.Client
	Images   object.Store
	Engine   llm.Engine
	Assessor llm.Engine
	Profiles *profiles.Service
	History  *assessments.Service
	Pipeline *chat.Pipeline
	Health   *health.Service
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg, Health: health.NewService()}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.Health.Register("database", sqlDB.PingContext)
	}

	images, err := buildImageStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Images = images

	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Engine = engine
	app.Assessor = engine

	client, err := buildRedis(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if client != nil {
		app.Redis = client
		app.Health.Register("redis", func(ctx context.Context) error { return client.Ping(ctx).Err() })
		app.Assessor = llm.WithCache(engine, rediscache.New(client), time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
	}

	buildServices(app)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		Health:         app.Health,
		ProfileHandler: profiles.NewHandler(app.Profiles, app.Images),
		HistoryHandler: assessments.NewHandler(app.History),
		ChatHandler:    chat.NewHandler(app.Pipeline),
	})
	return app, nil
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	switch cfg.Store.Driver {
	case "postgres":
		conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			if cfg.IsDevLike() {
				telemetry.Warn("bootstrap.db_fallback", map[string]any{"error": err})
				return nil, nil
			}
			return nil, err
		}
		if err := db.RunMigrations(ctx, conn, db.DialectPostgres); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	case "sqlite":
		conn, err := db.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, conn, db.DialectSQLite); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	default:
		telemetry.Info("bootstrap.memory_store", map[string]any{"env": cfg.Env})
		return nil, nil
	}
}

func buildImageStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStore.Type {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.S3.Region,
			Bucket:   cfg.S3.Bucket,
			Prefix:   cfg.S3.Prefix,
			KMSKeyID: cfg.S3.KMSKeyID,
		})
	default:
		return localstore.New(cfg.ObjectStore.LocalDir), nil
	}
}

// buildEngine picks the provider adapter and wraps it with per-attempt
// metrics and the retry policy.
func buildEngine(ctx context.Context, cfg config.Config) (llm.Engine, error) {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	var (
		base llm.Engine
		err  error
	)
	switch cfg.LLM.Provider {
	case "openai":
		base, err = openaiengine.NewClient(openaiengine.Options{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.LLM.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: timeout,
		})
	case "gemini":
		base, err = geminiengine.NewClient(ctx, geminiengine.Options{
			APIKey: cfg.Gemini.APIKey,
			Model:  cfg.LLM.Model,
		})
	case "anthropic":
		base, err = anthropicengine.NewClient(anthropicengine.Options{
			APIKey:    cfg.Anthropic.APIKey,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
		})
	case "placeholder", "":
		base = llm.Placeholder{}
	default:
		return nil, eris.Errorf("bootstrap: unknown llm provider %q", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, err
	}

	provider := cfg.LLM.Provider
	if provider == "" {
		provider = "placeholder"
	}
	return llm.WithRetry(llm.WithMetrics(base, provider), llm.RetryOptions{
		Provider:       provider,
		AttemptTimeout: timeout,
		Delay:          time.Duration(cfg.LLM.RetryDelayMS) * time.Millisecond,
	}), nil
}

func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	client, err := rediscache.NewClient(ctx, rediscache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.cache_disabled", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}

func buildServices(app *App) {
	var (
		profileRepo profiles.Repo
		historyRepo assessments.HistoryRepo
	)
	switch {
	case app.DB == nil:
		profileRepo = profiles.NewMemoryRepo()
		historyRepo = assessments.NewMemoryRepo()
	case app.Config.Store.Driver == "sqlite":
		profileRepo = &profiles.SQLiteRepo{DB: app.DB}
		historyRepo = &assessments.SQLiteRepo{DB: app.DB}
	default:
		profileRepo = &profiles.PGRepo{DB: app.DB}
		historyRepo = &assessments.PGRepo{DB: app.DB}
	}

	app.Profiles = profiles.NewService(profileRepo)
	app.History = assessments.NewService(historyRepo)
	app.Pipeline = chat.NewPipeline(chat.Deps{
		Profiles: app.Profiles,
		History:  app.History,
		Engine:   app.Engine,
		Assessor: app.Assessor,
	})
}
