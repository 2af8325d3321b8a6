package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	authhandler "github.com/FACorreiaa/range-tracker/internal/domain/auth/handler"
	"github.com/FACorreiaa/range-tracker/internal/domain/demo"
	"github.com/FACorreiaa/range-tracker/internal/domain/detail"
	detailhandler "github.com/FACorreiaa/range-tracker/internal/domain/detail/handler"
	"github.com/FACorreiaa/range-tracker/internal/domain/legacy"
	legacyhandler "github.com/FACorreiaa/range-tracker/internal/domain/legacy/handler"
	"github.com/FACorreiaa/range-tracker/internal/domain/pastseason"
	pastseasonhandler "github.com/FACorreiaa/range-tracker/internal/domain/pastseason/handler"
	"github.com/FACorreiaa/range-tracker/internal/domain/plan/catalog"
	planhandler "github.com/FACorreiaa/range-tracker/internal/domain/plan/handler"
	planrepo "github.com/FACorreiaa/range-tracker/internal/domain/plan/repository"
	"github.com/FACorreiaa/range-tracker/internal/domain/reconcile"
	reconcilehandler "github.com/FACorreiaa/range-tracker/internal/domain/reconcile/handler"
	"github.com/FACorreiaa/range-tracker/internal/server"

	"github.com/FACorreiaa/range-tracker/pkg/config"
	"github.com/FACorreiaa/range-tracker/pkg/cron"
	"github.com/FACorreiaa/range-tracker/pkg/metrics"
	"github.com/FACorreiaa/range-tracker/pkg/plm"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Infrastructure
	DB    *pgxpool.Pool
	Redis *redis.Client

	// Repositories
	CatalogRepo *planrepo.PostgresCatalogRepository

	// Services
	Tokens     *plm.TokenManager
	PLM        *plm.Client
	Catalog    *catalog.Store
	Reconcile  *reconcile.Service
	Detail     *detail.Service
	Legacy     *legacy.Service
	PastSeason *pastseason.Service
	Scheduler  *cron.Scheduler

	styles  pastseason.StyleLookup
	fetcher reconcile.SnapshotFetcher

	// Handlers
	ReconcileHandler  *reconcilehandler.ReconcileHandler
	CatalogHandler    *planhandler.CatalogHandler
	RangeHandler      *legacyhandler.RangeHandler
	DetailHandler     *detailhandler.DetailHandler
	PastSeasonHandler *pastseasonhandler.PastSeasonHandler
	TokenHandler      *authhandler.TokenHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}
	if cfg.Observability.MetricsEnabled {
		deps.Metrics = metrics.New()
	}

	if err := deps.initDatabase(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initRepositories(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := deps.initServices(ctx); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		slog.String("catalog_source", cfg.Catalog.Source),
		slog.Bool("demo", cfg.Demo.Enabled),
	)

	return deps, nil
}

// initDatabase connects to PostgreSQL and Redis when the configuration asks for them.
func (d *Dependencies) initDatabase(ctx context.Context) error {
	if d.Config.Catalog.Source == "postgres" {
		poolCfg, err := pgxpool.ParseConfig(d.Config.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to parse database config: %w", err)
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1
		poolCfg.MaxConnLifetime = 5 * time.Minute
		poolCfg.MaxConnIdleTime = 10 * time.Minute

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		d.DB = pool

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		if d.Config.Database.Migrate {
			if err := planrepo.Migrate(ctx, pool, d.Logger); err != nil {
				return err
			}
		}
		d.Logger.Info("database connected")
	}

	if d.Config.Redis.Address != "" {
		d.Redis = redis.NewClient(&redis.Options{
			Addr:     d.Config.Redis.Address,
			Password: d.Config.Redis.Password,
			DB:       d.Config.Redis.DB,
		})
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		d.Logger.Info("redis connected", slog.String("addr", d.Config.Redis.Address))
	}
	return nil
}

// initRepositories initializes the catalog repository and seeds it when asked.
func (d *Dependencies) initRepositories(ctx context.Context) error {
	if d.DB == nil {
		return nil
	}
	d.CatalogRepo = planrepo.NewPostgresCatalogRepository(d.DB)

	if d.Config.Catalog.Seed {
		if err := d.seedCatalog(ctx); err != nil {
			return err
		}
	}
	d.Logger.Info("repositories initialized")
	return nil
}

// seedCatalog copies the plan workbooks into PostgreSQL.
func (d *Dependencies) seedCatalog(ctx context.Context) error {
	c := d.Config.Catalog
	src := catalog.NewExcelSource(c.SegmentPath, c.SegmentSheet, c.ThemePath, c.ThemeSheet, d.Logger)

	segments, err := src.LoadSegments(ctx)
	if err != nil {
		return fmt.Errorf("failed to read segment workbook for seeding: %w", err)
	}
	themes, err := src.LoadThemes(ctx)
	if err != nil {
		return fmt.Errorf("failed to read theme workbook for seeding: %w", err)
	}

	if err := d.CatalogRepo.ReplaceCatalog(ctx, segments, themes); err != nil {
		return err
	}
	d.Logger.Info("catalog seeded",
		slog.Int("segments", len(segments)),
		slog.Int("themes", len(themes)),
	)
	return nil
}

func (d *Dependencies) catalogSource() catalog.Source {
	c := d.Config.Catalog
	switch c.Source {
	case "postgres":
		return d.CatalogRepo
	case "csv":
		return catalog.NewCSVSource(c.SegmentPath, c.ThemePath, d.Logger)
	default:
		return catalog.NewExcelSource(c.SegmentPath, c.SegmentSheet, c.ThemePath, c.ThemeSheet, d.Logger)
	}
}

// demoGenerator returns a generator per consumer. Fakers are not safe for
// concurrent use, so consumers never share one.
func (d *Dependencies) demoGenerator(offset int64) *demo.Generator {
	seed := d.Config.Demo.Seed
	if seed != 0 {
		seed += offset
	}
	return demo.NewGenerator(seed)
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices(ctx context.Context) error {
	cfg := d.Config

	d.Catalog = catalog.NewStore(d.catalogSource(), d.Logger, d.Metrics)
	if err := d.Catalog.Reload(ctx); err != nil {
		// An unreadable plan leaves the catalog empty; requests still succeed.
		d.Logger.Warn("initial catalog load failed", slog.Any("error", err))
	}

	var (
		filler   legacy.Filler
		provider pastseason.MetricsProvider
	)
	if cfg.Demo.Enabled {
		d.fetcher = demo.NewSnapshotProvider(d.demoGenerator(0), d.Catalog, d.Logger)
		d.styles = demo.NewStyleLookup(d.demoGenerator(1))
		provider = demo.NewPastSeasonProvider(d.demoGenerator(2))
		filler = demo.NewRandomFiller(d.demoGenerator(3))
		d.Logger.Info("demo mode enabled; PLM calls are simulated")
	} else {
		var store plm.TokenStore = plm.NewMemoryTokenStore()
		if d.Redis != nil {
			store = plm.NewRedisTokenStore(d.Redis, cfg.Redis.TokenKey)
		}

		httpClient := &http.Client{Timeout: cfg.PLM.Timeout}
		d.Tokens = plm.NewTokenManager(plm.TokenConfig{
			TokenURL:     cfg.PLM.TokenURL(),
			RevokeURL:    cfg.PLM.RevokeURL(),
			ClientID:     cfg.PLM.ClientID,
			ClientSecret: cfg.PLM.ClientSecret,
			Username:     cfg.PLM.ServiceAccessKey,
			Password:     cfg.PLM.ServiceSecretKey,
			Margin:       cfg.PLM.TokenMargin,
			DefaultTTL:   cfg.PLM.DefaultTokenTTL,
		}, store, httpClient, d.Logger, d.Metrics)

		d.PLM = plm.NewClient(plm.ClientConfig{
			BaseURL:        cfg.PLM.IONAPIURL,
			TenantID:       cfg.PLM.TenantID,
			SeasonID:       cfg.PLM.SeasonID,
			ArchivedStatus: cfg.PLM.ArchivedStatus,
			RequestsPerSec: cfg.PLM.RequestsPerSec,
			Burst:          cfg.PLM.RequestBurst,
			Timeout:        cfg.PLM.Timeout,
		}, d.Tokens, httpClient, d.Logger, d.Metrics)

		d.fetcher = d.PLM
		d.styles = d.PLM
	}

	d.Reconcile = reconcile.NewService(d.Catalog, d.fetcher, d.Logger, d.Metrics)
	d.PastSeason = pastseason.NewService(d.styles, provider, d.Logger)

	d.Detail = detail.NewService(cfg.Catalog.DetailPath, cfg.Catalog.DetailSheet, d.Logger)
	if err := d.Detail.Reload(ctx); err != nil {
		d.Logger.Warn("initial detail sheet load failed", slog.Any("error", err))
	}
	d.Legacy = legacy.NewService(cfg.Catalog.LegacyPath, cfg.Catalog.LegacySheet, filler, d.Logger)
	if err := d.Legacy.Reload(ctx); err != nil {
		d.Logger.Warn("initial range sheet load failed", slog.Any("error", err))
	}

	if cfg.Catalog.ReloadSpec != "" {
		d.Scheduler = cron.NewScheduler(cfg.Catalog.ReloadSpec, d.Logger)
		d.Scheduler.Add("catalog", d.Catalog)
		d.Scheduler.Add("detail", d.Detail)
		d.Scheduler.Add("legacy", d.Legacy)
	}

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.ReconcileHandler = reconcilehandler.NewReconcileHandler(d.Reconcile)
	d.CatalogHandler = planhandler.NewCatalogHandler(d.Catalog)
	d.RangeHandler = legacyhandler.NewRangeHandler(d.Legacy)
	d.DetailHandler = detailhandler.NewDetailHandler(d.Detail)
	d.PastSeasonHandler = pastseasonhandler.NewPastSeasonHandler(d.PastSeason, d.styles)
	if d.Tokens != nil {
		d.TokenHandler = authhandler.NewTokenHandler(d.Tokens)
	}

	d.Logger.Info("handlers initialized")
	return nil
}

// Routes returns every handler to mount under /api.
func (d *Dependencies) Routes() []server.Registrar {
	routes := []server.Registrar{
		d.ReconcileHandler,
		d.CatalogHandler,
		d.RangeHandler,
		d.DetailHandler,
		d.PastSeasonHandler,
	}
	if d.TokenHandler != nil {
		routes = append(routes, d.TokenHandler)
	}
	return routes
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
