package application

import (
	"context"
	"database/sql"
	"fmt"
	"tour-monitor/config"
	"tour-monitor/internal/domain"
	"tour-monitor/metrics"
	"tour-monitor/notify"
	"tour-monitor/scraper"
	"tour-monitor/scraper/prices"
	"tour-monitor/scraper/tours"
	"tour-monitor/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func NewApp(cfg *config.Config, log *zap.Logger) *App {
	return &App{cfg: cfg, log: log, connectDB: domain.OpenPostgres}
}

type App struct {
	cfg       *config.Config
	log       *zap.Logger
	connectDB func(ctx context.Context, dsn string) (*sql.DB, error)
}

// Run performs one pass over every configured route. Only a browser that cannot start
// fails the run.
func (a *App) Run(ctx context.Context) (service.Summary, error) {
	runID := uuid.NewString()
	log := a.log.With(zap.String("run_id", runID))

	routes := service.BuildRoutes(a.cfg.Search)
	log.Info("run starting",
		zap.Int("routes", len(routes)),
		zap.Duration("route_delay", a.cfg.Timing.RouteDelay),
		zap.String("notify_policy", string(a.cfg.Notify.Policy)),
	)

	store, closeStore := a.openStore(ctx, log)
	defer closeStore()

	session, closeBrowser, err := scraper.Launch(ctx, a.cfg, func(format string, args ...any) {
		log.Sugar().Debugf(format, args...)
	})
	if err != nil {
		log.Error("browser launch failed", zap.Error(err))
		return service.Summary{}, err
	}
	defer closeBrowser()
	log.Info("browser started")

	driver := tours.NewDriver(a.cfg, log)
	extractor := prices.New(a.cfg.Prices, log)
	probe := tours.NewPriceScraper(session, driver, extractor, a.cfg.Timing, log)

	recorder := metrics.NewRecorder()
	svc := service.NewScraperService(
		service.NewIterator(probe, a.cfg.Timing.RouteDelay, log),
		service.NewEvaluator(store, runID, log),
		a.notifier(log),
		recorder,
		a.cfg.Notify,
		driver.EntryURL,
		log,
	)

	summary := svc.Run(ctx, routes)

	if a.cfg.MetricsTextfile != "" {
		if err := recorder.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			log.Warn("failed to write metrics textfile", zap.String("path", a.cfg.MetricsTextfile), zap.Error(err))
		}
	}
	return summary, nil
}

// openStore picks postgres, then CSV, then memory. An unreachable database degrades to the
// next store instead of failing the run.
func (a *App) openStore(ctx context.Context, log *zap.Logger) (domain.HistoryStore, func()) {
	if dsn := a.cfg.Storage.PostgresDSN; dsn != "" {
		repo, closeDB, err := a.openPostgres(ctx, dsn)
		if err == nil {
			log.Info("db connection successful")
			return repo, closeDB
		}
		log.Warn("postgres history unavailable, falling back", zap.Error(err))
	}

	if path := a.cfg.Storage.CSVPath; path != "" {
		log.Info("history stored in csv", zap.String("path", path))
		return domain.NewCSVRepository(path, log), func() {}
	}

	log.Warn("no usable PG_DSN or HISTORY_CSV, history will not outlive this run")
	return domain.NewMemoryRepository(), func() {}
}

func (a *App) openPostgres(ctx context.Context, dsn string) (*domain.PostgresRepository, func(), error) {
	db, err := a.connectDB(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	repo := domain.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, func() { db.Close() }, nil
}

func (a *App) notifier(log *zap.Logger) domain.Notifier {
	if a.cfg.Notify.BotToken == "" {
		return notify.NewLogNotifier(log)
	}
	return notify.NewTelegram(a.cfg.Notify, log)
}

// String describes the app's main settings, for startup logs.
func (a *App) String() string {
	return fmt.Sprintf("origins=%d destinations=%d durations=%d", len(a.cfg.Search.Origins),
		len(a.cfg.Search.Destinations), len(a.cfg.Search.Durations))
}
