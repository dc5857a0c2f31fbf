package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/config"
	"github.com/EmpoweredVote/LSG-Trends/internal/db"
	"github.com/EmpoweredVote/LSG-Trends/internal/geo"
	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"github.com/EmpoweredVote/LSG-Trends/internal/metrics"
	"github.com/EmpoweredVote/LSG-Trends/internal/middleware"
	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/EmpoweredVote/LSG-Trends/internal/trendfeed"
	"github.com/EmpoweredVote/LSG-Trends/internal/trends"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.LoadFromEnv()
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	domain, err := config.LoadFile(cfg.ConfigFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL != "" {
		if err := db.Connect(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	reg, err := loadRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	kpis := reg.KPIs()
	logger.L().Info("registry loaded",
		zap.String("source", cfg.RegistrySource),
		zap.Int("units", len(reg.Units())),
		zap.Int("wards", kpis.TotalWards),
	)
	for _, m := range reg.ValidateWardCounts() {
		logger.L().Warn("ward count mismatch",
			zap.String("lb_code", m.LBCode),
			zap.Int("ward_count", m.WardCount),
			zap.Int("ward_rows", m.WardRows),
		)
	}

	var caches []trends.SummaryCache
	if rdb := trends.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB); rdb != nil {
		defer rdb.Close()
		caches = append(caches, trends.NewRedisCache(rdb, trends.DefaultCacheTTL))
	}
	if db.DB != nil {
		store := trends.NewSummaryStore(db.DB)
		if err := store.Migrate(); err != nil {
			return err
		}
		caches = append(caches, store)
	}

	svc := trends.NewService(trends.Options{
		Registry:   reg,
		Source:     trendSource(cfg),
		Geo:        geoSource(cfg),
		Classifier: domain.Classifier(),
		Joiner:     domain.Joiner(),
		Districts:  domain.Districts(),
		Caches:     caches,
	})
	go svc.Run(ctx, cfg.Refresh)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Get("/", RootHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Mount("/trends", trends.SetupRoutes(svc))
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.L().Info("server listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadRegistry(ctx context.Context, cfg config.Config) (*registry.Registry, error) {
	if cfg.RegistrySource == config.SourceDB {
		store := registry.NewStore(db.DB)
		if err := store.Migrate(); err != nil {
			return nil, err
		}
		return store.Load(ctx)
	}
	return registry.LoadDir(filepath.Join(cfg.DataDir, "csv"))
}

func trendSource(cfg config.Config) trends.TrendSource {
	if cfg.TrendSource == config.TrendFromFeed {
		return trends.FeedTrendSource{
			Client:    trendfeed.NewClient(cfg.FeedBaseURL),
			Districts: trendfeed.Districts,
		}
	}
	return trends.FileTrendSource{Path: cfg.TrendCSV}
}

func geoSource(cfg config.Config) geo.Source {
	if cfg.GeoBaseURL != "" {
		return geo.NewHTTPSource(cfg.GeoBaseURL, cfg.StateName)
	}
	return geo.FileSource{Root: cfg.DataDir, State: cfg.StateName}
}
