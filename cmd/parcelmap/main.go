package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/parcelmap/internal/config"
	"github.com/kailas-cloud/parcelmap/internal/dataset"
	dbRedis "github.com/kailas-cloud/parcelmap/internal/db/redis"
	"github.com/kailas-cloud/parcelmap/internal/domain/geo"
	"github.com/kailas-cloud/parcelmap/internal/domain/label"
	"github.com/kailas-cloud/parcelmap/internal/domain/parcel"
	"github.com/kailas-cloud/parcelmap/internal/domain/search/mode"
	"github.com/kailas-cloud/parcelmap/internal/domain/split"
	logpkg "github.com/kailas-cloud/parcelmap/internal/logger"
	"github.com/kailas-cloud/parcelmap/internal/metrics"
	"github.com/kailas-cloud/parcelmap/internal/repository/labelcache"
	parcelrepo "github.com/kailas-cloud/parcelmap/internal/repository/parcel"
	"github.com/kailas-cloud/parcelmap/internal/tiles"
	chiTransport "github.com/kailas-cloud/parcelmap/internal/transport/chi"
	datasetuc "github.com/kailas-cloud/parcelmap/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/parcelmap/internal/usecase/health"
	labeluc "github.com/kailas-cloud/parcelmap/internal/usecase/label"
	measureuc "github.com/kailas-cloud/parcelmap/internal/usecase/measure"
	searchuc "github.com/kailas-cloud/parcelmap/internal/usecase/search"
	splituc "github.com/kailas-cloud/parcelmap/internal/usecase/split"
	"github.com/kailas-cloud/parcelmap/internal/version"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err.Error())
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(logpkg.Options{
		Env:     env,
		Level:   cfg.Logging.Level,
		Sample:  cfg.Logging.Sample,
		Version: version.Version,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting parcelmap API server",
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("sources", len(cfg.Dataset.Sources)),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Register domain metrics explicitly (no init())
	metrics.RegisterDomainMetrics()

	ctx := context.Background()

	// Load the dataset before serving; the index is immutable afterwards
	fields := parcel.Fields{
		VDC:    cfg.Dataset.Fields.VDC,
		Ward:   cfg.Dataset.Fields.Ward,
		Parcel: cfg.Dataset.Fields.Parcel,
	}.WithDefaults()

	sources := make([]dataset.Source, len(cfg.Dataset.Sources))
	for i, s := range cfg.Dataset.Sources {
		sources[i] = dataset.Source{Path: s.Path, Format: dataset.Format(s.Format)}
	}

	start := time.Now()
	ds, err := dataset.NewLoader(fields, logger).Load(ctx, sources)
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}
	metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	metrics.ParcelsLoaded.Set(float64(len(ds.Parcels)))
	logger.Info("Dataset loaded",
		zap.Int("parcels", len(ds.Parcels)),
		zap.Duration("took", time.Since(start)),
	)

	repo := parcelrepo.New(ds.Parcels)

	// Label cache store (optional)
	var labeler labeluc.Labeler = label.Engine{}
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Driver != "none" {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
			LocalTTL: time.Duration(cfg.Cache.LocalCacheSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to cache store", zap.Strings("addrs", cfg.Cache.Addrs))

		labeler = labelcache.New(label.Engine{}, store, cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.LabelCacheTotal, logger)
		cachePinger = store
	}

	// MBTiles base layer (optional)
	var tileSource chiTransport.TileSource = tiles.Disabled{}
	if cfg.Tiles.MBTiles != "" {
		mb, err := tiles.Open(ctx, cfg.Tiles.MBTiles)
		if err != nil {
			logger.Fatal("Failed to open MBTiles", zap.String("path", cfg.Tiles.MBTiles), zap.Error(err))
		}
		defer func() { _ = mb.Close() }()

		tileSource = tiles.NewCache(mb, cfg.Tiles.CacheEntries,
			time.Duration(cfg.Tiles.CacheTTLSec)*time.Second, metrics.TileRequestsTotal)
		logger.Info("MBTiles opened", zap.String("path", cfg.Tiles.MBTiles), zap.Any("metadata", mb.Metadata()))
	}

	labelDefaults := label.Options{
		Unit:          geo.Unit(cfg.Labels.Unit),
		MinSegment:    cfg.Labels.MinSegment,
		StraightAngle: cfg.Labels.StraightAngle,
		OffsetFactor:  cfg.Labels.OffsetFactor,
		AllRings:      cfg.Labels.AllRings,
	}

	// Create use case services
	svc := chiTransport.Services{
		Dataset: datasetuc.New(repo, ds.Sources, fields),
		Search:  searchuc.New(repo, cfg.Search.MaxResults, metrics.SearchTotal),
		Labels:  labeluc.New(repo, labeler, labelDefaults),
		Split: splituc.New(repo, split.Options{
			ToleranceSqm:  cfg.Split.ToleranceSqm,
			MaxIterations: cfg.Split.MaxIterations,
		}, metrics.SplitTotal),
		Measure: measureuc.New(geo.Unit(cfg.Labels.Unit)),
		Health:  healthuc.New(repo, cachePinger),
		Tiles:   tileSource,
	}

	server := chiTransport.NewServer(svc, mode.Mode(cfg.Search.DefaultMode), logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:        cfg.Auth.APIKeys,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
