package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/racedaylabs/raceday/config"
	"github.com/racedaylabs/raceday/db"
	"github.com/racedaylabs/raceday/handlers"
	"github.com/racedaylabs/raceday/importer"
	applog "github.com/racedaylabs/raceday/logger"
	mw "github.com/racedaylabs/raceday/middleware"
	"github.com/racedaylabs/raceday/provider"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	client := provider.NewClient(cfg.ProviderBaseURL, cfg.ProviderUsername, cfg.ProviderPassword)
	jobs := importer.NewJobs(bdb, logger)
	imp := importer.New(bdb, client, jobs, importer.Config{
		RaceBatchSize:   cfg.ImportRaceBatch,
		RunnerBatchSize: cfg.ImportRunnerBatch,
		RunnerDelay:     cfg.ImportRunnerDelay,
		HorseCallDelay:  cfg.ImportHorseDelay,
		BatchDelay:      cfg.ImportBatchDelay,
		FetchTimeout:    cfg.ProviderTimeout,
	}, logger)

	h := handlers.New(bdb, imp, cfg.JWTKey())

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	e.POST("/rp/signin", h.Signin)

	// Protected – require valid JWT in Authorization header
	rp := e.Group("/rp", mw.JWT(cfg.JWTKey()))
	rp.POST("/import", h.StartImport)
	rp.GET("/import", h.ListImportJobs)
	rp.GET("/import/:id", h.GetImportJob)
	rp.GET("/racecards", h.Racecards)
	rp.GET("/horses/:id/results", h.HorseResults)
	rp.GET("/horses/:id/distance-analysis", h.HorseDistanceAnalysis)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
