package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/plastimar/rolltrack/internal/config"
	"github.com/plastimar/rolltrack/internal/repository/mongodb"
	"github.com/plastimar/rolltrack/internal/repository/sheets"
	"github.com/plastimar/rolltrack/internal/scheduler"
	"github.com/plastimar/rolltrack/internal/server/handlers"
	"github.com/plastimar/rolltrack/internal/server/router"
	productionsvc "github.com/plastimar/rolltrack/internal/service/production"
	wastesvc "github.com/plastimar/rolltrack/internal/service/waste"
	"github.com/plastimar/rolltrack/pkg/clients/alerting"
	"github.com/plastimar/rolltrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.Debug))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	rollRepo := store.Rolls()
	orderRepo := store.JobOrders()
	reportRepo := store.Reports()

	productionSvc := productionsvc.NewService(rollRepo, orderRepo, productionsvc.AllowAll{}, baseLogger.Named("svc.production"))
	wasteSvc := wastesvc.NewService(rollRepo, orderRepo, reportRepo, baseLogger.Named("svc.waste"))

	var exporter sheets.Exporter
	if cfg.Sheets.SpreadsheetID != "" {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("waste summary spreadsheet export enabled")
	} else {
		baseLogger.Warn("spreadsheet id missing, waste summary export disabled")
	}

	var alertClient alerting.Client
	if cfg.Alerts.WebhookURL != "" {
		alertClient = alerting.NewClient(cfg.Alerts)
		baseLogger.Info("waste alert webhook enabled")
	} else {
		baseLogger.Warn("alert webhook url missing, waste alerting disabled")
	}

	rollHandler := handlers.NewRollHandler(productionSvc, baseLogger.Named("handlers.rolls"))
	wasteHandler := handlers.NewWasteHandler(wasteSvc, baseLogger.Named("handlers.waste"))
	engine := router.New(rollHandler, wasteHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, wasteSvc, exporter, alertClient, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
