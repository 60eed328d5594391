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

	"github.com/google/uuid"

	"github.com/example/campus-planner/internal/aggregator"
	"github.com/example/campus-planner/internal/application"
	"github.com/example/campus-planner/internal/config"
	httptransport "github.com/example/campus-planner/internal/http"
	"github.com/example/campus-planner/internal/ics"
	"github.com/example/campus-planner/internal/logging"
	"github.com/example/campus-planner/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stdout, 0).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	feeds, err := config.LoadCalendarFeeds(cfg.CalendarFeedsPath)
	if err != nil {
		logger.Error("failed to load calendar feeds", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	groupRepo := sqlite.NewGroupRepository(store)
	plannerRepo := sqlite.NewPlannerRepository(store)

	var external aggregator.ExternalCalendarSource
	if len(feeds) > 0 {
		external = ics.NewClient(feeds, logger)
	}

	groupService := application.NewGroupServiceWithLogger(groupRepo, idGenerator, now, logger)
	availabilityService := application.NewAvailabilityServiceWithLogger(groupRepo, now, logger)
	calendarService := application.NewCalendarService(plannerRepo, external, logger)
	plannerService := application.NewPlannerServiceWithLogger(plannerRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Groups:     httptransport.NewGroupHandler(groupService, availabilityService, logger),
		Schedules:  httptransport.NewScheduleHandler(availabilityService, logger),
		Calendar:   httptransport.NewCalendarHandler(calendarService, logger),
		Planner:    httptransport.NewPlannerHandler(plannerService, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("planner API listening", "addr", server.Addr, "calendar_feeds", len(feeds))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
