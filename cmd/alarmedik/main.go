package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/adherence"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/api"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/config"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/notify"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/reminder"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/store"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	monitorFor = flag.Int64("user", 0, "User ID to run the adherence monitor for (0 disables)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	version    = "dev"
)

func main() {
	flag.Parse()

	if len(flag.Args()) > 0 && flag.Args()[0] == "version" {
		fmt.Printf("alarmedik %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(*debug)
	defer logger.Sync()

	st, err := store.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}

	notifier := notify.NewLogNotifier(logger)
	calc := adherence.NewCalculator(st, logger)

	// The cron scheduler calls back into the dispatcher on every firing
	var dispatcher *reminder.Dispatcher
	scheduler := reminder.NewCronScheduler(func(p reminder.Payload) {
		dispatcher.HandleFiring(p)
	}, logger)
	dispatcher = reminder.NewDispatcher(scheduler, st, notifier, logger).
		WithInterval(cfg.Reminder.FireInterval)

	scheduler.Start()

	// The trigger service is volatile; rebuild every registration
	meds, err := st.AllMedications()
	if err != nil {
		logger.Error("failed to load medications for rescheduling", zap.Error(err))
	} else if err := dispatcher.RescheduleAll(meds); err != nil {
		logger.Error("failed to reschedule triggers", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var monitor *reminder.Monitor
	if *monitorFor > 0 {
		monitor = reminder.NewMonitor(st, calc, notifier, *monitorFor, logger).
			WithInterval(cfg.Reminder.MonitorInterval)
		if err := monitor.Start(ctx); err != nil {
			logger.Fatal("failed to start monitor", zap.Error(err))
		}
	}

	server := api.New(cfg, st, calc, dispatcher, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("API server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}
	if monitor != nil {
		monitor.Stop()
	}
	scheduler.Stop()
	if err := st.Close(); err != nil {
		logger.Warn("store close error", zap.Error(err))
	}
}

func newLogger(debug bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
