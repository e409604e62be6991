package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"alerting-platform/internal/api"
	"alerting-platform/internal/config"
	"alerting-platform/internal/db"
	"alerting-platform/internal/delivery"
	"alerting-platform/internal/kafka"
	"alerting-platform/internal/logging"
	"alerting-platform/internal/providers"
	"alerting-platform/internal/scheduler"
	"alerting-platform/internal/ws"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config load failed:", err)
	}

	// Initialize logger
	logger := logging.New(cfg)

	// Connect to DB
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := db.New(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Errorf("DB connect failed: %v", err)
		log.Fatal("DB connect failed:", err)
	}
	defer dbConn.Close()

	// Channel senders
	hub := ws.NewHub(logger)
	registry := providers.NewRegistry(
		providers.NewEmailSender(cfg),
		providers.NewSMSSender(cfg),
		providers.NewInAppSender(dbConn, hub),
		providers.NewTelegramSender(cfg),
	)

	// Delivery engine
	engine := delivery.New(dbConn, dbConn, dbConn, dbConn, registry, logger, delivery.Config{
		MaxWorkers:         cfg.Delivery.MaxWorkers,
		SendTimeout:        cfg.Delivery.SendTimeout,
		MaxRemindersPerRun: cfg.Scheduler.MaxRemindersPerRun,
	})

	// Scheduler with the two recurring jobs
	sched := scheduler.New(logger, cfg.Scheduler.PollInterval)
	if err := sched.Register("send_reminders", cfg.Scheduler.ReminderIntervalMinutes, engine.DispatchDueReminders); err != nil {
		log.Fatal("Register send_reminders failed:", err)
	}
	if err := sched.Register("reset_expired_snoozes", cfg.Scheduler.SnoozeResetIntervalMinutes, engine.ResetExpiredSnoozes); err != nil {
		log.Fatal("Register reset_expired_snoozes failed:", err)
	}
	if cfg.Scheduler.Enabled {
		sched.Start()
	} else {
		logger.Infof("scheduler disabled by configuration")
	}

	// Kafka ingest for delivery commands published by the alert CRUD
	var consumer *kafka.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = kafka.NewConsumer(cfg, engine, logger)
		go consumer.Start(ctx)
	} else {
		logger.Infof("kafka ingest disabled, no broker configured")
	}

	// Start API server
	r := api.NewRouter(api.NewHandler(engine, sched, dbConn, hub, logger), logger, cfg)
	go func() {
		logger.Infof("API started on %s", cfg.API.Port)
		if err := r.Run(cfg.API.Port); err != nil {
			logger.Errorf("API run failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("shutting down...")
	cancel()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Errorf("kafka close failed: %v", err)
		}
	}
	sched.Stop()
	logger.Infof("service stopped")
}
