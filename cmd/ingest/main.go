package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"pennywise/internal/config"
	"pennywise/internal/database"
	"pennywise/internal/logger"
	"pennywise/internal/plaidlink"
	"pennywise/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Ingest error: %v", err)
	}
}

func run() error {
	username := flag.String("username", "", "sync only this user")
	schedule := flag.String("schedule", "", "cron spec for recurring sync, e.g. '0 */6 * * *'; empty runs once")
	flag.Parse()

	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	aggregator, err := plaidlink.New(plaidlink.Options{
		ClientID:    appConfig.PlaidClientID,
		Secret:      appConfig.PlaidSecret,
		Environment: appConfig.PlaidEnv,
		ClientName:  appConfig.PlaidClientName,
	})
	if err != nil {
		return fmt.Errorf("aggregator credentials required for ingest: %w", err)
	}

	db := dbManager.DB()
	spendingService := services.NewSpendingService(db)
	ingestService := services.NewIngestService(db, aggregator, spendingService, appConfig.AggregatorTimeout)

	sync := func() {
		ctx := context.Background()
		var (
			stored int
			err    error
		)
		if *username != "" {
			stored, err = ingestService.SyncUser(ctx, *username)
		} else {
			stored, err = ingestService.SyncAll(ctx)
		}
		if err != nil {
			log.Errorw("sync run failed", "error", err)
			return
		}
		log.Infow("sync run completed", "stored", stored)
	}

	if *schedule == "" {
		sync()
		return nil
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(*schedule, sync); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", *schedule, err)
	}
	scheduler.Start()
	log.Infof("Ingest scheduler running with spec %q", *schedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down ingest scheduler")
	<-scheduler.Stop().Done()
	return nil
}
