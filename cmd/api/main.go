package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	contactapp "github.com/ramindav/outreach-crm/internal/application/contacts"
	importapp "github.com/ramindav/outreach-crm/internal/application/imports"
	"github.com/ramindav/outreach-crm/internal/bootstrap"
	"github.com/ramindav/outreach-crm/internal/config"
	"github.com/ramindav/outreach-crm/internal/infrastructure/file"
	"github.com/ramindav/outreach-crm/internal/infrastructure/repository"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	phones, err := cfg.PhonePolicy()
	if err != nil {
		log.WithError(err).Fatal("failed to load phone policy")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to create pgx pool")
	}
	defer pool.Close()

	spool := file.NewSpool(cfg.SpoolDir)

	server := bootstrap.NewHTTPServer(db, pool, spool, phones, cfg)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	contactRepo := repository.NewContactRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	matchRepo := repository.NewContactMatchRepository(pool)
	jobRepo := repository.NewImportJobRepository(db)

	resolver := contactapp.NewCompanyResolver(companyRepo)
	engine := contactapp.NewUpsertEngine(contactRepo, resolver)
	matcher := contactapp.NewMatcher(matchRepo)

	worker := importapp.NewWorker(jobRepo, spool, engine, matcher, phones, log, importapp.WorkerConfig{
		Workers:       cfg.Workers,
		ChunkSize:     cfg.ChunkSize,
		PollInterval:  cfg.PollInterval,
		LeaseDuration: cfg.LeaseDuration,
	})
	worker.Start(workerCtx)

	go func() {
		if err := server.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()
	log.WithField("port", cfg.Port).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("graceful shutdown failed")
	}
}
