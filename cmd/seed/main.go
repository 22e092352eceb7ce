package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"leituras-platform/internal/config"
	"leituras-platform/internal/models"
	"leituras-platform/internal/repository"
	"leituras-platform/pkg/database"
	"leituras-platform/pkg/logging"
	"leituras-platform/pkg/metrics"
)

const version = "1.0.0"

func strPtr(s string) *string { return &s }

// demoLeituras returns the demo readings inserted by the seeder.
func demoLeituras(now time.Time) []*models.Leitura {
	return []*models.Leitura{
		{
			Local:    "São Paulo",
			DataHora: now,
			Tipo:     "Temperatura",
			Valor:    22.5,
			Unidade:  strPtr("°C"),
		},
		{
			Local:    "Rio de Janeiro",
			DataHora: now,
			Tipo:     "Umidade",
			Valor:    65.0,
			Unidade:  strPtr("%"),
		},
		{
			Local:    "São Paulo",
			DataHora: now.Add(-time.Hour),
			Tipo:     models.TipoCO2,
			Valor:    412,
			Unidade:  strPtr("ppm"),
		},
		{
			Local:    "Rio de Janeiro",
			DataHora: now.Add(-2 * time.Hour),
			Tipo:     models.TipoPM25,
			Valor:    9.5,
			Unidade:  strPtr("µg/m³"),
		},
	}
}

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("leituras-seed", version, logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[SEED_START] Seeding demo readings", logging.Fields{
		"version": version,
		"db_host": cfg.Database.Host,
		"db_name": cfg.Database.Database,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("leituras_seed")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[SEED_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Insert the demo readings in a single batch
	leituraRepo := repository.NewLeituraRepository(db, logger, metricsCollector)

	leituras := demoLeituras(time.Now().UTC())
	if err := leituraRepo.CreateBatch(ctx, leituras); err != nil {
		logger.Fatal(ctx, "[SEED_ERROR] Failed to insert demo readings", logging.Fields{}, err)
	}

	metricsCollector.SeedBatchSize.Observe(float64(len(leituras)))
	metricsCollector.SeedRecordsTotal.Add(float64(len(leituras)))

	for _, l := range leituras {
		fmt.Printf("Seeded leitura %d: %s / %s = %.1f\n", l.ID, l.Local, l.Tipo, l.Valor)
	}

	logger.Info(ctx, "[SEED_COMPLETE] Seeding completed", logging.Fields{
		"count": len(leituras),
	})
}
