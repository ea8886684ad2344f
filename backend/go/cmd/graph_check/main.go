package main

import (
	"DebtGraph/backend/go/internal/config"
	"DebtGraph/backend/go/internal/database/neo4j"
	"DebtGraph/backend/go/internal/debtgraph"
	"DebtGraph/backend/go/pkg/logger"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
)

// 需要统计的图元素。
var sizeTemplates = map[string]debtgraph.Template{
	"parents":   debtgraph.MustTemplate("MATCH (n:Level1)", "n"),
	"children":  debtgraph.MustTemplate("MATCH (n:Level2)", "n"),
	"hierarchy": debtgraph.MustTemplate("MATCH (:Level2)-[edge:HAS_PARENT]->(:Level1)", "edge"),
	"debts":     debtgraph.MustTemplate("MATCH (:Level2)-[edge:HAS_DEBT]->(:Level2)", "edge"),
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	timeout := flag.Duration("timeout", 30*time.Second, "deadline for the whole check")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level), os.Stdout)
	appLogger := logger.New("GraphCheck", uuid.NewString())
	appLogger.Info("Starting graph check...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	// 3. Connect to Neo4j
	var handle neo4j.Handle
	if err := handle.Init(ctx, &cfg.Databases.Neo4j); err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Neo4j")
	}
	defer func() {
		if err := handle.Close(context.Background()); err != nil {
			appLogger.WithError(err).Warn("Failed to close Neo4j driver")
		}
	}()
	client, err := handle.Client()
	if err != nil {
		appLogger.WithError(err).Fatal("Neo4j handle not ready")
	}
	if err := client.HealthCheck(ctx); err != nil {
		appLogger.WithError(err).Fatal("Neo4j health check failed")
	}

	// 4. Report graph size
	exec := debtgraph.NewExecutor(client, appLogger)
	sizes := make(map[string]interface{}, len(sizeTemplates))
	for name, t := range sizeTemplates {
		count, err := exec.Count(ctx, t, nil)
		if err != nil {
			appLogger.WithError(err).Error("Failed to count " + name)
			continue
		}
		sizes[name] = count.Total
	}
	sizes["database"] = cfg.Databases.Neo4j.Database
	appLogger.WithPayload(sizes).Info("Graph check finished")
}
