package cmd

import (
	"DebtGraph/backend/go/internal/config"
	"DebtGraph/backend/go/internal/database/neo4j"
	"DebtGraph/backend/go/internal/debtgraph"
	"DebtGraph/backend/go/internal/export"
	"DebtGraph/backend/go/pkg/circuitbreaker"
	"DebtGraph/backend/go/pkg/logger"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// 全局标志，所有子命令共享。
var (
	cfgFile string
	timeout time.Duration
	skip    int
	limit   int
	xlsx    string
)

var rootCmd = &cobra.Command{
	Use:   "debt-cli",
	Short: "Query the corporate debt graph",
	Long: `A command-line client for the debt graph stored in Neo4j.
Every query prints the total row count, the requested page as JSON and a
summary of the graph elements it contains.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "debt-cli: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "deadline for the whole query")
	rootCmd.PersistentFlags().IntVar(&skip, "skip", 0, "rows to skip")
	rootCmd.PersistentFlags().IntVar(&limit, "limit", debtgraph.Unlimited, "maximum rows to return, <= 0 for all")
	rootCmd.PersistentFlags().StringVar(&xlsx, "xlsx", "", "also write the page to this .xlsx file")
}

// session bundles what a command needs to run one query.
type session struct {
	log     *logger.Logger
	catalog *debtgraph.Catalog
	rings   *debtgraph.RingFinder
}

type queryFunc func(ctx context.Context, s *session, page debtgraph.Page) (*debtgraph.Result, error)

// runQuery loads config, opens the connection, runs q and reports the result.
func runQuery(cmd *cobra.Command, q queryFunc) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	logger.Init(logger.ParseLevel(cfg.Logger.Level), os.Stderr)
	log := logger.New("debt-cli", uuid.NewString()).WithPayload(map[string]interface{}{
		"command": cmd.Name(),
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var handle neo4j.Handle
	if err := handle.Init(ctx, &cfg.Databases.Neo4j); err != nil {
		log.WithError(err).Error("neo4j 初始化失败")
		return err
	}
	defer func() {
		if err := handle.Close(context.Background()); err != nil {
			log.WithError(err).Warn("neo4j 关闭失败")
		}
	}()
	client, err := handle.Client()
	if err != nil {
		return err
	}

	breaker := cfg.Databases.Neo4j.Breaker
	runner := debtgraph.Guard(client, circuitbreaker.Settings{
		FailureThreshold: breaker.FailureThreshold,
		SuccessThreshold: breaker.SuccessThreshold,
		OpenTimeout:      breaker.OpenTimeout,
	})
	exec := debtgraph.NewExecutor(runner, log)
	s := &session{
		log:     log,
		catalog: debtgraph.NewCatalog(exec, cfg.Graph.DetailProperty),
		rings:   debtgraph.NewRingFinder(exec, cfg.Graph.MaxJump),
	}

	res, err := q(ctx, s, debtgraph.Page{Skip: skip, Limit: limit})
	if err != nil {
		log.WithError(err).Error("query failed")
		return err
	}
	return report(cmd.OutOrStdout(), res, xlsx)
}

// report prints count, payload and element statistics, and writes the page
// to an .xlsx file when path is set.
func report(w io.Writer, res *debtgraph.Result, path string) error {
	rows, err := res.Rows()
	if err != nil {
		return err
	}
	count, err := json.Marshal(res.Count)
	if err != nil {
		return err
	}
	stats, err := json.Marshal(debtgraph.Summarize(rows))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "count: %s\n", count)
	fmt.Fprintf(w, "rows:  %s\n", res.Payload)
	fmt.Fprintf(w, "stats: %s\n", stats)

	if path == "" {
		return nil
	}
	if err := export.WriteXLSX(path, res.Count, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "written to %s\n", path)
	return nil
}
