package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"wiki_router/pkg/api"
	"wiki_router/pkg/config"
	"wiki_router/pkg/graph"
	"wiki_router/pkg/logging"
	"wiki_router/pkg/search"
	"wiki_router/pkg/titles"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		graphPath  string
		addr       string
		corsOrigin string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serve shortest-route queries over a preprocessed link graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("graph") {
				cfg.Graph.Path = graphPath
			}
			if flags.Changed("addr") {
				cfg.Server.Addr = addr
			}
			if flags.Changed("cors-origin") {
				cfg.Server.CORSOrigin = corsOrigin
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}

			logger, err := logging.New(cfg.Log, os.Stderr)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			if cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			if err := run(cmd.Context(), cfg, logger); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVar(&graphPath, "graph", "", "graph file path or s3://bucket/key (overrides config)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&corsOrigin, "cors-origin", "", "CORS allowed origin, empty for same-origin (overrides config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	return cmd
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	start := time.Now()

	logger.Info("loading graph", "path", cfg.Graph.Path)
	g, err := graph.Load(ctx, cfg.Graph.Path, cfg.Graph.ObjectStore())
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	var redirects int
	for i := range g.Nodes {
		if g.Nodes[i].IsRedirect {
			redirects++
		}
	}
	logger.Info("graph loaded",
		"nodes", g.NumNodes(),
		"fwd_edges", len(g.FwdEdges),
		"bwd_edges", len(g.BwdEdges),
		"redirects", redirects)

	index := titles.New(g)
	engine := search.NewEngine(g)
	admission := search.NewAdmission(g.NumNodes(), search.AdmissionConfig{
		MemoryBudgetBytes: cfg.Search.MemoryBudgetBytes,
		RatePerSecond:     cfg.Search.RatePerSecond,
		Burst:             cfg.Search.Burst,
	})
	svc := search.NewService(engine, index, admission, logger)
	logger.Info("ready",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"titles", index.Len(),
		"query_cost_bytes", admission.Cost())

	stats := api.StatsResponse{
		NumNodes:       g.NumNodes(),
		NumFwdEdges:    len(g.FwdEdges),
		NumBwdEdges:    len(g.BwdEdges),
		NumRedirects:   redirects,
		QueryCostBytes: admission.Cost(),
	}
	handlers := api.NewHandlers(svc, index, stats, api.HandlersConfig{
		TitleLimit:    cfg.Search.TitleLimit,
		MaxTitleLimit: cfg.Search.MaxTitleLimit,
	}, logger)
	srv := api.NewServer(cfg.Server, handlers, logger)
	return api.ListenAndServe(ctx, srv, cfg.Server, logger)
}
