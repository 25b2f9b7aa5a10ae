package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wiki_router/pkg/dump"
	"wiki_router/pkg/graph"
	"wiki_router/pkg/logging"
)

type options struct {
	input            string
	output           string
	codec            string
	workers          int
	progressEvery    int
	largestComponent bool
	logLevel         string
	logFormat        string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Build a link graph file from a MediaWiki XML dump",
		Long: `Reads a pages-articles dump (plain, .bz2 or .zst) twice: once to index
article titles and once to scrape links in parallel. Writes the resulting
forward and backward adjacency as a single graph file.`,
		Example:       "  preprocess --input jawiki-latest-pages-articles.xml.bz2 --output wiki.graph --codec zstd",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Config{Level: opts.logLevel, Format: opts.logFormat}, os.Stderr)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			if err := run(cmd.Context(), opts, logger); err != nil {
				logger.Error("preprocess failed", "error", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "path to the XML dump")
	f.StringVarP(&opts.output, "output", "o", "wiki.graph", "output graph file path")
	f.StringVar(&opts.codec, "codec", "zstd", "payload compression: none, zstd or lz4")
	f.IntVar(&opts.workers, "workers", 0, "scraper goroutines, 0 for GOMAXPROCS")
	f.IntVar(&opts.progressEvery, "progress-every", 100_000, "log progress every N pages, 0 to disable")
	f.BoolVar(&opts.largestComponent, "largest-component", false, "keep only the largest weakly connected component")
	f.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	f.StringVar(&opts.logFormat, "log-format", "text", "text or json")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	codec, err := graph.ParseCodec(opts.codec)
	if err != nil {
		return err
	}
	start := time.Now()

	// Step 1: Parse the dump and scrape links.
	logger.Info("extracting pages", "input", opts.input)
	pages, err := dump.Extract(ctx, dump.FileOpener(opts.input), dump.Options{
		Workers:       opts.workers,
		ProgressEvery: opts.progressEvery,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("extract %s: %w", opts.input, err)
	}
	logger.Info("pages extracted", "pages", len(pages), "elapsed", time.Since(start).Round(time.Second))

	// Step 2: Build graph.
	g := graph.Build(pages)
	logger.Info("graph built", "nodes", g.NumNodes(), "edges", len(g.FwdEdges))

	// Step 3: Optionally keep the largest connected component.
	if opts.largestComponent && g.NumNodes() > 0 {
		componentNodes := graph.LargestComponent(g)
		logger.Info("largest component",
			"nodes", len(componentNodes),
			"percent", fmt.Sprintf("%.1f", float64(len(componentNodes))/float64(g.NumNodes())*100))
		g = graph.FilterToComponent(g, componentNodes)
		logger.Info("filtered graph", "nodes", g.NumNodes(), "edges", len(g.FwdEdges))
	}

	if err := g.Validate(); err != nil {
		return err
	}

	// Step 4: Serialize.
	logger.Info("writing graph", "output", opts.output, "codec", codec)
	if err := graph.WriteBinary(opts.output, g, codec); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	info, err := os.Stat(opts.output)
	if err != nil {
		return err
	}
	logger.Info("done",
		"elapsed", time.Since(start).Round(time.Second),
		"output", opts.output,
		"size_mb", fmt.Sprintf("%.1f", float64(info.Size())/(1<<20)))
	return nil
}
