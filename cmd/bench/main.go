package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"wiki_router/pkg/config"
	"wiki_router/pkg/graph"
	"wiki_router/pkg/search"
)

type options struct {
	configPath string
	graphPath  string
	count      int
	workers    int
	seed       uint64
	filter     search.Filter
}

// report summarizes one benchmark run.
type report struct {
	Queries  int
	Found    int64
	Visited  int64
	Duration time.Duration
}

func (r report) QPS() float64 { return float64(r.Queries) / r.Duration.Seconds() }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "bench",
		Short:        "Run random route queries against a graph file and report throughput",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.graphPath != "" {
				cfg.Graph.Path = opts.graphPath
			}
			g, err := graph.Load(cmd.Context(), cfg.Graph.Path, cfg.Graph.ObjectStore())
			if err != nil {
				return fmt.Errorf("load graph: %w", err)
			}

			out := cmd.OutOrStdout()
			printSizes(out, g)
			fmt.Fprintf(out, "starting benchmark: %d queries, %d workers\n", opts.count, opts.workers)
			r, err := bench(cmd.Context(), search.NewEngine(g), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Duration: %s\n", r.Duration)
			fmt.Fprintf(out, "qps: %.1f\n", r.QPS())
			if r.Queries > 0 {
				fmt.Fprintf(out, "found: %d/%d, mean visited: %.0f\n", r.Found, r.Queries, float64(r.Visited)/float64(r.Queries))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")
	f.StringVar(&opts.graphPath, "graph", "", "graph file path or s3://bucket/key (overrides config)")
	f.IntVarP(&opts.count, "count", "n", 10_000, "number of query pairs to draw")
	f.IntVarP(&opts.workers, "workers", "w", 1, "concurrent searches")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed, 0 for a time-based seed")
	f.BoolVar(&opts.filter.EnableDateRelated, "enable-date-related", false, "allow routes through date pages")
	f.BoolVar(&opts.filter.EnableListArticle, "enable-list-article", false, "allow routes through list pages")
	return cmd
}

func printSizes(out io.Writer, g *graph.Graph) {
	const mb = 1 << 20
	fmt.Fprintf(out, "size of nodes: %d MB\n", uintptr(len(g.Nodes))*unsafe.Sizeof(graph.Node{})/mb)
	fmt.Fprintf(out, "size of forward edges: %d MB\n", len(g.FwdEdges)*4/mb)
	fmt.Fprintf(out, "size of backward edges: %d MB\n", len(g.BwdEdges)*4/mb)
}

// bench draws count random pairs and searches every pair whose endpoints
// differ.
func bench(ctx context.Context, engine *search.Engine, opts options) (report, error) {
	n := engine.Graph().NumNodes()
	if n < 2 {
		return report{}, fmt.Errorf("graph has %d nodes, need at least 2", n)
	}
	seed := opts.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	type pair struct{ start, end uint32 }
	pairs := make([]pair, 0, opts.count)
	for range opts.count {
		p := pair{rng.Uint32N(n), rng.Uint32N(n)}
		if p.start != p.end {
			pairs = append(pairs, p)
		}
	}

	var found, visited atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.workers, 1))

	began := time.Now()
	for _, p := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := engine.SearchByIndex(p.start, p.end, opts.filter)
			if err != nil {
				return err
			}
			if res.RouteFound {
				found.Add(1)
			}
			visited.Add(int64(res.Visited))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report{}, err
	}
	return report{
		Queries:  len(pairs),
		Found:    found.Load(),
		Visited:  visited.Load(),
		Duration: time.Since(began),
	}, nil
}
