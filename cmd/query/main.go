package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"wiki_router/pkg/config"
	"wiki_router/pkg/graph"
	"wiki_router/pkg/logging"
	"wiki_router/pkg/search"
	"wiki_router/pkg/titles"
)

type options struct {
	configPath string
	graphPath  string
	start      string
	end        string
	filter     search.Filter
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Find every shortest route between two page titles",
		Long: `Without --start and --end, prompts for titles until "exit" or end of input.
With both set, runs a single query and exits.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.start == "") != (opts.end == "") {
				return errors.New("--start and --end must be given together")
			}
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
			svc := search.NewService(search.NewEngine(g), titles.New(g), nil, logging.Nop())

			out := cmd.OutOrStdout()
			if opts.start != "" {
				return query(cmd.Context(), svc, out, opts.start, opts.end, opts.filter)
			}
			return repl(cmd.Context(), svc, cmd.InOrStdin(), out, opts.filter)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")
	f.StringVar(&opts.graphPath, "graph", "", "graph file path or s3://bucket/key (overrides config)")
	f.StringVar(&opts.start, "start", "", "start page title")
	f.StringVar(&opts.end, "end", "", "end page title")
	f.BoolVar(&opts.filter.EnableDateRelated, "enable-date-related", false, "allow routes through date pages")
	f.BoolVar(&opts.filter.EnableListArticle, "enable-list-article", false, "allow routes through list pages")
	return cmd
}

// repl reads start and end titles in turn until "exit" or EOF.
func repl(ctx context.Context, s search.Searcher, in io.Reader, out io.Writer, filter search.Filter) error {
	sc := bufio.NewScanner(in)
	prompt := func(msg string) (string, bool) {
		fmt.Fprintln(out, msg)
		if !sc.Scan() {
			return "", false
		}
		return strings.TrimSpace(sc.Text()), true
	}

	for {
		start, ok := prompt("Enter start page title (or 'exit' to quit):")
		if !ok || start == "exit" {
			return sc.Err()
		}
		end, ok := prompt("Enter end page title:")
		if !ok {
			return sc.Err()
		}
		if err := query(ctx, s, out, start, end, filter); err != nil {
			return err
		}
	}
}

func query(ctx context.Context, s search.Searcher, out io.Writer, start, end string, filter search.Filter) error {
	res, err := s.Search(ctx, search.Query{Start: start, End: end, Filter: filter})
	if err != nil {
		return err
	}
	printResult(out, start, end, res)
	return nil
}

func printResult(out io.Writer, start, end string, res *search.Result) {
	switch {
	case res.StartNotFound:
		fmt.Fprintf(out, "Invalid start page title: %q\n", start)
		return
	case res.EndNotFound:
		fmt.Fprintf(out, "Invalid end page title: %q\n", end)
		return
	}

	fmt.Fprintf(out, "start: %s, end: %s\n", start, end)
	switch {
	case res.SameNode:
		fmt.Fprintln(out, "Same page after redirects.")
		return
	case !res.RouteFound:
		fmt.Fprintf(out, "No route (visited %d, discovered %d, %s)\n", res.Visited, res.Discovered, res.Duration)
		return
	}

	nodes := slices.Clone(res.Nodes)
	slices.SortStableFunc(nodes, func(a, b search.ResultNode) int { return int(a.Distance) - int(b.Distance) })
	for _, n := range nodes {
		fmt.Fprintf(out, "Node: %s(distance: %d, id: %d)\n", n.Title, n.Distance, n.ID)
	}
	for _, e := range res.Edges {
		fmt.Fprintf(out, "Edge: %d -> %d\n", e.From, e.To)
	}
	fmt.Fprintf(out, "distance %d, %d nodes, %d edges, visited %d, discovered %d, %s\n",
		res.Distance, len(res.Nodes), len(res.Edges), res.Visited, res.Discovered, res.Duration)
}
