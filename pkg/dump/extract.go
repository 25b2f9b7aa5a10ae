package dump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrDumpChanged is returned when the second pass sees different pages than
// the first.
var ErrDumpChanged = errors.New("dump changed between passes")

// Options controls Extract.
type Options struct {
	Workers       int // scraper goroutines, 0 means GOMAXPROCS
	ProgressEvery int // log every N pages, 0 disables progress logging
	Logger        *slog.Logger
}

// Extract reads the dump twice: pass 1 indexes article titles, pass 2 scrapes
// links in parallel. Pages come back in dump order. Only the article
// namespace is kept.
func Extract(ctx context.Context, open Opener, opts Options) ([]Page, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Pass 1: title -> id.
	titleToID, err := indexTitles(ctx, open, opts.ProgressEvery, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("indexed titles", "pages", len(titleToID))

	// Pass 2: scrape links.
	scraper := NewScraper(titleToID)
	pages := make([]Page, len(titleToID))

	type job struct {
		seq  int
		page *RawPage
	}
	jobs := make(chan job, workers*4)

	var produced int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		return eachArticle(gctx, open, opts.ProgressEvery, logger, func(seq int, p *RawPage) error {
			if seq >= len(pages) {
				return fmt.Errorf("%w: more than %d articles", ErrDumpChanged, len(pages))
			}
			produced = seq + 1
			select {
			case jobs <- job{seq: seq, page: p}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})
	for range workers {
		g.Go(func() error {
			for j := range jobs {
				pages[j.seq] = scraper.Scrape(j.page)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if produced != len(pages) {
		return nil, fmt.Errorf("%w: %d articles, expected %d", ErrDumpChanged, produced, len(pages))
	}

	var links int
	for i := range pages {
		links += len(pages[i].Links)
	}
	logger.Info("scraped links", "pages", len(pages), "links", links)
	return pages, nil
}

func indexTitles(ctx context.Context, open Opener, every int, logger *slog.Logger) (map[string]uint32, error) {
	titleToID := make(map[string]uint32)
	err := eachArticle(ctx, open, every, logger, func(_ int, p *RawPage) error {
		titleToID[p.Title] = p.ID
		return nil
	})
	return titleToID, err
}

// eachArticle calls fn for every article-namespace page with a distinct
// title, numbering them from zero.
func eachArticle(ctx context.Context, open Opener, every int, logger *slog.Logger, fn func(seq int, p *RawPage) error) error {
	rc, err := open()
	if err != nil {
		return err
	}
	defer rc.Close()

	parser := NewParser(rc)
	seen := make(map[string]struct{})
	var total, seq int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := parser.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		total++
		if every > 0 && total%every == 0 {
			logger.Info("reading dump", "pages", total, "articles", seq)
		}
		if p.NS != 0 {
			continue
		}
		if _, dup := seen[p.Title]; dup {
			logger.Warn("duplicate title", "title", p.Title, "id", p.ID)
			continue
		}
		seen[p.Title] = struct{}{}
		if err := fn(seq, p); err != nil {
			return err
		}
		seq++
	}
}
