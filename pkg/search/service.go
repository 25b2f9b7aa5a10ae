package search

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wiki_router/pkg/titles"
)

var tracer = otel.Tracer("wiki_router.search")

// Query is a title-level search request.
type Query struct {
	Start string
	End   string
	Filter
}

// Searcher answers title queries. Implemented by Service; mocked in tests.
type Searcher interface {
	Search(ctx context.Context, q Query) (*Result, error)
}

// Service resolves titles and runs admitted searches on the engine.
type Service struct {
	engine    *Engine
	titles    *titles.Index
	admission *Admission
	logger    *slog.Logger
}

// NewService creates a Service. admission may be nil.
func NewService(engine *Engine, index *titles.Index, admission *Admission, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{engine: engine, titles: index, admission: admission, logger: logger}
}

// Search resolves q's titles and finds every shortest route between them.
// Unknown titles are reported through the result flags, not as errors.
// ctx bounds only the wait for admission; a running search is not
// interrupted.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	ctx, span := tracer.Start(ctx, "search.Service.Search",
		trace.WithAttributes(
			attribute.String("search.start", q.Start),
			attribute.String("search.end", q.End),
			attribute.Bool("search.enable_date_related", q.EnableDateRelated),
			attribute.Bool("search.enable_list_article", q.EnableListArticle),
		),
	)
	defer span.End()

	began := time.Now()
	start, startOK := s.titles.Exact(q.Start)
	end, endOK := s.titles.Exact(q.End)
	if !startOK || !endOK {
		res := &Result{
			StartNotFound: !startOK,
			EndNotFound:   !endOK,
			Duration:      time.Since(began),
		}
		observe(res)
		span.SetAttributes(attribute.Bool("search.start_not_found", res.StartNotFound),
			attribute.Bool("search.end_not_found", res.EndNotFound))
		return res, nil
	}

	release, err := s.admission.Acquire(ctx)
	if err != nil {
		searchTotal.WithLabelValues(outcomeRejected).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "admission refused")
		s.logger.Warn("search not admitted", "start", q.Start, "end", q.End, "error", err)
		return nil, err
	}
	defer release()

	res, err := s.engine.SearchByIndex(start, end, q.Filter)
	if err != nil {
		searchTotal.WithLabelValues(outcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	observe(res)

	span.SetAttributes(
		attribute.Bool("search.route_found", res.RouteFound),
		attribute.Int("search.distance", int(res.Distance)),
		attribute.Int64("search.visited", int64(res.Visited)),
		attribute.Int("search.nodes", len(res.Nodes)),
	)
	s.logger.Debug("search done",
		"start", q.Start, "end", q.End,
		"found", res.RouteFound, "distance", res.Distance,
		"visited", res.Visited, "discovered", res.Discovered,
		"nodes", len(res.Nodes), "edges", len(res.Edges),
		"duration", res.Duration)
	return res, nil
}
