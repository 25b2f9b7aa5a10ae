package api

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"wiki_router/pkg/search"
	"wiki_router/pkg/titles"
)

// maxTitleCandidates bounds how many prefix matches are ranked by link count
// before the requested limit is applied.
const maxTitleCandidates = 1000

// TitleLookup answers title prefix queries. Implemented by *titles.Index.
type TitleLookup interface {
	Prefix(prefix string, limit int) []titles.Item
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	searcher      search.Searcher
	titles        TitleLookup
	stats         StatsResponse
	titleLimit    int
	maxTitleLimit int
	logger        *slog.Logger
}

// HandlersConfig sets the title lookup limits.
type HandlersConfig struct {
	TitleLimit    int // used when the request has no limit
	MaxTitleLimit int // requests above this are capped
}

// NewHandlers creates handlers with the given searcher and title lookup.
func NewHandlers(searcher search.Searcher, lookup TitleLookup, stats StatsResponse, cfg HandlersConfig, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxTitleLimit <= 0 {
		cfg.MaxTitleLimit = 100
	}
	if cfg.TitleLimit <= 0 || cfg.TitleLimit > cfg.MaxTitleLimit {
		cfg.TitleLimit = min(10, cfg.MaxTitleLimit)
	}
	return &Handlers{
		searcher:      searcher,
		titles:        lookup,
		stats:         stats,
		titleLimit:    cfg.TitleLimit,
		maxTitleLimit: cfg.MaxTitleLimit,
		logger:        logger,
	}
}

// HandleSearch handles GET /api/v1/search.
func (h *Handlers) HandleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		field := ""
		switch {
		case c.Query("start") == "":
			field = "start"
		case c.Query("end") == "":
			field = "end"
		}
		writeError(c, http.StatusBadRequest, "invalid_request", field)
		return
	}

	res, err := h.searcher.Search(c.Request.Context(), search.Query{
		Start: req.Start,
		End:   req.End,
		Filter: search.Filter{
			EnableDateRelated: req.EnableDateRelated,
			EnableListArticle: req.EnableListArticle,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, search.ErrQueryTooLarge):
			writeError(c, http.StatusUnprocessableEntity, "query_too_large", "")
		case errors.Is(err, search.ErrOverloaded),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			c.Header("Retry-After", "1")
			writeError(c, http.StatusServiceUnavailable, "service_unavailable", "")
		default:
			logger(c, h.logger).Error("search failed", "start", req.Start, "end", req.End, "error", err)
			writeError(c, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	c.JSON(http.StatusOK, toSearchResponse(res))
}

// HandleTitles handles GET /api/v1/titles. Matches are ranked by link count,
// most linked first.
func (h *Handlers) HandleTitles(c *gin.Context) {
	var req TitlesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		field := "limit"
		if c.Query("query") == "" {
			field = "query"
		}
		writeError(c, http.StatusBadRequest, "invalid_request", field)
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = h.titleLimit
	}
	limit = min(limit, h.maxTitleLimit)

	items := h.titles.Prefix(req.Query, max(limit, maxTitleCandidates))
	slices.SortStableFunc(items, func(a, b titles.Item) int {
		return cmp.Compare(b.LinkCount(), a.LinkCount())
	})
	items = items[:min(limit, len(items))]
	titleLookups.Inc()

	resp := TitlesResponse{
		Query: req.Query,
		Limit: limit,
		Items: make([]TitleItemJSON, 0, len(items)),
	}
	for _, it := range items {
		item := TitleItemJSON{
			ID:                it.ID,
			Title:             it.Title,
			IsRedirect:        it.IsRedirect,
			ForwardLinkCount:  it.ForwardLinks,
			BackwardLinkCount: it.BackwardLinks,
			LinkCount:         it.LinkCount(),
		}
		if it.IsRedirect {
			id, title := it.RedirectID, it.RedirectTitle
			item.RedirectedID = &id
			item.RedirectedTitle = &title
		}
		resp.Items = append(resp.Items, item)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats)
}

func toSearchResponse(res *search.Result) SearchResponse {
	resp := SearchResponse{
		StartNotFound:   res.StartNotFound,
		EndNotFound:     res.EndNotFound,
		RouteFound:      res.RouteFound,
		SameNode:        res.SameNode,
		Distance:        res.Distance,
		StartNode:       toNodeJSON(res.Start),
		EndNode:         toNodeJSON(res.End),
		Nodes:           make([]NodeJSON, 0, len(res.Nodes)),
		Edges:           make([][2]uint32, 0, len(res.Edges)),
		VisitedNodes:    res.Visited,
		DiscoveredNodes: res.Discovered,
		DurationMs:      float64(res.Duration.Microseconds()) / 1000,
	}
	for i := range res.Nodes {
		resp.Nodes = append(resp.Nodes, *toNodeJSON(&res.Nodes[i]))
	}
	for _, e := range res.Edges {
		resp.Edges = append(resp.Edges, [2]uint32{e.From, e.To})
	}
	return resp
}

func toNodeJSON(n *search.ResultNode) *NodeJSON {
	if n == nil {
		return nil
	}
	out := &NodeJSON{
		ID:            n.ID,
		Title:         n.Title,
		IsRedirect:    n.IsRedirect,
		IsDateRelated: n.IsDateRelated,
		IsListArticle: n.IsListArticle,
	}
	if n.Distance != search.Unreached {
		d := n.Distance
		out.Distance = &d
	}
	return out
}

func writeError(c *gin.Context, status int, code, field string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     code,
		Field:     field,
		RequestID: c.GetString(requestIDKey),
	})
}
