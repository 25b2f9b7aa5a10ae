package api

// SearchRequest is the query string for GET /api/v1/search.
type SearchRequest struct {
	Start             string `form:"start" binding:"required"`
	End               string `form:"end" binding:"required"`
	EnableDateRelated bool   `form:"enable_date_related"`
	EnableListArticle bool   `form:"enable_list_article"`
}

// NodeJSON is a page in a search response. Distance is omitted for an
// endpoint no route reaches.
type NodeJSON struct {
	ID            uint32 `json:"id"`
	Title         string `json:"title"`
	IsRedirect    bool   `json:"is_redirect"`
	IsDateRelated bool   `json:"is_date_related"`
	IsListArticle bool   `json:"is_list_article"`
	Distance      *uint8 `json:"distance,omitempty"`
}

// SearchResponse is the JSON response for GET /api/v1/search. Edges are
// [from, to] page id pairs.
type SearchResponse struct {
	StartNotFound   bool        `json:"start_not_found"`
	EndNotFound     bool        `json:"end_not_found"`
	RouteFound      bool        `json:"route_found"`
	SameNode        bool        `json:"same_node"`
	Distance        uint8       `json:"distance"`
	StartNode       *NodeJSON   `json:"start_node,omitempty"`
	EndNode         *NodeJSON   `json:"end_node,omitempty"`
	Nodes           []NodeJSON  `json:"nodes"`
	Edges           [][2]uint32 `json:"edges"`
	VisitedNodes    uint32      `json:"visited_nodes"`
	DiscoveredNodes uint32      `json:"discovered_nodes"`
	DurationMs      float64     `json:"duration_ms"`
}

// TitlesRequest is the query string for GET /api/v1/titles.
type TitlesRequest struct {
	Query string `form:"query" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,gte=0"`
}

// TitleItemJSON is one prefix match.
type TitleItemJSON struct {
	ID                uint32  `json:"id"`
	Title             string  `json:"title"`
	IsRedirect        bool    `json:"is_redirect"`
	RedirectedID      *uint32 `json:"redirected_id,omitempty"`
	RedirectedTitle   *string `json:"redirected_title,omitempty"`
	ForwardLinkCount  uint32  `json:"forward_link_count"`
	BackwardLinkCount uint32  `json:"backward_link_count"`
	LinkCount         uint32  `json:"link_count"`
}

// TitlesResponse is the JSON response for GET /api/v1/titles.
type TitlesResponse struct {
	Query string          `json:"query"`
	Limit int             `json:"limit"`
	Items []TitleItemJSON `json:"items"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes       uint32 `json:"num_nodes"`
	NumFwdEdges    int    `json:"num_fwd_edges"`
	NumBwdEdges    int    `json:"num_bwd_edges"`
	NumRedirects   int    `json:"num_redirects"`
	QueryCostBytes int64  `json:"query_cost_bytes"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
