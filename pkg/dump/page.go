package dump

// RawPage is one <page> element of a MediaWiki XML export, before link
// extraction.
type RawPage struct {
	ID             uint32
	NS             int32
	Title          string
	RedirectTarget string // from <redirect title="..."/>, empty if absent
	Text           string // latest revision wikitext
}

// Page is a classified page with its outgoing links resolved to page ids.
type Page struct {
	ID            uint32
	NS            int32
	Title         string
	IsRedirect    bool
	IsDateRelated bool
	IsListArticle bool
	// Links holds the ids of linked pages, deduplicated, in order of first
	// appearance. For a redirect the first entry is the alias target.
	Links []uint32
}
