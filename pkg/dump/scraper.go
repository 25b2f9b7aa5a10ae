package dump

import (
	"regexp"
	"strings"
)

// linkPattern captures the target of [[Target]], [[Target|label]] and
// [[Target#section]].
var linkPattern = regexp.MustCompile(`\[\[([^\[\]#|]+?)(?:[#|][^\]]*)?\]\]`)

// Scraper extracts resolved, classified pages from raw pages. It is safe for
// concurrent use once constructed.
type Scraper struct {
	titleToID map[string]uint32
}

// NewScraper creates a Scraper resolving link targets through titleToID.
func NewScraper(titleToID map[string]uint32) *Scraper {
	return &Scraper{titleToID: titleToID}
}

// Scrape classifies p and resolves its links. Unknown targets, namespaced
// targets, and self-links are dropped.
func (s *Scraper) Scrape(p *RawPage) Page {
	page := Page{
		ID:            p.ID,
		NS:            p.NS,
		Title:         p.Title,
		IsRedirect:    p.RedirectTarget != "" || IsRedirectText(p.Text),
		IsDateRelated: IsDateRelated(p.Title),
		IsListArticle: IsListArticle(p.Title),
	}

	seen := make(map[uint32]struct{})
	add := func(target string) {
		id, ok := s.resolve(target)
		if !ok || id == p.ID {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		page.Links = append(page.Links, id)
	}

	if p.RedirectTarget != "" {
		add(p.RedirectTarget)
	}
	for _, m := range linkPattern.FindAllStringSubmatch(p.Text, -1) {
		add(m[1])
		if page.IsRedirect && len(page.Links) > 0 {
			break // a redirect only keeps its alias target
		}
	}
	return page
}

func (s *Scraper) resolve(target string) (uint32, bool) {
	if id, ok := s.titleToID[target]; ok {
		return id, true
	}
	// Leading colon forces an article link; any other prefix is a namespace.
	target = strings.TrimPrefix(target, ":")
	id, ok := s.titleToID[NormalizeTitle(target)]
	return id, ok
}
