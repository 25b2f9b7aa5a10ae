package dump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTitles() map[string]uint32 {
	return map[string]uint32{
		"Apple":          1,
		"Apple pie":      2,
		"Banana":         3,
		"Pie":            4,
		"List of fruits": 6,
		"1999":           7,
	}
}

func TestScrape(t *testing.T) {
	s := NewScraper(sampleTitles())

	tests := []struct {
		name string
		raw  RawPage
		want Page
	}{
		{
			name: "normalized and sectioned links, self and namespaced dropped",
			raw:  RawPage{ID: 1, Title: "Apple", Text: "An [[apple_pie|pie]] and [[Banana#Taste]] and [[Apple]] and [[Category:Fruit]]."},
			want: Page{ID: 1, Title: "Apple", Links: []uint32{2, 3}},
		},
		{
			name: "leading colon and duplicates",
			raw:  RawPage{ID: 2, Title: "Apple pie", Text: "Made from [[Apple]]. See [[:Banana]] and [[Apple]]."},
			want: Page{ID: 2, Title: "Apple pie", Links: []uint32{1, 3}},
		},
		{
			name: "redirect keeps only its target",
			raw:  RawPage{ID: 4, Title: "Pie", RedirectTarget: "Apple pie", Text: "#REDIRECT [[Apple pie]] [[Banana]]"},
			want: Page{ID: 4, Title: "Pie", IsRedirect: true, Links: []uint32{2}},
		},
		{
			name: "redirect detected from text",
			raw:  RawPage{ID: 4, Title: "Pie", Text: "#転送 [[Banana]] [[Apple]]"},
			want: Page{ID: 4, Title: "Pie", IsRedirect: true, Links: []uint32{3}},
		},
		{
			name: "list article",
			raw:  RawPage{ID: 6, Title: "List of fruits", Text: "[[Apple]] & [[Banana]] and [[1999]]"},
			want: Page{ID: 6, Title: "List of fruits", IsListArticle: true, Links: []uint32{1, 3, 7}},
		},
		{
			name: "date page",
			raw:  RawPage{ID: 7, Title: "1999", Text: "A year. [[Apple]] [[Nowhere]]"},
			want: Page{ID: 7, Title: "1999", IsDateRelated: true, Links: []uint32{1}},
		},
		{
			name: "no links",
			raw:  RawPage{ID: 3, Title: "Banana", Text: "Yellow."},
			want: Page{ID: 3, Title: "Banana"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Scrape(&tt.raw))
		})
	}
}

func TestScrapeUnresolvedRedirect(t *testing.T) {
	s := NewScraper(sampleTitles())

	got := s.Scrape(&RawPage{ID: 9, Title: "Gone", RedirectTarget: "Missing", Text: "#REDIRECT [[Missing]]"})
	assert.True(t, got.IsRedirect)
	assert.Empty(t, got.Links)
}
