package dump

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedDump is returned when the XML stream cannot be decoded.
var ErrMalformedDump = errors.New("malformed dump")

// xmlPage mirrors the subset of the export schema we read.
type xmlPage struct {
	Title    string `xml:"title"`
	NS       int32  `xml:"ns"`
	ID       uint32 `xml:"id"`
	Redirect *struct {
		Title string `xml:"title,attr"`
	} `xml:"redirect"`
	Text string `xml:"revision>text"`
}

// Parser streams pages out of a MediaWiki XML export without holding the
// document in memory.
type Parser struct {
	dec *xml.Decoder
}

// NewParser creates a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	return &Parser{dec: dec}
}

// Next returns the next page, or io.EOF when the stream is exhausted.
func (p *Parser) Next() (*RawPage, error) {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDump, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "page" {
			continue
		}

		var xp xmlPage
		if err := p.dec.DecodeElement(&xp, &start); err != nil {
			return nil, fmt.Errorf("%w: page: %v", ErrMalformedDump, err)
		}

		page := &RawPage{
			ID:    xp.ID,
			NS:    xp.NS,
			Title: xp.Title,
			Text:  xp.Text,
		}
		if xp.Redirect != nil {
			page.RedirectTarget = xp.Redirect.Title
		}
		return page, nil
	}
}
