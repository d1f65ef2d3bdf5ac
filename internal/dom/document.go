package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Document is a parsed HTML document.
// It is read-only once parsed; Count and Title never modify the tree.
type Document struct {
	doc *goquery.Document
}

// Parse reads HTML from r and builds a Document.
// The HTML5 parsing algorithm is lenient, so most malformed markup still
// yields a usable tree.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseBytes is Parse for an in-memory payload.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// Compile compiles a selector (groups such as "h1, h2" are allowed).
// A compile failure is returned as a *SelectorError.
func Compile(selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, &SelectorError{Selector: selector, Err: err}
	}
	return sel, nil
}

// Count returns the number of elements matching selector.
// A selector that does not compile yields 0 and a *SelectorError.
func (d *Document) Count(selector string) (int, error) {
	sel, err := Compile(selector)
	if err != nil {
		return 0, err
	}
	return d.doc.FindMatcher(sel).Length(), nil
}

// Title returns the whitespace-normalized text of the first <title> element,
// or an empty string when there is none.
func (d *Document) Title() string {
	return strings.Join(strings.Fields(d.doc.Find("title").First().Text()), " ")
}
