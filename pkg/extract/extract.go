// Package extract applies selectors to parsed markup documents.
//
// Extraction never fails on zero matches: absence is reported through Value
// so callers can decide per field whether it is an error.
package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/jmylchreest/catalogx/pkg/selector"
)

// Kind classifies an extraction outcome.
type Kind int

const (
	// Absent means the selector was unset or matched nothing.
	Absent Kind = iota
	// NonText means the first match holds elements but no character data.
	NonText
	// Text means the first match produced a string (possibly empty).
	Text
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case NonText:
		return "non-text"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is the tagged result of a single-value extraction.
type Value struct {
	kind Kind
	text string
}

// Present returns a Text value.
func Present(s string) Value { return Value{kind: Text, text: s} }

// Kind returns the outcome classification.
func (v Value) Kind() Kind { return v.kind }

// Text returns the extracted string and whether the outcome was Text.
func (v Value) Text() (string, bool) { return v.text, v.kind == Text }

// NonEmpty returns the text when it is Text and not the empty string.
func (v Value) NonEmpty() (string, bool) {
	if v.kind != Text || v.text == "" {
		return "", false
	}
	return v.text, true
}

// Parse decodes body to UTF-8 using contentType and any <meta charset>
// hints, then builds a document.
func Parse(body []byte, contentType string) (*goquery.Document, error) {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	data, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		if !utf8.Valid(body) {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		data = body
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// ParseString parses an already UTF-8 encoded document.
func ParseString(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func first(doc *goquery.Document, sel selector.Selector) *goquery.Selection {
	if doc == nil || sel.Empty() {
		return nil
	}
	s := doc.Find(sel.String()).First()
	if s.Length() == 0 {
		return nil
	}
	return s
}

// FirstText returns the text content of the first node matched by sel.
func FirstText(doc *goquery.Document, sel selector.Selector) Value {
	s := first(doc, sel)
	if s == nil {
		return Value{kind: Absent}
	}
	if !hasText(s.Get(0)) && s.Children().Length() > 0 {
		return Value{kind: NonText}
	}
	return Present(s.Text())
}

// FirstHTML returns the inner markup of the first node matched by sel.
func FirstHTML(doc *goquery.Document, sel selector.Selector) (Value, error) {
	s := first(doc, sel)
	if s == nil {
		return Value{kind: Absent}, nil
	}
	markup, err := s.Html()
	if err != nil {
		return Value{}, fmt.Errorf("render %q: %w", sel, err)
	}
	return Present(markup), nil
}

// AllText returns the text content of every node matched by sel, in document order.
func AllText(doc *goquery.Document, sel selector.Selector) []string {
	if doc == nil || sel.Empty() {
		return nil
	}
	var out []string
	doc.Find(sel.String()).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

// Attribute returns attr from every node matched by sel that carries it, in
// document order.
func Attribute(doc *goquery.Document, sel selector.Selector, attr string) []string {
	if doc == nil || sel.Empty() {
		return nil
	}
	var out []string
	doc.Find(sel.String()).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			out = append(out, v)
		}
	})
	return out
}

// hasText reports whether n has any text node descendant.
func hasText(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			return true
		}
		if c.Type == html.ElementNode && hasText(c) {
			return true
		}
	}
	return false
}
