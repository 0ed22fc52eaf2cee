// Package page provides an immutable snapshot of a rendered web page and the
// query helpers the detection heuristics probe it with. Probes are contained:
// a malformed document or a bad selector yields "no result", never a panic in
// the caller.
package page

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/pursewatch-dev/pursewatch/internal/common"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Snapshot is a parsed, read-only capture of a page at a point in time.
type Snapshot struct {
	doc      *goquery.Document
	parsed   *url.URL
	rawURL   string
	title    string
	textOnce sync.Once
	text     string
}

// NewSnapshot parses a rendered-tree capture. The title argument takes
// precedence over the document <title> when present (single-page apps often
// update one without the other).
func NewSnapshot(rawURL, title, html string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSnapshotUnparseable, err)
	}

	snap := &Snapshot{
		doc:    doc,
		rawURL: rawURL,
		title:  strings.TrimSpace(title),
	}
	if parsed, perr := url.Parse(rawURL); perr == nil {
		snap.parsed = parsed
	}
	if snap.title == "" {
		snap.title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return snap, nil
}

// URL returns the raw page URL as captured.
func (s *Snapshot) URL() string { return s.rawURL }

// Hostname returns the lowercased host of the page URL, without port.
func (s *Snapshot) Hostname() string {
	if s.parsed == nil {
		return ""
	}
	return strings.ToLower(s.parsed.Hostname())
}

// Path returns the URL path plus query, lowercased for fragment matching.
func (s *Snapshot) Path() string {
	if s.parsed == nil {
		return strings.ToLower(s.rawURL)
	}
	return strings.ToLower(s.parsed.Path + "?" + s.parsed.RawQuery)
}

// Title returns the page title.
func (s *Snapshot) Title() string { return s.title }

// Count returns the number of elements matching the selector, or zero when
// the selector is invalid or the probe panics.
func (s *Snapshot) Count(selector string) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return s.doc.Find(selector).Length()
}

// Has reports whether at least one element matches the selector.
func (s *Snapshot) Has(selector string) bool {
	return s.Count(selector) > 0
}

// FirstText returns the trimmed text of the first element matching the
// selector.
func (s *Snapshot) FirstText(selector string) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()
	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return collapse(sel.Text()), true
}

// EachText invokes fn with the trimmed text of every element matching the
// selector. Probe failures stop the walk silently.
func (s *Snapshot) EachText(selector string, fn func(text string)) {
	defer func() {
		_ = recover()
	}()
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		fn(collapse(sel.Text()))
	})
}

// Attr returns the named attribute of the first element matching the
// selector.
func (s *Snapshot) Attr(selector, attr string) (val string, ok bool) {
	defer func() {
		if recover() != nil {
			val, ok = "", false
		}
	}()
	return s.doc.Find(selector).First().Attr(attr)
}

// MetaContent returns the content of a <meta> tag matched by name or
// property.
func (s *Snapshot) MetaContent(key string) string {
	sel := fmt.Sprintf(`meta[name=%q], meta[property=%q]`, key, key)
	if content, ok := s.Attr(sel, "content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

// IconURL returns the page favicon URL resolved against the page URL, or an
// empty string when none is declared.
func (s *Snapshot) IconURL() string {
	href, ok := s.Attr(`link[rel~="icon"]`, "href")
	if !ok || href == "" {
		return ""
	}
	if s.parsed != nil {
		if ref, err := url.Parse(href); err == nil {
			return s.parsed.ResolveReference(ref).String()
		}
	}
	return href
}

// Text returns the visible text of the page body with whitespace collapsed.
// Script, style and noscript subtrees are excluded. The result is computed
// once and reused across detectors.
func (s *Snapshot) Text() string {
	s.textOnce.Do(func() {
		defer func() {
			_ = recover()
		}()
		body := s.doc.Find("body").Clone()
		if body.Length() == 0 {
			return
		}
		body.Find("script, style, noscript, template").Remove()
		s.text = collapse(body.Text())
	})
	return s.text
}

// LowerText returns the visible page text lowercased for keyword scans.
func (s *Snapshot) LowerText() string {
	return strings.ToLower(s.Text())
}

func collapse(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
