// Package render turns page files into site pages: it extracts the raw page
// source, runs it through a filter pipeline and merges the result with the
// site templates together with the navigation components.
package render

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ohler55/ojg/sen"
	"golang.org/x/net/html"
)

// SourceID is the id of the textarea holding a page's raw source.
const SourceID = "tocsite-source"

// legacySourceID is accepted when reading pages written by older tools.
const legacySourceID = "xooki-source"

const textareaEnd = "</textarea>"

// ErrNoSource is returned for page files without a source block.
var ErrNoSource = errors.New("page has no source block")

// ExtractSource returns the raw source of a page file: everything between
// the source textarea's start tag and the last closing textarea tag. A
// single newline directly after the start tag is dropped, as browsers do.
func ExtractSource(page string) (string, error) {
	start, ok := sourceStart(page)
	if !ok {
		return "", ErrNoSource
	}
	end := strings.LastIndex(page, textareaEnd)
	if end < start {
		return "", ErrNoSource
	}
	return strings.TrimPrefix(page[start:end], "\n"), nil
}

// ReplaceSource returns page with the content of its source block replaced.
func ReplaceSource(page, source string) (string, error) {
	start, ok := sourceStart(page)
	if !ok {
		return "", ErrNoSource
	}
	end := strings.LastIndex(page, textareaEnd)
	if end < start {
		return "", ErrNoSource
	}
	return page[:start] + "\n" + source + page[end:], nil
}

// sourceStart returns the offset just past the source textarea's start tag.
func sourceStart(page string) (int, bool) {
	z := html.NewTokenizer(strings.NewReader(page))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return 0, false
		}
		offset += len(z.Raw())
		if tt != html.StartTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "textarea" || !hasAttr {
			continue
		}
		for {
			key, val, more := z.TagAttr()
			if string(key) == "id" && (string(val) == SourceID || string(val) == legacySourceID) {
				return offset, true
			}
			if !more {
				break
			}
		}
	}
}

// withoutSource returns page with the content of its source block cut out.
func withoutSource(page string) string {
	start, ok := sourceStart(page)
	if !ok {
		return page
	}
	end := strings.LastIndex(page, textareaEnd)
	if end < start {
		return page
	}
	return page[:start] + page[end:]
}

var overridesRE = regexp.MustCompile(`var\s+(?:tocsiteConfig|xookiConfig)\s*=\s*(\{.*\})\s*;`)

// Overrides are per-page settings declared in the page file.
type Overrides struct {
	// Format names the input format the page source is written in.
	Format string
	// Title replaces the TOC title in the page template.
	Title string
	// Values holds every declared key, including the ones above.
	Values map[string]any
}

// ParseOverrides reads the page's override declaration, a line of the form
// var tocsiteConfig = {format: "markdown"};
// A page without one has zero overrides. The source block is not searched.
func ParseOverrides(page string) (Overrides, error) {
	m := overridesRE.FindStringSubmatch(withoutSource(page))
	if m == nil {
		return Overrides{}, nil
	}
	v, err := sen.Parse([]byte(m[1]))
	if err != nil {
		return Overrides{}, fmt.Errorf("parsing page overrides: %w", err)
	}
	values, ok := v.(map[string]any)
	if !ok {
		return Overrides{}, fmt.Errorf("parsing page overrides: expected an object, got %T", v)
	}
	o := Overrides{Values: values}
	o.Format, _ = values["format"].(string)
	o.Title, _ = values["title"].(string)
	return o, nil
}
