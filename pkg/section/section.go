// Package section locates delimited regions of text, resolving nested
// occurrences of the same delimiters without a full markup parser.
package section

import (
	"regexp"
	"strings"
	"sync"
)

// Pattern is a delimiter: either a literal string or a regular expression.
type Pattern struct {
	lit string
	re  *regexp.Regexp
}

// Literal returns a pattern matching s exactly.
func Literal(s string) Pattern {
	return Pattern{lit: s}
}

// Regexp returns a pattern backed by re.
func Regexp(re *regexp.Regexp) Pattern {
	return Pattern{re: re}
}

// MustCompile compiles expr into a pattern, panicking on a bad expression.
func MustCompile(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(expr)}
}

// String returns the literal or the regular expression source.
func (p Pattern) String() string {
	if p.re != nil {
		return p.re.String()
	}
	return p.lit
}

// Match is a single, non-nesting occurrence of a pattern.
type Match struct {
	Begin int
	End   int
	// Groups holds the whole match followed by each capture group.
	// Captures that did not participate are empty strings.
	Groups []string
}

// Group returns capture i, or "" if there is no such group.
func (m *Match) Group(i int) string {
	if m == nil || i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

// Span is a balanced open...close region.
type Span struct {
	OuterStart int
	InnerStart int
	InnerEnd   int
	OuterEnd   int
	Children   []*Span
	Open       *Match
	Close      *Match
}

// Inner returns the text between the delimiters.
func (sp *Span) Inner(s string) string {
	return s[sp.InnerStart:sp.InnerEnd]
}

// Outer returns the text including both delimiters.
func (sp *Span) Outer(s string) string {
	return s[sp.OuterStart:sp.OuterEnd]
}

// Find returns the first occurrence of p in s at or after from, or nil.
// Regular expressions are evaluated against s[from:], so a leading ^
// anchors at from.
func Find(s string, p Pattern, from int) *Match {
	if from < 0 {
		from = 0
	}
	if from > len(s) {
		return nil
	}

	if p.re == nil {
		i := strings.Index(s[from:], p.lit)
		if i < 0 {
			return nil
		}
		begin := from + i
		return &Match{Begin: begin, End: begin + len(p.lit), Groups: []string{p.lit}}
	}

	loc := p.re.FindStringSubmatchIndex(s[from:])
	if loc == nil {
		return nil
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[from+loc[2*i] : from+loc[2*i+1]]
		}
	}
	return &Match{Begin: from + loc[0], End: from + loc[1], Groups: groups}
}

// FindSection finds the first region delimited by open and close at or after
// from, taking nested open/close pairs into account. For example with "(" and
// ")" on "a(te(s)(t))b" the span covers "(te(s)(t))" and has two children.
//
// It returns nil when there is no open token, when the open token has no
// matching close token, or when either delimiter matches the empty string.
func FindSection(s string, open, close Pattern, from int) *Span {
	openMatch := Find(s, open, from)
	if openMatch == nil || openMatch.End <= openMatch.Begin {
		return nil
	}
	closeMatch := Find(s, close, openMatch.End)
	if closeMatch == nil || closeMatch.End <= closeMatch.Begin {
		return nil
	}

	var children []*Span
	pos := openMatch.End
	for {
		next := Find(s, open, pos)
		if next == nil || next.Begin >= closeMatch.Begin {
			break
		}
		child := FindSection(s, open, close, pos)
		if child == nil {
			// the nested open is unmatched, so this section is too
			return nil
		}
		if child.OuterEnd > closeMatch.Begin {
			closeMatch = Find(s, close, child.OuterEnd)
			if closeMatch == nil || closeMatch.End <= closeMatch.Begin {
				return nil
			}
		}
		children = append(children, child)
		pos = child.OuterEnd
	}

	return &Span{
		OuterStart: openMatch.Begin,
		InnerStart: openMatch.End,
		InnerEnd:   closeMatch.Begin,
		OuterEnd:   closeMatch.End,
		Children:   children,
		Open:       openMatch,
		Close:      closeMatch,
	}
}

type xmlPatterns struct {
	open  Pattern
	close Pattern
}

var xmlCache sync.Map // element name -> xmlPatterns

func xmlPatternsFor(element string) xmlPatterns {
	if v, ok := xmlCache.Load(element); ok {
		return v.(xmlPatterns)
	}
	quoted := regexp.QuoteMeta(element)
	p := xmlPatterns{
		open:  MustCompile(`<` + quoted + `(\s*\w+="[^"]*")*>`),
		close: MustCompile(`</` + quoted + `>`),
	}
	v, _ := xmlCache.LoadOrStore(element, p)
	return v.(xmlPatterns)
}

// XMLSection finds the first balanced <element ...>...</element> region at or
// after from. Attributes must be double-quoted.
func XMLSection(s, element string, from int) *Span {
	p := xmlPatternsFor(element)
	return FindSection(s, p.open, p.close, from)
}

// XMLOpen returns the open-tag pattern used by XMLSection for element.
func XMLOpen(element string) Pattern {
	return xmlPatternsFor(element).open
}

// ReplaceFunc computes the replacement text for one section of s.
type ReplaceFunc func(s string, sp *Span) string

// Replace substitutes every balanced open...close section of s with the
// result of fn. Scanning resumes after each inserted replacement, so the
// replacement text itself is never rescanned.
func Replace(s string, open, close Pattern, fn ReplaceFunc) string {
	from := 0
	for {
		sp := FindSection(s, open, close, from)
		if sp == nil {
			return s
		}
		repl := fn(s, sp)
		s = s[:sp.OuterStart] + repl + s[sp.OuterEnd:]
		from = sp.OuterStart + len(repl)
	}
}

// ReplaceXML is Replace for <element>...</element> sections.
func ReplaceXML(s, element string, fn ReplaceFunc) string {
	p := xmlPatternsFor(element)
	return Replace(s, p.open, p.close, fn)
}
