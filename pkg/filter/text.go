package filter

import (
	"errors"
	"html"
	"regexp"
	"strings"

	"github.com/open-cli-collective/tocsite/pkg/section"
)

var (
	boldPattern   = regexp.MustCompile(`\*([^*\n]+)\*`)
	italicPattern = regexp.MustCompile(`_([^_\n]+)_`)
	newline       = regexp.MustCompile(`\r?\n`)
	blockAfter    = regexp.MustCompile(`(?i)^</?(ul|table|li|pre|div)(\s*\w+="[^"]+")*\s*>`)
	tagBefore     = regexp.MustCompile(`(?i)</?\w+(\s*\w+="[^"]+")*\s*/?>\s*$`)
	inlineBefore  = regexp.MustCompile(`(?i)</?(a|b|strong|em|i|big|br class="autobr")(\s*\w+="[^"]+")*\s*/?>\s*$`)
	imgSrc        = regexp.MustCompile(`<img +src *= *"([^"]*)"`)

	preCodeOpen  = section.Literal("<pre><code>")
	preCodeClose = section.Literal("</code></pre>")
)

// lineBreak is the marker inserted for newlines inside flowing text.
const lineBreak = `<br class="autobr"/>`

// lookBehind bounds how much preceding text the line break filter inspects.
const lookBehind = 1024

// codeFilter turns <code>...</code> regions into verbatim blocks. Their
// content is protected from every later filter. Blocks it already produced
// are left as they are.
func codeFilter(input string, c *Context) (string, error) {
	if c.Dialect == Markdown {
		input = section.Replace(input, preCodeOpen, preCodeClose, func(s string, sp *section.Span) string {
			return c.protect(sp.Outer(s))
		})
	}
	return section.ReplaceXML(input, "code", func(s string, sp *section.Span) string {
		inner := sp.Inner(s)
		switch c.Dialect {
		case AsciiDoc:
			return "\n[source]\n----\n" + c.protect(inner) + "\n----\n\n"
		case Markdown:
			return c.protect("<pre><code>" + html.EscapeString(inner) + "</code></pre>")
		default:
			escaped := strings.NewReplacer("<", "&lt;", ">", "&gt;").Replace(inner)
			return c.protect("<pre>" + escaped + "</pre>")
		}
	}), nil
}

// emphasisFilter handles *bold* and _italic_ on a single line.
func emphasisFilter(input string, _ *Context) (string, error) {
	input = boldPattern.ReplaceAllString(input, "<b>$1</b>")
	return italicPattern.ReplaceAllString(input, "<em>$1</em>"), nil
}

// lineBreaksFilter marks newlines in flowing text with an explicit break.
// Newlines just before a block tag, or just after a tag other than an
// inline one, are layout whitespace and are kept.
func lineBreaksFilter(input string, _ *Context) (string, error) {
	locs := newline.FindAllStringIndex(input, -1)
	if locs == nil {
		return input, nil
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(input[last:loc[0]])
		before := input[max(0, loc[0]-lookBehind):loc[0]]
		after := input[loc[1]:]
		if keepNewline(before, after) {
			b.WriteString("\n")
		} else {
			b.WriteString(lineBreak)
		}
		last = loc[1]
	}
	b.WriteString(input[last:])
	return b.String(), nil
}

func keepNewline(before, after string) bool {
	// protected regions are <pre> blocks
	if strings.HasPrefix(after, stashOpen) || strings.HasSuffix(strings.TrimRight(before, " \t"), stashClose) {
		return true
	}
	if blockAfter.MatchString(after) {
		return true
	}
	return tagBefore.MatchString(before) && !inlineBefore.MatchString(before)
}

// includesFilter replaces each [<path>] with the content of path.
func includesFilter(input string, c *Context) (string, error) {
	if !strings.Contains(input, "[<") {
		return input, nil
	}
	var b strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "[<")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+2:], ">]")
		if end < 0 {
			break
		}
		end += start + 2
		path := rest[start+2 : end]
		b.WriteString(rest[:start])

		content, err := c.include(path)
		if err != nil {
			c.logger().Warn("include failed", "path", path, "error", err)
			b.WriteString(rest[start : end+2])
		} else {
			b.WriteString(content)
		}
		rest = rest[end+2:]
	}
	b.WriteString(rest)
	return b.String(), nil
}

var errNoIncluder = errors.New("includes are not available")

func (c *Context) include(path string) (string, error) {
	if c.Include == nil {
		return "", errNoIncluder
	}
	return c.Include(path)
}

// imgFixFilter rebases image sources for documents assembled from pages two
// or more directories deep by dropping the extra "../" segments.
func imgFixFilter(input string, c *Context) (string, error) {
	if c.Level < 3 {
		return input, nil
	}
	return replaceSubmatch(imgSrc, input, func(m []string) string {
		src := m[1]
		for l := c.Level; l > 2 && strings.HasPrefix(src, "../"); l-- {
			src = src[3:]
		}
		return `<img src="` + src + `"`
	}), nil
}
