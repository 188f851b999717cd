package filter

import (
	"regexp"
	"strings"

	"github.com/open-cli-collective/tocsite/pkg/section"
)

var (
	anchorHref = section.MustCompile(`<a\s*href\s*=\s*"([^"]*)"[^>]*>`)
	anchorName = section.MustCompile(`<a\s*name\s*=\s*"([^"]*)"[^>]*>`)
	anchorEnd  = section.Literal("</a>")
	sinceOpen  = section.MustCompile(`<span\s*class\s*=\s*"\s*since\s*"[^>]*>`)
	spanEnd    = section.Literal("</span>")
	listOpen   = section.MustCompile(`<(ul|ol)(\s*\w+="[^"]*")*>`)
	listClose  = section.MustCompile(`</(ul|ol)>`)
	cellOpen   = section.MustCompile(`<t[dh](\s*\w+="[^"]*")*>`)
	cellClose  = section.MustCompile(`</t[dh]>`)

	imgTag     = regexp.MustCompile(`<img\s*src\s*=\s*"([^"]*)"\s*/>`)
	brTag      = regexp.MustCompile(`<br\s*/>`)
	whitespace = regexp.MustCompile(`\s+`)
	blockDelim = regexp.MustCompile(`^(-{4,}|={4,})$`)
	blockAttr  = regexp.MustCompile(`^\[[^\[\]]*\]$`)
)

const (
	tableDelim = "|=======\n"
	noteDelim  = "===============================\n"
)

// wrapTags maps an element to the text placed before and after its content.
var wrapTags = []struct {
	element string
	before  string
	after   string
}{
	{"b", "*", "*"},
	{"strong", "*", "*"},
	{"i", "__", "__"},
	{"h1", "\n== ", "\n"},
	{"h2", "\n=== ", "\n"},
	{"h3", "\n==== ", "\n"},
	{"h4", "\n.", "\n"},
	{"center", "", ""},
	{"tt", "`", "`"},
	{"em", "\n[NOTE]\n" + noteDelim, "\n" + noteDelim},
}

// htmlTagsFilter rewrites the HTML subset used in page sources into
// AsciiDoc: links, anchors, images, breaks, inline styles, headings, notes,
// lists and tables.
func htmlTagsFilter(input string, _ *Context) (string, error) {
	s := section.Replace(input, anchorHref, anchorEnd, func(s string, sp *section.Span) string {
		return "link:" + sp.Open.Group(1) + "[" + sp.Inner(s) + "]"
	})
	s = section.Replace(s, anchorName, anchorEnd, func(s string, sp *section.Span) string {
		return "[[" + sp.Open.Group(1) + "]]" + sp.Inner(s)
	})
	s = imgTag.ReplaceAllString(s, " image:${1}[]")
	s = brTag.ReplaceAllString(s, "\n")

	for _, w := range wrapTags {
		before, after := w.before, w.after
		s = section.ReplaceXML(s, w.element, func(s string, sp *section.Span) string {
			return before + sp.Inner(s) + after
		})
	}
	s = section.Replace(s, sinceOpen, spanEnd, func(s string, sp *section.Span) string {
		return "*__" + sp.Inner(s) + "__*"
	})

	s = convertLists(s, 1)
	s = section.ReplaceXML(s, "table", convertTable)
	return s, nil
}

// convertLists renders every top-level list of s with bullets of the given
// depth; nested lists get one more bullet character per level.
func convertLists(s string, depth int) string {
	return section.Replace(s, listOpen, listClose, func(s string, sp *section.Span) string {
		marker := "*"
		if sp.Open.Group(1) == "ol" {
			marker = "."
		}
		bullet := strings.Repeat(marker, depth)

		inner := sp.Inner(s)
		var b strings.Builder
		for li := section.XMLSection(inner, "li", 0); li != nil; li = section.XMLSection(inner, "li", li.OuterEnd) {
			item := convertLists(li.Inner(inner), depth+1)
			text, nested := splitNested(item)
			b.WriteString("\n" + bullet + " " + itemBody(text))
			b.WriteString(nested)
		}
		b.WriteString("\n")
		return b.String()
	})
}

// splitNested separates an item's own text from the nested list lines that
// convertLists produced inside it.
func splitNested(item string) (text, nested string) {
	for i := 0; i < len(item); i++ {
		if item[i] != '\n' {
			continue
		}
		j := i + 1
		for j < len(item) && (item[j] == '*' || item[j] == '.') {
			j++
		}
		if j > i+1 && j < len(item) && item[j] == ' ' {
			return item[:i], strings.TrimRight(item[i:], "\n")
		}
	}
	return item, ""
}

// itemBody joins the flowing text of a list item onto one line and attaches
// delimited blocks (source listings, notes) with list continuations, keeping
// their lines intact.
func itemBody(text string) string {
	var parts []string
	var flow, block, attrs []string
	delim := ""
	flush := func() {
		if t := collapse(strings.Join(flow, " ")); t != "" {
			parts = append(parts, t)
		}
		flow = nil
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case delim != "":
			block = append(block, line)
			if trimmed == delim {
				parts = append(parts, strings.Join(block, "\n"))
				block, delim = nil, ""
			}
		case blockDelim.MatchString(trimmed):
			flush()
			block = append(attrs, trimmed)
			attrs, delim = nil, trimmed
		case blockAttr.MatchString(trimmed):
			attrs = append(attrs, trimmed)
		default:
			flow = append(flow, attrs...)
			attrs = nil
			flow = append(flow, line)
		}
	}
	if block != nil {
		parts = append(parts, strings.Join(block, "\n"))
	}
	flow = append(flow, attrs...)
	flush()

	if len(parts) == 0 {
		return ""
	}
	first := parts[0]
	if strings.Contains(first, "\n") {
		first = "{empty}\n+\n" + first
	}
	return first + strings.Join(append([]string{""}, parts[1:]...), "\n+\n")
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func convertTable(s string, sp *section.Span) string {
	content := sp.Inner(s)
	var b strings.Builder
	b.WriteString("\n")

	from := 0
	if head := section.XMLSection(content, "thead", 0); head != nil {
		b.WriteString("[options=\"header\"]\n" + tableDelim)
		writeCells(&b, head.Inner(content))
		from = head.OuterEnd
	} else if first := section.XMLSection(content, "tr", 0); first != nil && headerRow(first.Inner(content)) {
		b.WriteString("[options=\"header\"]\n" + tableDelim)
		writeCells(&b, first.Inner(content))
		from = first.OuterEnd
	} else {
		b.WriteString(tableDelim)
	}

	for tr := section.XMLSection(content, "tr", from); tr != nil; tr = section.XMLSection(content, "tr", tr.OuterEnd) {
		writeCells(&b, tr.Inner(content))
	}
	b.WriteString(tableDelim)
	return b.String()
}

// writeCells writes one AsciiDoc row holding every th/td cell of row.
func writeCells(b *strings.Builder, row string) {
	for cell := section.FindSection(row, cellOpen, cellClose, 0); cell != nil; cell = section.FindSection(row, cellOpen, cellClose, cell.OuterEnd) {
		b.WriteString("|" + strings.TrimSpace(cell.Inner(row)))
	}
	b.WriteString("\n")
}

// headerRow reports whether every cell of row is a th.
func headerRow(row string) bool {
	found := false
	for cell := section.FindSection(row, cellOpen, cellClose, 0); cell != nil; cell = section.FindSection(row, cellOpen, cellClose, cell.OuterEnd) {
		if !strings.HasPrefix(cell.Outer(row), "<th") {
			return false
		}
		found = true
	}
	return found
}
