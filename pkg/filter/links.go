package filter

import (
	"regexp"
	"strings"
)

var (
	shortcutPattern = regexp.MustCompile(`\[\[([^:\[\]\n]+):([^\]\n]+)\]\]`)
	pageLinkPattern = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	urlPattern      = regexp.MustCompile(`(?:file|http|https|mailto|ftp):[^\s'"<>\x02\x03]+(?:/|\b)`)
	attrBefore      = regexp.MustCompile(`(?:href|src)="$`)
)

// splitTarget splits "path title words" at the first space. Without a space,
// or with a leading one, the whole payload is the path and the title.
func splitTarget(payload string) (target, title string, explicit bool) {
	if i := strings.IndexByte(payload, ' '); i > 0 {
		return payload[:i], payload[i+1:], true
	}
	return payload, payload, false
}

func (c *Context) link(href, title string) string {
	if c.Dialect == AsciiDoc {
		return "link:" + href + "[" + title + "]"
	}
	return `<a href="` + href + `">` + title + `</a>`
}

// shortcutsFilter expands [[prefix:path title]] with the configured
// shortcut table. Unknown prefixes are left alone.
func shortcutsFilter(input string, c *Context) (string, error) {
	return replaceSubmatch(shortcutPattern, input, func(m []string) string {
		prefix, payload := m[1], m[2]
		sc, ok := c.Settings.Shortcuts[prefix]
		if !ok {
			c.logger().Debug("unknown shortcut", "prefix", prefix)
			return m[0]
		}
		path, title, _ := splitTarget(payload)
		return c.link(sc.Pre+path+sc.Post, title)
	}), nil
}

// pageLinksFilter resolves [[id]] and [[id title]] against the TOC. Links to
// unknown pages are kept but marked as broken.
func pageLinksFilter(input string, c *Context) (string, error) {
	return replaceSubmatch(pageLinkPattern, input, func(m []string) string {
		id, title, explicit := splitTarget(m[1])

		if n := c.lookup(id); n != nil {
			if !explicit {
				title = n.Title
			}
			if n.Abstract || n.URL == "" {
				return title
			}
			return c.link(n.Href(c.Root), title)
		}

		if !explicit {
			title = m[1]
		}
		c.logger().Warn("link to unknown page", "id", id)
		href := c.Root + id
		switch {
		case c.Dialect != AsciiDoc:
			return `<a href="` + href + `" class="broken-link">` + title + `</a>`
		case c.Settings.StripBrokenLinks:
			return title
		default:
			return title + "link:" + href + "[?]"
		}
	}), nil
}

// urlsFilter turns bare URLs into links, except where they already are the
// value of an href or src attribute or the text of a link.
func urlsFilter(input string, c *Context) (string, error) {
	locs := urlPattern.FindAllStringIndex(input, -1)
	if locs == nil {
		return input, nil
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		u := input[loc[0]:loc[1]]
		b.WriteString(input[last:loc[0]])
		if attrBefore.MatchString(input[max(0, loc[0]-6):loc[0]]) || strings.HasPrefix(input[loc[1]:], "</a>") {
			b.WriteString(u)
		} else {
			b.WriteString(`<a href="` + u + `">` + u + `</a>`)
		}
		last = loc[1]
	}
	b.WriteString(input[last:])
	return b.String(), nil
}

// issuesFilter links issue ids of the configured projects. An id directly
// followed by a digit or a quote is left alone.
func issuesFilter(input string, c *Context) (string, error) {
	tr := c.Settings.Issues
	if tr.URL == "" || len(tr.Projects) == 0 {
		return input, nil
	}
	quoted := make([]string, len(tr.Projects))
	for i, p := range tr.Projects {
		quoted[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile(`((?:` + strings.Join(quoted, "|") + `)-\d+)([^"\d]|$)`)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(tr.URL, "/")
	return replaceSubmatch(re, input, func(m []string) string {
		return c.link(base+"/browse/"+m[1], m[1]) + m[2]
	}), nil
}

// replaceSubmatch is ReplaceAllStringFunc with access to capture groups.
func replaceSubmatch(re *regexp.Regexp, input string, fn func(m []string) string) string {
	idx := re.FindAllStringSubmatchIndex(input, -1)
	if idx == nil {
		return input
	}
	var b strings.Builder
	last := 0
	for _, loc := range idx {
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = input[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(input[last:loc[0]])
		b.WriteString(fn(m))
		last = loc[1]
	}
	b.WriteString(input[last:])
	return b.String()
}
