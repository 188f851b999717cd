package render

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	tokenRE    = regexp.MustCompile(`\$\{(\w+)\}`)
	relativeRE = regexp.MustCompile(`(href|src)="([^\\$:"]+)"`)
)

// Merge replaces every ${key} in tpl with vars[key]. A key without a value
// is logged and replaced by its own name.
func Merge(tpl string, vars map[string]string, logger *slog.Logger) string {
	return tokenRE.ReplaceAllStringFunc(tpl, func(tok string) string {
		key := tok[2 : len(tok)-1]
		if v, ok := vars[key]; ok {
			return v
		}
		if logger != nil {
			logger.Warn("template key not found", "key", key)
		}
		return key
	})
}

// RebaseLinks prefixes relative href and src attribute values in tpl with
// root, so a template written for the site root works on nested pages.
// Values holding a token, a scheme, an absolute path or a fragment are left
// alone.
func RebaseLinks(tpl, root string) string {
	if root == "" {
		return tpl
	}
	return relativeRE.ReplaceAllStringFunc(tpl, func(attr string) string {
		m := relativeRE.FindStringSubmatch(attr)
		if strings.HasPrefix(m[2], "/") || strings.HasPrefix(m[2], "#") {
			return attr
		}
		return m[1] + `="` + root + m[2] + `"`
	})
}
