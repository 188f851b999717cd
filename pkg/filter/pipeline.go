package filter

import "fmt"

// Standard is the name of the default format of every dialect.
const Standard = "standard"

// DefaultFormats returns the built-in formats of d.
func DefaultFormats(d Dialect) map[string][]Name {
	switch d {
	case AsciiDoc:
		return map[string][]Name{
			Standard: {Code, Shortcuts, PageLinks, Issues, Includes, ImgFix, HTMLTags},
		}
	case Markdown:
		return map[string][]Name{
			Standard: {Code, Shortcuts, URLs, PageLinks, Issues, LineBreaks, ToMarkdown},
		}
	default:
		return map[string][]Name{
			Standard:           {Code, Shortcuts, URLs, PageLinks, Issues, LineBreaks},
			string(MarkdownIn): {MarkdownIn, Shortcuts, PageLinks, Issues},
		}
	}
}

// Pipeline renders page source through named formats, each an ordered list
// of filters.
type Pipeline struct {
	registry      *Registry
	formats       map[string][]Name
	defaultFormat string
}

// NewPipeline returns a pipeline over reg with the dialect's built-in formats.
func NewPipeline(reg *Registry) *Pipeline {
	p := &Pipeline{
		registry:      reg,
		formats:       make(map[string][]Name),
		defaultFormat: Standard,
	}
	for name, filters := range DefaultFormats(reg.Dialect()) {
		p.Define(name, filters)
	}
	return p
}

// Define registers or replaces a format.
func (p *Pipeline) Define(format string, filters []Name) {
	p.formats[format] = append([]Name(nil), filters...)
}

// SetDefault selects the format used when a render names none or an unknown
// one.
func (p *Pipeline) SetDefault(format string) error {
	if _, ok := p.formats[format]; !ok {
		return fmt.Errorf("unknown format %q", format)
	}
	p.defaultFormat = format
	return nil
}

// Default returns the default format name.
func (p *Pipeline) Default() string {
	return p.defaultFormat
}

// Dialect returns the dialect the pipeline produces.
func (p *Pipeline) Dialect() Dialect {
	return p.registry.Dialect()
}

// Filters returns the filters of format, falling back to the default format.
func (p *Pipeline) Filters(format string) []Name {
	if filters, ok := p.formats[format]; ok {
		return filters
	}
	return p.formats[p.defaultFormat]
}

// Render applies the filters of format to source in order.
//
// Problems never abort the render: an unknown filter name is logged and
// skipped, and a filter that fails is logged and its step is undone. Text
// protected by the code filter is put back after the last step.
func (p *Pipeline) Render(source, format string, c *Context) string {
	if c == nil {
		c = &Context{}
	}
	c.Dialect = p.Dialect()
	saved, rendering := c.stash, c.rendering
	c.stash, c.rendering = nil, true
	defer func() { c.stash, c.rendering = saved, rendering }()

	log := c.logger()
	if _, ok := p.formats[format]; !ok {
		if format != "" {
			log.Warn("unknown format, using default", "format", format, "default", p.defaultFormat)
		}
		format = p.defaultFormat
	}

	out := source
	for _, name := range p.formats[format] {
		f, ok := p.registry.Lookup(name)
		if !ok {
			log.Error("unknown filter in format", "filter", name, "format", format, "dialect", p.Dialect())
			continue
		}
		next, err := apply(f, out, c)
		if err != nil {
			log.Error("filter failed", "filter", name, "format", format, "error", err)
			continue
		}
		out = next
	}
	return c.restore(out)
}

func apply(f Filter, input string, c *Context) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f.Apply(input, c)
}
