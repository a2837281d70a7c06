package pages

import "strings"

const (
	markerOpen  = "<!-- {{"
	markerClose = "}} -->"
)

type block struct {
	name        string
	show        bool
	replacement string
}

// Template fills a page written with {{name}} placeholders and
// <!-- {{#if name}} --> ... <!-- {{/if name}} --> conditional blocks.
type Template struct {
	src     string
	scalars map[string]string
	blocks  []block
	eaches  map[string]string
}

func NewTemplate(src string) *Template {
	return &Template{
		src:     src,
		scalars: make(map[string]string),
		eaches:  make(map[string]string),
	}
}

// Set substitutes {{name}} with value. The value is inserted as is.
func (t *Template) Set(name, value string) *Template {
	t.scalars[name] = value
	return t
}

// Block keeps the inner content of the named block when show is true and
// drops the whole block otherwise.
func (t *Template) Block(name string, show bool) *Template {
	return t.BlockOr(name, show, "")
}

// BlockOr is Block with a replacement for hidden blocks.
func (t *Template) BlockOr(name string, show bool, replacement string) *Template {
	t.blocks = append(t.blocks, block{name: name, show: show, replacement: replacement})
	return t
}

// Each replaces the region between <!-- {{#each name}} --> and
// <!-- {{/each}} --> with html.
func (t *Template) Each(name, html string) *Template {
	t.eaches[name] = html
	return t
}

func (t *Template) Render() string {
	out := t.src
	for _, b := range t.blocks {
		out = resolveBlock(out, b)
	}
	for name, html := range t.eaches {
		out = replaceRegion(out, markerOpen+"#each "+name+markerClose, markerOpen+"/each"+markerClose, func(string) string {
			return html
		})
	}
	out = stripMarkers(out)
	return substitute(out, t.scalars)
}

func resolveBlock(src string, b block) string {
	open := markerOpen + "#if " + b.name + markerClose
	end := markerOpen + "/if " + b.name + markerClose
	return replaceRegion(src, open, end, func(inner string) string {
		if b.show {
			return strings.TrimSpace(inner)
		}
		return b.replacement
	})
}

// replaceRegion rewrites every open...end region of src. An open marker
// without a matching end is left for stripMarkers.
func replaceRegion(src, open, end string, fn func(inner string) string) string {
	var sb strings.Builder
	rest := src
	for {
		i := strings.Index(rest, open)
		if i < 0 {
			break
		}
		j := strings.Index(rest[i+len(open):], end)
		if j < 0 {
			break
		}
		inner := rest[i+len(open) : i+len(open)+j]
		sb.WriteString(rest[:i])
		sb.WriteString(fn(inner))
		rest = rest[i+len(open)+j+len(end):]
	}
	sb.WriteString(rest)
	return sb.String()
}

func isControl(token string) bool {
	for _, prefix := range []string{"#if", "/if", "#each", "/each", "else"} {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}

// stripMarkers removes block markers left without a partner.
func stripMarkers(src string) string {
	var sb strings.Builder
	rest := src
	for {
		i := strings.Index(rest, markerOpen)
		if i < 0 {
			break
		}
		j := strings.Index(rest[i+len(markerOpen):], markerClose)
		if j < 0 {
			break
		}
		token := rest[i+len(markerOpen) : i+len(markerOpen)+j]
		sb.WriteString(rest[:i])
		if !isControl(token) {
			sb.WriteString(rest[i : i+len(markerOpen)+j+len(markerClose)])
		}
		rest = rest[i+len(markerOpen)+j+len(markerClose):]
	}
	sb.WriteString(rest)
	return sb.String()
}

// substitute replaces every {{name}} token in one pass. Inserted values are
// not scanned again and unknown names become empty.
func substitute(src string, scalars map[string]string) string {
	var sb strings.Builder
	sb.Grow(len(src))
	rest := src
	for {
		i := strings.Index(rest, "{{")
		if i < 0 {
			break
		}
		j := strings.Index(rest[i+2:], "}}")
		if j < 0 {
			break
		}
		name := rest[i+2 : i+2+j]
		if name == "" || strings.ContainsRune(name, '}') {
			sb.WriteString(rest[:i+2])
			rest = rest[i+2:]
			continue
		}
		sb.WriteString(rest[:i])
		sb.WriteString(scalars[strings.TrimSpace(name)])
		rest = rest[i+2+j+2:]
	}
	sb.WriteString(rest)
	return sb.String()
}
