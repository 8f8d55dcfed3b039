package themes

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/richtext"
	"github.com/ginvite/ginvite-api/internal/platform/textutil"
	"github.com/ginvite/ginvite-api/internal/seo"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PlaceholderKey identifies the fallback module.
const PlaceholderKey = "placeholder"

// PageData is everything a theme needs to render a guest page.
type PageData struct {
	ThemeID     string
	ThemeKey    string
	DisplayName string
	Category    domain.Category
	Events      []domain.EventEntry
	Countdown   time.Time
	CalendarURL string
	Gallery     []string
	Children    []domain.Person
	Quote       domain.Quote
	Fonts       domain.Fonts
	Decorations map[string]string
	Meta        seo.Meta
}

// Module renders a guest page for one theme.
type Module interface {
	Key() string
	Render(w io.Writer, data PageData) error
}

var funcMap = template.FuncMap{
	"markdown":   richtext.RenderHTML,
	"jsonld":     func(s string) template.JS { return template.JS(s) },
	"fontFamily": fontFamilyCSS,
	"isoTime":    func(t time.Time) string { return t.Format(time.RFC3339) },
	"inc":        func(i int) int { return i + 1 },
}

type templateModule struct {
	key  string
	tmpl *template.Template
}

func (m *templateModule) Key() string { return m.key }

func (m *templateModule) Render(w io.Writer, data PageData) error {
	data.ThemeKey = m.key
	if err := m.tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("themes: render %s: %w", m.key, err)
	}
	return nil
}

func newTemplateModule(key, page string) (*templateModule, error) {
	tmpl, err := template.New("_root").Funcs(funcMap).ParseFS(templateFS,
		"templates/base.tmpl",
		"templates/head.tmpl",
		"templates/events.tmpl",
		"templates/"+page+".tmpl",
	)
	if err != nil {
		return nil, fmt.Errorf("themes: parse %s templates: %w", page, err)
	}
	return &templateModule{key: key, tmpl: tmpl}, nil
}

// Placeholder renders a notice that the requested theme is unavailable.
type Placeholder struct {
	id   string
	page *templateModule
}

// Key implements Module.
func (p *Placeholder) Key() string { return PlaceholderKey }

// ThemeID returns the unresolved id this placeholder stands in for.
func (p *Placeholder) ThemeID() string { return p.id }

// Render implements Module. The notice always names the unresolved id.
func (p *Placeholder) Render(w io.Writer, data PageData) error {
	data.ThemeID = p.id
	return p.page.Render(w, data)
}

var placeholderPage = mustTemplateModule(PlaceholderKey, "placeholder")

// NewPlaceholder returns the fallback module for id.
func NewPlaceholder(id string) *Placeholder {
	return &Placeholder{id: strings.TrimSpace(id), page: placeholderPage}
}

func mustTemplateModule(key, page string) *templateModule {
	m, err := newTemplateModule(key, page)
	if err != nil {
		panic(err)
	}
	return m
}

// fontFamilyCSS keeps only characters that can appear in a font-family list.
func fontFamilyCSS(family string) template.CSS {
	family = textutil.NormalizeFontFamily(family)
	var b strings.Builder
	for _, r := range family {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == ',', r == '-', r == '_', r == '\'', r == '"':
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		out = textutil.DefaultFontFamily
	}
	return template.CSS(out)
}
