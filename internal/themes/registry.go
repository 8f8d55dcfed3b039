package themes

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/observability"
	"github.com/ginvite/ginvite-api/internal/platform/requestctx"
)

//go:embed themes.yaml
var defaultManifest []byte

var (
	// ErrEmptyThemeID is the lookup failure for a blank category id.
	ErrEmptyThemeID = errors.New("themes: category id is empty")
	// ErrUnknownTheme is wrapped by lookup failures for ids with no binding.
	ErrUnknownTheme = errors.New("themes: no theme registered for category")
)

// Factory builds a theme module. Factories run once when the registry is created.
type Factory func(key string) (Module, error)

// builtinFactories is the closed set of theme implementations the manifest may bind.
var builtinFactories = map[string]Factory{
	"wedding": func(key string) (Module, error) {
		return newTemplateModule(key, "wedding")
	},
	"circumcision": func(key string) (Module, error) {
		return newTemplateModule(key, "circumcision")
	},
}

// Manifest binds category ids to theme factories.
type Manifest struct {
	Themes []ManifestEntry `yaml:"themes"`
}

// ManifestEntry is one theme definition.
type ManifestEntry struct {
	Key        string   `yaml:"key"`
	Name       string   `yaml:"name"`
	Factory    string   `yaml:"factory"`
	Categories []string `yaml:"categories"`
}

// Info describes a registered theme.
type Info struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// ParseManifest decodes a YAML manifest.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("themes: parse manifest: %w", err)
	}
	return m, nil
}

// Registry resolves category ids to theme modules.
type Registry struct {
	modules  map[string]Module
	bindings map[string]string
	infos    []Info
	metrics  *observability.Metrics
}

// Option customises a Registry.
type Option func(*Registry)

// WithMetrics records placeholder fallbacks on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewDefaultRegistry builds the registry from the embedded manifest.
func NewDefaultRegistry(opts ...Option) (*Registry, error) {
	manifest, err := ParseManifest(defaultManifest)
	if err != nil {
		return nil, err
	}
	return NewRegistry(manifest, opts...)
}

// NewRegistry instantiates every theme in manifest. Unknown factories, duplicate keys and
// categories bound twice are configuration errors.
func NewRegistry(manifest Manifest, opts ...Option) (*Registry, error) {
	r := &Registry{
		modules:  make(map[string]Module),
		bindings: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, entry := range manifest.Themes {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			return nil, errors.New("themes: manifest entry without key")
		}
		if _, exists := r.modules[key]; exists || key == PlaceholderKey {
			return nil, fmt.Errorf("themes: duplicate theme key %q", key)
		}
		factory, ok := builtinFactories[strings.TrimSpace(entry.Factory)]
		if !ok {
			return nil, fmt.Errorf("themes: theme %q uses unknown factory %q", key, entry.Factory)
		}
		module, err := factory(key)
		if err != nil {
			return nil, err
		}
		r.modules[key] = module

		info := Info{Key: key, Name: entry.Name}
		for _, category := range entry.Categories {
			id := NormalizeID(category)
			if id == "" {
				continue
			}
			if bound, exists := r.bindings[id]; exists {
				return nil, fmt.Errorf("themes: category %q bound to both %q and %q", id, bound, key)
			}
			r.bindings[id] = key
			info.Categories = append(info.Categories, id)
		}
		r.infos = append(r.infos, info)
	}
	sort.Slice(r.infos, func(i, j int) bool { return r.infos[i].Key < r.infos[j].Key })
	return r, nil
}

// NormalizeID canonicalises a category id so "Khitanan", " khitanan " and "KHITANAN" match.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Lookup finds the module bound to id.
func (r *Registry) Lookup(id string) domain.Result[Module] {
	normalized := NormalizeID(id)
	if normalized == "" {
		return domain.Err[Module](ErrEmptyThemeID)
	}
	if r == nil {
		return domain.Err[Module](fmt.Errorf("%w %q", ErrUnknownTheme, normalized))
	}
	key, ok := r.bindings[normalized]
	if !ok {
		return domain.Err[Module](fmt.Errorf("%w %q", ErrUnknownTheme, normalized))
	}
	return domain.Ok(r.modules[key])
}

// Resolve always returns a renderable module, substituting the placeholder when the
// lookup fails. Fallbacks are logged and counted.
func (r *Registry) Resolve(ctx context.Context, id string) Module {
	result := r.Lookup(id)
	if module, err := result.Get(); err == nil {
		return module
	}
	requestctx.Logger(ctx).Warn("theme unavailable, rendering placeholder",
		zap.String("theme_id", observability.SanitizeValue(id)),
		zap.Error(result.Reason()),
	)
	if r != nil {
		r.metrics.ThemeFallback(ctx, id)
	}
	return NewPlaceholder(id)
}

// Themes lists registered themes ordered by key.
func (r *Registry) Themes() []Info {
	if r == nil {
		return nil
	}
	out := make([]Info, len(r.infos))
	copy(out, r.infos)
	return out
}
