package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultRemoteTimeout    = 10 * time.Second
	defaultTimezone         = "Asia/Jakarta"
	defaultPlaceholderImage = "https://placehold.co/1200x630/png"
	defaultCalendarURL      = "https://calendar.google.com/calendar/render"
	defaultDedupWindow      = 5 * time.Second
	defaultSubmitTimeout    = 10 * time.Second
	defaultRedisPrefix      = "ginvite:draft:"
	defaultSitemapWorkers   = 8
	defaultSitemapObject    = "sitemap.xml"
	defaultLogLevel         = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Remote   RemoteConfig
	Site     SiteConfig
	Drafts   DraftConfig
	Redis    RedisConfig
	Sitemap  SitemapConfig
	Trace    TraceConfig
	LogLevel string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RemoteConfig points at the content service that owns invitation records.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

// SiteConfig holds everything needed to build public URLs and page metadata.
type SiteConfig struct {
	BaseURL             string
	Timezone            string
	Location            *time.Location
	PlaceholderImageURL string
	CalendarURL         string
}

// DraftConfig controls draft-save deduplication.
type DraftConfig struct {
	DedupWindow   time.Duration
	SubmitTimeout time.Duration
}

// RedisConfig enables the shared dedup store when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	TLS      bool
	Prefix   string
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool { return strings.TrimSpace(c.Addr) != "" }

// SitemapConfig sizes the sitemap worker pool and its optional GCS target.
type SitemapConfig struct {
	Workers int
	Bucket  string
	Object  string
}

// TraceConfig carries the Cloud Trace project used for log correlation.
type TraceConfig struct {
	ProjectID string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile        string
	envMap         map[string]string
	useSystemEnv   bool
	optionalRemote bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithOptionalRemote skips the content service requirement, for offline tooling that
// only processes local records.
func WithOptionalRemote() Option {
	return func(o *loaderOptions) {
		o.optionalRemote = true
	}
}

// Load assembles the application configuration by combining defaults, .env overrides
// and environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "GINVITE_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "GINVITE_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "GINVITE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "GINVITE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Remote: RemoteConfig{
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "GINVITE_REMOTE_BASE_URL", ""), "/"),
			Timeout: durationWithDefault(lookup, "GINVITE_REMOTE_TIMEOUT", defaultRemoteTimeout),
			Retries: intWithDefault(lookup, "GINVITE_REMOTE_RETRIES", 0),
		},
		Site: SiteConfig{
			BaseURL:             strings.TrimRight(stringWithDefault(lookup, "GINVITE_SITE_BASE_URL", ""), "/"),
			Timezone:            stringWithDefault(lookup, "GINVITE_SITE_TIMEZONE", defaultTimezone),
			PlaceholderImageURL: stringWithDefault(lookup, "GINVITE_SITE_PLACEHOLDER_IMAGE_URL", defaultPlaceholderImage),
			CalendarURL:         stringWithDefault(lookup, "GINVITE_SITE_CALENDAR_URL", defaultCalendarURL),
		},
		Drafts: DraftConfig{
			DedupWindow:   durationWithDefault(lookup, "GINVITE_DRAFT_DEDUP_WINDOW", defaultDedupWindow),
			SubmitTimeout: durationWithDefault(lookup, "GINVITE_DRAFT_SUBMIT_TIMEOUT", defaultSubmitTimeout),
		},
		Redis: RedisConfig{
			Addr:     stringWithDefault(lookup, "GINVITE_REDIS_ADDR", ""),
			Password: stringWithDefault(lookup, "GINVITE_REDIS_PASSWORD", ""),
			TLS:      boolWithDefault(lookup, "GINVITE_REDIS_TLS", false),
			Prefix:   stringWithDefault(lookup, "GINVITE_REDIS_PREFIX", defaultRedisPrefix),
		},
		Sitemap: SitemapConfig{
			Workers: intWithDefault(lookup, "GINVITE_SITEMAP_WORKERS", defaultSitemapWorkers),
			Bucket:  stringWithDefault(lookup, "GINVITE_SITEMAP_BUCKET", ""),
			Object:  stringWithDefault(lookup, "GINVITE_SITEMAP_OBJECT", defaultSitemapObject),
		},
		Trace: TraceConfig{
			ProjectID: stringWithDefault(lookup, "GINVITE_TRACE_PROJECT_ID", ""),
		},
		LogLevel: strings.ToLower(stringWithDefault(lookup, "GINVITE_LOG_LEVEL", defaultLogLevel)),
	}

	if loc, err := time.LoadLocation(cfg.Site.Timezone); err == nil {
		cfg.Site.Location = loc
	}

	if err := validateConfig(cfg, options); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, options loaderOptions) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if !options.optionalRemote && !isAbsoluteHTTPURL(cfg.Remote.BaseURL) {
		missing = append(missing, "Remote.BaseURL")
	}
	if cfg.Remote.BaseURL != "" && !isAbsoluteHTTPURL(cfg.Remote.BaseURL) {
		missing = append(missing, "Remote.BaseURL")
	}
	if cfg.Remote.Timeout <= 0 {
		missing = append(missing, "Remote.Timeout")
	}
	if cfg.Remote.Retries < 0 {
		missing = append(missing, "Remote.Retries")
	}
	if !isAbsoluteHTTPURL(cfg.Site.BaseURL) {
		missing = append(missing, "Site.BaseURL")
	}
	if cfg.Site.Location == nil {
		missing = append(missing, "Site.Timezone")
	}
	if !isAbsoluteHTTPURL(cfg.Site.PlaceholderImageURL) {
		missing = append(missing, "Site.PlaceholderImageURL")
	}
	if !isAbsoluteHTTPURL(cfg.Site.CalendarURL) {
		missing = append(missing, "Site.CalendarURL")
	}
	if cfg.Drafts.DedupWindow <= 0 {
		missing = append(missing, "Drafts.DedupWindow")
	}
	if cfg.Drafts.SubmitTimeout <= 0 {
		missing = append(missing, "Drafts.SubmitTimeout")
	}
	if cfg.Sitemap.Workers <= 0 {
		missing = append(missing, "Sitemap.Workers")
	}
	if cfg.Sitemap.Bucket != "" && strings.TrimSpace(cfg.Sitemap.Object) == "" {
		missing = append(missing, "Sitemap.Object")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: dedupe(missing)}
	}
	return nil
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
