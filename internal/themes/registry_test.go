package themes

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/requestctx"
	"github.com/ginvite/ginvite-api/internal/seo"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewDefaultRegistry()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	return reg
}

func TestLookupBindsCategories(t *testing.T) {
	reg := newTestRegistry(t)
	cases := map[string]string{
		"1":           "wedding-classic",
		" Pernikahan": "wedding-classic",
		"2":           "circumcision-classic",
		"KHITANAN":    "circumcision-classic",
	}
	for id, want := range cases {
		module, err := reg.Lookup(id).Get()
		if err != nil {
			t.Fatalf("lookup %q: %v", id, err)
		}
		if module.Key() != want {
			t.Fatalf("lookup %q: expected %s got %s", id, want, module.Key())
		}
	}
}

func TestLookupFailures(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Lookup("  ").Reason(); !errors.Is(err, ErrEmptyThemeID) {
		t.Fatalf("expected ErrEmptyThemeID, got %v", err)
	}
	if err := reg.Lookup("teater").Reason(); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
}

func TestResolveUnknownRendersPlaceholder(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := requestctx.WithLogger(context.Background(), zap.New(core))
	reg := newTestRegistry(t)

	module := reg.Resolve(ctx, "teater")
	placeholder, ok := module.(*Placeholder)
	if !ok {
		t.Fatalf("expected placeholder, got %T", module)
	}
	if placeholder.ThemeID() != "teater" {
		t.Fatalf("unexpected placeholder id %q", placeholder.ThemeID())
	}

	var buf bytes.Buffer
	if err := module.Render(&buf, PageData{DisplayName: "Teater Kita"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Tema kategori #teater belum tersedia.") {
		t.Fatalf("expected unavailable notice, got:\n%s", buf.String())
	}

	entries := logs.FilterField(zap.String("theme_id", "teater")).All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warning naming the id, got %#v", logs.All())
	}
}

func TestResolveIsTotal(t *testing.T) {
	reg := newTestRegistry(t)
	rng := rand.New(rand.NewSource(42))
	ids := []string{"", "-1", "0", "999", "null", "1.5", "🎉", "<script>"}
	for i := 0; i < 50; i++ {
		ids = append(ids, strconv.Itoa(rng.Intn(2000)-1000))
	}
	for _, id := range ids {
		module := reg.Resolve(context.Background(), id)
		if module == nil {
			t.Fatalf("nil module for %q", id)
		}
		var buf bytes.Buffer
		if err := module.Render(&buf, PageData{}); err != nil {
			t.Fatalf("render for %q: %v", id, err)
		}
	}
	var nilRegistry *Registry
	if nilRegistry.Resolve(context.Background(), "1") == nil {
		t.Fatal("nil registry must still resolve to the placeholder")
	}
}

func TestNewRegistryRejectsBadManifest(t *testing.T) {
	cases := map[string]string{
		"unknown factory": `themes: [{key: a, factory: opera, categories: ["9"]}]`,
		"duplicate key":   `themes: [{key: a, factory: wedding}, {key: a, factory: wedding}]`,
		"double binding":  `themes: [{key: a, factory: wedding, categories: ["1"]}, {key: b, factory: circumcision, categories: [" 1 "]}]`,
		"missing key":     `themes: [{factory: wedding}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			manifest, err := ParseManifest([]byte(doc))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, err := NewRegistry(manifest); err == nil {
				t.Fatal("expected registry error")
			}
		})
	}
}

func TestThemesListing(t *testing.T) {
	infos := newTestRegistry(t).Themes()
	if len(infos) != 2 || infos[0].Key != "circumcision-classic" || infos[1].Key != "wedding-classic" {
		t.Fatalf("unexpected listing %#v", infos)
	}
}

func TestWeddingRender(t *testing.T) {
	module, err := newTestRegistry(t).Lookup("1").Get()
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	data := PageData{
		DisplayName: "Rahma & Martin",
		Events: []domain.EventEntry{
			{Key: "resepsi", Title: "Resepsi", Date: "2026-01-15", Time: "11:00", MapsLink: "https://maps.example/r"},
		},
		Countdown:   time.Date(2026, 1, 15, 11, 0, 0, 0, time.FixedZone("WIB", 7*3600)),
		CalendarURL: "https://calendar.example/render?action=TEMPLATE",
		Gallery:     []string{"https://cdn/1.jpg"},
		Quote:       domain.Quote{Text: "**Dan** di antara tanda-tanda", Source: "QS Ar-Rum 21"},
		Fonts:       domain.Fonts{Title: "'Great Vibes', cursive; } body { color: red", Body: "sans-serif"},
		Meta: seo.Meta{
			Title:  "Undangan Digital | Rahma & Martin",
			OG:     seo.OpenGraph{Type: "website", Image: seo.Image{URL: "https://cdn/1.jpg", Width: 1200, Height: 630}},
			JSONLD: `{"@type":"Event"}`,
		},
	}
	var buf bytes.Buffer
	if err := module.Render(&buf, data); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{
		`<title>Undangan Digital | Rahma &amp; Martin</title>`,
		`<meta property="og:image:secure_url" content="https://cdn/1.jpg">`,
		`<script type="application/ld+json">{"@type":"Event"}</script>`,
		`datetime="2026-01-15T11:00:00&#43;07:00"`,
		`class="calendar-action"`,
		`<strong>Dan</strong>`,
		`href="https://maps.example/r"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
	if strings.Contains(html, "color: red") || strings.Contains(html, "{ color") {
		t.Fatalf("font family must not break out of the declaration:\n%s", html)
	}
}

func TestRenderOmitsCalendarWithoutURL(t *testing.T) {
	module, _ := newTestRegistry(t).Lookup("2").Get()
	var buf bytes.Buffer
	if err := module.Render(&buf, PageData{DisplayName: "Ali"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "calendar-action") {
		t.Fatal("calendar action must not render without a url")
	}
}
