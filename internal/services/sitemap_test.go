package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ginvite/ginvite-api/internal/domain"
)

func TestSitemapPriority(t *testing.T) {
	cases := []struct {
		views   int64
		days    float64
		updated bool
		want    float64
	}{
		{0, 0, false, 0.5},
		{9, 0, true, 0.6},
		{150, 3, true, 0.8},
		{1500, 1, true, 0.9},
		{5000, 200, true, 0.6},
		{0, 400, true, 0.3},
		{50, 60, true, 0.6},
	}
	for _, tc := range cases {
		if got := SitemapPriority(tc.views, tc.days, tc.updated); got != tc.want {
			t.Fatalf("SitemapPriority(%d, %v, %v): expected %v got %v", tc.views, tc.days, tc.updated, tc.want, got)
		}
	}
}

func TestChangeFrequency(t *testing.T) {
	cases := []struct {
		days    float64
		updated bool
		want    string
	}{
		{0.5, true, "daily"},
		{5, true, "weekly"},
		{20, true, "monthly"},
		{90, true, "yearly"},
		{0, false, "monthly"},
	}
	for _, tc := range cases {
		if got := ChangeFrequency(tc.days, tc.updated); got != tc.want {
			t.Fatalf("ChangeFrequency(%v, %v): expected %q got %q", tc.days, tc.updated, tc.want, got)
		}
	}
}

func TestSitemapImages(t *testing.T) {
	inv := domain.Invitation{
		Gallery:  []string{"https://cdn/1.jpg", "http://cdn/insecure.jpg", "https://cdn/1.jpg", "https://cdn/2.jpg"},
		Children: []domain.Person{{Name: "Ali", Profile: "https://cdn/ali.jpg"}, {Profile: "/local.jpg"}},
		Owner:    domain.Owner{FirstName: "Sari", PictureURL: "https://lh3.example/me=s96-c"},
	}
	got := SitemapImages(inv, "Ali")
	if len(got) != 4 {
		t.Fatalf("expected 4 images, got %#v", got)
	}
	if got[0].Title != "Galeri Ali 1" || got[1].Loc != "https://cdn/2.jpg" || got[1].Title != "Galeri Ali 4" {
		t.Fatalf("unexpected gallery images %#v", got[:2])
	}
	if got[2].Title != "Foto Ali" || got[3].Loc != "https://lh3.example/me=s1200-c" || got[3].Title != "Foto Sari" {
		t.Fatalf("unexpected profile images %#v", got[2:])
	}

	var many domain.Invitation
	for i := 0; i < 30; i++ {
		many.Gallery = append(many.Gallery, fmt.Sprintf("https://cdn/%d.jpg", i))
	}
	many.Owner.PictureURL = "https://cdn/owner.jpg"
	if n := len(SitemapImages(many, "x")); n != maxSitemapImages {
		t.Fatalf("expected %d images, got %d", maxSitemapImages, n)
	}
}

func TestSitemapBuilder_Build(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	builder := NewSitemapBuilder(testSite, 3, func() time.Time { return now })

	records := make([]domain.Invitation, 0, 40)
	for i := 0; i < 40; i++ {
		records = append(records, domain.Invitation{
			Slug:      fmt.Sprintf("slug-%02d", i),
			Status:    "published",
			ViewCount: int64(i * 50),
			UpdatedAt: now.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}
	records[5].Status = draftStatus
	records[7].Slug = " "

	urls, err := builder.Build(context.Background(), records)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(urls) != 38 {
		t.Fatalf("expected 38 urls, got %d", len(urls))
	}
	prev := ""
	for _, u := range urls {
		if u.Loc <= prev {
			t.Fatalf("expected input order, %s came after %s", u.Loc, prev)
		}
		prev = u.Loc
		if strings.HasSuffix(u.Loc, "slug-05") || strings.HasSuffix(u.Loc, "slug-07") {
			t.Fatalf("unexpected entry %s", u.Loc)
		}
	}
	first := urls[0]
	if first.Loc != "https://undangan.example/u/slug-00" || first.LastMod != "2026-10-14" || first.ChangeFreq != "daily" || first.Priority != 0.6 {
		t.Fatalf("unexpected first entry %#v", first)
	}
}

func TestSitemapBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	builder := NewSitemapBuilder(testSite, 1, nil)
	if _, err := builder.Build(ctx, []domain.Invitation{{Slug: "a"}}); err == nil {
		t.Fatal("expected cancelled build to fail")
	}
}

func TestSitemapBuilder_BuildXML(t *testing.T) {
	builder := NewSitemapBuilder(testSite, 2, func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })
	doc, err := builder.BuildXML(context.Background(), []domain.Invitation{{
		Slug:    "rahma-martin",
		Gallery: []string{"https://cdn/1.jpg"},
	}})
	if err != nil {
		t.Fatalf("build xml: %v", err)
	}
	out := string(doc)
	for _, want := range []string{
		`<loc>https://undangan.example/u/rahma-martin</loc>`,
		`<changefreq>monthly</changefreq>`,
		`<priority>0.5</priority>`,
		`<image:loc>https://cdn/1.jpg</image:loc>`,
		`<image:title>Galeri rahma martin 1</image:title>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in sitemap:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<lastmod>") {
		t.Fatalf("expected no lastmod without update time:\n%s", out)
	}
}
