package services

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/ginvite/ginvite-api/internal/domain"
)

func mustParse(t *testing.T, payload string) domain.Invitation {
	t.Helper()
	inv, err := domain.ParseRecord([]byte(payload))
	if err != nil {
		t.Fatalf("parse record: %v", err)
	}
	return inv
}

func TestResolveDisplayName(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		slug    string
		want    string
	}{
		{
			name:    "circumcision uses first child only",
			payload: `{"category_type": {"name": "khitanan"}, "content": {"children": [{"name": "Ali"}, {"name": "Budi"}]}}`,
			want:    "Ali",
		},
		{
			name:    "wedding joins two names",
			payload: `{"category_type": {"name": "pernikahan"}, "content": {"children": [{"name": "Rahma"}, {"name": "Martin"}]}}`,
			want:    "Rahma & Martin",
		},
		{
			name:    "slug fallback",
			payload: `{}`,
			slug:    "budi-siti",
			want:    "budi siti",
		},
		{
			name:    "at most two names with nama fallback",
			payload: `{"content": {"children": [{"name": "  "}, {"nama": "Dewi"}, {"name": "Eka"}, {"name": "Fajar"}]}}`,
			want:    "Dewi & Eka",
		},
		{
			name:    "owner first name",
			payload: `{"user": {"first_name": "  Sari "}}`,
			slug:    "ignored",
			want:    "Sari",
		},
		{
			name:    "undecodable slug keeps raw text",
			payload: `{}`,
			slug:    "budi%zz-siti",
			want:    "budi%zz siti",
		},
		{
			name:    "percent encoded slug",
			payload: `{}`,
			slug:    "rahma%20%26-martin",
			want:    "rahma & martin",
		},
		{
			name:    "never empty",
			payload: `{}`,
			slug:    " - ",
			want:    DefaultDisplayName,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveDisplayName(mustParse(t, tc.payload), tc.slug); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func randomRecord(rng *rand.Rand) map[string]any {
	names := []any{"Ali", " Budi ", "", "  ", "Rahma", "Martin", 42, nil}
	categories := []any{"khitanan", "Pernikahan", "teater", "", nil, map[string]any{"id": 2, "name": "Khitanan"}}
	record := map[string]any{}
	if c := categories[rng.Intn(len(categories))]; c != nil {
		record["category_type"] = c
	}
	if rng.Intn(2) == 0 {
		record["user"] = map[string]any{"first_name": names[rng.Intn(len(names))]}
	}
	children := make([]any, rng.Intn(4))
	for i := range children {
		key := "name"
		if rng.Intn(3) == 0 {
			key = "nama"
		}
		children[i] = map[string]any{key: names[rng.Intn(len(names))]}
	}
	record["content"] = map[string]any{"children": children}
	return record
}

func TestDisplayNameMatchesMetadata(t *testing.T) {
	svc := newTestInvitationService(t, nil)
	rng := rand.New(rand.NewSource(1234))
	slugs := []string{"budi-siti", "", "%E0%A4%A", "rahma%20martin", "x"}

	for iter := 0; iter < 300; iter++ {
		raw, err := json.Marshal(randomRecord(rng))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		slug := slugs[rng.Intn(len(slugs))]
		view, err := svc.Prepare(context.Background(), raw, slug)
		if err != nil {
			t.Fatalf("prepare %s: %v", raw, err)
		}
		if view.DisplayName == "" {
			t.Fatalf("empty display name for %s", raw)
		}
		inMeta := strings.TrimPrefix(view.Metadata.Title, titlePrefix)
		if inMeta != view.DisplayName {
			t.Fatalf("display name mismatch for %s: body %q meta %q", raw, view.DisplayName, inMeta)
		}
		if seoMeta := view.Metadata.SEO(); seoMeta.OG.Title != view.Metadata.Title || seoMeta.Twitter.Title != view.Metadata.Title {
			t.Fatalf("share titles diverge for %s", raw)
		}
	}
}
