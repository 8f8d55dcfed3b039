package services

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/ginvite/ginvite-api/internal/domain"
)

func TestSelectShareImage_Precedence(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		wantURL string
		wantW   int
	}{
		{
			name:    "gallery first",
			payload: `{"content": {"gallery": {"items": ["https://cdn/1.jpg"]}, "children": [{"profile": "https://x/y.jpg"}]}, "category_type": "khitanan"}`,
			wantURL: "https://cdn/1.jpg",
			wantW:   1200,
		},
		{
			name:    "circumcision subject photo",
			payload: `{"content": {"gallery": {"items": []}, "children": [{"name": "Ali", "profile": "https://x/y.jpg"}]}, "category_type": {"name": "khitanan"}}`,
			wantURL: "https://x/y.jpg",
			wantW:   1200,
		},
		{
			name:    "wedding ignores child photo",
			payload: `{"content": {"children": [{"profile": "https://x/y.jpg"}]}, "user": {"pictures_url": "https://lh3.example/p=s96-c"}}`,
			wantURL: "https://lh3.example/p=s1200-c",
			wantW:   1200,
		},
		{
			name:    "http gallery is skipped",
			payload: `{"content": {"gallery": ["http://cdn/1.jpg"]}, "user": {"pictures_url": "http://avatars.example/me.png"}}`,
			wantURL: "http://avatars.example/me.png",
			wantW:   1200,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectShareImage(mustParse(t, tc.payload), "Ali", "")
			if got.URL != tc.wantURL || got.Width != tc.wantW {
				t.Fatalf("expected %s (%d), got %#v", tc.wantURL, tc.wantW, got)
			}
			if got.Alt != "Undangan Digital Ali" {
				t.Fatalf("unexpected alt %q", got.Alt)
			}
		})
	}
}

func TestSelectShareImage_Placeholder(t *testing.T) {
	got := SelectShareImage(domain.Invitation{}, "Rahma & Martin", "")
	if got.URL != DefaultPlaceholderImageURL+"?text=Rahma+%26+Martin" {
		t.Fatalf("unexpected placeholder url %s", got.URL)
	}
	if got.Width != 1200 || got.Height != 630 {
		t.Fatalf("unexpected dimensions %dx%d", got.Width, got.Height)
	}

	custom := SelectShareImage(domain.Invitation{}, "Ali", "https://img.example/card?bg=fff")
	if custom.URL != "https://img.example/card?bg=fff&text=Ali" {
		t.Fatalf("unexpected custom placeholder %s", custom.URL)
	}

	invalid := SelectShareImage(domain.Invitation{}, "Ali", "/relative.png")
	if !strings.HasPrefix(invalid.URL, DefaultPlaceholderImageURL) {
		t.Fatalf("expected default placeholder for relative base, got %s", invalid.URL)
	}
}

func TestSelectShareImage_AlwaysAbsolute(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	urls := []string{"", "https://cdn/a.jpg", "http://cdn/b.jpg", "/local.jpg", "javascript:alert(1)", "ftp://x/y", " https://cdn/c.jpg "}
	categories := []domain.Category{domain.CategoryWedding, domain.CategoryCircumcision, domain.CategoryOther}

	for iter := 0; iter < 500; iter++ {
		inv := domain.Invitation{
			Category: categories[rng.Intn(len(categories))],
			Owner:    domain.Owner{PictureURL: urls[rng.Intn(len(urls))]},
		}
		for i := rng.Intn(3); i > 0; i-- {
			inv.Gallery = append(inv.Gallery, urls[rng.Intn(len(urls))])
		}
		for i := rng.Intn(3); i > 0; i-- {
			inv.Children = append(inv.Children, domain.Person{Profile: urls[rng.Intn(len(urls))]})
		}
		got := SelectShareImage(inv, "Nama", urls[rng.Intn(len(urls))])
		if !strings.HasPrefix(got.URL, "http") {
			t.Fatalf("iteration %d: non-absolute image %q for %#v", iter, got.URL, inv)
		}
	}
}

func TestUpgradeProfilePhoto(t *testing.T) {
	if got := UpgradeProfilePhoto(" https://lh3.example/a=s96-c "); got != "https://lh3.example/a=s1200-c" {
		t.Fatalf("unexpected upgrade %q", got)
	}
	if got := UpgradeProfilePhoto("https://cdn/a.jpg"); got != "https://cdn/a.jpg" {
		t.Fatalf("expected untouched url, got %q", got)
	}
}
