package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseRecord_PreservesEventOrder(t *testing.T) {
	data := []byte(`{
		"event": {
			"resepsi": {"date": "2026-01-15", "time": "11:00", "location": "Gedung A"},
			"akad": {"date": "2026-01-16", "time": "09:00", "mapsLink": "https://maps.example/akad"},
			"ngunduh": null,
			"resepsi": {"date": "2026-01-17", "time": "10:00"}
		}
	}`)

	inv, err := ParseRecord(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inv.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(inv.Phases))
	}
	if inv.Phases[0].Key != "resepsi" || inv.Phases[1].Key != "akad" {
		t.Fatalf("expected source key order, got %q then %q", inv.Phases[0].Key, inv.Phases[1].Key)
	}
	if inv.Phases[0].Date != "2026-01-17" {
		t.Fatalf("expected repeated key to take the last value, got %q", inv.Phases[0].Date)
	}
	if inv.Phases[1].MapsLink != "https://maps.example/akad" {
		t.Fatalf("expected maps link, got %q", inv.Phases[1].MapsLink)
	}
}

func TestParseRecord_EventUnderContent(t *testing.T) {
	inv, err := ParseRecord([]byte(`{"content": {"event": {"akad": {"date": "2026-02-01", "time": "08:00"}}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inv.Phases) != 1 || inv.Phases[0].Key != "akad" {
		t.Fatalf("expected nested event mapping to be used, got %#v", inv.Phases)
	}
}

func TestParseRecord_CategoryShapes(t *testing.T) {
	cases := []struct {
		name         string
		payload      string
		wantCategory Category
		wantName     string
		wantThemeID  string
	}{
		{
			name:         "object with id",
			payload:      `{"category_type": {"id": 2, "name": "Khitanan"}}`,
			wantCategory: CategoryCircumcision,
			wantName:     "Khitanan",
			wantThemeID:  "2",
		},
		{
			name:         "bare string",
			payload:      `{"category_type": "teater"}`,
			wantCategory: CategoryOther,
			wantName:     "teater",
			wantThemeID:  "teater",
		},
		{
			name:         "theme category id wins",
			payload:      `{"theme": {"category_id": "7"}, "category_type": {"id": 1, "name": "pernikahan"}}`,
			wantCategory: CategoryWedding,
			wantName:     "pernikahan",
			wantThemeID:  "7",
		},
		{
			name:         "scalar theme as last resort",
			payload:      `{"theme": 3}`,
			wantCategory: CategoryWedding,
			wantName:     "",
			wantThemeID:  "3",
		},
		{
			name:         "absent",
			payload:      `{}`,
			wantCategory: CategoryWedding,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv, err := ParseRecord([]byte(tc.payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if inv.Category != tc.wantCategory {
				t.Fatalf("expected category %q got %q", tc.wantCategory, inv.Category)
			}
			if inv.CategoryName != tc.wantName {
				t.Fatalf("expected category name %q got %q", tc.wantName, inv.CategoryName)
			}
			if inv.ThemeID != tc.wantThemeID {
				t.Fatalf("expected theme id %q got %q", tc.wantThemeID, inv.ThemeID)
			}
		})
	}
}

func TestParseRecord_ContentFields(t *testing.T) {
	data := []byte(`{
		"slug": "rahma-martin",
		"status": "Published",
		"view_count": "120",
		"updated_at": "2026-01-01T10:00:00+07:00",
		"user": {"first_name": " Rahma ", "pictures_url": "https://lh3.example/a=s96-c"},
		"decorations": {"top": "https://cdn/top.png", "nested": {"x": 1}},
		"content": {
			"children": [{"name": " Rahma "}, {"nama": "Martin"}, "broken"],
			"gallery": {"items": ["https://cdn/1.jpg", {"url": "https://cdn/2.jpg"}]},
			"quotes": {"text": "Dan di antara tanda-tanda kekuasaan-Nya", "source": "QS Ar-Rum 21"},
			"font": {"title": "font-family: 'Great Vibes', cursive;", "body": ""},
			"description": "<p>Kami mengundang</p>"
		}
	}`)

	inv, err := ParseRecord(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Slug != "rahma-martin" || inv.Status != "published" {
		t.Fatalf("unexpected slug/status: %q %q", inv.Slug, inv.Status)
	}
	if inv.ViewCount != 120 {
		t.Fatalf("expected view count 120, got %d", inv.ViewCount)
	}
	wantUpdated := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)
	if !inv.UpdatedAt.Equal(wantUpdated) {
		t.Fatalf("expected updated at %v got %v", wantUpdated, inv.UpdatedAt)
	}
	if inv.Owner.FirstName != "Rahma" {
		t.Fatalf("expected trimmed owner name, got %q", inv.Owner.FirstName)
	}
	if len(inv.Children) != 3 || inv.Children[0].Name != "Rahma" || inv.Children[1].Name != "Martin" || inv.Children[2].Name != "" {
		t.Fatalf("unexpected children: %#v", inv.Children)
	}
	if len(inv.Gallery) != 2 || inv.Gallery[1] != "https://cdn/2.jpg" {
		t.Fatalf("unexpected gallery: %#v", inv.Gallery)
	}
	if inv.Quote.Source != "QS Ar-Rum 21" {
		t.Fatalf("unexpected quote: %#v", inv.Quote)
	}
	if inv.Fonts.Title != "'Great Vibes', cursive" || inv.Fonts.Body != "sans-serif" {
		t.Fatalf("unexpected fonts: %#v", inv.Fonts)
	}
	if len(inv.Decorations) != 1 || inv.Decorations["top"] != "https://cdn/top.png" {
		t.Fatalf("unexpected decorations: %#v", inv.Decorations)
	}
	if inv.Description != "<p>Kami mengundang</p>" {
		t.Fatalf("unexpected description: %q", inv.Description)
	}
}

func TestParseRecord_WrongShapesAreAbsent(t *testing.T) {
	inv, err := ParseRecord([]byte(`{"event": [1,2], "content": "nope", "user": 5, "decorations": []}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Phases != nil || inv.Children != nil || inv.Gallery != nil || inv.Decorations != nil {
		t.Fatalf("expected empty defaults, got %#v", inv)
	}
	if inv.Fonts.Title != "sans-serif" {
		t.Fatalf("expected default font, got %q", inv.Fonts.Title)
	}
}

func TestParseRecord_RejectsNonObject(t *testing.T) {
	for _, payload := range []string{``, `[]`, `"x"`, `{bad`} {
		if _, err := ParseRecord([]byte(payload)); !errors.Is(err, ErrRecordNotObject) {
			t.Fatalf("payload %q: expected ErrRecordNotObject, got %v", payload, err)
		}
	}
}

func TestParseRecordList(t *testing.T) {
	list, err := ParseRecordList([]byte(`{"data": [{"slug": "a"}, 3, {"slug": "b"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].Slug != "a" || list[1].Slug != "b" {
		t.Fatalf("unexpected list: %#v", list)
	}
	if _, err := ParseRecordList([]byte(`{"data": {}}`)); err == nil {
		t.Fatal("expected error for non-array payload")
	}
}

func TestUnwrapRecord(t *testing.T) {
	got := string(UnwrapRecord([]byte(`{"data": {"slug": "x"}}`)))
	if got != `{"slug": "x"}` {
		t.Fatalf("expected inner record, got %s", got)
	}
	raw := `{"slug": "y", "content": {}}`
	if got := string(UnwrapRecord([]byte(raw))); got != raw {
		t.Fatalf("expected record untouched, got %s", got)
	}
}

func TestResult(t *testing.T) {
	ok := Ok(5)
	if !ok.IsOk() || ok.OrElse(1) != 5 {
		t.Fatal("expected ok result to hold its value")
	}
	failed := Err[int](errors.New("boom"))
	if failed.IsOk() || failed.OrElse(1) != 1 || failed.Reason() == nil {
		t.Fatal("expected failed result to fall back")
	}
}
