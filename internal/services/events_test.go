package services

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/ginvite/ginvite-api/internal/domain"
)

var testLocation = time.FixedZone("WIB", 7*60*60)

func TestSortEvents_OrdersByInstant(t *testing.T) {
	inv, err := domain.ParseRecord([]byte(`{"event": {
		"akad": {"date": "2026-01-16", "time": "09:00", "location": "X", "mapsLink": "Y"},
		"resepsi": {"date": "2026-01-15", "time": "11:00"}
	}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	events := AggregateEvents(inv.Phases)
	sorted, anomalies := SortEvents(events, testLocation)
	if len(anomalies) != 0 {
		t.Fatalf("expected no anomalies, got %#v", anomalies)
	}
	if sorted[0].Key != "resepsi" || sorted[1].Key != "akad" {
		t.Fatalf("expected resepsi before akad, got %q, %q", sorted[0].Key, sorted[1].Key)
	}
	if events[0].Key != "akad" {
		t.Fatalf("expected input to stay in source order, got %q first", events[0].Key)
	}

	countdown := DeriveCountdown(sorted, testLocation, time.Now())
	want := time.Date(2026, 1, 15, 11, 0, 0, 0, testLocation)
	if !countdown.FromEvent || !countdown.Target.Equal(want) {
		t.Fatalf("expected countdown %v, got %+v", want, countdown)
	}
}

func TestAggregateEvents_Defaults(t *testing.T) {
	if got := AggregateEvents(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}

	got := AggregateEvents([]domain.EventPhase{{Key: "resepsi"}, {Key: "akad", Title: " Akad Nikah ", Date: " 2026-01-16 "}})
	if got[0].Title != "Resepsi" {
		t.Fatalf("expected title from key, got %q", got[0].Title)
	}
	if got[0].Date != "" || got[0].Time != "" || got[0].Location != "" || got[0].MapsLink != "" {
		t.Fatalf("expected empty defaults, got %#v", got[0])
	}
	if got[1].Title != "Akad Nikah" || got[1].Date != "2026-01-16" {
		t.Fatalf("expected trimmed fields, got %#v", got[1])
	}
}

func TestEventInstant(t *testing.T) {
	cases := []struct {
		date, time string
		ok         bool
	}{
		{"2026-01-15", "11:00", true},
		{"2026-01-15", "11:00:30", true},
		{"2026-01-15", "", false},
		{"", "11:00", false},
		{"15/01/2026", "11:00", false},
		{"2026-02-30", "11:00", false},
	}
	for _, tc := range cases {
		_, ok := EventInstant(domain.EventEntry{Date: tc.date, Time: tc.time}, testLocation)
		if ok != tc.ok {
			t.Fatalf("EventInstant(%q, %q): expected %v", tc.date, tc.time, tc.ok)
		}
	}
}

func TestSortEvents_MalformedEntriesKeepPlace(t *testing.T) {
	events := []domain.EventEntry{
		{Key: "b", Date: "2026-03-02", Time: "10:00"},
		{Key: "broken", Date: "soon", Time: "?"},
		{Key: "a", Date: "2026-03-01", Time: "10:00"},
	}
	sorted, anomalies := SortEvents(events, testLocation)
	if len(sorted) != 3 {
		t.Fatalf("expected 3 events, got %d", len(sorted))
	}
	if len(anomalies) != 1 || anomalies[0].Key != "broken" || anomalies[0].Value != "soonT?" {
		t.Fatalf("unexpected anomalies: %#v", anomalies)
	}
}

func TestSortEvents_PreservesMultiset(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	dates := []string{"2026-01-15", "2025-12-31", "not-a-date", "", "2026-13-01", "2026-06-07"}
	times := []string{"09:00", "23:59", "", "25:00", "10:30:15", "noon"}

	for iter := 0; iter < 500; iter++ {
		n := rng.Intn(8)
		events := make([]domain.EventEntry, n)
		for i := range events {
			events[i] = domain.EventEntry{
				Key:  string(rune('a' + i)),
				Date: dates[rng.Intn(len(dates))],
				Time: times[rng.Intn(len(times))],
			}
		}
		before := slices.Clone(events)

		sorted, _ := SortEvents(events, testLocation)
		if len(sorted) != n {
			t.Fatalf("iteration %d: expected %d events, got %d", iter, n, len(sorted))
		}
		if !slices.Equal(events, before) {
			t.Fatalf("iteration %d: input was mutated", iter)
		}
		gotKeys := make([]string, n)
		wantKeys := make([]string, n)
		for i := range sorted {
			gotKeys[i] = sorted[i].Key
			wantKeys[i] = events[i].Key
		}
		slices.Sort(gotKeys)
		slices.Sort(wantKeys)
		if !slices.Equal(gotKeys, wantKeys) {
			t.Fatalf("iteration %d: multiset changed: %v vs %v", iter, gotKeys, wantKeys)
		}
	}
}
