package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/observability"
	"github.com/ginvite/ginvite-api/internal/platform/requestctx"
	"github.com/ginvite/ginvite-api/internal/platform/textutil"
)

var instantLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05"}

// siteLocationFallback is used when no zone was configured; invitations are authored in WIB.
var siteLocationFallback = time.FixedZone("WIB", 7*60*60)

// DateAnomaly describes an event whose date and time do not form a valid instant.
type DateAnomaly struct {
	Key   string `json:"key"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Value string `json:"value"`
}

// AggregateEvents turns the ordered phase mapping into event entries, one per phase,
// keeping source order. Titles default to the capitalised phase key.
func AggregateEvents(phases []domain.EventPhase) []domain.EventEntry {
	if len(phases) == 0 {
		return []domain.EventEntry{}
	}
	out := make([]domain.EventEntry, 0, len(phases))
	for _, phase := range phases {
		title := strings.TrimSpace(phase.Title)
		if title == "" {
			title = textutil.CapitalizeFirst(phase.Key)
		}
		out = append(out, domain.EventEntry{
			Key:      phase.Key,
			Title:    title,
			Date:     strings.TrimSpace(phase.Date),
			Time:     strings.TrimSpace(phase.Time),
			Location: strings.TrimSpace(phase.Location),
			MapsLink: strings.TrimSpace(phase.MapsLink),
		})
	}
	return out
}

// EventInstant combines date and time as "dateTtime" in loc.
func EventInstant(e domain.EventEntry, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = siteLocationFallback
	}
	value := e.Date + "T" + e.Time
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortEvents returns a copy of events ordered by instant ascending. Ties and any pair
// involving an unparseable instant compare equal, so such entries keep their relative
// order. Each unparseable entry is reported once.
func SortEvents(events []domain.EventEntry, loc *time.Location) ([]domain.EventEntry, []DateAnomaly) {
	type keyed struct {
		entry   domain.EventEntry
		instant time.Time
		valid   bool
	}
	items := make([]keyed, len(events))
	var anomalies []DateAnomaly
	for i, e := range events {
		instant, ok := EventInstant(e, loc)
		items[i] = keyed{entry: e, instant: instant, valid: ok}
		if !ok {
			anomalies = append(anomalies, DateAnomaly{Key: e.Key, Date: e.Date, Time: e.Time, Value: e.Date + "T" + e.Time})
		}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		if !a.valid || !b.valid {
			return 0
		}
		return a.instant.Compare(b.instant)
	})

	out := make([]domain.EventEntry, len(items))
	for i, item := range items {
		out[i] = item.entry
	}
	return out, anomalies
}

// reportAnomalies logs and counts malformed event dates.
func reportAnomalies(ctx context.Context, metrics *observability.Metrics, slug string, anomalies []DateAnomaly) {
	if len(anomalies) == 0 {
		return
	}
	logger := requestctx.Logger(ctx)
	for _, a := range anomalies {
		logger.Warn("event date could not be parsed",
			zap.String("slug", observability.SanitizeValue(slug)),
			zap.String("event_key", observability.SanitizeValue(a.Key)),
			zap.String("value", observability.SanitizeValue(a.Value)),
		)
	}
	metrics.MalformedDates(ctx, len(anomalies))
}
