package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ginvite/ginvite-api/internal/platform/textutil"
)

// ErrRecordNotObject is returned when the payload is not a JSON object.
var ErrRecordNotObject = errors.New("domain: invitation record must be a JSON object")

type rawObject map[string]json.RawMessage

type keyedRaw struct {
	key   string
	value json.RawMessage
}

var updatedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseRecord decodes a raw invitation record into a defaulted Invitation.
// Fields with unexpected shapes are treated as absent; only a payload that is not a
// JSON object is rejected.
func ParseRecord(data []byte) (Invitation, error) {
	obj := decodeObject(data)
	if obj == nil {
		return Invitation{}, ErrRecordNotObject
	}
	return normalizeRecord(obj), nil
}

// ParseRecordList decodes either a JSON array of records or an envelope of the form
// {"data": [...]}. Entries that are not objects are skipped.
func ParseRecordList(data []byte) ([]Invitation, error) {
	items := decodeArray(data)
	if items == nil {
		if env := decodeObject(data); env != nil {
			items = decodeArray(env["data"])
		}
	}
	if items == nil {
		return nil, errors.New("domain: invitation list must be a JSON array")
	}
	out := make([]Invitation, 0, len(items))
	for _, item := range items {
		obj := decodeObject(item)
		if obj == nil {
			continue
		}
		out = append(out, normalizeRecord(obj))
	}
	return out, nil
}

// UnwrapRecord returns the record nested under "data" when the payload is an API envelope.
func UnwrapRecord(data []byte) []byte {
	obj := decodeObject(data)
	if obj == nil {
		return data
	}
	if inner, ok := obj["data"]; ok && decodeObject(inner) != nil {
		if _, hasContent := obj["content"]; !hasContent {
			return inner
		}
	}
	return data
}

func normalizeRecord(obj rawObject) Invitation {
	content := decodeObject(obj["content"])
	category := decodeObject(obj["category_type"])
	user := decodeObject(obj["user"])

	categoryName := stringField(category, "name")
	if category == nil {
		categoryName = scalarString(obj["category_type"])
	}

	inv := Invitation{
		Slug:         textutil.FirstNonEmpty(scalarString(obj["slug"]), scalarString(obj["title"])),
		Status:       strings.ToLower(scalarString(obj["status"])),
		ThemeID:      themeID(obj, category),
		Category:     CategoryFromName(categoryName),
		CategoryName: categoryName,
		Children:     people(content["children"]),
		Gallery:      gallery(content["gallery"]),
		Quote:        quote(content["quotes"]),
		Description:  textutil.FirstNonEmpty(stringField(content, "description"), stringField(content, "invitation_text"), stringField(content, "text")),
		Fonts:        fonts(content["font"]),
		Decorations:  decorations(obj["decorations"]),
		Owner: Owner{
			FirstName:  stringField(user, "first_name"),
			PictureURL: stringField(user, "pictures_url"),
		},
		ViewCount: viewCount(obj),
		UpdatedAt: parseUpdatedAt(textutil.FirstNonEmpty(scalarString(obj["updated_at"]), scalarString(obj["updatedAt"]))),
	}

	eventsRaw := obj["event"]
	if decodeObject(eventsRaw) == nil {
		eventsRaw = content["event"]
	}
	inv.Phases = phases(eventsRaw)
	return inv
}

func themeID(obj rawObject, category rawObject) string {
	theme := decodeObject(obj["theme"])
	candidates := []string{
		stringField(theme, "category_id"),
		stringField(theme, "categoryId"),
		stringField(category, "id"),
	}
	if category == nil {
		candidates = append(candidates, scalarString(obj["category_type"]))
	}
	candidates = append(candidates, stringField(category, "name"))
	if theme == nil {
		candidates = append(candidates, scalarString(obj["theme"]))
	}
	return textutil.FirstNonEmpty(candidates...)
}

func phases(raw json.RawMessage) []EventPhase {
	entries := orderedObject(raw)
	if len(entries) == 0 {
		return nil
	}
	out := make([]EventPhase, 0, len(entries))
	for _, entry := range entries {
		value := decodeObject(entry.value)
		if value == nil {
			continue
		}
		out = append(out, EventPhase{
			Key:      entry.key,
			Title:    stringField(value, "title"),
			Date:     stringField(value, "date"),
			Time:     stringField(value, "time"),
			Location: stringField(value, "location"),
			MapsLink: textutil.FirstNonEmpty(stringField(value, "mapsLink"), stringField(value, "maps_link")),
		})
	}
	return out
}

func people(raw json.RawMessage) []Person {
	items := decodeArray(raw)
	if len(items) == 0 {
		return nil
	}
	out := make([]Person, 0, len(items))
	for _, item := range items {
		obj := decodeObject(item)
		if obj == nil {
			out = append(out, Person{})
			continue
		}
		out = append(out, Person{
			Name:    textutil.FirstNonEmpty(stringField(obj, "name"), stringField(obj, "nama")),
			Profile: stringField(obj, "profile"),
		})
	}
	return out
}

func gallery(raw json.RawMessage) []string {
	var items []json.RawMessage
	if obj := decodeObject(raw); obj != nil {
		items = decodeArray(obj["items"])
	} else {
		items = decodeArray(raw)
	}
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if obj := decodeObject(item); obj != nil {
			out = append(out, textutil.FirstNonEmpty(stringField(obj, "url"), stringField(obj, "image"), stringField(obj, "src")))
			continue
		}
		out = append(out, scalarString(item))
	}
	return out
}

func quote(raw json.RawMessage) Quote {
	if items := decodeArray(raw); len(items) > 0 {
		raw = items[0]
	}
	if obj := decodeObject(raw); obj != nil {
		return Quote{
			Text:   textutil.FirstNonEmpty(stringField(obj, "text"), stringField(obj, "quote"), stringField(obj, "content")),
			Source: textutil.FirstNonEmpty(stringField(obj, "source"), stringField(obj, "author")),
		}
	}
	return Quote{Text: scalarString(raw)}
}

func fonts(raw json.RawMessage) Fonts {
	if obj := decodeObject(raw); obj != nil {
		return Fonts{
			Title: textutil.NormalizeFontFamily(textutil.FirstNonEmpty(stringField(obj, "title"), stringField(obj, "heading"), stringField(obj, "primary"))),
			Body:  textutil.NormalizeFontFamily(textutil.FirstNonEmpty(stringField(obj, "body"), stringField(obj, "text"), stringField(obj, "secondary"))),
		}
	}
	family := textutil.NormalizeFontFamily(scalarString(raw))
	return Fonts{Title: family, Body: family}
}

func decorations(raw json.RawMessage) map[string]string {
	var values map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &values) != nil {
		return nil
	}
	return textutil.NormalizeStringMap(values)
}

func viewCount(obj rawObject) int64 {
	for _, key := range []string{"view_count", "viewCount", "views"} {
		value := scalarString(obj[key])
		if value == "" {
			continue
		}
		if n, err := strconv.ParseFloat(value, 64); err == nil && n > 0 {
			return int64(n)
		}
	}
	return 0
}

func parseUpdatedAt(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range updatedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func decodeObject(raw json.RawMessage) rawObject {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func decodeArray(raw json.RawMessage) []json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

// orderedObject walks a JSON object preserving key order. A repeated key keeps its
// first position and takes the last value, matching how the record was authored.
func orderedObject(raw json.RawMessage) []keyedRaw {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var out []keyedRaw
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		key, ok := tok.(string)
		if !ok {
			return out
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return out
		}
		if pos, seen := index[key]; seen {
			out[pos].value = value
			continue
		}
		index[key] = len(out)
		out = append(out, keyedRaw{key: key, value: value})
	}
	return out
}

func stringField(obj rawObject, key string) string {
	if obj == nil {
		return ""
	}
	return scalarString(obj[key])
}

func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return ""
	}
	str, _ := textutil.Scalar(value)
	return str
}
