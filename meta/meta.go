// Package meta turns loosely typed front matter into book and chapter
// records. Anything which cannot be interpreted becomes an absent field.
package meta

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"booknav/config"
)

// Keys are front matter key names records are read from.
type Keys struct {
	Title    string
	Chapters string
	Prologue string
	Epilogue string

	Outline  string
	Draft    string
	Final    string
	Datetime string
	Location string
}

// DefaultKeys returns key names used when nothing is configured.
func DefaultKeys() Keys {
	return Keys{
		Title:    "title",
		Chapters: "chapters",
		Prologue: "prologue",
		Epilogue: "epilogue",
		Outline:  "outline",
		Draft:    "draft",
		Final:    "final",
		Datetime: "datetime",
		Location: "location",
	}
}

// KeysFromConfig takes key names from vault configuration.
func KeysFromConfig(cfg *config.VaultConfig) Keys {
	return Keys{
		Title:    cfg.Book.Title,
		Chapters: cfg.Book.Chapters,
		Prologue: cfg.Book.Prologue,
		Epilogue: cfg.Book.Epilogue,
		Outline:  cfg.Chapter.Outline,
		Draft:    cfg.Chapter.Draft,
		Final:    cfg.Chapter.Final,
		Datetime: cfg.Chapter.Datetime,
		Location: cfg.Chapter.Location,
	}
}

// BookRecord is what makes a document a book. References are raw link text,
// empty when absent.
type BookRecord struct {
	Title    string
	Chapters []string
	Prologue string
	Epilogue string
}

// ChapterRecord is optional information a chapter document carries about
// itself and its stage documents.
type ChapterRecord struct {
	Outline  string
	Draft    string
	Final    string
	Datetime string
	Location string
}

// ParseBook reports if metadata describes a book: non-empty title and a list
// of chapters (which could be empty).
func ParseBook(raw map[string]any, keys Keys) (BookRecord, bool) {
	title := strings.TrimSpace(text(raw[keys.Title]))
	if len(title) == 0 {
		return BookRecord{}, false
	}
	list, ok := raw[keys.Chapters].([]any)
	if !ok {
		return BookRecord{}, false
	}

	rec := BookRecord{
		Title:    title,
		Chapters: make([]string, 0, len(list)),
		Prologue: Ref(raw[keys.Prologue]),
		Epilogue: Ref(raw[keys.Epilogue]),
	}
	for _, item := range list {
		if ref := Ref(item); len(ref) > 0 {
			rec.Chapters = append(rec.Chapters, ref)
		}
	}
	return rec, true
}

// ParseChapter reads chapter information, every field is optional.
func ParseChapter(raw map[string]any, keys Keys) ChapterRecord {
	return ChapterRecord{
		Outline:  Ref(raw[keys.Outline]),
		Draft:    Ref(raw[keys.Draft]),
		Final:    Ref(raw[keys.Final]),
		Datetime: strings.TrimSpace(text(raw[keys.Datetime])),
		Location: strings.TrimSpace(text(raw[keys.Location])),
	}
}

// Ref extracts reference text from metadata value. Unquoted [[Name]] is read
// by YAML as nested sequence [["Name"]], such values are unwrapped back to
// the name.
func Ref(v any) string {
	switch v := v.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		if len(v) == 1 {
			return Ref(v[0])
		}
	}
	return ""
}

// text renders scalar values, anything else is absent.
func text(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case time.Time:
		if h, m, s := v.Clock(); h == 0 && m == 0 && s == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format("2006-01-02 15:04")
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	}
	return ""
}
