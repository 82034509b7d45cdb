package index

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"booknav/common"
	"booknav/config"
)

// labelValues holds variables available for label template expansion.
type labelValues struct {
	Context string
	// 0 for prologue and epilogue.
	Number int
	Index  int
	Kind   string
	// Book title.
	Title string
	// Chapter document name.
	Name string
}

// Labeler produces chapter labels from configured templates.
type Labeler struct {
	templates map[common.ChapterKind]*template.Template
}

// NewLabeler parses label templates.
func NewLabeler(cfg *config.LabelsConfig) (*Labeler, error) {
	l := &Labeler{templates: make(map[common.ChapterKind]*template.Template, 3)}
	for kind, def := range map[common.ChapterKind]struct {
		name  config.TemplateFieldName
		field string
	}{
		common.ChapterKindPrologue: {config.PrologueTemplateFieldName, cfg.PrologueTemplate},
		common.ChapterKindChapter:  {config.ChapterTemplateFieldName, cfg.ChapterTemplate},
		common.ChapterKindEpilogue: {config.EpilogueTemplateFieldName, cfg.EpilogueTemplate},
	} {
		tmpl, err := template.New(string(def.name)).Funcs(sprig.FuncMap()).Parse(def.field)
		if err != nil {
			return nil, fmt.Errorf("unable to parse template field %s: %w", def.name, err)
		}
		l.templates[kind] = tmpl
	}
	return l, nil
}

// DefaultLabeler produces "Prologue", "Epilogue" and "Chapter N".
func DefaultLabeler() *Labeler {
	l, err := NewLabeler(&config.LabelsConfig{
		PrologueTemplate: "Prologue",
		EpilogueTemplate: "Epilogue",
		ChapterTemplate:  "Chapter {{ .Number }}",
	})
	if err != nil {
		panic(err)
	}
	return l
}

// Label expands template for the chapter. name is chapter document name.
func (l *Labeler) Label(ch *Chapter, name string) (string, error) {
	tmpl, ok := l.templates[ch.Kind]
	if !ok {
		return "", fmt.Errorf("no label template for %s", ch.Kind)
	}
	values := &labelValues{
		Context: tmpl.Name(),
		Index:   ch.Index,
		Kind:    ch.Kind.String(),
		Name:    name,
	}
	if ch.Number != nil {
		values.Number = *ch.Number
	}
	if ch.Book != nil {
		values.Title = ch.Book.Title
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackLabel is used when template expansion fails.
func fallbackLabel(ch *Chapter) string {
	switch {
	case ch.Kind == common.ChapterKindPrologue:
		return "Prologue"
	case ch.Kind == common.ChapterKindEpilogue:
		return "Epilogue"
	case ch.Number != nil:
		return fmt.Sprintf("Chapter %d", *ch.Number)
	}
	return ch.Kind.String()
}
