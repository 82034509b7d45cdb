package vault

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"booknav/common"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "vault.zip")
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	w := zip.NewWriter(f)
	for n, content := range files {
		fw, err := w.Create(n)
		if err != nil {
			t.Fatalf("zip Create() error = %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("zip Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip Close() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return name
}

func docs(paths ...string) []*Document {
	res := make([]*Document, 0, len(paths))
	for _, p := range paths {
		res = append(res, &Document{Path: p, Meta: map[string]any{}})
	}
	return res
}

var testFilter = Filter{Extensions: []string{".md"}, Ignore: []string{"templates/*"}}

func TestParseDocument(t *testing.T) {
	log := zaptest.NewLogger(t)

	tests := []struct {
		name    string
		content string
		want    map[string]any
	}{
		{"front matter", "---\ntitle: Saga\nchapters:\n  - \"[[One]]\"\n---\nbody", map[string]any{"title": "Saga", "chapters": []any{"[[One]]"}}},
		{"dots terminator", "---\ntitle: Saga\n...\nbody", map[string]any{"title": "Saga"}},
		{"crlf", "---\r\ntitle: Saga\r\n---\r\n", map[string]any{"title": "Saga"}},
		{"bom", "\xEF\xBB\xBF---\ntitle: Saga\n---\n", map[string]any{"title": "Saga"}},
		{"no front matter", "title: Saga\n", map[string]any{}},
		{"unterminated", "---\ntitle: Saga\n", map[string]any{}},
		{"broken yaml", "---\ntitle: [Saga\n---\n", map[string]any{}},
		{"empty block", "---\n---\n", map[string]any{}},
		{"scalar block", "---\njust text\n---\n", map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ParseDocument("Books/Saga.md", []byte(tt.content), time.Time{}, log)
			if doc.Meta == nil {
				t.Fatal("Meta must never be nil")
			}
			if len(doc.Meta) != len(tt.want) {
				t.Fatalf("Meta = %v, want %v", doc.Meta, tt.want)
			}
			if title, ok := tt.want["title"]; ok && doc.Meta["title"] != title {
				t.Errorf("title = %v, want %v", doc.Meta["title"], title)
			}
		})
	}
}

func TestParseDocument_LegacyEncoding(t *testing.T) {
	doc := ParseDocument("a.md", []byte("---\ntitle: caf\xe9\n---\n"), time.Time{}, zaptest.NewLogger(t))
	if doc.Meta["title"] != "café" {
		t.Errorf("title = %q, want café", doc.Meta["title"])
	}
}

func TestDocument_NameDir(t *testing.T) {
	d := &Document{Path: "Books/Saga/Chapter 1.md"}
	if d.Name() != "Chapter 1" {
		t.Errorf("Name() = %q", d.Name())
	}
	if d.Dir() != "Books/Saga" {
		t.Errorf("Dir() = %q", d.Dir())
	}
	if (&Document{Path: "Root.md"}).Dir() != "." {
		t.Error("root document must have \".\" folder")
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		match bool
	}{
		{"Saga.md", true},
		{"Books/Saga.MD", true},
		{"Books/Saga.txt", false},
		{".obsidian/workspace.md", false},
		{"Books/.hidden.md", false},
		{"templates/chapter.md", false},
		{"Books/templates.md", true},
	}
	for _, tt := range tests {
		if got := testFilter.Match(tt.name); got != tt.match {
			t.Errorf("Match(%q) = %v, want %v", tt.name, got, tt.match)
		}
	}
}

func TestDirSource_Load(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"Saga.md":              "---\ntitle: Saga\n---\n",
		"Chapters/One.md":      "one",
		"Chapters/notes.txt":   "skip",
		".obsidian/app.md":     "skip",
		"templates/chapter.md": "skip",
	})

	src := NewDirSource(root, testFilter, zaptest.NewLogger(t))
	if src.Kind() != common.SourceKindDirectory {
		t.Errorf("Kind() = %v", src.Kind())
	}
	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	v := New(got, ".md")
	if v.Len() != 2 {
		t.Fatalf("loaded %d documents, want 2: %v", v.Len(), v.Documents())
	}
	if d, ok := v.Document("Saga.md"); !ok || d.Meta["title"] != "Saga" {
		t.Errorf("Saga.md not loaded properly: %+v", d)
	}
	if _, ok := v.Document("Chapters/One.md"); !ok {
		t.Error("Chapters/One.md not loaded")
	}
}

func TestDirSource_Missing(t *testing.T) {
	src := NewDirSource(filepath.Join(t.TempDir(), "absent"), testFilter, zaptest.NewLogger(t))
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("expected enumeration error for missing folder")
	}
}

func TestZipSource_Load(t *testing.T) {
	arc := writeZip(t, map[string]string{
		"Vault/Saga.md":         "---\ntitle: Saga\n---\n",
		"Vault/Chapters/One.md": "one",
		"Other/Two.md":          "two",
	})

	src := NewZipSource(arc, "Vault", testFilter, zaptest.NewLogger(t))
	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	v := New(got, ".md")
	if v.Len() != 2 {
		t.Fatalf("loaded %d documents, want 2", v.Len())
	}
	if d, ok := v.Document("Saga.md"); !ok || d.Meta["title"] != "Saga" {
		t.Errorf("Saga.md not loaded properly: %+v", d)
	}
}

func TestOpen(t *testing.T) {
	log := zaptest.NewLogger(t)

	t.Run("directory", func(t *testing.T) {
		src, err := Open(t.TempDir(), testFilter, log)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if src.Kind() != common.SourceKindDirectory {
			t.Errorf("Kind() = %v", src.Kind())
		}
	})

	t.Run("archive with root", func(t *testing.T) {
		arc := writeZip(t, map[string]string{"Vault/Saga.md": "saga"})
		src, err := Open(filepath.Join(arc, "Vault"), testFilter, log)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		zs, ok := src.(*ZipSource)
		if !ok {
			t.Fatalf("Open() returned %T, want *ZipSource", src)
		}
		if zs.root != "Vault" {
			t.Errorf("root = %q, want Vault", zs.root)
		}
		got, err := src.Load(context.Background())
		if err != nil || len(got) != 1 || got[0].Path != "Saga.md" {
			t.Errorf("Load() = %v, %v", got, err)
		}
	})

	t.Run("plain file", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"note.md": "text"})
		if _, err := Open(filepath.Join(dir, "note.md"), testFilter, log); err == nil {
			t.Error("expected error for non archive file")
		}
	})

	t.Run("missing path in folder", func(t *testing.T) {
		if _, err := Open(filepath.Join(t.TempDir(), "absent"), testFilter, log); err == nil {
			t.Error("expected error for missing vault")
		}
	})
}

func TestVault_FirstLinkTarget(t *testing.T) {
	v := New(docs(
		"Saga.md",
		"Books/Saga/One.md",
		"Books/Saga/Notes/One.md",
		"Books/Other/One.md",
		"Books/Other/Two.md",
		"Archive/Deep/Two.md",
		"Café.md",
	), ".md")

	tests := []struct {
		name   string
		link   string
		source string
		want   string
		found  bool
	}{
		{"by name from root", "Saga", "Books/Other/Two.md", "Saga.md", true},
		{"prefers source folder", "One", "Books/Other/Two.md", "Books/Other/One.md", true},
		{"prefers shortest path", "One", "Saga.md", "Books/Saga/One.md", true},
		{"shortest path for two", "Two", "Saga.md", "Books/Other/Two.md", true},
		{"case insensitive", "saga", "Books/Saga/One.md", "Saga.md", true},
		{"unicode normalisation", "CAFE\u0301", "Saga.md", "Café.md", true},
		{"with extension", "Saga.md", "Books/Saga/One.md", "Saga.md", true},
		{"alias", "One|first chapter", "Books/Saga/Two.md", "Books/Saga/One.md", true},
		{"heading", "One#Scene", "Books/Saga/Two.md", "Books/Saga/One.md", true},
		{"block", "One^abc", "Books/Saga/Two.md", "Books/Saga/One.md", true},
		{"relative path", "Notes/One", "Books/Saga/One.md", "Books/Saga/Notes/One.md", true},
		{"parent path", "../Other/Two", "Books/Saga/One.md", "Books/Other/Two.md", true},
		{"root path", "Archive/Deep/Two", "Books/Saga/One.md", "Archive/Deep/Two.md", true},
		{"partial path", "Deep/Two", "Saga.md", "Archive/Deep/Two.md", true},
		{"escaped", "Books/Saga/Notes%2FOne", "Saga.md", "Books/Saga/Notes/One.md", true},
		{"unknown", "Three", "Saga.md", "", false},
		{"empty", "", "Saga.md", "", false},
		{"only subpath", "#Heading", "Saga.md", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := v.FirstLinkTarget(tt.link, tt.source)
			if ok != tt.found {
				t.Fatalf("FirstLinkTarget(%q) found = %v, want %v", tt.link, ok, tt.found)
			}
			if ok && d.Path != tt.want {
				t.Errorf("FirstLinkTarget(%q) = %q, want %q", tt.link, d.Path, tt.want)
			}
		})
	}
}

func TestVault_Nil(t *testing.T) {
	var v *Vault
	if _, ok := v.FirstLinkTarget("Saga", "a.md"); ok {
		t.Error("nil vault must not resolve links")
	}
	if v.Len() != 0 || v.Documents() != nil {
		t.Error("nil vault must be empty")
	}
}

func TestVault_DuplicatePaths(t *testing.T) {
	first := &Document{Path: "Saga.md", Meta: map[string]any{"n": 1}}
	second := &Document{Path: "Saga.md", Meta: map[string]any{"n": 2}}
	v := New([]*Document{first, second}, ".md")
	if v.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", v.Len())
	}
	if d, _ := v.Document("Saga.md"); d != first {
		t.Error("first document must win")
	}
}

func TestVault_NaturalOrder(t *testing.T) {
	v := New(docs("Chapter 10.md", "Chapter 2.md", "Chapter 1.md"), ".md")
	want := []string{"Chapter 1.md", "Chapter 2.md", "Chapter 10.md"}
	for i, d := range v.Documents() {
		if d.Path != want[i] {
			t.Errorf("Documents()[%d] = %q, want %q", i, d.Path, want[i])
		}
	}
}

func TestCatalog(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"Saga.md": "---\ntitle: Saga\n---\n"})

	c := NewCatalog(NewDirSource(root, testFilter, zaptest.NewLogger(t)), ".md", zaptest.NewLogger(t))
	if _, ok := c.FirstLinkTarget("Saga", "x.md"); ok {
		t.Error("catalog must not resolve links before first load")
	}
	got, err := c.Documents(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("Documents() = %v, %v", got, err)
	}
	if d, ok := c.FirstLinkTarget("Saga", "x.md"); !ok || d.Path != "Saga.md" {
		t.Errorf("FirstLinkTarget() = %v, %v", d, ok)
	}

	// failed reload keeps previous vault
	if err := os.RemoveAll(root); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if _, err := c.Documents(context.Background()); err == nil {
		t.Fatal("expected enumeration error")
	}
	if c.Vault().Len() != 1 {
		t.Error("previous vault must stay in effect after failure")
	}
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"Books/Saga.md": "saga"})

	log := zaptest.NewLogger(t)
	w, err := NewWatcher(NewDirSource(root, testFilter, log), testFilter, 20*time.Millisecond, log)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notified := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { notified <- struct{}{} })
	}()

	writeFiles(t, root, map[string]string{
		"Books/One.md": "one",
		"Books/Two.md": "two",
	})

	select {
	case <-notified:
	case <-ctx.Done():
		t.Fatal("no notification received")
	}

	cancel()
	if err := <-done; err == nil {
		t.Error("Run() must report context cancellation")
	}
}
