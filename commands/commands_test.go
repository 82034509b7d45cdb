package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap/zaptest"

	"booknav/config"
	"booknav/state"
)

func newContext(t *testing.T) context.Context {
	t.Helper()
	ctx := state.ContextWithEnv(t.Context())
	env := state.EnvFromContext(ctx)
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return ctx
}

func writeVault(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Saga.md":           "---\ntitle: Saga\nchapters: [\"[[One]]\", \"[[Two]]\"]\n---\n",
		"chapters/One.md":   "---\noutline: \"[[One outline]]\"\n---\n",
		"chapters/Two.md":   "---\nlocation: Castle\n---\n",
		"One outline.md":    "---\na: 1\n---\n",
		".obsidian/conf.md": "---\ntitle: Hidden\nchapters: [\"[[One]]\"]\n---\n",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(ctx context.Context, action cli.ActionFunc, args ...string) error {
	cmd := &cli.Command{
		Name:   "test",
		Action: action,
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "width", Value: 800},
			&cli.StringFlag{Name: "open"},
			&cli.BoolFlag{Name: "default"},
		},
	}
	return cmd.Run(ctx, append([]string{"test"}, args...))
}

func TestOpenSession(t *testing.T) {
	ctx := newContext(t)
	dir := writeVault(t)

	var s *session
	err := run(ctx, func(ctx context.Context, cmd *cli.Command) (err error) {
		s, err = openSession(ctx, cmd, "test")
		return err
	}, dir)
	if err != nil {
		t.Fatalf("openSession() error = %v", err)
	}

	novel, err := s.Build(ctx)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	book := novel.Book("Saga.md")
	if book == nil || len(book.Chapters) != 2 {
		t.Fatalf("book = %+v", book)
	}
	if book.Chapters[1].Info != "chapters/Two.md" || book.Chapters[1].Location != "Castle" {
		t.Errorf("second chapter = %+v", book.Chapters[1])
	}
	if novel.Book(".obsidian/conf.md") != nil {
		t.Error("ignored directory must not be indexed")
	}

	if got := s.document(filepath.Join(dir, "chapters", "One.md")); got != "chapters/One.md" {
		t.Errorf("document(abs) = %q", got)
	}
	if got := s.document("./chapters/../Saga.md"); got != "Saga.md" {
		t.Errorf("document(rel) = %q", got)
	}
}

func TestCommands(t *testing.T) {
	dir := writeVault(t)

	tests := []struct {
		name   string
		action cli.ActionFunc
		args   []string
		err    string
	}{
		{"index", Index, []string{dir}, ""},
		{"index no vault", Index, nil, "no vault"},
		{"index missing vault", Index, []string{filepath.Join(dir, "absent")}, "unable to open vault"},
		{"nav", Nav, []string{dir, "chapters/One.md"}, ""},
		{"nav no document", Nav, []string{dir}, "no document"},
		{"layout", Layout, []string{"--width", "120", dir, "Saga.md"}, ""},
		{"layout not a book", Layout, []string{dir, "chapters/One.md"}, "is not a book"},
		{"layout no book", Layout, []string{dir}, "no book"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(newContext(t), tt.action, tt.args...)
			if len(tt.err) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.err) {
				t.Errorf("error = %v, want %q", err, tt.err)
			}
		})
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(newContext(t))
	dir := writeVault(t)

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, Watch, "--open", "Saga.md", dir)
	}()
	cancel()
	// cancellation could come before watching started
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestDumpConfig(t *testing.T) {
	dir := t.TempDir()
	for _, tt := range []struct {
		name string
		args []string
		want string
	}{
		{"actual", []string{filepath.Join(dir, "actual.yaml")}, "chapter_template"},
		{"default", []string{"--default", filepath.Join(dir, "default.yaml")}, "{{ .Number }}"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(newContext(t), DumpConfig, tt.args...); err != nil {
				t.Fatalf("DumpConfig() error = %v", err)
			}
			data, err := os.ReadFile(tt.args[len(tt.args)-1])
			if err != nil {
				t.Fatalf("destination not written: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("configuration lacks %q:\n%s", tt.want, data)
			}
		})
	}
}
