package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/multierr"

	"booknav/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination could not be created report
// goes to temporary directory.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{file: f, items: make(map[string]item), versions: make(map[string]int)}, nil
}

// item is either file on disk (read when report is closed) or a snapshot of
// data taken at the time it was stored.
type item struct {
	source  string
	data    []byte
	stamp   time.Time
	version int
}

// Report collects logs, effective configuration and index dumps into single
// archive for troubleshooting. Safe for concurrent use, index could be
// rebuilt on a background goroutine.
type Report struct {
	mu       sync.Mutex
	file     *os.File
	items    map[string]item
	versions map[string]int
}

// Close writes the archive.
func (r *Report) Close() (err error) {
	if r == nil || r.file == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		err = multierr.Append(err, r.file.Close())
	}()
	arc := zip.NewWriter(r.file)
	err = r.write(arc)
	return multierr.Append(err, arc.Close())
}

// Name returns absolute name of the archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store puts file into the report, content is read at Close so logs are
// complete. The same name could not be reused for a different file.
func (r *Report) Store(name, source string) {
	if r == nil {
		return
	}
	if p, err := filepath.Abs(source); err == nil {
		source = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, exists := r.items[name]; exists && old.source != source {
		panic(fmt.Sprintf("report entry [%s] already points to %s, refusing %s", name, old.source, source))
	}
	r.items[name] = item{source: source}
}

// StoreData puts data into the report. Data stored under the same name again
// gets numbered: index/novel.txt, index/novel-2.txt and so on.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[name]++
	v := r.versions[name]
	if v > 1 {
		ext := path.Ext(name)
		name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), v, ext)
	}
	r.items[name] = item{data: append([]byte{}, data...), stamp: time.Now(), version: v}
}

func (r *Report) write(arc *zip.Writer) error {
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})

	var manifest bytes.Buffer
	for _, name := range names {
		it := r.items[name]
		if it.data != nil {
			fmt.Fprintf(&manifest, "%s\tdata\tv%d\t%d bytes\t%s\n", name, it.version, len(it.data), it.stamp.UTC().Format(time.RFC3339))
			if err := addEntry(arc, name, it.stamp, bytes.NewReader(it.data)); err != nil {
				return err
			}
			continue
		}
		info, err := os.Stat(it.source)
		if err != nil || !info.Mode().IsRegular() {
			fmt.Fprintf(&manifest, "%s\tfile\t%s\tmissing\n", name, it.source)
			continue
		}
		fmt.Fprintf(&manifest, "%s\tfile\t%s\t%d bytes\n", name, it.source, info.Size())
		if err := addFile(arc, name, it.source, info.ModTime()); err != nil {
			return err
		}
	}
	return addEntry(arc, "MANIFEST", time.Now(), &manifest)
}

func addFile(arc *zip.Writer, name, source string, stamp time.Time) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("unable to open report entry [%s]: %w", name, err)
	}
	defer f.Close()
	return addEntry(arc, name, stamp, f)
}

func addEntry(arc *zip.Writer, name string, stamp time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: stamp})
	if err != nil {
		return fmt.Errorf("unable to add report entry [%s]: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("unable to write report entry [%s]: %w", name, err)
	}
	return nil
}
