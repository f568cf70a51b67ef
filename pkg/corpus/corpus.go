// Package corpus loads a directory of note files into an in-memory corpus
// and writes individual notes back durably. It is the spec's "Corpus
// Loader": walking a directory, deriving DocNames from file stems, and
// tolerating missing directories and malformed headers without failing the
// whole load.
package corpus

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/hack-pad/hackpadfs"

	"github.com/kittclouds/notegraph/pkg/notefile"
)

// Note is a single loaded note: its DocName, parsed header/body, and the
// filesystem path it was read from (relative to the corpus root).
type Note struct {
	DocName string
	Path    string
	File    *notefile.File
}

// Corpus is the in-memory DocName -> Note mapping produced by Load.
type Corpus struct {
	Notes map[string]*Note
}

// WarningKind classifies a non-fatal problem encountered while loading.
type WarningKind int

const (
	// CorpusMissing indicates the configured root directory does not exist.
	CorpusMissing WarningKind = iota
	// NoteParseWarning indicates a note's header failed to parse; the note
	// still loaded with an empty header.
	NoteParseWarning
	// DuplicateDocName indicates two files under the root share a stem; the
	// later one (by walk order) wins.
	DuplicateDocName
)

// Warning is a single non-fatal event raised during Load.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string { return w.Message }

// DocNames returns every loaded DocName, sorted for deterministic
// iteration order across callers (the maintenance pipeline's per-run
// candidate ordering relies on this).
func (c *Corpus) DocNames() []string {
	names := make([]string, 0, len(c.Notes))
	for name := range c.Notes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load walks root on fsys, loading every *.md file into the returned Corpus.
// A missing root is not an error: Load returns an empty Corpus plus a
// CorpusMissing warning (spec §4.B).
func Load(fsys hackpadfs.FS, root string) (*Corpus, []Warning) {
	c := &Corpus{Notes: make(map[string]*Note)}
	var warnings []Warning

	seenPaths := make(map[string]string) // DocName -> first path seen

	paths, err := walkMarkdown(fsys, root)
	if err != nil {
		warnings = append(warnings, Warning{
			Kind:    CorpusMissing,
			Message: fmt.Sprintf("corpus: root directory %q not found: %v", root, err),
		})
		return c, warnings
	}

	for _, p := range paths {
		data, err := hackpadfs.ReadFile(fsys, p)
		if err != nil {
			warnings = append(warnings, Warning{
				Kind:    NoteParseWarning,
				Message: fmt.Sprintf("corpus: failed to read %q: %v", p, err),
			})
			continue
		}

		docName := stemOf(p)

		file, err := notefile.ParseFile(data)
		if err != nil {
			warnings = append(warnings, Warning{
				Kind:    NoteParseWarning,
				Message: fmt.Sprintf("corpus: %q: malformed header, loading with empty header: %v", p, err),
			})
			file = &notefile.File{Header: &notefile.Header{}, Body: string(data)}
		}

		if prevPath, ok := seenPaths[docName]; ok {
			warnings = append(warnings, Warning{
				Kind:    DuplicateDocName,
				Message: fmt.Sprintf("corpus: DocName %q found at both %q and %q; keeping %q (last loaded)", docName, prevPath, p, p),
			})
		}
		seenPaths[docName] = p

		c.Notes[docName] = &Note{DocName: docName, Path: p, File: file}
	}

	return c, warnings
}

// LogWarnings writes each warning through the standard logger, matching the
// teacher's own plain log.Printf style.
func LogWarnings(warnings []Warning) {
	for _, w := range warnings {
		log.Printf("%s", w.Message)
	}
}

func stemOf(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// walkMarkdown returns every .md file path under root, in a stable
// (lexicographic) order so duplicate-DocName resolution is deterministic
// within a single run.
func walkMarkdown(fsys hackpadfs.FS, root string) ([]string, error) {
	if _, err := hackpadfs.Stat(fsys, root); err != nil {
		return nil, err
	}

	var out []string
	err := fs.WalkDir(toIOFS(fsys), root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(path.Ext(p), ".md") {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// toIOFS adapts a hackpadfs.FS to the standard io/fs.FS interface so
// fs.WalkDir can be used for the recursive directory scan. hackpadfs.FS
// already implements io/fs.FS's method set (Open); this wrapper exists so
// call sites don't need to know that.
func toIOFS(fsys hackpadfs.FS) fs.FS {
	return ioFSAdapter{fsys}
}

type ioFSAdapter struct {
	fsys hackpadfs.FS
}

func (a ioFSAdapter) Open(name string) (fs.File, error) {
	return a.fsys.Open(name)
}
