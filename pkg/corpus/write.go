package corpus

import (
	"fmt"

	"github.com/hack-pad/hackpadfs"
)

// WriteNote serializes note.File and writes it back to note.Path, durably:
// the new content lands in a sibling temp file first, then an atomic rename
// replaces the original, so a crash mid-write never leaves a half-written
// note behind.
func WriteNote(fsys hackpadfs.FS, note *Note) error {
	data := note.File.Serialize()
	tmpPath := note.Path + ".tmp"

	if err := hackpadfs.WriteFullFile(fsys, tmpPath, data, 0644); err != nil {
		return fmt.Errorf("corpus: writing temp file for %q: %w", note.Path, err)
	}

	if err := hackpadfs.Rename(fsys, tmpPath, note.Path); err != nil {
		return fmt.Errorf("corpus: renaming temp file into place for %q: %w", note.Path, err)
	}

	return nil
}
