package corpus

import (
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingRootReturnsWarning(t *testing.T) {
	fsys, err := mem.NewFS()
	require.NoError(t, err)

	c, warnings := Load(fsys, "does-not-exist")
	require.Len(t, c.Notes, 0)
	require.Len(t, warnings, 1)
	require.Equal(t, CorpusMissing, warnings[0].Kind)
}

func TestLoadReadsMarkdownFilesIntoNotes(t *testing.T) {
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.MkdirAll(fsys, "docs", 0755))
	require.NoError(t, hackpadfs.WriteFullFile(fsys, "docs/Alpha.md", []byte("---\nlinks:\n  Beta: 1.0\n---\nSee [[Beta]]."), 0644))
	require.NoError(t, hackpadfs.WriteFullFile(fsys, "docs/Beta.md", []byte("no header here"), 0644))
	require.NoError(t, hackpadfs.WriteFullFile(fsys, "docs/notes.txt", []byte("ignored, not markdown"), 0644))

	c, warnings := Load(fsys, "docs")
	require.Len(t, warnings, 0)
	require.Len(t, c.Notes, 2)

	alpha, ok := c.Notes["Alpha"]
	require.True(t, ok)
	links, _ := alpha.File.Header.Links()
	require.Equal(t, 1.0, links["Beta"])

	beta, ok := c.Notes["Beta"]
	require.True(t, ok)
	require.True(t, beta.File.Header.Empty())
}

func TestLoadWarnsOnDuplicateDocName(t *testing.T) {
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.MkdirAll(fsys, "docs/sub", 0755))
	require.NoError(t, hackpadfs.WriteFullFile(fsys, "docs/Alpha.md", []byte("first"), 0644))
	require.NoError(t, hackpadfs.WriteFullFile(fsys, "docs/sub/Alpha.md", []byte("second"), 0644))

	c, warnings := Load(fsys, "docs")

	var sawDup bool
	for _, w := range warnings {
		if w.Kind == DuplicateDocName {
			sawDup = true
		}
	}
	require.True(t, sawDup, "expected a duplicate DocName warning")
	require.Contains(t, c.Notes, "Alpha")
}

func TestWriteNoteRoundTrips(t *testing.T) {
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.MkdirAll(fsys, "docs", 0755))
	require.NoError(t, hackpadfs.WriteFullFile(fsys, "docs/Alpha.md", []byte("original body"), 0644))

	c, warnings := Load(fsys, "docs")
	require.Len(t, warnings, 0)

	note := c.Notes["Alpha"]
	note.File.Header.SetLinks(map[string]float64{"Beta": 1.0})
	require.NoError(t, WriteNote(fsys, note))

	reloaded, warnings := Load(fsys, "docs")
	require.Len(t, warnings, 0)
	links, _ := reloaded.Notes["Alpha"].File.Header.Links()
	require.Equal(t, 1.0, links["Beta"])
}
