// Command notegraph runs the associative-memory retriever's two operator
// entry points: a nightly batch maintenance run, and an ad hoc context
// retrieval for a keyword.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	osfs "github.com/hack-pad/hackpadfs/os"

	"github.com/kittclouds/notegraph/internal/config"
	"github.com/kittclouds/notegraph/internal/journal"
	"github.com/kittclouds/notegraph/pkg/associator"
	"github.com/kittclouds/notegraph/pkg/bigram"
	"github.com/kittclouds/notegraph/pkg/corpus"
	"github.com/kittclouds/notegraph/pkg/graph"
	"github.com/kittclouds/notegraph/pkg/maintenance"
	"github.com/kittclouds/notegraph/pkg/retriever"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "batch":
		err = runBatch()
	case "retrieve":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		err = runRetrieve(strings.Join(os.Args[2:], " "))
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "notegraph: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: notegraph batch | notegraph retrieve <keyword>")
}

func runBatch() error {
	cfg := config.Load()

	fsys, err := osfs.NewFS()
	if err != nil {
		return fmt.Errorf("mounting filesystem: %w", err)
	}

	var assoc associator.Associator
	if cfg.LLMAPIKey != "" {
		assoc = associator.NewChatAssociator(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	} else {
		assoc = associator.StubAssociator{}
	}

	started := time.Now().Unix()
	report, err := maintenance.RunBatchProcess(context.Background(), fsys, cfg.DocsDir, assoc)
	if err != nil {
		return err
	}
	finished := time.Now().Unix()

	fmt.Printf("association: %d notes touched, %d links added\n", report.NotesAssociated, report.AssociationLinksAdded)
	fmt.Printf("forgetting: %d notes touched, %d links dropped\n", report.NotesForgotten, report.LinksForgotten)
	fmt.Printf("consolidation: %d notes rescaled\n", report.NotesConsolidated)

	journalPath := filepath.Join(cfg.DocsDir, ".notegraph-journal.db")
	j, err := journal.Open(journalPath)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer j.Close()

	runID := fmt.Sprintf("run-%d", started)
	if err := j.RecordRun(runID, started, finished, report); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	return nil
}

func runRetrieve(keyword string) error {
	cfg := config.Load()

	fsys, err := osfs.NewFS()
	if err != nil {
		return fmt.Errorf("mounting filesystem: %w", err)
	}

	c, warnings := corpus.Load(fsys, cfg.DocsDir)
	corpus.LogWarnings(warnings)

	idx := bigram.NewIndex()
	for _, name := range c.DocNames() {
		idx.IndexDocument(name, c.Notes[name].File.Body)
	}

	g, graphWarnings := graph.BuildGraph(c)
	for _, w := range graphWarnings {
		corpus.LogWarnings([]corpus.Warning{{Message: w}})
	}

	const defaultMaxLength = 4096
	fmt.Println(retriever.RetrieveContext(c, idx, g, keyword, defaultMaxLength))
	return nil
}
