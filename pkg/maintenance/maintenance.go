// Package maintenance implements the nightly three-phase graph maintenance
// pipeline: proposing links for isolated notes, forgetting weak links, and
// renormalising each note's link weights.
package maintenance

import (
	"context"
	"fmt"
	"math"
	"strings"

	ahocorasick "github.com/coregx/ahocorasick"
	"github.com/hack-pad/hackpadfs"

	"github.com/kittclouds/notegraph/pkg/associator"
	"github.com/kittclouds/notegraph/pkg/corpus"
	"github.com/kittclouds/notegraph/pkg/graph"
)

const (
	associationThreshold = 0.5
	forgetThreshold      = 0.05
	consolidateTolerance = 0.01
)

// Report summarises one RunBatchProcess invocation, phase by phase. Not
// named in the retrieval/maintenance contract itself, but the batch CLI
// command and the journal both need something to show an operator what a
// run actually did.
type Report struct {
	AssociationLinksAdded int
	NotesAssociated       int
	LinksForgotten        int
	NotesForgotten        int
	NotesConsolidated     int
}

// RunBatchProcess runs Association, then Forgetting, then Consolidation, in
// strict order, each against a freshly loaded corpus snapshot.
func RunBatchProcess(ctx context.Context, fsys hackpadfs.FS, root string, assoc associator.Associator) (*Report, error) {
	report := &Report{}

	// Forgetting and Consolidation each load their own fresh snapshot below,
	// so Association's mutation flag needs no explicit reload here.
	if _, err := runAssociation(ctx, fsys, root, assoc, report); err != nil {
		return nil, fmt.Errorf("maintenance: association phase: %w", err)
	}

	if err := runForgetting(fsys, root, report); err != nil {
		return nil, fmt.Errorf("maintenance: forgetting phase: %w", err)
	}

	if err := runConsolidation(fsys, root, report); err != nil {
		return nil, fmt.Errorf("maintenance: consolidation phase: %w", err)
	}

	return report, nil
}

// runAssociation implements spec.md §4.F Phase 1. It returns whether any
// note was mutated. RunBatchProcess ignores that value: Forgetting always
// loads its own fresh snapshot, so no reload depends on it.
func runAssociation(ctx context.Context, fsys hackpadfs.FS, root string, assoc associator.Associator, report *Report) (bool, error) {
	c, warnings := corpus.Load(fsys, root)
	corpus.LogWarnings(warnings)

	g, graphWarnings := graph.BuildGraph(c)
	for _, w := range graphWarnings {
		corpus.LogWarnings([]corpus.Warning{{Message: w}})
	}

	isolated := g.IsolatedSources()
	mutated := false

	allNames := c.DocNames()

	for _, source := range isolated {
		note, ok := c.Notes[source]
		if !ok {
			continue // dangling node, not a loaded note; cannot be an association source
		}

		candidates := make([]string, 0, len(allNames))
		for _, name := range allNames {
			if name != source {
				candidates = append(candidates, name)
			}
		}

		marker := buildMarkerAutomaton(candidates)

		links, linkWarnings := note.File.Header.Links()
		if links == nil {
			links = make(map[string]float64)
		}
		for _, w := range linkWarnings {
			corpus.LogWarnings([]corpus.Warning{{Message: w}})
		}

		touched := false
		var appended strings.Builder

		for _, target := range candidates {
			other := c.Notes[target]
			score, err := assoc.Associate(ctx, source, note.File.Body, target, other.File.Body)
			if err != nil {
				return mutated, fmt.Errorf("associator call for (%s, %s): %w", source, target, err)
			}
			if score < associationThreshold {
				continue
			}

			links[target] = score
			touched = true
			report.AssociationLinksAdded++

			if !markerPresent(marker, note.File.Body, target) {
				appended.WriteString(fmt.Sprintf("\n* AI associative link: [[%s]]\n", target))
			}
		}

		if !touched {
			continue
		}

		note.File.Header.SetLinks(links)
		note.File.Body += appended.String()

		if err := corpus.WriteNote(fsys, note); err != nil {
			return mutated, fmt.Errorf("writing %s: %w", source, err)
		}
		report.NotesAssociated++
		mutated = true
	}

	return mutated, nil
}

// buildMarkerAutomaton builds one Aho-Corasick automaton over every
// candidate target's wikilink marker, so the "does the body already
// mention [[e]]" check for a source note is a single scan rather than one
// strings.Contains per candidate.
func buildMarkerAutomaton(candidates []string) ahocorasick.AhoCorasick {
	patterns := make([]string, len(candidates))
	for i, c := range candidates {
		patterns[i] = "[[" + c + "]]"
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	return builder.Build(patterns)
}

func markerPresent(ac ahocorasick.AhoCorasick, body, target string) bool {
	needle := "[[" + target + "]]"
	for _, m := range ac.FindAll(body) {
		if body[m.Start():m.End()] == needle {
			return true
		}
	}
	return false
}

// runForgetting implements spec.md §4.F Phase 2: drop header link entries
// below forgetThreshold. Body text is never rewritten here.
func runForgetting(fsys hackpadfs.FS, root string, report *Report) error {
	c, warnings := corpus.Load(fsys, root)
	corpus.LogWarnings(warnings)

	for _, name := range c.DocNames() {
		note := c.Notes[name]
		links, linkWarnings := note.File.Header.Links()
		corpus.LogWarnings(toWarnings(linkWarnings))
		if len(links) == 0 {
			continue
		}

		changed := false
		for target, w := range links {
			if w < forgetThreshold {
				delete(links, target)
				changed = true
				report.LinksForgotten++
			}
		}
		if !changed {
			continue
		}

		note.File.Header.SetLinks(links)
		if err := corpus.WriteNote(fsys, note); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		report.NotesForgotten++
	}

	return nil
}

// runConsolidation implements spec.md §4.F Phase 3: rescale each note's
// header links to sum to 1.0 when they deviate by more than
// consolidateTolerance, rounding half-away-from-zero to three decimals.
func runConsolidation(fsys hackpadfs.FS, root string, report *Report) error {
	c, warnings := corpus.Load(fsys, root)
	corpus.LogWarnings(warnings)

	for _, name := range c.DocNames() {
		note := c.Notes[name]
		links, linkWarnings := note.File.Header.Links()
		corpus.LogWarnings(toWarnings(linkWarnings))
		if len(links) == 0 {
			continue
		}

		sum := 0.0
		for _, w := range links {
			sum += w
		}
		if sum <= 0 || math.Abs(sum-1.0) <= consolidateTolerance {
			continue
		}

		for target, w := range links {
			links[target] = roundTo3(w / sum)
		}

		note.File.Header.SetLinks(links)
		if err := corpus.WriteNote(fsys, note); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		report.NotesConsolidated++
	}

	return nil
}

// roundTo3 rounds to three decimal places, half away from zero.
func roundTo3(x float64) float64 {
	scaled := x * 1000
	if scaled >= 0 {
		return math.Floor(scaled+0.5) / 1000
	}
	return math.Ceil(scaled-0.5) / 1000
}

func toWarnings(messages []string) []corpus.Warning {
	out := make([]corpus.Warning, len(messages))
	for i, m := range messages {
		out[i] = corpus.Warning{Message: m}
	}
	return out
}
