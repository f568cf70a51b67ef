// Package retriever implements the hybrid retrieval engine: BM25 lexical
// seeding combined with bounded, decayed spreading activation over the
// note link graph.
package retriever

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kittclouds/notegraph/pkg/bigram"
	"github.com/kittclouds/notegraph/pkg/corpus"
	"github.com/kittclouds/notegraph/pkg/graph"
)

// Options holds the spreading-activation parameters, defaulted per
// spec.md §4.E.
type Options struct {
	TopK      int
	Decay     float64
	Steps     int
	Threshold float64
}

// DefaultOptions returns top_k=3, decay=0.8, steps=3, threshold=0.1.
func DefaultOptions() Options {
	return Options{TopK: 3, Decay: 0.8, Steps: 3, Threshold: 0.1}
}

// Result is one ranked retrieval hit.
type Result struct {
	DocName string
	Score   float64
}

// Retrieve executes the query against idx for BM25 seeding and g for
// spreading activation, returning up to opts.TopK results ordered by
// descending score with ascending DocName as a tie-break. Dangling
// DocNames (graph nodes with no corresponding note in c) are never
// returned, even if they accumulate activation.
func Retrieve(c *corpus.Corpus, idx *bigram.Index, g *graph.Graph, query string, opts Options) []Result {
	seed := idx.ScoreAll(query)
	if len(seed) == 0 {
		return nil
	}

	maxScore := 0.0
	for _, s := range seed {
		if s > maxScore {
			maxScore = s
		}
	}

	final := make(map[string]float64, len(seed))
	current := make(map[string]float64, len(seed))
	for d, s := range seed {
		a := s / maxScore
		final[d] = a
		current[d] = a
	}

	for step := 0; step < opts.Steps; step++ {
		next := make(map[string]float64)
		for d, a := range current {
			if a < opts.Threshold {
				continue
			}
			for _, edge := range g.OutgoingEdges(d) {
				next[edge.Target.DocName] += a * edge.Weight * opts.Decay
			}
		}
		if len(next) == 0 {
			break
		}
		for n, x := range next {
			final[n] += x
		}
		current = make(map[string]float64, len(next))
		for n, x := range next {
			if x > 1.0 {
				x = 1.0
			}
			current[n] = x
		}
	}

	results := make([]Result, 0, len(final))
	for d, score := range final {
		if _, exists := c.Notes[d]; !exists {
			continue // dangling: never a corpus member
		}
		results = append(results, Result{DocName: d, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocName < results[j].DocName
	})

	if opts.TopK > 0 && len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	return results
}

const noResultsSentinel = "No relevant context found."

const truncationSuffix = "\n... (truncated: context limit reached)"

// RetrieveContext implements the public retrieve_context operation. It
// accumulates results incrementally and breaks out as soon as the budget is
// exhausted, rather than assembling the full concatenation and slicing it
// after the fact: runs Retrieve with top_k=5 and the default spreading
// parameters, then walks the results in order, appending each one's
// "--- Document: name (Score: s.sss) ---" header plus body only as long as
// it fits within maxLength runes.
//
// Per result: if even the header wouldn't fit in the remaining budget, the
// loop stops immediately and that result (and everything after it)
// contributes nothing. If the header fits but the body would overflow, the
// body is truncated to the remaining budget, the truncation suffix is
// appended, and the loop stops — later results are never considered, even
// if they would have fit on their own. Otherwise the full header+body is
// appended and accumulation continues to the next result.
func RetrieveContext(c *corpus.Corpus, idx *bigram.Index, g *graph.Graph, keyword string, maxLength int) string {
	opts := DefaultOptions()
	opts.TopK = 5

	results := Retrieve(c, idx, g, keyword, opts)
	if len(results) == 0 {
		return noResultsSentinel
	}

	var parts []string
	currentLength := 0

	for _, r := range results {
		note := c.Notes[r.DocName]
		header := fmt.Sprintf("\n\n--- Document: %s (Score: %.3f) ---\n\n", r.DocName, r.Score)
		body := note.File.Body

		headerLen := len([]rune(header))
		bodyLen := len([]rune(body))
		partLen := headerLen + bodyLen

		if currentLength+headerLen >= maxLength {
			break // not even the header fits: stop, contributing nothing
		}

		if currentLength+partLen > maxLength {
			allowedLen := maxLength - currentLength - headerLen
			if allowedLen > 0 {
				bodyRunes := []rune(body)
				truncated := string(bodyRunes[:allowedLen]) + truncationSuffix
				parts = append(parts, header+truncated)
			}
			break
		}

		parts = append(parts, header+body)
		currentLength += partLen
	}

	return strings.TrimSpace(strings.Join(parts, ""))
}
