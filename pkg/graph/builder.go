package graph

import (
	"sort"

	"github.com/kittclouds/notegraph/pkg/corpus"
	"github.com/kittclouds/notegraph/pkg/notefile"
)

// BuildGraph constructs the link graph for an entire corpus, applying the
// per-note weight-assignment rule to every note and returning the combined
// graph plus any warnings raised along the way (non-numeric header weights,
// and so on).
func BuildGraph(c *corpus.Corpus) (*Graph, []string) {
	g := New()
	var warnings []string

	names := make([]string, 0, len(c.Notes))
	for name := range c.Notes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		note := c.Notes[name]
		g.EnsureNode(name)
		w := addNote(g, name, note.File.Header, note.File.Body)
		warnings = append(warnings, w...)
	}

	return g, warnings
}

// addNote applies the weight-assignment rule for a single note:
//
//  1. H is the note's header "links" map (DocName -> weight).
//  2. B is the set of wikilink targets found in the body.
//  3. U = B \ H (body links not already declared in the header).
//  4. S = sum(H); r = max(0, 1-S) is the remaining weight budget.
//  5. If U is non-empty and r>0, each u in U gets weight r/len(U); if U is
//     non-empty and r==0, each u in U is still linked, with weight 0 (the
//     edge records structural reachability even though no budget remains).
//
// Header links are added first and always take priority over the derived
// body weight; a target mentioned in both sets only gets the header weight.
// Every target name, whether or not it corresponds to a loaded note, gets
// a node (EnsureNode creates dangling entries as needed).
func addNote(g *Graph, source string, header *notefile.Header, body string) []string {
	var warnings []string

	links, linkWarnings := header.Links()
	warnings = append(warnings, linkWarnings...)

	headerNames := make([]string, 0, len(links))
	for name := range links {
		headerNames = append(headerNames, name)
	}
	sort.Strings(headerNames)

	sum := 0.0
	for _, name := range headerNames {
		weight := links[name]
		g.AddEdge(source, name, weight)
		sum += weight
	}

	bodyLinks := notefile.ExtractWikilinks(body)
	var unassigned []string
	for _, target := range bodyLinks {
		if _, inHeader := links[target]; inHeader {
			continue
		}
		unassigned = append(unassigned, target)
	}

	if len(unassigned) == 0 {
		return warnings
	}

	remaining := 1.0 - sum
	if remaining < 0 {
		remaining = 0
	}

	share := 0.0
	if remaining > 0 {
		share = remaining / float64(len(unassigned))
	}

	for _, target := range unassigned {
		g.AddEdge(source, target, share)
	}

	return warnings
}
