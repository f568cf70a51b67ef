package graph

import (
	"testing"

	"github.com/kittclouds/notegraph/pkg/corpus"
	"github.com/kittclouds/notegraph/pkg/notefile"
)

func TestEnsureNodeIsIdempotent(t *testing.T) {
	g := New()
	a := g.EnsureNode("Alpha")
	b := g.EnsureNode("Alpha")
	if a != b {
		t.Fatalf("EnsureNode returned different nodes for the same DocName")
	}
	if g.NodeCount() != 1 {
		t.Fatalf("NodeCount = %d, want 1", g.NodeCount())
	}
}

func TestAddEdgeWiresBothEndpoints(t *testing.T) {
	g := New()
	e := g.AddEdge("Alpha", "Beta", 0.5)

	if e.Source.DocName != "Alpha" || e.Target.DocName != "Beta" {
		t.Fatalf("edge endpoints wrong: %+v", e)
	}
	if got := g.OutDegree("Alpha"); got != 1 {
		t.Fatalf("OutDegree(Alpha) = %d, want 1", got)
	}
	if got := len(g.GetNode("Beta").Inbound); got != 1 {
		t.Fatalf("Beta inbound count = %d, want 1", got)
	}
}

func TestAddEdgeAllowsSelfLoops(t *testing.T) {
	g := New()
	g.AddEdge("Alpha", "Alpha", 1.0)
	if got := g.OutDegree("Alpha"); got != 1 {
		t.Fatalf("self-loop not recorded: OutDegree = %d", got)
	}
}

func TestOrphanNodes(t *testing.T) {
	g := New()
	g.AddEdge("Alpha", "Beta", 1.0)
	g.EnsureNode("Lonely")

	orphans := g.OrphanNodes()
	if len(orphans) != 1 || orphans[0] != "Lonely" {
		t.Fatalf("OrphanNodes = %v, want [Lonely]", orphans)
	}
}

func TestIsolatedSourcesIncludesZeroOutDegreeRegardlessOfInbound(t *testing.T) {
	g := New()
	g.AddEdge("Alpha", "Beta", 1.0) // Beta has inbound but no outbound
	g.EnsureNode("Gamma")           // no edges at all

	got := g.IsolatedSources()
	want := []string{"Beta", "Gamma"}
	if len(got) != len(want) {
		t.Fatalf("IsolatedSources = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IsolatedSources = %v, want %v", got, want)
		}
	}
}

func headerWithLinks(links map[string]float64) *notefile.Header {
	h := notefile.NewEmptyHeader()
	h.SetLinks(links)
	return h
}

// TestBuildGraphHeaderOnly: a note whose body links are a subset of its
// header links keeps exactly the header weights, with no remaining budget
// handed out.
func TestBuildGraphHeaderOnly(t *testing.T) {
	c := &corpus.Corpus{Notes: map[string]*corpus.Note{
		"A": {DocName: "A", File: &notefile.File{
			Header: headerWithLinks(map[string]float64{"B": 0.6, "C": 0.4}),
			Body:   "See [[B]] and [[C]].",
		}},
	}}

	g, warnings := BuildGraph(c)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	if got := g.OutgoingWeightSum("A"); got != 1.0 {
		t.Fatalf("OutgoingWeightSum(A) = %v, want 1.0", got)
	}
	if got := g.OutDegree("A"); got != 2 {
		t.Fatalf("OutDegree(A) = %d, want 2", got)
	}
}

// TestBuildGraphRedistributesRemainingBudget: body-only links split the
// leftover 1-sum(H) budget evenly.
func TestBuildGraphRedistributesRemainingBudget(t *testing.T) {
	c := &corpus.Corpus{Notes: map[string]*corpus.Note{
		"A": {DocName: "A", File: &notefile.File{
			Header: headerWithLinks(map[string]float64{"B": 0.4}),
			Body:   "Also mentions [[C]] and [[D]].",
		}},
	}}

	g, _ := BuildGraph(c)

	edges := g.OutgoingEdges("A")
	weights := make(map[string]float64, len(edges))
	for _, e := range edges {
		weights[e.Target.DocName] = e.Weight
	}

	if weights["B"] != 0.4 {
		t.Fatalf("weight(B) = %v, want 0.4", weights["B"])
	}
	if weights["C"] != 0.3 || weights["D"] != 0.3 {
		t.Fatalf("weights(C,D) = %v, %v, want 0.3, 0.3", weights["C"], weights["D"])
	}
}

// TestBuildGraphZeroBudgetStillAddsStructuralEdges: when the header weights
// already sum to >=1, body-only links still become edges, at weight 0.
func TestBuildGraphZeroBudgetStillAddsStructuralEdges(t *testing.T) {
	c := &corpus.Corpus{Notes: map[string]*corpus.Note{
		"A": {DocName: "A", File: &notefile.File{
			Header: headerWithLinks(map[string]float64{"B": 1.0}),
			Body:   "Also mentions [[C]].",
		}},
	}}

	g, _ := BuildGraph(c)

	edges := g.OutgoingEdges("A")
	var foundC bool
	for _, e := range edges {
		if e.Target.DocName == "C" {
			foundC = true
			if e.Weight != 0 {
				t.Fatalf("weight(C) = %v, want 0", e.Weight)
			}
		}
	}
	if !foundC {
		t.Fatalf("expected structural edge to C with zero weight")
	}
}

// TestBuildGraphDanglingTargetsGetNodes: a link to a DocName outside the
// corpus still produces a node so the graph stays closed over every name
// ever referenced.
func TestBuildGraphDanglingTargetsGetNodes(t *testing.T) {
	c := &corpus.Corpus{Notes: map[string]*corpus.Note{
		"A": {DocName: "A", File: &notefile.File{
			Header: notefile.NewEmptyHeader(),
			Body:   "Points at [[Nowhere]].",
		}},
	}}

	g, _ := BuildGraph(c)

	if g.GetNode("Nowhere") == nil {
		t.Fatalf("expected dangling target Nowhere to have a node entry")
	}
}
