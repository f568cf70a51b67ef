// Package graph implements the directed weighted link graph built over a
// corpus of notes: nodes are DocNames (including dangling link targets that
// are not themselves corpus members), edges carry the author-declared or
// derived link weight.
package graph

import "sort"

// Node is a single DocName in the graph. It may or may not correspond to a
// loaded note (dangling targets get a node-only entry with no outgoing
// edges, so the graph stays closed over every name ever referenced).
type Node struct {
	DocName  string
	Outbound []*Edge
	Inbound  []*Edge
}

// Edge is a directed, weighted link from Source to Target.
type Edge struct {
	Source *Node
	Target *Node
	Weight float64
}

// Graph is a directed weighted graph over DocNames.
type Graph struct {
	Nodes map[string]*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// EnsureNode returns the node for docName, creating a node-only entry if it
// doesn't exist yet.
func (g *Graph) EnsureNode(docName string) *Node {
	if n, ok := g.Nodes[docName]; ok {
		return n
	}
	n := &Node{DocName: docName}
	g.Nodes[docName] = n
	return n
}

// GetNode retrieves a node by DocName, or nil if absent.
func (g *Graph) GetNode(docName string) *Node {
	return g.Nodes[docName]
}

// AddEdge adds a directed edge from source to target with the given weight,
// creating both endpoint nodes if needed. Self-loops are added as-is: the
// graph builder never suppresses them (spec invariant — only the
// maintenance association phase's identity-pair guard prevents new ones).
func (g *Graph) AddEdge(source, target string, weight float64) *Edge {
	s := g.EnsureNode(source)
	t := g.EnsureNode(target)
	e := &Edge{Source: s, Target: t, Weight: weight}
	s.Outbound = append(s.Outbound, e)
	t.Inbound = append(t.Inbound, e)
	return e
}

// OutgoingEdges returns the outgoing edges of docName in insertion order, or
// nil if the node doesn't exist or has no outgoing edges.
func (g *Graph) OutgoingEdges(docName string) []*Edge {
	n := g.Nodes[docName]
	if n == nil {
		return nil
	}
	return n.Outbound
}

// OutDegree returns the number of outgoing edges for docName. Missing nodes
// have out-degree zero.
func (g *Graph) OutDegree(docName string) int {
	n := g.Nodes[docName]
	if n == nil {
		return 0
	}
	return len(n.Outbound)
}

// OutgoingWeightSum returns the sum of outgoing edge weights for docName.
func (g *Graph) OutgoingWeightSum(docName string) float64 {
	sum := 0.0
	for _, e := range g.OutgoingEdges(docName) {
		sum += e.Weight
	}
	return sum
}

// OrphanNodes returns every node with zero in-degree and zero out-degree,
// sorted by DocName for determinism.
func (g *Graph) OrphanNodes() []string {
	var out []string
	for name, n := range g.Nodes {
		if len(n.Outbound) == 0 && len(n.Inbound) == 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// IsolatedSources returns every node with zero out-degree (regardless of
// in-degree), sorted by DocName. This is the candidate set for the
// maintenance pipeline's Association phase.
func (g *Graph) IsolatedSources() []string {
	var out []string
	for name, n := range g.Nodes {
		if len(n.Outbound) == 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// NodeCount returns the number of nodes (including dangling targets).
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}
