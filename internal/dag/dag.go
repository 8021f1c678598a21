// Package dag holds the small directed-graph helper used to verify that the
// resource catalog is acyclic at load time.
package dag

import (
	"fmt"
	"sort"
)

// Graph is a directed graph keyed by node id. It is built once while the
// resource catalog is loaded and is not safe for concurrent mutation.
type Graph struct {
	deps map[string]map[string]struct{}
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{deps: make(map[string]map[string]struct{})}
}

// AddNode adds a new node with the given ID to the graph. Adding an existing
// node is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.deps[id]; ok {
		return
	}
	g.deps[id] = make(map[string]struct{})
}

// AddEdge records that `toID` depends on `fromID`. An error is returned if
// either node does not exist or if the edge would be a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}
	if _, ok := g.deps[fromID]; !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	if _, ok := g.deps[toID]; !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	g.deps[toID][fromID] = struct{}{}
	return nil
}

// Dependencies returns the ids the given node depends on, sorted.
func (g *Graph) Dependencies(id string) ([]string, error) {
	edges, ok := g.deps[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	out := make([]string, 0, len(edges))
	for dep := range edges {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out, nil
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, naming a node involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	// Classic depth-first search over dependency edges with two marker sets:
	// permanent for fully explored nodes, temporary for the recursion stack.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("cycle detected involving node '%s'", id)
		}
		temporary[id] = true
		for dep := range g.deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	ids := make([]string, 0, len(g.deps))
	for id := range g.deps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
