// # internal/graph/graph.go
package graph

import (
	"sort"
	"sync"
)

// Graph is the module graph built from analyzed import sites: nodes are
// asset paths (or external requests), edges are resolved imports.
type Graph struct {
	mu sync.RWMutex

	nodes map[string]*Node
	edges map[string]map[string]*Edge // from -> to -> edge

	importedBy map[string]map[string]bool // to -> from

	// Invalidation tracking for watch mode
	dirty map[string]bool
}

type Node struct {
	Path     string
	External bool
}

type Edge struct {
	From    string
	To      string
	Kind    string // require, dynamic-import, esm-import, new-url
	Line    int
	Dynamic bool // true when the request carried dynamic holes
}

type Metrics struct {
	Depth  int
	FanIn  int
	FanOut int
}

func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		edges:      make(map[string]map[string]*Edge),
		importedBy: make(map[string]map[string]bool),
		dirty:      make(map[string]bool),
	}
}

func (g *Graph) AddNode(path string, external bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addNodeLocked(path, external)
}

func (g *Graph) addNodeLocked(path string, external bool) {
	if n, ok := g.nodes[path]; ok {
		// An asset seen on disk wins over an earlier external sighting.
		if !external {
			n.External = false
		}
		return
	}
	g.nodes[path] = &Node{Path: path, External: external}
}

func (g *Graph) AddEdge(edge Edge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.addNodeLocked(edge.From, false)
	g.addNodeLocked(edge.To, edge.To != "" && edge.To[0] != '/' && edge.To[0] != '.')

	if g.edges[edge.From] == nil {
		g.edges[edge.From] = make(map[string]*Edge)
	}
	e := edge
	g.edges[edge.From][edge.To] = &e

	if g.importedBy[edge.To] == nil {
		g.importedBy[edge.To] = make(map[string]bool)
	}
	g.importedBy[edge.To][edge.From] = true
}

// RemoveNode drops a node and its outgoing edges, keeping reverse indexes
// consistent. Used when a watched file disappears or gets re-analyzed.
func (g *Graph) RemoveNode(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for to := range g.edges[path] {
		if g.importedBy[to] != nil {
			delete(g.importedBy[to], path)
		}
	}
	delete(g.edges, path)
	delete(g.nodes, path)
}

func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	paths := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	nodes := make([]*Node, 0, len(paths))
	for _, p := range paths {
		c := *g.nodes[p]
		nodes = append(nodes, &c)
	}
	return nodes
}

func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

func (g *Graph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var edges []*Edge
	for _, targets := range g.edges {
		for _, e := range targets {
			c := *e
			edges = append(edges, &c)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

func (g *Graph) ImportedBy(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	froms := make([]string, 0, len(g.importedBy[path]))
	for from := range g.importedBy[path] {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	return froms
}

// Cycles returns the import cycles: strongly connected components with more
// than one node, plus self-imports.
func (g *Graph) Cycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes, adjacency := g.adjacencyLocked()
	_, components := stronglyConnectedComponents(nodes, adjacency)

	var cycles [][]string
	for _, comp := range components {
		if len(comp) > 1 {
			cycles = append(cycles, comp)
			continue
		}
		if _, self := g.edges[comp[0]][comp[0]]; self {
			cycles = append(cycles, comp)
		}
	}
	return cycles
}

func (g *Graph) ComputeMetrics() map[string]Metrics {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes, adjacency := g.adjacencyLocked()

	fanIn := make(map[string]int, len(nodes))
	fanOut := make(map[string]int, len(nodes))
	for _, from := range nodes {
		fanOut[from] = len(adjacency[from])
		for _, to := range adjacency[from] {
			fanIn[to]++
		}
	}

	componentOf, components := stronglyConnectedComponents(nodes, adjacency)
	componentEdges := make(map[int]map[int]bool, len(components))
	for _, from := range nodes {
		fromComp := componentOf[from]
		for _, to := range adjacency[from] {
			toComp := componentOf[to]
			if fromComp == toComp {
				continue
			}
			if componentEdges[fromComp] == nil {
				componentEdges[fromComp] = make(map[int]bool)
			}
			componentEdges[fromComp][toComp] = true
		}
	}

	depthByComp := make(map[int]int, len(components))
	var computeDepth func(int) int
	computeDepth = func(comp int) int {
		if depth, ok := depthByComp[comp]; ok {
			return depth
		}
		maxDepth := 0
		for next := range componentEdges[comp] {
			candidate := 1 + computeDepth(next)
			if candidate > maxDepth {
				maxDepth = candidate
			}
		}
		depthByComp[comp] = maxDepth
		return maxDepth
	}
	for comp := range components {
		computeDepth(comp)
	}

	metrics := make(map[string]Metrics, len(nodes))
	for _, name := range nodes {
		metrics[name] = Metrics{
			Depth:  depthByComp[componentOf[name]],
			FanIn:  fanIn[name],
			FanOut: fanOut[name],
		}
	}
	return metrics
}

func (g *Graph) adjacencyLocked() ([]string, map[string][]string) {
	nodes := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		nodes = append(nodes, p)
	}
	sort.Strings(nodes)

	adjacency := make(map[string][]string, len(nodes))
	for _, from := range nodes {
		targets := make([]string, 0, len(g.edges[from]))
		for to := range g.edges[from] {
			if _, ok := g.nodes[to]; ok {
				targets = append(targets, to)
			}
		}
		sort.Strings(targets)
		adjacency[from] = targets
	}
	return nodes, adjacency
}

func (g *Graph) MarkDirty(paths []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range paths {
		g.dirty[p] = true
	}
}

func (g *Graph) GetDirty() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	paths := make([]string, 0, len(g.dirty))
	for p := range g.dirty {
		paths = append(paths, p)
		delete(g.dirty, p)
	}
	sort.Strings(paths)
	return paths
}

func stronglyConnectedComponents(nodes []string, adjacency map[string][]string) (map[string]int, [][]string) {
	index := 0
	stack := make([]string, 0, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	indexByNode := make(map[string]int, len(nodes))
	lowLink := make(map[string]int, len(nodes))
	componentOf := make(map[string]int, len(nodes))
	components := make([][]string, 0)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indexByNode[v] = index
		lowLink[v] = index
		index++

		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adjacency[v] {
			if _, seen := indexByNode[w]; !seen {
				strongConnect(w)
				if lowLink[w] < lowLink[v] {
					lowLink[v] = lowLink[w]
				}
			} else if onStack[w] && indexByNode[w] < lowLink[v] {
				lowLink[v] = indexByNode[w]
			}
		}

		if lowLink[v] != indexByNode[v] {
			return
		}

		component := make([]string, 0)
		for {
			last := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[last] = false
			component = append(component, last)
			if last == v {
				break
			}
		}
		sort.Strings(component)
		compID := len(components)
		components = append(components, component)
		for _, n := range component {
			componentOf[n] = compID
		}
	}

	for _, node := range nodes {
		if _, seen := indexByNode[node]; !seen {
			strongConnect(node)
		}
	}

	return componentOf, components
}
