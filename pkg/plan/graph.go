package plan

// Node is a region in the connectivity graph.
type Node struct {
	ID     string   `json:"id"`
	Size   int      `json:"size"`
	Stairs int      `json:"stairs,omitempty"`
	Rooms  []string `json:"rooms,omitempty"`
}

// Edge joins two regions through a passage.
type Edge struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Passage string `json:"passage"`
}

// Graph is the region connectivity graph of a plan.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Graph converts the analysis into a region graph. A passage touching n
// regions contributes an edge for every pair of them, in region order.
func (a *Analysis) Graph() Graph {
	g := Graph{Nodes: make([]Node, len(a.Regions))}
	for i, r := range a.Regions {
		g.Nodes[i] = Node{ID: r.ID, Size: r.Size(), Stairs: r.Stairs, Rooms: r.Rooms}
	}
	for _, p := range a.Passages {
		for x := 0; x < len(p.Regions); x++ {
			for y := x + 1; y < len(p.Regions); y++ {
				g.Edges = append(g.Edges, Edge{From: p.Regions[x], To: p.Regions[y], Passage: p.ID})
			}
		}
	}
	return g
}

// Neighbors returns the IDs of regions sharing an edge with id.
func (g Graph) Neighbors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range g.Edges {
		var other string
		switch id {
		case e.From:
			other = e.To
		case e.To:
			other = e.From
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// Connected reports whether every region can reach every other one through
// passages. Plans with fewer than two regions are connected.
func (g Graph) Connected() bool {
	if len(g.Nodes) < 2 {
		return true
	}
	visited := map[string]bool{g.Nodes[0].ID: true}
	pending := []string{g.Nodes[0].ID}
	for len(pending) > 0 {
		curr := pending[0]
		pending = pending[1:]
		for _, n := range g.Neighbors(curr) {
			if !visited[n] {
				visited[n] = true
				pending = append(pending, n)
			}
		}
	}
	return len(visited) == len(g.Nodes)
}
