package router

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

func (r *Router) validateInput() error {
	if r.numAgents < 1 {
		return fmt.Errorf("%w: %d agents", ErrInvalidInput, r.numAgents)
	}
	if r.maxSolutions < 1 || r.maxRuntime <= 0 {
		return fmt.Errorf("%w: budget %d solutions / %v", ErrInvalidInput, r.maxSolutions, r.maxRuntime)
	}
	if r.dists == nil || r.dists.Size() == 0 {
		return fmt.Errorf("%w: empty distance matrix", ErrInvalidInput)
	}
	n := r.dists.Size()
	for i, row := range r.dists.dists {
		if len(row) != n {
			return fmt.Errorf("%w: distance matrix row %d has %d entries, want %d",
				ErrInvalidInput, i, len(row), n)
		}
		for j, d := range row {
			if d < 0 {
				return fmt.Errorf("%w: negative distance %v between portals %d and %d",
					ErrInvalidInput, d, i, j)
			}
		}
		if row[i] != 0 {
			return fmt.Errorf("%w: nonzero self distance of portal %d", ErrInvalidInput, i)
		}
	}
	for i, link := range r.links {
		if err := r.dists.checkIndex(link.Origin, link.Target); err != nil {
			return fmt.Errorf("%w: link %d: %v", ErrInvalidInput, i, err)
		}
		for _, node := range link.DependNodes {
			if node < 0 || node >= n {
				return fmt.Errorf("%w: link %d depends on portal %d outside the %dx%d matrix",
					ErrInvalidInput, i, node, n, n)
			}
		}
	}
	return nil
}

// validateDependencies checks the upstream invariant that the build order
// already respects the dependency relation: the relation must be acyclic and
// every prerequisite must come earlier in the order. A portal prerequisite
// stands for all links thrown from that portal.
func (r *Router) validateDependencies() error {
	index := make(map[[2]int]int, len(r.links))
	byOrigin := make(map[int][]int)
	for i, link := range r.links {
		index[[2]int{link.Origin, link.Target}] = i
		byOrigin[link.Origin] = append(byOrigin[link.Origin], i)
	}

	g := simple.NewDirectedGraph()
	for i := range r.links {
		g.AddNode(simple.Node(i))
	}
	setEdge := func(from, to int) error {
		if from == to {
			return fmt.Errorf("%w: link %d depends on itself", ErrInfeasibleSchedule, to)
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
		return nil
	}
	for i, link := range r.links {
		for _, d := range link.DependLinks {
			j, ok := index[d]
			if !ok {
				return fmt.Errorf("%w: link %d depends on unknown link %d->%d",
					ErrInvalidInput, i, d[0], d[1])
			}
			if err := setEdge(j, i); err != nil {
				return err
			}
		}
		for _, node := range link.DependNodes {
			for _, j := range byOrigin[node] {
				if j == i {
					// a link's own origin does not gate itself
					continue
				}
				if err := setEdge(j, i); err != nil {
					return err
				}
			}
		}
	}

	if _, err := topo.Sort(g); err != nil {
		return fmt.Errorf("%w: dependency cycle: %v", ErrInfeasibleSchedule, err)
	}
	// the build order must itself be a topological order of the relation
	edges := g.Edges()
	for edges.Next() {
		e := edges.Edge()
		if e.From().ID() > e.To().ID() {
			return fmt.Errorf("%w: link %d depends on later link %d",
				ErrInfeasibleSchedule, e.To().ID(), e.From().ID())
		}
	}
	return nil
}
