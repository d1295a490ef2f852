package router

import (
	"fmt"
	"sort"
	"time"

	"github.com/ryckardox9/maxfield-app1/router/algo"
)

// optimizedStrategy schedules the links as a vehicle routing problem over
// grouped stops, searched by the algo solver.
type optimizedStrategy struct {
	r *Router
}

func (s *optimizedStrategy) Name() string { return "optimized" }

func (s *optimizedStrategy) RouteAgents() ([]Assignment, error) {
	r := s.r
	if len(r.links) == 0 {
		return []Assignment{}, nil
	}
	dists := r.dists.snapshot()

	// single agent: the build order is already optimal, walk it directly
	if r.numAgents == 1 {
		return serialAssignments(r.links, dists), nil
	}

	stops := groupStops(r.links)
	p := buildRoutingProblem(stops, r.links, dists, r.numAgents)
	log.Debugf("grouped %d links into %d stops with %d precedence constraints",
		len(r.links), len(stops), len(p.Hard))

	start := time.Now()
	sol, err := algo.NewSolver(r.maxSolutions, r.maxRuntime, r.seed).Solve(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfeasibleSchedule, err)
	}
	log.Debugf("routed %d agents in %v, makespan %.0fs",
		r.numAgents, time.Since(start), sol.Makespan)
	return extractAssignments(r.links, stops, sol), nil
}

// serialAssignments chains the links in order on one agent: each arrival is
// the previous departure plus the walk between origins.
func serialAssignments(links []Link, dists [][]float64) []Assignment {
	assignments := make([]Assignment, 0, len(links))
	arrive, depart := 0.0, 0.0
	for i, link := range links {
		if i > 0 {
			arrive = depart + travelTime(dists, links[i-1].Origin, link.Origin)
		}
		depart = arrive + algo.LINK_TIME
		assignments = append(assignments, Assignment{
			Agent:    0,
			Location: link.Origin,
			Link:     link.Target,
			Arrive:   arrive,
			Depart:   depart,
		})
	}
	return assignments
}

// stop is a maximal run of consecutive same-origin links: an agent visiting
// the origin once performs the whole run back to back.
type stop struct {
	node  int // origin portal
	first int // index of the first link of the run
	count int
}

// groupStops run-length encodes the ordered links by origin.
func groupStops(links []Link) []stop {
	stops := make([]stop, 0, len(links))
	for i, link := range links {
		if len(stops) > 0 && stops[len(stops)-1].node == link.Origin {
			stops[len(stops)-1].count++
			continue
		}
		stops = append(stops, stop{node: link.Origin, first: i, count: 1})
	}
	return stops
}

// buildRoutingProblem assembles the stop travel matrix with the dummy depot
// at index 0, the per-stop action times, and the stop-level precedence
// relation. The relation covers every stop pair, not only adjacent ones, so
// a dependency skipping over unrelated stops is still enforced.
func buildRoutingProblem(stops []stop, links []Link, dists [][]float64, numAgents int) *algo.Problem {
	n := len(stops)
	p := &algo.Problem{
		Travel:     make([][]float64, n+1),
		ActionTime: make([]float64, n+1),
		NumAgents:  numAgents,
		CommTime:   algo.COMM_TIME,
	}
	p.Travel[0] = make([]float64, n+1)
	for i, si := range stops {
		row := make([]float64, n+1)
		for j, sj := range stops {
			row[j+1] = travelTime(dists, si.node, sj.node)
		}
		p.Travel[i+1] = row
		p.ActionTime[i+1] = float64(si.count) * algo.LINK_TIME
	}
	for j := 1; j < n; j++ {
		deps := stopPrereqs(links, stops[j])
		for i := 0; i < j; i++ {
			if stopFeeds(links, stops[i], deps) {
				p.Hard = append(p.Hard, algo.Precedence{Before: i + 1, After: j + 1})
			}
		}
	}
	return p
}

type prereqSet struct {
	links map[[2]int]bool
	nodes map[int]bool
}

// stopPrereqs collects the prerequisite links and portals of all links in a
// stop.
func stopPrereqs(links []Link, s stop) prereqSet {
	deps := prereqSet{
		links: make(map[[2]int]bool),
		nodes: make(map[int]bool),
	}
	for k := s.first; k < s.first+s.count; k++ {
		for _, d := range links[k].DependLinks {
			deps.links[d] = true
		}
		for _, node := range links[k].DependNodes {
			deps.nodes[node] = true
		}
	}
	return deps
}

// stopFeeds reports whether any link of the stop is among the given
// prerequisites, directly or through its origin portal.
func stopFeeds(links []Link, s stop, deps prereqSet) bool {
	if deps.nodes[s.node] {
		return true
	}
	for k := s.first; k < s.first+s.count; k++ {
		if deps.links[[2]int{links[k].Origin, links[k].Target}] {
			return true
		}
	}
	return false
}

// extractAssignments expands each routed stop back into one assignment per
// link; links within a stop run back to back at the stop's arrival time.
func extractAssignments(links []Link, stops []stop, sol *algo.Solution) []Assignment {
	assignments := make([]Assignment, 0, len(links))
	for agent, route := range sol.Routes {
		for _, si := range route {
			st := stops[si-1]
			arrive := sol.Arrive[si]
			for k := st.first; k < st.first+st.count; k++ {
				depart := arrive + algo.LINK_TIME
				assignments = append(assignments, Assignment{
					Agent:    agent,
					Location: links[k].Origin,
					Link:     links[k].Target,
					Arrive:   arrive,
					Depart:   depart,
				})
				arrive = depart
			}
		}
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		return assignments[i].Arrive < assignments[j].Arrive
	})
	return assignments
}
