// Package algo implements the route search behind the link scheduler: a
// seeded metaheuristic over partitions of the global stop sequence. Each
// agent's route is kept a subsequence of the global build order, so every
// candidate the search visits can be scheduled by a single forward pass and
// is feasible by construction.
package algo

import (
	"container/heap"
	"fmt"
	"math/rand"
	"time"

	"github.com/samber/lo"
)

// Solver runs a budget-bounded search for a near-minimal-makespan stop
// assignment. The zero budget values fall back to the defaults.
type Solver struct {
	maxSolutions int
	maxRuntime   time.Duration
	seed         int64
}

func NewSolver(maxSolutions int, maxRuntime time.Duration, seed int64) *Solver {
	if maxSolutions <= 0 {
		maxSolutions = DEFAULT_MAX_SOLUTIONS
	}
	if maxRuntime <= 0 {
		maxRuntime = DEFAULT_MAX_RUNTIME
	}
	return &Solver{
		maxSolutions: maxSolutions,
		maxRuntime:   maxRuntime,
		seed:         seed,
	}
}

// workspace holds the per-solve scratch state so repeated candidate
// evaluations do not allocate.
type workspace struct {
	p *Problem
	// prerequisite stops per stop (from Problem.Hard)
	hardBefore [][]int
	arrive     []float64
	complete   []float64
	// per agent: completion time of its last stop and that stop's index
	clock []float64
	last  []int
}

func newWorkspace(p *Problem) *workspace {
	n := p.StopCount()
	w := &workspace{
		p:          p,
		hardBefore: make([][]int, n+1),
		arrive:     make([]float64, n+1),
		complete:   make([]float64, n+1),
		clock:      make([]float64, p.NumAgents),
		last:       make([]int, p.NumAgents),
	}
	for _, h := range p.Hard {
		w.hardBefore[h.After] = append(w.hardBefore[h.After], h.Before)
	}
	return w
}

func (w *workspace) reset() {
	for v := range w.clock {
		w.clock[v] = 0
		w.last[v] = 0
	}
}

// lowerBound returns the earliest feasible arrival of stop i on agent v,
// given the schedule of all stops before i in the build order.
func (w *workspace) lowerBound(i, v int, agentOf []int, prevArrive float64) float64 {
	arrive := w.clock[v] + w.p.Travel[w.last[v]][i]
	// weak chain constraint: never schedule before the previous stop
	if arrive < prevArrive {
		arrive = prevArrive
	}
	for _, pre := range w.hardBefore[i] {
		c := w.complete[pre]
		if agentOf[pre] != v {
			c += w.p.CommTime
		}
		if arrive < c {
			arrive = c
		}
	}
	return arrive
}

// evaluate schedules the stops in build order under the given assignment and
// returns the makespan together with the search cost (span-weighted makespan
// plus total travel).
func (w *workspace) evaluate(agentOf []int) (makespan, cost float64) {
	n := w.p.StopCount()
	w.reset()
	prevArrive := 0.0
	travelCost := 0.0
	for i := 1; i <= n; i++ {
		v := agentOf[i]
		travelCost += w.p.Travel[w.last[v]][i]
		arrive := w.lowerBound(i, v, agentOf, prevArrive)
		w.arrive[i] = arrive
		w.complete[i] = arrive + w.p.ActionTime[i]
		w.clock[v] = w.complete[i]
		w.last[v] = i
		prevArrive = arrive
	}
	makespan = lo.Max(w.clock)
	return makespan, SPAN_COST_COEFFICIENT*makespan + travelCost
}

// cheapestArcAssign assigns each stop in build order to the agent that can
// start it earliest, a path-cheapest-arc style construction.
func (w *workspace) cheapestArcAssign(agentOf []int) {
	n := w.p.StopCount()
	w.reset()
	prevArrive := 0.0
	for i := 1; i <= n; i++ {
		pq := make(PriorityQueue, 0, w.p.NumAgents)
		for v := 0; v < w.p.NumAgents; v++ {
			heap.Push(&pq, &Item{Value: v, Priority: w.lowerBound(i, v, agentOf, prevArrive)})
		}
		pick := heap.Pop(&pq).(*Item)
		v := pick.Value
		agentOf[i] = v
		w.arrive[i] = pick.Priority
		w.complete[i] = pick.Priority + w.p.ActionTime[i]
		w.clock[v] = w.complete[i]
		w.last[v] = i
		prevArrive = pick.Priority
	}
}

// Solve searches for a stop assignment minimizing the schedule makespan,
// bounded by the solution-count and wall-clock budgets. Whichever limit is
// hit first terminates the search and the best candidate found is returned.
func (s *Solver) Solve(p *Problem) (*Solution, error) {
	if err := checkProblem(p); err != nil {
		return nil, err
	}
	n := p.StopCount()
	if n == 0 {
		return &Solution{Routes: make([][]int, p.NumAgents)}, nil
	}
	// a precedence pointing against the build order can never be met by an
	// order-preserving schedule
	for _, h := range p.Hard {
		if h.Before >= h.After {
			return nil, fmt.Errorf("%w: precedence %d->%d against the build order",
				ErrNoSolution, h.Before, h.After)
		}
	}

	w := newWorkspace(p)
	deadline := time.Now().Add(s.maxRuntime)
	rng := rand.New(rand.NewSource(s.seed))

	best := make([]int, n+1)
	cur := make([]int, n+1)

	// seed candidate: round-robin split of the stop sequence
	roundRobinAssign(cur, p.NumAgents)
	_, bestCost := w.evaluate(cur)
	copy(best, cur)
	solutions := 1

	// first solution heuristic
	if solutions < s.maxSolutions {
		w.cheapestArcAssign(cur)
		if _, cost := w.evaluate(cur); cost < bestCost {
			bestCost = cost
			copy(best, cur)
		}
		solutions++
	}

	// local search: random relocate/swap moves, kicked on stall
	copy(cur, best)
	curCost := bestCost
	stall := 0
	for p.NumAgents > 1 && solutions < s.maxSolutions && time.Now().Before(deadline) {
		i := 1 + rng.Intn(n)
		var revert func()
		if rng.Intn(2) == 0 {
			// relocate stop i to another agent
			v := rng.Intn(p.NumAgents)
			if v == cur[i] {
				continue
			}
			old := cur[i]
			cur[i] = v
			revert = func() { cur[i] = old }
		} else {
			// swap the agents of two stops
			j := 1 + rng.Intn(n)
			if cur[i] == cur[j] {
				continue
			}
			vi, vj := cur[i], cur[j]
			cur[i], cur[j] = vj, vi
			revert = func() { cur[i], cur[j] = vi, vj }
		}
		_, cost := w.evaluate(cur)
		solutions++
		if cost < curCost {
			curCost = cost
			stall = 0
			if cost < bestCost {
				bestCost = cost
				copy(best, cur)
			}
			continue
		}
		revert()
		stall++
		if stall >= STALL_LIMIT && solutions < s.maxSolutions {
			// kick the incumbent to escape the local optimum
			for k := 0; k < KICK_SIZE; k++ {
				cur[1+rng.Intn(n)] = rng.Intn(p.NumAgents)
			}
			_, curCost = w.evaluate(cur)
			solutions++
			if curCost < bestCost {
				bestCost = curCost
				copy(best, cur)
			}
			stall = 0
		}
	}

	makespan, _ := w.evaluate(best)
	sol := &Solution{
		Routes:   make([][]int, p.NumAgents),
		Arrive:   make([]float64, n+1),
		Makespan: makespan,
	}
	copy(sol.Arrive, w.arrive)
	for i := 1; i <= n; i++ {
		sol.Routes[best[i]] = append(sol.Routes[best[i]], i)
	}
	return sol, nil
}
