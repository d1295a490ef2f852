package algo_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/ryckardox9/maxfield-app1/router/algo"
	"github.com/stretchr/testify/assert"
)

// buildProblem wraps a stop-to-stop travel time matrix with the dummy depot
// and per-stop action times.
func buildProblem(travel [][]float64, counts []int, hard []algo.Precedence, agents int) *algo.Problem {
	n := len(travel)
	p := &algo.Problem{
		Travel:     make([][]float64, n+1),
		ActionTime: make([]float64, n+1),
		Hard:       hard,
		NumAgents:  agents,
		CommTime:   algo.COMM_TIME,
	}
	p.Travel[0] = make([]float64, n+1)
	for i := 0; i < n; i++ {
		row := make([]float64, n+1)
		copy(row[1:], travel[i])
		p.Travel[i+1] = row
		p.ActionTime[i+1] = float64(counts[i]) * algo.LINK_TIME
	}
	return p
}

// agentOf recovers the stop assignment from the solution routes.
func agentOf(p *algo.Problem, sol *algo.Solution) map[int]int {
	m := make(map[int]int)
	for v, route := range sol.Routes {
		for _, i := range route {
			m[i] = v
		}
	}
	return m
}

// checkSolution asserts coverage, per-agent timeline feasibility and hard
// precedence respect.
func checkSolution(t *testing.T, p *algo.Problem, sol *algo.Solution) {
	t.Helper()
	assigned := agentOf(p, sol)
	assert.Len(t, assigned, p.StopCount())

	for _, route := range sol.Routes {
		clock := 0.0
		last := 0
		for _, i := range route {
			assert.GreaterOrEqual(t, sol.Arrive[i], clock+p.Travel[last][i]-1e-9)
			clock = sol.Arrive[i] + p.ActionTime[i]
			last = i
		}
		assert.LessOrEqual(t, clock, sol.Makespan+1e-9)
	}

	// scheduled times never decrease along the build order
	for i := 2; i <= p.StopCount(); i++ {
		assert.GreaterOrEqual(t, sol.Arrive[i], sol.Arrive[i-1]-1e-9)
	}

	for _, h := range p.Hard {
		complete := sol.Arrive[h.Before] + p.ActionTime[h.Before]
		if assigned[h.Before] != assigned[h.After] {
			complete += p.CommTime
		}
		assert.GreaterOrEqual(t, sol.Arrive[h.After], complete-1e-9)
	}
}

func TestSolverSerialOrder(t *testing.T) {
	travel := [][]float64{
		{0, 10, 12},
		{10, 0, 5},
		{12, 5, 0},
	}
	p := buildProblem(travel, []int{1, 2, 1}, nil, 1)
	sol, err := algo.NewSolver(10, time.Second, 0).Solve(p)
	assert.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3}}, sol.Routes)

	// depot travel is free, then the chain follows travel plus action time
	assert.Equal(t, 0.0, sol.Arrive[1])
	assert.Equal(t, algo.LINK_TIME+10, sol.Arrive[2])
	assert.Equal(t, sol.Arrive[2]+2*algo.LINK_TIME+5, sol.Arrive[3])
	assert.Equal(t, sol.Arrive[3]+algo.LINK_TIME, sol.Makespan)
	checkSolution(t, p, sol)
}

func TestSolverCoverage(t *testing.T) {
	travel := [][]float64{
		{0, 40, 60, 80},
		{40, 0, 40, 60},
		{60, 40, 0, 40},
		{80, 60, 40, 0},
	}
	p := buildProblem(travel, []int{2, 1, 3, 1}, nil, 2)
	sol, err := algo.NewSolver(100, time.Second, 0).Solve(p)
	assert.NoError(t, err)
	checkSolution(t, p, sol)
}

func TestSolverParallelBeatsSerial(t *testing.T) {
	// two far-apart clusters with no dependencies: two agents should finish
	// no later than one
	travel := [][]float64{
		{0, 10, 500, 510},
		{10, 0, 510, 500},
		{500, 510, 0, 10},
		{510, 500, 10, 0},
	}
	counts := []int{1, 1, 1, 1}
	serial, err := algo.NewSolver(100, time.Second, 0).Solve(buildProblem(travel, counts, nil, 1))
	assert.NoError(t, err)
	parallel, err := algo.NewSolver(100, time.Second, 0).Solve(buildProblem(travel, counts, nil, 2))
	assert.NoError(t, err)
	assert.LessOrEqual(t, parallel.Makespan, serial.Makespan)
}

func TestSolverNonAdjacentPrecedence(t *testing.T) {
	travel := [][]float64{
		{0, 30, 30, 30},
		{30, 0, 30, 30},
		{30, 30, 0, 30},
		{30, 30, 30, 0},
	}
	// stop 4 depends on stop 1, skipping two unrelated stops in between
	hard := []algo.Precedence{{Before: 1, After: 4}}
	p := buildProblem(travel, []int{1, 1, 1, 1}, hard, 3)
	sol, err := algo.NewSolver(200, time.Second, 0).Solve(p)
	assert.NoError(t, err)
	checkSolution(t, p, sol)
}

func TestSolverBackwardPrecedence(t *testing.T) {
	travel := [][]float64{
		{0, 10},
		{10, 0},
	}
	hard := []algo.Precedence{{Before: 2, After: 1}}
	p := buildProblem(travel, []int{1, 1}, hard, 2)
	_, err := algo.NewSolver(10, time.Second, 0).Solve(p)
	assert.ErrorIs(t, err, algo.ErrNoSolution)
}

func TestSolverBadProblem(t *testing.T) {
	p := buildProblem([][]float64{{0, 10}, {10, 0}}, []int{1, 1}, nil, 0)
	_, err := algo.NewSolver(10, time.Second, 0).Solve(p)
	assert.ErrorIs(t, err, algo.ErrBadProblem)

	p = buildProblem([][]float64{{0, 10}, {10, 0}}, []int{1, 1}, nil, 2)
	p.Travel[1] = p.Travel[1][:2]
	_, err = algo.NewSolver(10, time.Second, 0).Solve(p)
	assert.ErrorIs(t, err, algo.ErrBadProblem)

	p = buildProblem([][]float64{{0, 10}, {10, 0}}, []int{1, 1}, []algo.Precedence{{Before: 0, After: 5}}, 2)
	_, err = algo.NewSolver(10, time.Second, 0).Solve(p)
	assert.ErrorIs(t, err, algo.ErrBadProblem)
}

func TestSolverEmpty(t *testing.T) {
	p := &algo.Problem{
		Travel:     [][]float64{{0}},
		ActionTime: []float64{0},
		NumAgents:  2,
	}
	sol, err := algo.NewSolver(10, time.Second, 0).Solve(p)
	assert.NoError(t, err)
	assert.Len(t, sol.Routes, 2)
	assert.Empty(t, sol.Routes[0])
	assert.Empty(t, sol.Routes[1])
}

func TestSolverDeterministic(t *testing.T) {
	e := rand.New(rand.NewSource(7))
	n := 12
	travel := make([][]float64, n)
	counts := make([]int, n)
	for i := range travel {
		travel[i] = make([]float64, n)
		counts[i] = 1 + e.Intn(3)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := 10 + 100*e.Float64()
			travel[i][j] = d
			travel[j][i] = d
		}
	}
	p := buildProblem(travel, counts, []algo.Precedence{{Before: 2, After: 9}}, 3)

	first, err := algo.NewSolver(500, time.Second, 42).Solve(p)
	assert.NoError(t, err)
	second, err := algo.NewSolver(500, time.Second, 42).Solve(p)
	assert.NoError(t, err)
	assert.Equal(t, first.Routes, second.Routes)
	assert.Equal(t, first.Arrive, second.Arrive)
	assert.Equal(t, first.Makespan, second.Makespan)
}

func TestSolverTimeBudget(t *testing.T) {
	e := rand.New(rand.NewSource(1))
	n := 60
	travel := make([][]float64, n)
	counts := make([]int, n)
	for i := range travel {
		travel[i] = make([]float64, n)
		counts[i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := 10 + 500*e.Float64()
			travel[i][j] = d
			travel[j][i] = d
		}
	}
	p := buildProblem(travel, counts, nil, 4)

	start := time.Now()
	sol, err := algo.NewSolver(1<<30, 100*time.Millisecond, 0).Solve(p)
	elapsed := time.Since(start)
	assert.NoError(t, err)
	checkSolution(t, p, sol)
	assert.Less(t, elapsed, time.Second)
}
