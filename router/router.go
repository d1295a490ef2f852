// Package router schedules multi-agent link formation plans: given the
// portal distance matrix, the link build order with its dependency relation
// and an agent count, it assigns each link to an agent and stamps arrival
// and departure times that respect travel and precedence.
package router

import (
	"errors"
	"fmt"
	"time"

	"github.com/ryckardox9/maxfield-app1/router/algo"
)

var (
	// error: malformed inputs, detected before any solver work
	ErrInvalidInput = errors.New("invalid scheduling input")
	// error: no schedule can satisfy the dependency relation
	ErrInfeasibleSchedule = errors.New("infeasible schedule")
)

// Router is the scheduling entry point. It is read-only after construction
// apart from the distance matrix, which may be updated between RouteAgents
// calls; a Router must not be shared by concurrent RouteAgents calls.
type Router struct {
	dists     *DistanceMatrix
	links     []Link
	numAgents int

	maxSolutions int
	maxRuntime   time.Duration
	seed         int64

	strategy SchedulingStrategy
}

type Option func(*Router)

// WithBudget bounds the optimizer search by a candidate-solution count and a
// wall-clock limit; whichever is hit first terminates the search.
func WithBudget(maxSolutions int, maxRuntime time.Duration) Option {
	return func(r *Router) {
		r.maxSolutions = maxSolutions
		r.maxRuntime = maxRuntime
	}
}

// WithSeed fixes the optimizer search seed. Equal inputs and seed give
// byte-identical schedules.
func WithSeed(seed int64) Option {
	return func(r *Router) {
		r.seed = seed
	}
}

// WithoutSolver forces the degraded round-robin strategy, for deployments
// that disable the optimizer.
func WithoutSolver() Option {
	return func(r *Router) {
		r.strategy = &fallbackStrategy{r}
	}
}

// New validates the inputs eagerly and selects the scheduling strategy.
func New(dists *DistanceMatrix, links []Link, numAgents int, opts ...Option) (*Router, error) {
	r := &Router{
		dists:        dists,
		links:        links,
		numAgents:    numAgents,
		maxSolutions: algo.DEFAULT_MAX_SOLUTIONS,
		maxRuntime:   algo.DEFAULT_MAX_RUNTIME,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.strategy == nil {
		r.strategy = &optimizedStrategy{r}
	} else {
		log.Warnf("optimizer unavailable, scheduling with the degraded %s strategy", r.strategy.Name())
	}
	if err := r.validateInput(); err != nil {
		return nil, err
	}
	return r, nil
}

// Strategy returns the name of the selected scheduling strategy, so callers
// can tell optimized schedules from degraded ones.
func (r *Router) Strategy() string {
	return r.strategy.Name()
}

// RouteAgents computes the complete schedule: exactly one assignment per
// link, sorted by arrival time. It fails with ErrInfeasibleSchedule when the
// dependency relation cannot be satisfied and never returns a partial
// schedule.
func (r *Router) RouteAgents() (assignments []Assignment, err error) {
	// panic recover
	defer func() {
		if e := recover(); e != nil {
			assignments = nil
			err = fmt.Errorf("panic: RouteAgents %v with %d links, %d agents",
				e, len(r.links), r.numAgents)
			log.Errorln(err)
		}
	}()

	// the fast paths trust the build order to respect the dependency
	// relation, so check it up front instead of taking it on faith
	if err := r.validateDependencies(); err != nil {
		return nil, err
	}
	return r.strategy.RouteAgents()
}
