package algo

import (
	"errors"
	"time"
)

const (
	// agent walking speed (m/s)
	WALK_SPEED = 1.0

	// seconds required to create a single link
	LINK_TIME = 30.0
	// seconds required to communicate completed links to another agent
	COMM_TIME = 30.0

	// weight of the makespan term in the search objective, relative to the
	// summed per-arc travel cost
	SPAN_COST_COEFFICIENT = 100.0

	// default search budget
	DEFAULT_MAX_SOLUTIONS = 100
	DEFAULT_MAX_RUNTIME   = 60 * time.Second

	// candidate evaluations without improvement before the search kicks the
	// incumbent
	STALL_LIMIT = 50
	// stops relocated by one kick
	KICK_SIZE = 3
)

var (
	// error: search exhausted its budget without any feasible candidate
	ErrNoSolution = errors.New("no feasible route assignment found")
	// error: malformed routing problem
	ErrBadProblem = errors.New("malformed routing problem")
)
