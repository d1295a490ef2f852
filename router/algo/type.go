package algo

// Precedence is a hard ordering requirement between two stops: stop After
// may not be scheduled before stop Before has completed all of its actions
// (plus the communication delay when the two stops run on different agents).
type Precedence struct {
	Before int
	After  int
}

// Problem is a vehicle routing instance over grouped stops.
//
// Travel is the (n+1)x(n+1) travel time matrix with the dummy depot at
// index 0: row and column 0 are all zeros so that every agent may start
// anywhere for free. Stops are numbered 1..n in their global build order.
// ActionTime[i] is the total time an agent spends acting at stop i
// (ActionTime[0] is the depot and must be 0).
type Problem struct {
	Travel     [][]float64
	ActionTime []float64
	Hard       []Precedence
	NumAgents  int
	// delay added to a hard precedence when its two stops are assigned to
	// different agents
	CommTime float64
}

// StopCount returns the number of real stops (the depot excluded).
func (p *Problem) StopCount() int {
	return len(p.Travel) - 1
}

// Solution is a feasible schedule for a Problem.
type Solution struct {
	// stop sequence per agent, in visit order (stop indices 1..n)
	Routes [][]int
	// arrival time per stop, indexed like Travel (Arrive[0] is unused)
	Arrive []float64
	// completion time of the slowest agent
	Makespan float64
}
