package algo

import (
	"fmt"
)

// roundRobinAssign splits the stop sequence across agents in build order.
func roundRobinAssign(agentOf []int, numAgents int) {
	for i := 1; i < len(agentOf); i++ {
		agentOf[i] = (i - 1) % numAgents
	}
}

func checkProblem(p *Problem) error {
	if p.NumAgents < 1 {
		return fmt.Errorf("%w: %d agents", ErrBadProblem, p.NumAgents)
	}
	if len(p.Travel) == 0 {
		return fmt.Errorf("%w: empty travel matrix", ErrBadProblem)
	}
	for i, row := range p.Travel {
		if len(row) != len(p.Travel) {
			return fmt.Errorf("%w: travel matrix row %d has %d entries, want %d",
				ErrBadProblem, i, len(row), len(p.Travel))
		}
	}
	if len(p.ActionTime) != len(p.Travel) {
		return fmt.Errorf("%w: %d action times for %d stops",
			ErrBadProblem, len(p.ActionTime), len(p.Travel))
	}
	if p.ActionTime[0] != 0 {
		return fmt.Errorf("%w: depot has nonzero action time", ErrBadProblem)
	}
	n := p.StopCount()
	for _, h := range p.Hard {
		if h.Before < 1 || h.Before > n || h.After < 1 || h.After > n {
			return fmt.Errorf("%w: precedence %d->%d out of range", ErrBadProblem, h.Before, h.After)
		}
	}
	return nil
}
