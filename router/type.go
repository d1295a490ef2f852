package router

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/ryckardox9/maxfield-app1/router/algo"
)

// Link is one "create a link from Origin to Target" action. Origin and
// Target are portal indices into the distance matrix. The slice order of the
// links handed to the Router is the global build order produced upstream.
type Link struct {
	Origin int `json:"origin" bson:"origin"`
	Target int `json:"target" bson:"target"`
	// links that must be completed before this one may be thrown
	DependLinks [][2]int `json:"depend_links,omitempty" bson:"depend_links,omitempty"`
	// portals that must be fully linked before this one may be thrown
	DependNodes []int `json:"depend_nodes,omitempty" bson:"depend_nodes,omitempty"`
}

// Assignment is one scheduled action: the given agent stands at Location
// from Arrive to Depart and throws the link to Link.
type Assignment struct {
	Agent    int     `json:"agent"`
	Location int     `json:"location"`
	Link     int     `json:"link"`
	Arrive   float64 `json:"arrive"`
	Depart   float64 `json:"depart"`
}

// SchedulingStrategy produces the complete assignment sequence for a
// Router. The strategy is selected once, at Router construction.
type SchedulingStrategy interface {
	RouteAgents() ([]Assignment, error)
	Name() string
}

// DistanceMatrix holds pairwise portal distances (meters). The matrix may be
// updated between solves; reads during a solve take a snapshot under the
// read lock.
type DistanceMatrix struct {
	dists [][]float64

	mu *xsync.RBMutex
}

func NewDistanceMatrix(dists [][]float64) *DistanceMatrix {
	return &DistanceMatrix{dists: dists, mu: xsync.NewRBMutex()}
}

// Size returns the number of portals.
func (m *DistanceMatrix) Size() int {
	return len(m.dists)
}

func (m *DistanceMatrix) GetDistance(from, to int) (float64, error) {
	tk := m.mu.RLock()
	defer m.mu.RUnlock(tk)
	if err := m.checkIndex(from, to); err != nil {
		return 0, err
	}
	return m.dists[from][to], nil
}

func (m *DistanceMatrix) SetDistance(from, to int, dist float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkIndex(from, to); err != nil {
		return err
	}
	if dist < 0 {
		return fmt.Errorf("negative distance %v", dist)
	}
	if from == to && dist != 0 {
		return fmt.Errorf("self distance of portal %d must be 0", from)
	}
	m.dists[from][to] = dist
	return nil
}

func (m *DistanceMatrix) checkIndex(from, to int) error {
	if from < 0 || from >= len(m.dists) || to < 0 || to >= len(m.dists) {
		return fmt.Errorf("portal pair (%d,%d) outside the %dx%d matrix",
			from, to, len(m.dists), len(m.dists))
	}
	return nil
}

// snapshot copies the distances under the read lock so that a solve sees a
// consistent matrix while SetDistance calls keep going.
func (m *DistanceMatrix) snapshot() [][]float64 {
	tk := m.mu.RLock()
	defer m.mu.RUnlock(tk)
	dists := make([][]float64, len(m.dists))
	for i, row := range m.dists {
		dists[i] = append([]float64(nil), row...)
	}
	return dists
}

// travel time (s) between two portals at walking speed
func travelTime(dists [][]float64, from, to int) float64 {
	return dists[from][to] / algo.WALK_SPEED
}
