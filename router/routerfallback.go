package router

import (
	"github.com/ryckardox9/maxfield-app1/router/algo"
	"github.com/samber/lo"
)

// fallbackStrategy is the degraded scheduling path: a deterministic
// round-robin split of the build order driven by a fixed per-action clock.
// It ignores travel entirely, trading schedule realism for a result that is
// always available and always terminates in linear time.
type fallbackStrategy struct {
	r *Router
}

func (s *fallbackStrategy) Name() string { return "fallback" }

func (s *fallbackStrategy) RouteAgents() ([]Assignment, error) {
	return lo.Map(s.r.links, func(link Link, i int) Assignment {
		arrive := float64(i) * algo.LINK_TIME
		return Assignment{
			Agent:    i % s.r.numAgents,
			Location: link.Origin,
			Link:     link.Target,
			Arrive:   arrive,
			Depart:   arrive + algo.LINK_TIME,
		}
	}), nil
}
