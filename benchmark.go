package main

import (
	"flag"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"math/rand"

	"github.com/ryckardox9/maxfield-app1/router"
	"github.com/sirupsen/logrus"
)

var (
	benchmarkCount   = flag.Int("benchmark.count", 100, "the random plan count for benchmark")
	benchmarkPortals = flag.Int("benchmark.portals", 30, "the portal count per random plan")
	benchmarkLinks   = flag.Int("benchmark.links", 80, "the link count per random plan")
	benchmarkAgents  = flag.Int("benchmark.agents", 4, "the agent count per random plan")
	benchmarkSeed    = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
	benchmarkCPU     = flag.Int("benchmark.cpu", 1, "the cpu count for benchmark")
)

// randomPlan scatters portals on a square kilometer and draws a link list
// where some links depend on an earlier one.
func randomPlan(e *rand.Rand) ([][]float64, []router.Link) {
	n := *benchmarkPortals
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = e.Float64() * 1000
		ys[i] = e.Float64() * 1000
	}
	dists := make([][]float64, n)
	for i := 0; i < n; i++ {
		dists[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			dx, dy := xs[i]-xs[j], ys[i]-ys[j]
			dists[i][j] = math.Sqrt(dx*dx + dy*dy)
		}
	}
	links := make([]router.Link, 0, *benchmarkLinks)
	seen := make(map[[2]int]bool)
	for len(links) < *benchmarkLinks {
		origin := e.Intn(n)
		target := e.Intn(n - 1)
		if target >= origin {
			target++
		}
		if seen[[2]int{origin, target}] {
			continue
		}
		seen[[2]int{origin, target}] = true
		link := router.Link{Origin: origin, Target: target}
		if len(links) > 0 && e.Intn(4) == 0 {
			dep := links[e.Intn(len(links))]
			link.DependLinks = [][2]int{{dep.Origin, dep.Target}}
		}
		links = append(links, link)
	}
	return dists, links
}

func runBenchmark() {
	log.Logger.SetLevel(logrus.WarnLevel)
	// 设置随机种子
	e := rand.New(rand.NewSource(*benchmarkSeed))
	// 随机生成benchmarkCount个调度任务
	type plan struct {
		dists [][]float64
		links []router.Link
	}
	plans := make([]plan, *benchmarkCount)
	for i := range plans {
		dists, links := randomPlan(e)
		plans[i] = plan{dists, links}
	}

	run := func(p plan, seed int64) bool {
		r, err := router.New(router.NewDistanceMatrix(p.dists), p.links, *benchmarkAgents,
			router.WithSeed(seed))
		if err != nil {
			log.Error("benchmark failed, err:", err)
			return false
		}
		assignments, err := r.RouteAgents()
		if err != nil {
			log.Error("benchmark failed, err:", err)
			return false
		}
		return len(assignments) == len(p.links)
	}

	// 开始benchmark
	start := time.Now()
	var wg sync.WaitGroup
	var success atomic.Int32
	if *benchmarkCPU == 1 {
		for i, p := range plans {
			if run(p, int64(i)) {
				success.Add(1)
			}
		}
	} else {
		// 设置cpu数量
		runtime.GOMAXPROCS(*benchmarkCPU)
		wg.Add(*benchmarkCount)
		for i, p := range plans {
			go func(p plan, seed int64) {
				defer wg.Done()
				if run(p, seed) {
					success.Add(1)
				}
			}(p, int64(i))
		}
		wg.Wait()
	}
	timeCost := time.Since(start) * time.Duration(*benchmarkCPU)
	log.Error(
		"benchmark finished", "\n",
		"count:", *benchmarkCount, "\n",
		"time:", timeCost, "\n",
		"avg:", timeCost/time.Duration(*benchmarkCount), "\n",
		"success:", success.Load(), "\n",
	)
}
