package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/ryckardox9/maxfield-app1/router"
	"github.com/ryckardox9/maxfield-app1/router/algo"
	"github.com/sirupsen/logrus"
)

var (
	// 配置信息
	mongoURI     = flag.String("mongo_uri", "", "mongo db uri")
	planPathStr  = flag.String("plan", "", "plan file or collection [format: {fspath} or {db}.{col}]")
	agents       = flag.Int("agents", 0, "number of agents (0 means take the count from the plan)")
	maxSolutions = flag.Int("max-solutions", algo.DEFAULT_MAX_SOLUTIONS, "solver budget: candidate solutions to evaluate")
	maxRuntime   = flag.Duration("max-runtime", algo.DEFAULT_MAX_RUNTIME, "solver budget: wall clock limit")
	seed         = flag.Int64("seed", 0, "solver random seed")
	noSolver     = flag.Bool("no-solver", false, "skip the optimizing solver and round robin the links")
	outputPath   = flag.String("output", "", "assignment output file (empty means stdout)")
	logLevel     = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	// 性能测试
	benchmark = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr = flag.String("pprof", "", "pprof listening address (empty means disable)")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}
)

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	flag.Parse()
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}

	if *pprofAddr != "" {
		// 启动pprof
		startHTTPDebugger(*pprofAddr)
	}

	if *benchmark {
		// 性能测试
		runBenchmark()
		return
	}

	planPath, err := NewPath(*planPathStr)
	if err != nil {
		logrus.Fatalf("invalid plan path: %s", err)
	}
	if planPath == nil {
		logrus.Fatal("plan path is required")
	}
	plan, err := LoadPlan(*mongoURI, planPath)
	if err != nil {
		log.Fatalf("failed to load plan: %v", err)
	}

	numAgents := *agents
	if numAgents == 0 {
		numAgents = plan.Agents
	}
	if numAgents == 0 {
		numAgents = 1
	}

	opts := []router.Option{
		router.WithBudget(*maxSolutions, *maxRuntime),
		router.WithSeed(*seed),
	}
	if *noSolver {
		opts = append(opts, router.WithoutSolver())
	}
	r, err := router.New(router.NewDistanceMatrix(plan.Dists), plan.Links, numAgents, opts...)
	if err != nil {
		log.Fatalf("bad plan: %v", err)
	}

	start := time.Now()
	assignments, err := r.RouteAgents()
	if err != nil {
		log.Fatalf("failed to schedule: %v", err)
	}
	makespan := 0.0
	for _, a := range assignments {
		if a.Depart > makespan {
			makespan = a.Depart
		}
	}
	log.Infof("scheduled %d links for %d agents in %v, makespan %.0fs",
		len(assignments), numAgents, time.Since(start), makespan)

	data, err := json.MarshalIndent(assignments, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode assignments: %v", err)
	}
	data = append(data, '\n')
	if *outputPath == "" {
		os.Stdout.Write(data)
	} else if err := os.WriteFile(*outputPath, data, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *outputPath, err)
	}
}
