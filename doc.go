// Package lvpar is a toolkit for partitioning points into k clusters under
// pairwise must-link and cannot-link constraints (the PAR problem).
//
// 🚀 What is in lvpar?
//
//	Three optimisers behind one fitness function:
//		• Greedy: the COPKM constructive heuristic with restarts
//		• LocalSearch: first-improvement hill climbing over single moves
//		• Genetic: generational GA with tournaments, uniform crossover and elitism
//	plus the plumbing to run them as reproducible batch experiments.
//
// ✨ Why lvpar?
//
//   - Reproducible - every run owns a seeded PCG generator
//   - Small surface - Problem, Partition, Options, Solve
//   - Batch ready - loaders, result tables, metrics, spans and a CLI
//
// Everything is organised under these subpackages:
//
//	par/        - Problem, Cluster, Partition, Greedy, LocalSearch, Genetic, Solve
//	dataset/    - points and constraint-matrix readers, FileLoader, instance Catalog
//	results/    - Record, TableSink, codecs and local/memory blob stores
//	results/minio, results/s3 - object store backends
//	metrics/    - Collector, Noop, Basic, Prometheus
//	experiment/ - Logger, Runner, Plan, Summary
//	config/     - YAML experiment file with validation
//	cmd/par     - the command-line driver
//
// Fitness of a partition:
//
//	fitness = general_deviation + λ · infeasibility
//	λ       = max pairwise distance / number of constraints
//
//	go get github.com/katalvlaran/lvpar/par
package lvpar
