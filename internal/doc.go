// Package internal wires the algebra packages into one engine.
//
// The engine loads the rule pools, applies the configuration (pool
// overrides from a rules file, disabled pools, iteration limits) and keeps
// a bounded cache of parsed expressions in front of them.
//
// Key components:
//
// Engine: owns the searcher, the solver and the assessor built on the same
// rule set. Simplify and Options work on expressions, Solve on equations,
// Assess on a pair of learner inputs and Session starts an interactive
// equation session. Run dispatches a single problem for batch processing.
//
// Cache: an LRU with a time to live that maps source text to parsed trees.
// Trees are cloned on the way in and out.
//
// Usage:
//
//	engine, err := internal.NewEngine(logger, types.DefaultConfig())
//	if err != nil {
//	    // handle error
//	}
//
//	eq, err := engine.Solve("2x - 3 = 0", "")
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(eq.Result()) // x = 3/2
//
// This package is intended for internal use within mathsteps and should
// not be imported by external packages.
package internal
