// Package statsview is an optional package that is only functional when
// built with the statsview build tag:
//
//	go build -tags statsview ./runner
//
// It runs a local HTTP server with live runtime statistics (heap, GC,
// goroutines) which is useful when profiling long emulation runs. Graphs
// are at
//
//	localhost:12600/debug/statsview
//
// and the standard pprof endpoints at
//
//	localhost:12600/debug/pprof/
//
// Without the tag Launch does nothing and Available returns false.
package statsview
