package grid

import "fmt"

// GridBuilderOption is a functional option used to configure a Grid during construction.
type GridBuilderOption func(*grid)

// WithCells sets the initial cell state. The slice is copied into the board's
// current buffer. Panics if the length is not width×height - a mismatched
// state buffer would desynchronize index arithmetic between producers and
// consumers, so it is rejected at the boundary rather than tolerated.
//
// Parameters:
//   - cells: row-major initial state, length must equal width×height
//
// Returns:
//   - GridBuilderOption: a function that sets the initial state for this Grid
func WithCells(cells []float32) GridBuilderOption {
	return func(g *grid) {
		if len(cells) != g.width*g.height {
			panic(fmt.Sprintf("grid: initial state length %d does not match %dx%d board", len(cells), g.width, g.height))
		}
		copy(g.cur, cells)
	}
}

// WithStepWorkers sets the number of worker goroutines used by StepParallel.
// Defaults to runtime.NumCPU()-1. Values below 1 are clamped to 1.
//
// Parameters:
//   - n: the number of step workers (minimum 1)
//
// Returns:
//   - GridBuilderOption: a function that sets the worker count for this Grid
func WithStepWorkers(n int) GridBuilderOption {
	return func(g *grid) {
		if n < 1 {
			n = 1
		}
		g.stepWorkers = n
	}
}
