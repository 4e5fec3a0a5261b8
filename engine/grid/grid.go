package grid

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// grid is the implementation of the Grid interface.
type grid struct {
	mu *sync.Mutex

	width  int
	height int

	// cur holds the current generation, nxt is the scratch buffer the next
	// generation is written into. The two are swapped after every step and
	// are never the same allocation.
	cur []float32
	nxt []float32

	generation uint64

	// stepPool manages a bounded set of reusable goroutines for StepParallel.
	// Workers are shared across steps so repeated stepping does not pay
	// goroutine spawn overhead.
	stepPool    worker.DynamicWorkerPool
	stepWorkers int
}

// Grid is a toroidal Game of Life board. Cell state is stored row-major as
// float32 values (0.0 dead, 1.0 alive) so the same data can be uploaded
// directly as a GPU storage buffer where aliveness doubles as a quad scale
// factor. The board keeps two internal state buffers and advances by writing
// the next generation into the inactive buffer, then swapping - the input
// buffer is never mutated during a step.
type Grid interface {
	// Width retrieves the board width in cells.
	//
	// Returns:
	//   - int: the width
	Width() int

	// Height retrieves the board height in cells.
	//
	// Returns:
	//   - int: the height
	Height() int

	// Cells retrieves the current generation's state buffer, row-major,
	// length Width()×Height(). The returned slice is the live internal
	// buffer - callers must not retain it across Step calls.
	//
	// Returns:
	//   - []float32: the current cell state
	Cells() []float32

	// CellIndex maps 2D coordinates to a linear row-major offset, wrapping
	// both coordinates toroidally first. Coordinate -1 maps to width-1 (or
	// height-1), and coordinates beyond the far edge wrap to the near edge.
	// Pure and total for all integer inputs.
	//
	// Parameters:
	//   - x: the column coordinate, any integer
	//   - y: the row coordinate, any integer
	//
	// Returns:
	//   - int: the linear offset in [0, Width()×Height())
	CellIndex(x, y int) int

	// Cell retrieves the current state of the cell at (x, y), with toroidal
	// coordinate wrapping.
	//
	// Parameters:
	//   - x: the column coordinate
	//   - y: the row coordinate
	//
	// Returns:
	//   - float32: 1.0 if the cell is alive, 0.0 if dead
	Cell(x, y int) float32

	// SetCell sets the cell at (x, y) alive or dead, with toroidal
	// coordinate wrapping.
	//
	// Parameters:
	//   - x: the column coordinate
	//   - y: the row coordinate
	//   - alive: the new state
	SetCell(x, y int, alive bool)

	// SetCells marks every listed (x, y) coordinate pair alive. Coordinates
	// wrap toroidally. Used to place seed patterns.
	//
	// Parameters:
	//   - coords: the coordinate pairs to set alive
	SetCells(coords ...[2]int)

	// SeedRandom clears the board and sets each cell alive with the given
	// probability using the provided random source. Deterministic for a
	// fixed rng seed.
	//
	// Parameters:
	//   - rng: the random source to draw from
	//   - density: the per-cell alive probability in [0, 1]
	SeedRandom(rng *rand.Rand, density float64)

	// Clear sets every cell dead and resets the generation counter.
	Clear()

	// Population counts the live cells in the current generation.
	//
	// Returns:
	//   - int: the number of live cells
	Population() int

	// Generation retrieves the number of steps taken since the last Clear
	// or SeedRandom.
	//
	// Returns:
	//   - uint64: the generation count
	Generation() uint64

	// Step advances the board one generation sequentially. The reference
	// implementation of the update rule: a cell with 2 live neighbors keeps
	// its state, with 3 it is alive, otherwise it is dead. Neighbors are
	// counted over the toroidal Moore neighborhood.
	Step()

	// StepParallel advances the board one generation using the worker pool,
	// splitting the board into row bands. Produces byte-identical results
	// to Step - both read only the previous generation and write disjoint
	// regions of the scratch buffer.
	StepParallel()

	// Snapshot copies the current generation's state into a new slice that
	// is safe to retain across steps.
	//
	// Returns:
	//   - []float32: a copy of the current cell state
	Snapshot() []float32
}

var _ Grid = &grid{}

// NewGrid creates a toroidal Game of Life board of the given dimensions with
// all cells dead. Panics if either dimension is not positive, or if an
// initial state provided via WithCells does not have length width×height -
// both are contract violations that would corrupt index arithmetic downstream.
//
// Parameters:
//   - width: the board width in cells, must be > 0
//   - height: the board height in cells, must be > 0
//   - options: variadic list of GridBuilderOption functions to configure the Grid
//
// Returns:
//   - Grid: a new Grid instance
func NewGrid(width, height int, options ...GridBuilderOption) Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("grid: invalid dimensions %dx%d, both must be positive", width, height))
	}

	g := &grid{
		mu:          &sync.Mutex{},
		width:       width,
		height:      height,
		cur:         make([]float32, width*height),
		nxt:         make([]float32, width*height),
		stepWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, opt := range options {
		opt(g)
	}

	g.stepPool = worker.NewDynamicWorkerPool(g.stepWorkers, 256, 1*time.Second)
	return g
}

func (g *grid) Width() int {
	return g.width
}

func (g *grid) Height() int {
	return g.height
}

func (g *grid) Cells() []float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cur
}

func (g *grid) CellIndex(x, y int) int {
	x = ((x % g.width) + g.width) % g.width
	y = ((y % g.height) + g.height) % g.height
	return y*g.width + x
}

func (g *grid) Cell(x, y int) float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cur[g.CellIndex(x, y)]
}

func (g *grid) SetCell(x, y int, alive bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if alive {
		g.cur[g.CellIndex(x, y)] = 1
	} else {
		g.cur[g.CellIndex(x, y)] = 0
	}
}

func (g *grid) SetCells(coords ...[2]int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range coords {
		g.cur[g.CellIndex(c[0], c[1])] = 1
	}
}

func (g *grid) SeedRandom(rng *rand.Rand, density float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.cur {
		if rng.Float64() < density {
			g.cur[i] = 1
		} else {
			g.cur[i] = 0
		}
	}
	g.generation = 0
}

func (g *grid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.cur {
		g.cur[i] = 0
	}
	g.generation = 0
}

func (g *grid) Population() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	count := 0
	for _, c := range g.cur {
		if c != 0 {
			count++
		}
	}
	return count
}

func (g *grid) Generation() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generation
}

func (g *grid) Snapshot() []float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]float32, len(g.cur))
	copy(out, g.cur)
	return out
}
