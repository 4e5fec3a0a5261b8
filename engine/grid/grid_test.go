package grid

import (
	"math/rand"
	"testing"
)

// TestCellIndexTopology tests toroidal coordinate wrapping and row-major flattening.
func TestCellIndexTopology(t *testing.T) {
	g := NewGrid(5, 3)

	tests := []struct {
		name string
		x, y int
		want int
	}{
		{name: "origin", x: 0, y: 0, want: 0},
		{name: "row major order", x: 2, y: 1, want: 7},
		{name: "last cell", x: 4, y: 2, want: 14},
		{name: "x wraps right edge", x: 5, y: 0, want: 0},
		{name: "y wraps bottom edge", x: 0, y: 3, want: 0},
		{name: "negative x wraps to far column", x: -1, y: 0, want: 4},
		{name: "negative y wraps to far row", x: 0, y: -1, want: 10},
		{name: "large negative x", x: -11, y: 0, want: 4},
		{name: "large negative y", x: 0, y: -7, want: 10},
		{name: "multiple wraps", x: 12, y: 7, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CellIndex(tt.x, tt.y); got != tt.want {
				t.Errorf("CellIndex(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

// TestCellIndexBijection verifies every in-bounds coordinate maps to a unique
// offset covering the full buffer.
func TestCellIndexBijection(t *testing.T) {
	g := NewGrid(7, 5)
	seen := make(map[int]bool)
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			i := g.CellIndex(x, y)
			if i < 0 || i >= 35 {
				t.Fatalf("CellIndex(%d, %d) = %d, out of range [0, 35)", x, y, i)
			}
			if seen[i] {
				t.Fatalf("CellIndex(%d, %d) = %d, already produced by another coordinate", x, y, i)
			}
			seen[i] = true
		}
	}
	if len(seen) != 35 {
		t.Errorf("in-bounds coordinates covered %d offsets, want 35", len(seen))
	}
}

func TestNewGridPanicsOnInvalidDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{name: "zero width", width: 0, height: 4},
		{name: "zero height", width: 4, height: 0},
		{name: "negative width", width: -1, height: 4},
		{name: "both zero", width: 0, height: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("NewGrid(%d, %d) did not panic", tt.width, tt.height)
				}
			}()
			NewGrid(tt.width, tt.height)
		})
	}
}

func TestWithCellsPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewGrid with short initial state did not panic")
		}
	}()
	NewGrid(4, 4, WithCells(make([]float32, 15)))
}

func TestWithCellsSeedsInitialState(t *testing.T) {
	cells := make([]float32, 16)
	cells[5] = 1
	cells[10] = 1
	g := NewGrid(4, 4, WithCells(cells))

	if got := g.Population(); got != 2 {
		t.Errorf("Population() = %d, want 2", got)
	}
	if g.Cell(1, 1) != 1 {
		t.Error("Cell(1, 1) = 0, want 1")
	}
	if g.Cell(2, 2) != 1 {
		t.Error("Cell(2, 2) = 0, want 1")
	}
}

// TestStepRule tests the update rule cell by cell: 2 neighbors preserves,
// 3 births, anything else kills.
func TestStepRule(t *testing.T) {
	tests := []struct {
		name string
		// live cells placed around the center cell (3, 3) of a 7x7 board
		neighbors [][2]int
		center    bool
		want      float32
	}{
		{name: "dead with 0 neighbors stays dead", center: false, want: 0},
		{name: "alive with 0 neighbors dies", center: true, want: 0},
		{name: "alive with 1 neighbor dies", neighbors: [][2]int{{2, 2}}, center: true, want: 0},
		{name: "alive with 2 neighbors survives", neighbors: [][2]int{{2, 2}, {4, 4}}, center: true, want: 1},
		{name: "dead with 2 neighbors stays dead", neighbors: [][2]int{{2, 2}, {4, 4}}, center: false, want: 0},
		{name: "dead with 3 neighbors is born", neighbors: [][2]int{{2, 2}, {4, 4}, {2, 4}}, center: false, want: 1},
		{name: "alive with 3 neighbors survives", neighbors: [][2]int{{2, 2}, {4, 4}, {2, 4}}, center: true, want: 1},
		{name: "alive with 4 neighbors dies", neighbors: [][2]int{{2, 2}, {4, 4}, {2, 4}, {4, 2}}, center: true, want: 0},
		{name: "dead with 8 neighbors stays dead", neighbors: [][2]int{{2, 2}, {3, 2}, {4, 2}, {2, 3}, {4, 3}, {2, 4}, {3, 4}, {4, 4}}, center: false, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(7, 7)
			g.SetCells(tt.neighbors...)
			if tt.center {
				g.SetCell(3, 3, true)
			}
			g.Step()
			if got := g.Cell(3, 3); got != tt.want {
				t.Errorf("center cell after step = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllDeadStaysDead(t *testing.T) {
	g := NewGrid(8, 8)
	for i := 0; i < 5; i++ {
		g.Step()
	}
	if got := g.Population(); got != 0 {
		t.Errorf("Population() after 5 steps of empty board = %d, want 0", got)
	}
	if got := g.Generation(); got != 5 {
		t.Errorf("Generation() = %d, want 5", got)
	}
}

// TestBlinkerOscillates tests the period-2 blinker: a horizontal line of three
// becomes vertical and back.
func TestBlinkerOscillates(t *testing.T) {
	g := NewGrid(8, 8)
	g.SetCells([2]int{2, 3}, [2]int{3, 3}, [2]int{4, 3})
	horizontal := g.Snapshot()

	g.Step()
	if got := g.Population(); got != 3 {
		t.Fatalf("Population() after 1 step = %d, want 3", got)
	}
	for _, c := range [][2]int{{3, 2}, {3, 3}, {3, 4}} {
		if g.Cell(c[0], c[1]) != 1 {
			t.Errorf("vertical phase missing live cell at (%d, %d)", c[0], c[1])
		}
	}

	g.Step()
	after := g.Snapshot()
	for i := range horizontal {
		if horizontal[i] != after[i] {
			t.Fatalf("blinker did not return to initial state after 2 steps, cell %d differs", i)
		}
	}
}

// TestSingleCellWraparoundNeighbors tests that on a 4x4 torus a lone live cell
// is a neighbor of its wrapped neighborhood: the corner cell sees it through
// the edges.
func TestSingleCellWraparoundNeighbors(t *testing.T) {
	g := NewGrid(4, 4)
	g.SetCell(0, 0, true)

	// Every cell adjacent to (0,0) on the torus, including wrapped coordinates.
	wrappedNeighbors := [][2]int{
		{3, 3}, {0, 3}, {1, 3},
		{3, 0}, {1, 0},
		{3, 1}, {0, 1}, {1, 1},
	}
	for _, c := range wrappedNeighbors {
		i := g.CellIndex(c[0], c[1])
		if i < 0 || i >= 16 {
			t.Fatalf("CellIndex(%d, %d) = %d, out of range", c[0], c[1], i)
		}
	}

	// A lone cell has no live neighbors anywhere, so it dies and nothing is born.
	g.Step()
	if got := g.Population(); got != 0 {
		t.Errorf("Population() after step = %d, want 0", got)
	}
}

// TestBlockWrapsAcrossEdges tests a still life that straddles all four corners
// of the torus: the 2x2 block at the board corner is stable only if edge
// wrapping is correct in both axes.
func TestBlockWrapsAcrossEdges(t *testing.T) {
	g := NewGrid(6, 6)
	g.SetCells([2]int{0, 0}, [2]int{5, 0}, [2]int{0, 5}, [2]int{5, 5})
	before := g.Snapshot()

	g.Step()
	after := g.Snapshot()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("corner-straddling block is not stable, cell %d changed", i)
		}
	}
}

// TestStepParallelMatchesStep runs the same seed through the sequential and
// parallel steppers and requires identical state at every generation.
func TestStepParallelMatchesStep(t *testing.T) {
	const steps = 20
	seq := NewGrid(32, 24)
	par := NewGrid(32, 24, WithStepWorkers(4))

	seq.SeedRandom(rand.New(rand.NewSource(42)), 0.35)
	par.SeedRandom(rand.New(rand.NewSource(42)), 0.35)

	for n := 1; n <= steps; n++ {
		seq.Step()
		par.StepParallel()

		a, b := seq.Snapshot(), par.Snapshot()
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("generation %d: cell %d differs, sequential %v parallel %v", n, i, a[i], b[i])
			}
		}
	}
}

func TestSeedRandomDeterministic(t *testing.T) {
	a := NewGrid(16, 16)
	b := NewGrid(16, 16)
	a.SeedRandom(rand.New(rand.NewSource(7)), 0.5)
	b.SeedRandom(rand.New(rand.NewSource(7)), 0.5)

	as, bs := a.Snapshot(), b.Snapshot()
	for i := range as {
		if as[i] != bs[i] {
			t.Fatalf("same seed produced different boards at cell %d", i)
		}
	}
}

func TestSeedRandomResetsGeneration(t *testing.T) {
	g := NewGrid(8, 8)
	g.Step()
	g.Step()
	g.SeedRandom(rand.New(rand.NewSource(1)), 0.3)
	if got := g.Generation(); got != 0 {
		t.Errorf("Generation() after reseed = %d, want 0", got)
	}
}

func TestClear(t *testing.T) {
	g := NewGrid(8, 8)
	g.SeedRandom(rand.New(rand.NewSource(9)), 0.8)
	g.Step()
	g.Clear()

	if got := g.Population(); got != 0 {
		t.Errorf("Population() after Clear = %d, want 0", got)
	}
	if got := g.Generation(); got != 0 {
		t.Errorf("Generation() after Clear = %d, want 0", got)
	}
}

// TestSnapshotIsolation verifies Snapshot returns a copy that later steps do
// not mutate.
func TestSnapshotIsolation(t *testing.T) {
	g := NewGrid(8, 8)
	g.SetCells([2]int{2, 3}, [2]int{3, 3}, [2]int{4, 3})

	snap := g.Snapshot()
	g.Step()

	if snap[g.CellIndex(2, 3)] != 1 || snap[g.CellIndex(3, 3)] != 1 || snap[g.CellIndex(4, 3)] != 1 {
		t.Error("snapshot changed after Step")
	}
}

// TestNonSquareBoard tests stepping on a board where width != height, which
// catches width/height transpositions in the index arithmetic.
func TestNonSquareBoard(t *testing.T) {
	g := NewGrid(10, 4)
	// Horizontal blinker centered mid-board.
	g.SetCells([2]int{4, 1}, [2]int{5, 1}, [2]int{6, 1})

	g.Step()
	for _, c := range [][2]int{{5, 0}, {5, 1}, {5, 2}} {
		if g.Cell(c[0], c[1]) != 1 {
			t.Errorf("vertical phase missing live cell at (%d, %d)", c[0], c[1])
		}
	}
	if got := g.Population(); got != 3 {
		t.Errorf("Population() = %d, want 3", got)
	}
}
