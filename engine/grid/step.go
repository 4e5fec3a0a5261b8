package grid

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// stepRows computes the next generation for rows [y0, y1), reading src and
// writing dst. src and dst must be distinct allocations - the read-only
// input / write-only output separation is the sole correctness mechanism,
// there are no locks on the cell data.
func (g *grid) stepRows(src, dst []float32, y0, y1 int) {
	w, h := g.width, g.height
	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			neighbors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx := ((x + dx) + w) % w
					ny := ((y + dy) + h) % h
					if src[ny*w+nx] != 0 {
						neighbors++
					}
				}
			}
			i := y*w + x
			switch neighbors {
			case 2:
				dst[i] = src[i]
			case 3:
				dst[i] = 1
			default:
				dst[i] = 0
			}
		}
	}
}

func (g *grid) Step() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stepRows(g.cur, g.nxt, 0, g.height)
	g.cur, g.nxt = g.nxt, g.cur
	g.generation++
}

func (g *grid) StepParallel() {
	g.mu.Lock()
	defer g.mu.Unlock()

	bands := g.stepWorkers
	if bands > g.height {
		bands = g.height
	}
	if bands <= 1 {
		g.stepRows(g.cur, g.nxt, 0, g.height)
		g.cur, g.nxt = g.nxt, g.cur
		g.generation++
		return
	}

	// Per-step barrier sync via WaitGroup - pool.Wait() blocks until workers
	// idle-exit which is unsuitable for per-frame stepping.
	var wg sync.WaitGroup
	rowsPerBand := (g.height + bands - 1) / bands
	src, dst := g.cur, g.nxt
	taskID := 0
	for y0 := 0; y0 < g.height; y0 += rowsPerBand {
		y1 := min(y0+rowsPerBand, g.height)
		band0, band1 := y0, y1
		id := taskID
		taskID++
		wg.Add(1)
		g.stepPool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				g.stepRows(src, dst, band0, band1)
				return nil, nil
			},
		})
	}
	wg.Wait()

	g.cur, g.nxt = g.nxt, g.cur
	g.generation++
}
