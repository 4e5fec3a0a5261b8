package engine

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/conway-go/engine/grid"
	"github.com/Carmen-Shannon/conway-go/engine/renderer"
	"github.com/Carmen-Shannon/conway-go/engine/simulation"
)

// stubSimulation satisfies the Simulation interface without any GPU resources.
type stubSimulation struct {
	name string
}

var _ simulation.Simulation = &stubSimulation{}

func (s *stubSimulation) Name() string                    { return s.name }
func (s *stubSimulation) SetName(name string)             { s.name = name }
func (s *stubSimulation) Active() bool                    { return false }
func (s *stubSimulation) SetActive(active bool)           {}
func (s *stubSimulation) Renderer() renderer.Renderer     { return nil }
func (s *stubSimulation) Grid() grid.Grid                 { return nil }
func (s *stubSimulation) Generation() uint64              { return 0 }
func (s *stubSimulation) Paused() bool                    { return false }
func (s *stubSimulation) Pause()                          {}
func (s *stubSimulation) Resume()                         {}
func (s *stubSimulation) TogglePause()                    {}
func (s *stubSimulation) StepOnce()                       {}
func (s *stubSimulation) StepRate() float64               { return 0 }
func (s *stubSimulation) SetStepRate(gps float64)         {}
func (s *stubSimulation) SetCell(x, y int, alive bool)    {}
func (s *stubSimulation) Reseed(seed int64, d float64)    {}
func (s *stubSimulation) PrepareCompute(dt float32)       {}
func (s *stubSimulation) DrawCalls() error                { return nil }
func (s *stubSimulation) Release()                        {}

func TestAddRemoveSimulation(t *testing.T) {
	e := NewEngine()
	sim := &stubSimulation{name: "a"}

	e.AddSimulation(0, sim)
	if got := e.Simulation(0); got != sim {
		t.Errorf("Simulation(0) = %v, want the registered simulation", got)
	}

	e.RemoveSimulation(0)
	if got := e.Simulation(0); got != nil {
		t.Errorf("Simulation(0) after remove = %v, want nil", got)
	}
}

// TestSimulationsReturnsCopy verifies callers cannot mutate the engine's
// registry through the returned map.
func TestSimulationsReturnsCopy(t *testing.T) {
	e := NewEngine(WithSimulation(0, &stubSimulation{name: "a"}))

	sims := e.Simulations()
	delete(sims, 0)
	sims[1] = &stubSimulation{name: "b"}

	if got := e.Simulation(0); got == nil {
		t.Error("deleting from the returned map removed the registered simulation")
	}
	if got := e.Simulation(1); got != nil {
		t.Error("inserting into the returned map registered a simulation")
	}
}

// TestSimulationRegistryConcurrentAccess exercises the registry from multiple
// goroutines the way callers can while the render loop iterates it. Meaningful
// under the race detector.
func TestSimulationRegistryConcurrentAccess(t *testing.T) {
	e := NewEngine()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(key int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				e.AddSimulation(key, &stubSimulation{name: "s"})
				_ = e.Simulations()
				_ = e.Simulation(key)
				e.RemoveSimulation(key)
			}
		}(i)
	}
	wg.Wait()

	if got := len(e.Simulations()); got != 0 {
		t.Errorf("registry size after concurrent churn = %d, want 0", got)
	}
}
