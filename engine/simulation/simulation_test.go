package simulation

import (
	"bytes"
	"testing"

	"github.com/Carmen-Shannon/conway-go/engine/grid"
	"github.com/Carmen-Shannon/conway-go/engine/renderer"
	"github.com/Carmen-Shannon/conway-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/conway-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/conway-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	computeShaderPath  = "../../examples/assets/shaders/life-compute.wgsl"
	vertexShaderPath   = "../../examples/assets/shaders/cell-vert.wgsl"
	fragmentShaderPath = "../../examples/assets/shaders/cell-frag.wgsl"
)

type stubDraw struct {
	pipelineKey   string
	instanceCount uint32
	bindGroups    []bind_group_provider.BindGroupProvider
}

// stubRenderer records pipeline registrations, compute dispatches, buffer
// writes, and draw calls without touching the GPU.
type stubRenderer struct {
	registered   []string
	dispatches   []bind_group_provider.BindGroupProvider
	dispatchDims [][3]uint32
	draws        []stubDraw
	writes       []bind_group_provider.BufferWrite
}

var _ renderer.Renderer = &stubRenderer{}

func (r *stubRenderer) Pipeline(key string) pipeline.Pipeline    { return nil }
func (r *stubRenderer) Pipelines() map[string]pipeline.Pipeline  { return nil }
func (r *stubRenderer) SetPipeline(key string, p pipeline.Pipeline) {}
func (r *stubRenderer) SetPipelines(pipelines map[string]pipeline.Pipeline) {}
func (r *stubRenderer) Resize(width, height int)                 {}
func (r *stubRenderer) BeginComputeFrame() error                 { return nil }
func (r *stubRenderer) EndComputeFrame()                         {}
func (r *stubRenderer) BeginFrame() error                        { return nil }
func (r *stubRenderer) EndFrame()                                {}
func (r *stubRenderer) Present()                                 {}
func (r *stubRenderer) SetPresentMode(mode renderer.PresentMode) {}
func (r *stubRenderer) SetClearColor(color wgpu.Color)           {}
func (r *stubRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.writes = append(r.writes, writes...)
}

func (r *stubRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		r.registered = append(r.registered, p.PipelineKey())
	}
	return nil
}

func (r *stubRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return nil
}

func (r *stubRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return nil
}

func (r *stubRenderer) DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) {
	r.dispatches = append(r.dispatches, computeProvider)
	r.dispatchDims = append(r.dispatchDims, workGroupCount)
}

func (r *stubRenderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.draws = append(r.draws, stubDraw{pipelineKey: pipelineKey, instanceCount: instanceCount, bindGroups: bindGroups})
	return nil
}

func newTestSimulation(t *testing.T, r renderer.Renderer, width, height int, options ...SimulationBuilderOption) Simulation {
	t.Helper()
	cs := shader.NewShader("life_compute", shader.ShaderTypeCompute, computeShaderPath)
	vs := shader.NewShader("cell_vert", shader.ShaderTypeVertex, vertexShaderPath)
	fs := shader.NewShader("cell_frag", shader.ShaderTypeFragment, fragmentShaderPath)
	return NewSimulation("test", r, grid.NewGrid(width, height), cs, vs, fs, options...)
}

func TestNewSimulationPanicsOnNilArguments(t *testing.T) {
	r := &stubRenderer{}
	g := grid.NewGrid(8, 8)
	cs := shader.NewShader("life_compute", shader.ShaderTypeCompute, computeShaderPath)
	vs := shader.NewShader("cell_vert", shader.ShaderTypeVertex, vertexShaderPath)
	fs := shader.NewShader("cell_frag", shader.ShaderTypeFragment, fragmentShaderPath)

	tests := []struct {
		name string
		fn   func()
	}{
		{name: "nil renderer", fn: func() { NewSimulation("t", nil, g, cs, vs, fs) }},
		{name: "nil grid", fn: func() { NewSimulation("t", r, nil, cs, vs, fs) }},
		{name: "nil compute shader", fn: func() { NewSimulation("t", r, g, nil, vs, fs) }},
		{name: "nil vertex shader", fn: func() { NewSimulation("t", r, g, cs, nil, fs) }},
		{name: "nil fragment shader", fn: func() { NewSimulation("t", r, g, cs, vs, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewSimulation did not panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestSimulationRegistersPipelines(t *testing.T) {
	r := &stubRenderer{}
	newTestSimulation(t, r, 8, 8)

	if len(r.registered) != 2 {
		t.Fatalf("registered pipelines = %d, want 2", len(r.registered))
	}
	keys := map[string]bool{r.registered[0]: true, r.registered[1]: true}
	if !keys["life_compute"] || !keys["test"] {
		t.Errorf("registered keys = %v, want life_compute and test", r.registered)
	}
}

// TestDispatchDimensions verifies the workgroup grid rounds up to cover
// boards that are not multiples of the 8x8 tile.
func TestDispatchDimensions(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 20, 12)

	s.StepOnce()
	s.PrepareCompute(0)

	if len(r.dispatchDims) != 1 {
		t.Fatalf("dispatch count = %d, want 1", len(r.dispatchDims))
	}
	if got := r.dispatchDims[0]; got != [3]uint32{3, 2, 1} {
		t.Errorf("dispatch size = %v, want [3 2 1]", got)
	}
}

func TestPrepareComputePacing(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 8, 8, WithStepRate(10))

	// 0.25s at 10 gen/s is 2 due steps with 0.05s left in the accumulator.
	s.PrepareCompute(0.25)
	if got := len(r.dispatches); got != 2 {
		t.Fatalf("dispatches after 0.25s = %d, want 2", got)
	}
	if got := s.Generation(); got != 2 {
		t.Errorf("Generation() = %d, want 2", got)
	}

	// The leftover 0.05s plus 0.05s more is exactly one more step.
	s.PrepareCompute(0.05)
	if got := len(r.dispatches); got != 3 {
		t.Errorf("dispatches after another 0.05s = %d, want 3", got)
	}
}

func TestPrepareComputeCapsCatchUp(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 8, 8, WithStepRate(100))

	// A 5 second stall would owe 500 steps; the per-frame burst is capped.
	s.PrepareCompute(5.0)
	if got := len(r.dispatches); got != maxCatchUpSteps {
		t.Errorf("dispatches after stall = %d, want %d", got, maxCatchUpSteps)
	}
}

func TestPingPongAlternation(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 8, 8)

	for i := 0; i < 4; i++ {
		s.StepOnce()
		s.PrepareCompute(0)
	}
	if len(r.dispatches) != 4 {
		t.Fatalf("dispatch count = %d, want 4", len(r.dispatches))
	}
	if r.dispatches[0] == r.dispatches[1] {
		t.Error("consecutive dispatches used the same bind group provider")
	}
	if r.dispatches[0] != r.dispatches[2] || r.dispatches[1] != r.dispatches[3] {
		t.Error("dispatches did not alternate between the two providers")
	}
}

func TestPauseBlocksAutomaticStepping(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 8, 8, WithStepRate(10))

	s.Pause()
	s.PrepareCompute(1.0)
	if got := len(r.dispatches); got != 0 {
		t.Fatalf("dispatches while paused = %d, want 0", got)
	}

	// Single stepping still works while paused.
	s.StepOnce()
	s.PrepareCompute(1.0)
	if got := len(r.dispatches); got != 1 {
		t.Errorf("dispatches after StepOnce while paused = %d, want 1", got)
	}

	s.Resume()
	s.PrepareCompute(0.1)
	if got := len(r.dispatches); got != 2 {
		t.Errorf("dispatches after resume = %d, want 2", got)
	}
}

func TestWithPausedStartsPaused(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 8, 8, WithPaused(true))

	if !s.Paused() {
		t.Error("Paused() = false, want true")
	}
	s.PrepareCompute(1.0)
	if got := len(r.dispatches); got != 0 {
		t.Errorf("dispatches = %d, want 0", got)
	}
}

func TestReseedResetsGeneration(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 8, 8)

	s.StepOnce()
	s.StepOnce()
	s.PrepareCompute(0)
	if got := s.Generation(); got != 2 {
		t.Fatalf("Generation() = %d, want 2", got)
	}

	s.Reseed(42, 0.3)
	if got := s.Generation(); got != 0 {
		t.Errorf("Generation() after Reseed = %d, want 0", got)
	}
	if s.Grid().Population() == 0 {
		t.Error("Reseed left the board empty")
	}
}

func TestDrawCallsTrackFrontBuffer(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 8, 8)
	s.SetActive(true)

	if err := s.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls() error = %v", err)
	}
	s.StepOnce()
	s.PrepareCompute(0)
	if err := s.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls() error = %v", err)
	}

	if len(r.draws) != 2 {
		t.Fatalf("draw count = %d, want 2", len(r.draws))
	}
	for i, d := range r.draws {
		if d.pipelineKey != "test" {
			t.Errorf("draw %d pipeline key = %q, want test", i, d.pipelineKey)
		}
		if d.instanceCount != 64 {
			t.Errorf("draw %d instance count = %d, want 64", i, d.instanceCount)
		}
		if len(d.bindGroups) != 1 {
			t.Fatalf("draw %d bind group count = %d, want 1", i, len(d.bindGroups))
		}
	}
	if r.draws[0].bindGroups[0] == r.draws[1].bindGroups[0] {
		t.Error("draw after a step still reads the same state buffer")
	}
}

// TestSetCellWritesFrontBuffer verifies painting a cell updates the host grid
// and writes exactly one float32 to the current front state buffer at the
// cell's row-major offset.
func TestSetCellWritesFrontBuffer(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 8, 8)
	r.writes = nil

	s.SetCell(2, 1, true)

	if got := s.Grid().Cell(2, 1); got != 1 {
		t.Errorf("host grid Cell(2, 1) = %v, want 1", got)
	}
	if len(r.writes) != 1 {
		t.Fatalf("write count = %d, want 1", len(r.writes))
	}
	w := r.writes[0]
	if w.Offset != 40 {
		t.Errorf("write offset = %d, want 40", w.Offset)
	}
	if !bytes.Equal(w.Data, []byte{0x00, 0x00, 0x80, 0x3f}) {
		t.Errorf("write data = %v, want float32 1.0 little-endian", w.Data)
	}

	// The write targets the same provider the next dispatch reads from.
	s.StepOnce()
	s.PrepareCompute(0)
	if r.dispatches[0] != w.Provider {
		t.Error("SetCell wrote to a provider the next step does not read")
	}

	// After the step the front buffer flipped, so a new paint targets the
	// other provider.
	r.writes = nil
	s.SetCell(0, 0, false)
	if len(r.writes) != 1 {
		t.Fatalf("write count after step = %d, want 1", len(r.writes))
	}
	if r.writes[0].Provider == w.Provider {
		t.Error("SetCell after a step still wrote to the previous front buffer")
	}
	if r.writes[0].Offset != 0 {
		t.Errorf("write offset = %d, want 0", r.writes[0].Offset)
	}
	if !bytes.Equal(r.writes[0].Data, []byte{0x00, 0x00, 0x00, 0x00}) {
		t.Errorf("write data = %v, want float32 0.0 little-endian", r.writes[0].Data)
	}
}

func TestSetCellWrapsCoordinates(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 8, 8)
	r.writes = nil

	s.SetCell(-1, -1, true)

	if got := s.Grid().Cell(7, 7); got != 1 {
		t.Errorf("host grid Cell(7, 7) = %v, want 1", got)
	}
	if len(r.writes) != 1 {
		t.Fatalf("write count = %d, want 1", len(r.writes))
	}
	if got := r.writes[0].Offset; got != 252 {
		t.Errorf("write offset = %d, want 252", got)
	}
}

func TestStepRateRoundTrip(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSimulation(t, r, 8, 8)

	s.SetStepRate(25)
	if got := s.StepRate(); got != 25 {
		t.Errorf("StepRate() = %v, want 25", got)
	}

	// Non-positive rates are ignored.
	s.SetStepRate(0)
	if got := s.StepRate(); got != 25 {
		t.Errorf("StepRate() after SetStepRate(0) = %v, want 25", got)
	}
}
