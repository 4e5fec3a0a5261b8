package simulation

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Carmen-Shannon/conway-go/common"
	"github.com/Carmen-Shannon/conway-go/engine/grid"
	"github.com/Carmen-Shannon/conway-go/engine/renderer"
	"github.com/Carmen-Shannon/conway-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/conway-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/conway-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// maxCatchUpSteps caps how many generations a single frame may advance when the
// render loop falls behind the configured step rate. Without a cap a long stall
// would trigger an unbounded burst of compute dispatches on the next frame.
const maxCatchUpSteps = 8

// Simulation owns the GPU resources for one cellular automaton board: the cell
// state ping-pong buffers, the grid uniform, the compute pipeline that advances
// generations, and the render pipeline that draws one quad per cell.
// Simulations can be hot-swapped via the Active flag.
// Thread-safe for concurrent access.
type Simulation interface {
	// Name returns the simulation's identifier.
	Name() string

	// SetName sets the simulation's identifier.
	SetName(name string)

	// Active returns whether this simulation is currently active for rendering.
	Active() bool

	// SetActive sets whether this simulation is active for rendering.
	SetActive(active bool)

	// Renderer returns the simulation's renderer.
	Renderer() renderer.Renderer

	// Grid returns the host-side board used for seeding and state uploads.
	// The GPU buffers are the source of truth once the simulation is running;
	// the grid reflects the most recently uploaded state, not the current
	// GPU generation.
	Grid() grid.Grid

	// Generation returns the number of generations advanced on the GPU since
	// the last seed upload.
	Generation() uint64

	// Paused returns whether automatic stepping is paused.
	Paused() bool

	// Pause stops automatic stepping. Single steps via StepOnce still run.
	Pause()

	// Resume restarts automatic stepping at the configured step rate.
	Resume()

	// TogglePause flips the paused state.
	TogglePause()

	// StepOnce queues exactly one generation step for the next compute frame,
	// regardless of the paused state.
	StepOnce()

	// StepRate returns the automatic stepping rate in generations per second.
	StepRate() float64

	// SetStepRate sets the automatic stepping rate in generations per second.
	// Values <= 0 are ignored.
	SetStepRate(gps float64)

	// SetCell sets a single cell alive or dead on both the host grid and the
	// GPU front state buffer, so the change takes effect immediately for the
	// next step and the next draw. Coordinates wrap toroidally. Used for
	// interactive cell painting.
	//
	// Parameters:
	//   - x: the column coordinate, any integer
	//   - y: the row coordinate, any integer
	//   - alive: the new cell state
	SetCell(x, y int, alive bool)

	// Reseed re-randomizes the host grid with the given seed and live-cell
	// density, uploads the new state to the GPU, and resets the generation
	// counter to zero.
	//
	// Parameters:
	//   - seed: the RNG seed for deterministic reseeding
	//   - density: the fraction of cells set alive, in [0, 1]
	Reseed(seed int64, density float64)

	// PrepareCompute advances the simulation clock by deltaTime and dispatches
	// one compute pass per due generation step, flipping the ping-pong buffer
	// roles after each dispatch. Must be called within a
	// BeginComputeFrame/EndComputeFrame block on the renderer.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	PrepareCompute(deltaTime float32)

	// DrawCalls issues the instanced draw call for the board: one quad per
	// cell, reading the current front state buffer. Must be called within a
	// BeginFrame/EndFrame block on the renderer.
	//
	// Returns:
	//   - error: error if the draw call fails
	DrawCalls() error

	// Release frees the GPU buffers and bind groups owned by this simulation.
	// The simulation must not be used after Release.
	Release()
}

type simulation struct {
	mu *sync.RWMutex

	name   string
	active bool

	r renderer.Renderer
	g grid.Grid

	computePipelineKey string
	renderPipelineKey  string

	// Compute shader binding indices resolved from its declarations.
	computeGroup      int
	gridBinding       int
	cellsInBinding    int
	cellsOutBinding   int
	renderGroup       int
	renderGridBinding int
	cellsBinding      int

	meshBGP bind_group_provider.BindGroupProvider

	// stepBGPs[0] reads state A and writes state B, stepBGPs[1] the reverse.
	// Both share the same grid uniform buffer and the same two state buffers.
	stepBGPs [2]bind_group_provider.BindGroupProvider

	// renderBGPs[i] exposes state buffer i to the vertex shader.
	renderBGPs [2]bind_group_provider.BindGroupProvider

	// front selects which state buffer holds the current generation (0 or 1).
	front int

	dispatchSize [3]uint32

	paused       bool
	pendingSteps int
	stepInterval time.Duration
	accumulator  time.Duration

	generation uint64
}

var _ Simulation = &simulation{}

// NewSimulation creates a Simulation for the given board, wiring all GPU
// resources: the quad mesh, the grid uniform, both ping-pong cell state
// buffers, the compute pipeline, and the render pipeline. The binding indices
// for each resource are resolved from the shaders' declarations rather than
// hardcoded, so the WGSL layout can change without touching this package.
// All arguments are required and NewSimulation panics if any of them is nil
// or if GPU resource creation fails.
//
// Parameters:
//   - name: the name of the simulation, used as the render pipeline key and resource label prefix
//   - r: the renderer to attach (must not be nil)
//   - g: the host board providing dimensions and the initial state (must not be nil)
//   - computeShader: the generation step compute shader (must not be nil)
//   - vertexShader: the cell quad vertex shader (must not be nil)
//   - fragmentShader: the cell color fragment shader (must not be nil)
//   - options: functional options to further configure the simulation
//
// Returns:
//   - Simulation: the newly created simulation
func NewSimulation(name string, r renderer.Renderer, g grid.Grid, computeShader, vertexShader, fragmentShader shader.Shader, options ...SimulationBuilderOption) Simulation {
	if r == nil {
		panic("simulation: NewSimulation requires a non-nil Renderer")
	}
	if g == nil {
		panic("simulation: NewSimulation requires a non-nil Grid")
	}
	if computeShader == nil || vertexShader == nil || fragmentShader == nil {
		panic("simulation: NewSimulation requires compute, vertex, and fragment shaders")
	}

	s := &simulation{
		mu:           &sync.RWMutex{},
		name:         common.Coalesce(name, "simulation"),
		active:       false,
		r:            r,
		g:            g,
		paused:       false,
		stepInterval: time.Second / 10,
	}

	for _, option := range options {
		option(s)
	}

	s.resolveBindings(computeShader, vertexShader)
	s.initGPUResources(computeShader, vertexShader, fragmentShader)

	return s
}

// resolveBindings scans the compute and vertex shader declarations to locate
// the grid uniform and each cell state buffer by provider identity.
func (s *simulation) resolveBindings(computeShader, vertexShader shader.Shader) {
	for _, decl := range computeShader.Declarations() {
		if decl.Group == nil || decl.Binding == nil {
			continue
		}
		switch decl.Type {
		case shader.AnnotationTypeBindingGroup:
			typeArg := decl.Args[2]
			if typeArg == shader.AnnotationArgGridSize {
				s.computeGroup = *decl.Group
				s.gridBinding = *decl.Binding
			}
		case shader.AnnotationTypeProvider:
			switch decl.Args[0] {
			case shader.AnnotationArgCellsIn:
				s.cellsInBinding = *decl.Binding
			case shader.AnnotationArgCellsOut:
				s.cellsOutBinding = *decl.Binding
			}
		}
	}

	for _, decl := range vertexShader.Declarations() {
		if decl.Group == nil || decl.Binding == nil {
			continue
		}
		switch decl.Type {
		case shader.AnnotationTypeBindingGroup:
			typeArg := decl.Args[2]
			if typeArg == shader.AnnotationArgGridSize {
				s.renderGroup = *decl.Group
				s.renderGridBinding = *decl.Binding
			}
		case shader.AnnotationTypeProvider:
			if decl.Args[0] == shader.AnnotationArgCells {
				s.cellsBinding = *decl.Binding
			}
		}
	}
}

// initGPUResources creates the quad mesh buffers, the two step bind groups
// sharing the grid uniform and state buffers in swapped roles, the two render
// bind groups, and registers the compute and render pipelines. Panics on any
// GPU resource creation failure, matching the construction contract.
func (s *simulation) initGPUResources(computeShader, vertexShader, fragmentShader shader.Shader) {
	width, height := s.g.Width(), s.g.Height()
	cellCount := uint64(width * height)
	stateSize := cellCount * 4 // one f32 per cell

	// Quad mesh shared by every cell instance.
	s.meshBGP = bind_group_provider.NewBindGroupProvider(s.name + "_mesh")
	if err := s.r.InitMeshBuffers(s.meshBGP, grid.MarshalVertices(grid.QuadVertices()), common.SliceToBytes(grid.QuadIndices()), len(grid.QuadIndices())); err != nil {
		panic(fmt.Sprintf("simulation: failed to init quad mesh buffers: %v", err))
	}

	// The parser reports the element stride for the runtime-sized state arrays,
	// so both state bindings are sized up to the full board here.
	computeDesc := computeShader.BindGroupLayoutDescriptor(s.computeGroup)
	sizeOverrides := map[int]uint64{
		s.cellsInBinding:  stateSize,
		s.cellsOutBinding: stateSize,
	}

	ping := bind_group_provider.NewBindGroupProvider(s.name + "_step_ping")
	if err := s.r.InitBindGroup(ping, computeDesc, nil, sizeOverrides); err != nil {
		panic(fmt.Sprintf("simulation: failed to init ping bind group: %v", err))
	}

	gridBuf := ping.Buffer(s.gridBinding)
	stateA := ping.Buffer(s.cellsInBinding)
	stateB := ping.Buffer(s.cellsOutBinding)
	if stateA != nil && stateA == stateB {
		panic("simulation: cell state buffers must not alias, a step would race against its own input")
	}

	// The pong bind group reuses the same three buffers with the state roles
	// swapped: B is read as input, A is overwritten as output. Pre-setting the
	// buffers makes InitBindGroup reuse them instead of allocating new ones.
	pong := bind_group_provider.NewBindGroupProvider(s.name + "_step_pong")
	pong.SetBuffer(s.gridBinding, gridBuf)
	pong.SetBuffer(s.cellsInBinding, stateB)
	pong.SetBuffer(s.cellsOutBinding, stateA)
	if err := s.r.InitBindGroup(pong, computeDesc, nil, sizeOverrides); err != nil {
		panic(fmt.Sprintf("simulation: failed to init pong bind group: %v", err))
	}
	s.stepBGPs = [2]bind_group_provider.BindGroupProvider{ping, pong}

	// Render bind groups: one per state buffer, sharing the grid uniform.
	renderDesc := vertexShader.BindGroupLayoutDescriptor(s.renderGroup)
	renderSizeOverrides := map[int]uint64{
		s.cellsBinding: stateSize,
	}
	states := [2]*wgpu.Buffer{stateA, stateB}
	for i := range s.renderBGPs {
		bgp := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s_render_%d", s.name, i))
		bgp.SetBuffer(s.renderGridBinding, gridBuf)
		bgp.SetBuffer(s.cellsBinding, states[i])
		if err := s.r.InitBindGroup(bgp, renderDesc, nil, renderSizeOverrides); err != nil {
			panic(fmt.Sprintf("simulation: failed to init render bind group %d: %v", i, err))
		}
		s.renderBGPs[i] = bgp
	}

	// Upload the grid dimensions and the initial cell state.
	gridUniform := grid.GPUGridSize{Size: [2]float32{float32(width), float32(height)}}
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: ping, Binding: s.gridBinding, Offset: 0, Data: common.StructToBytes(&gridUniform)},
		{Provider: ping, Binding: s.cellsInBinding, Offset: 0, Data: common.SliceToBytes(s.g.Cells())},
	})

	// One workgroup covers an 8x8 tile of cells; boards that are not a
	// multiple of the tile size round up and the kernel's wraparound indexing
	// keeps the overhanging invocations in bounds.
	wgSize := computeShader.WorkgroupSize()
	s.dispatchSize = [3]uint32{
		(uint32(width) + wgSize[0] - 1) / wgSize[0],
		(uint32(height) + wgSize[1] - 1) / wgSize[1],
		1,
	}

	cp := pipeline.NewPipeline(computeShader.Key(), pipeline.PipelineTypeCompute, pipeline.WithComputeShader(computeShader))
	if err := s.r.RegisterPipelines(cp); err != nil {
		panic(fmt.Sprintf("simulation: failed to register compute pipeline: %v", err))
	}
	s.computePipelineKey = cp.PipelineKey()

	rp := pipeline.NewPipeline(s.name, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vertexShader),
		pipeline.WithFragmentShader(fragmentShader),
	)
	if err := s.r.RegisterPipelines(rp); err != nil {
		panic(fmt.Sprintf("simulation: failed to register render pipeline: %v", err))
	}
	s.renderPipelineKey = rp.PipelineKey()
}

func (s *simulation) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *simulation) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *simulation) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *simulation) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *simulation) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *simulation) Grid() grid.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g
}

func (s *simulation) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *simulation) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

func (s *simulation) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.accumulator = 0
}

func (s *simulation) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

func (s *simulation) TogglePause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	if s.paused {
		s.accumulator = 0
	}
}

func (s *simulation) StepOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingSteps++
}

func (s *simulation) StepRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return float64(time.Second) / float64(s.stepInterval)
}

func (s *simulation) SetStepRate(gps float64) {
	if gps <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepInterval = time.Duration(float64(time.Second) / gps)
}

func (s *simulation) SetCell(x, y int, alive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.g.SetCell(x, y, alive)

	var state float32
	if alive {
		state = 1
	}
	idx := s.g.CellIndex(x, y)
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: s.stepBGPs[s.front],
			Binding:  s.cellsInBinding,
			Offset:   uint64(idx) * 4,
			Data:     common.SliceToBytes([]float32{state}),
		},
	})
}

func (s *simulation) Reseed(seed int64, density float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.g.Clear()
	s.g.SeedRandom(rand.New(rand.NewSource(seed)), density)

	// Overwrite the current front state buffer so the next dispatch and the
	// next draw both see the new seed.
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: s.stepBGPs[s.front],
			Binding:  s.cellsInBinding,
			Offset:   0,
			Data:     common.SliceToBytes(s.g.Cells()),
		},
	})
	s.generation = 0
	s.accumulator = 0
	s.pendingSteps = 0
}

func (s *simulation) PrepareCompute(deltaTime float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps := s.pendingSteps
	s.pendingSteps = 0

	if !s.paused {
		s.accumulator += time.Duration(float64(deltaTime) * float64(time.Second))
		for s.accumulator >= s.stepInterval {
			s.accumulator -= s.stepInterval
			steps++
		}
	}

	if steps > maxCatchUpSteps {
		steps = maxCatchUpSteps
	}

	for range steps {
		s.r.DispatchCompute(s.computePipelineKey, s.stepBGPs[s.front], s.dispatchSize)
		s.front = 1 - s.front
		s.generation++
	}
}

func (s *simulation) DrawCalls() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	instanceCount := uint32(s.g.Width() * s.g.Height())
	if err := s.r.DrawCall(s.renderPipelineKey, s.meshBGP, instanceCount, []bind_group_provider.BindGroupProvider{s.renderBGPs[s.front]}); err != nil {
		return fmt.Errorf("draw call failed for simulation %q: %w", s.name, err)
	}
	return nil
}

func (s *simulation) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The ping bind group owns the grid uniform and both state buffers; every
	// other provider only borrows them. Detach the shared buffers first so
	// releasing the borrowers cannot double-free.
	shared := []int{s.gridBinding, s.cellsInBinding, s.cellsOutBinding}
	if s.stepBGPs[1] != nil {
		for _, binding := range shared {
			s.stepBGPs[1].SetBuffer(binding, nil)
		}
		s.stepBGPs[1].Release()
	}
	for i, bgp := range s.renderBGPs {
		if bgp == nil {
			continue
		}
		bgp.SetBuffer(s.renderGridBinding, nil)
		bgp.SetBuffer(s.cellsBinding, nil)
		bgp.Release()
		s.renderBGPs[i] = nil
	}
	if s.stepBGPs[0] != nil {
		s.stepBGPs[0].Release()
	}
	s.stepBGPs = [2]bind_group_provider.BindGroupProvider{}
	if s.meshBGP != nil {
		s.meshBGP.Release()
		s.meshBGP = nil
	}
}
