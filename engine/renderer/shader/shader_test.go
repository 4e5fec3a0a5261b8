package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const (
	computeShaderPath  = "../../../examples/assets/shaders/life-compute.wgsl"
	vertexShaderPath   = "../../../examples/assets/shaders/cell-vert.wgsl"
	fragmentShaderPath = "../../../examples/assets/shaders/cell-frag.wgsl"
)

func TestComputeShaderParsing(t *testing.T) {
	s := NewShader("life_compute", ShaderTypeCompute, computeShaderPath)

	if got := s.EntryPoint(); got != "main" {
		t.Errorf("EntryPoint() = %q, want main", got)
	}
	if got := s.WorkgroupSize(); got != [3]uint32{8, 8, 1} {
		t.Errorf("WorkgroupSize() = %v, want [8 8 1]", got)
	}

	desc := s.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 3 {
		t.Fatalf("bind group 0 entries = %d, want 3", len(desc.Entries))
	}

	tests := []struct {
		name           string
		binding        uint32
		bufferType     wgpu.BufferBindingType
		minBindingSize uint64
		varName        string
	}{
		{name: "grid uniform", binding: 0, bufferType: wgpu.BufferBindingTypeUniform, minBindingSize: 8, varName: "grid"},
		{name: "input state", binding: 1, bufferType: wgpu.BufferBindingTypeReadOnlyStorage, minBindingSize: 4, varName: "cell_state_in"},
		{name: "output state", binding: 2, bufferType: wgpu.BufferBindingTypeStorage, minBindingSize: 4, varName: "cell_state_out"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := desc.Entries[i]
			if e.Binding != tt.binding {
				t.Errorf("Binding = %d, want %d", e.Binding, tt.binding)
			}
			if e.Visibility != wgpu.ShaderStageCompute {
				t.Errorf("Visibility = %v, want compute", e.Visibility)
			}
			if e.Buffer.Type != tt.bufferType {
				t.Errorf("Buffer.Type = %v, want %v", e.Buffer.Type, tt.bufferType)
			}
			if e.Buffer.MinBindingSize != tt.minBindingSize {
				t.Errorf("Buffer.MinBindingSize = %d, want %d", e.Buffer.MinBindingSize, tt.minBindingSize)
			}
			if got := s.BindGroupVarName(0, int(tt.binding)); got != tt.varName {
				t.Errorf("BindGroupVarName(0, %d) = %q, want %q", tt.binding, got, tt.varName)
			}
		})
	}

	// The declarations must identify the grid uniform plus both state providers.
	var gridDecl, inDecl, outDecl bool
	for _, d := range s.Declarations() {
		switch d.Type {
		case AnnotationTypeBindingGroup:
			if d.Args[2] == AnnotationArgGridSize && *d.Binding == 0 {
				gridDecl = true
			}
		case AnnotationTypeProvider:
			if d.Args[0] == AnnotationArgCellsIn && *d.Binding == 1 {
				inDecl = true
			}
			if d.Args[0] == AnnotationArgCellsOut && *d.Binding == 2 {
				outDecl = true
			}
		}
	}
	if !gridDecl || !inDecl || !outDecl {
		t.Errorf("Declarations() missing expected entries: grid=%v in=%v out=%v", gridDecl, inDecl, outDecl)
	}
}

func TestVertexShaderParsing(t *testing.T) {
	s := NewShader("cell_vert", ShaderTypeVertex, vertexShaderPath)

	if got := s.EntryPoint(); got != "vs_main" {
		t.Errorf("EntryPoint() = %q, want vs_main", got)
	}

	layouts := s.VertexLayout(0)
	if len(layouts) != 1 {
		t.Fatalf("VertexLayout(0) length = %d, want 1", len(layouts))
	}
	layout := layouts[0]
	if layout.ArrayStride != 8 {
		t.Errorf("ArrayStride = %d, want 8", layout.ArrayStride)
	}
	if layout.StepMode != wgpu.VertexStepModeVertex {
		t.Errorf("StepMode = %v, want vertex", layout.StepMode)
	}
	if len(layout.Attributes) != 1 {
		t.Fatalf("Attributes length = %d, want 1", len(layout.Attributes))
	}
	attr := layout.Attributes[0]
	if attr.Format != wgpu.VertexFormatFloat32x2 || attr.Offset != 0 || attr.ShaderLocation != 0 {
		t.Errorf("attribute = %+v, want Float32x2 at offset 0, location 0", attr)
	}

	// The output struct mixes @builtin(position) with a @location varying and
	// must not be picked up as a second vertex input layout.
	if got := len(s.VertexLayouts()); got != 1 {
		t.Errorf("VertexLayouts() length = %d, want 1", got)
	}

	desc := s.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 2 {
		t.Fatalf("bind group 0 entries = %d, want 2", len(desc.Entries))
	}
	for _, e := range desc.Entries {
		if e.Visibility != wgpu.ShaderStageVertex {
			t.Errorf("binding %d visibility = %v, want vertex", e.Binding, e.Visibility)
		}
	}
	if desc.Entries[0].Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Errorf("binding 0 type = %v, want uniform", desc.Entries[0].Buffer.Type)
	}
	if desc.Entries[1].Buffer.Type != wgpu.BufferBindingTypeReadOnlyStorage {
		t.Errorf("binding 1 type = %v, want read-only storage", desc.Entries[1].Buffer.Type)
	}
}

func TestFragmentShaderParsing(t *testing.T) {
	s := NewShader("cell_frag", ShaderTypeFragment, fragmentShaderPath)

	if got := s.EntryPoint(); got != "fs_main" {
		t.Errorf("EntryPoint() = %q, want fs_main", got)
	}
	// The fragment stage declares no bindings so the render bind group layout
	// is defined by the vertex stage alone.
	if got := len(s.BindGroupLayoutDescriptors()); got != 0 {
		t.Errorf("BindGroupLayoutDescriptors() length = %d, want 0", got)
	}
}

func TestNewShaderPanicsOnMissingFile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewShader with missing file did not panic")
		}
	}()
	NewShader("missing", ShaderTypeCompute, "testdata/does-not-exist.wgsl")
}
