package shader

import (
	"strings"
	"testing"
)

func TestProcessInjectsStructSource(t *testing.T) {
	pp := NewPreProcessor()

	out, err := pp.Process("//@life:include grid_size\n")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !strings.Contains(out, "struct GridSize") {
		t.Errorf("output missing injected GridSize struct:\n%s", out)
	}
	if strings.Contains(out, "@life:") {
		t.Errorf("output still contains an annotation:\n%s", out)
	}
}

func TestProcessGeneratesBindingDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	source := strings.Join([]string{
		"//@life:include grid_size",
		"//@life:group 0 0 storage_uniform grid grid_size",
		"//@life:provider 0 1 cells_in",
		"@group(0) @binding(1) var<storage, read> cell_state_in: array<f32>;",
	}, "\n")

	out, err := pp.Process(source)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !strings.Contains(out, "@group(0) @binding(0) var<uniform> grid: GridSize;") {
		t.Errorf("output missing generated uniform declaration:\n%s", out)
	}
	// Hand-written declarations pass through untouched.
	if !strings.Contains(out, "var<storage, read> cell_state_in: array<f32>;") {
		t.Errorf("output missing hand-written storage declaration:\n%s", out)
	}

	decls := pp.Declarations()
	if len(decls) != 2 {
		t.Fatalf("Declarations() length = %d, want 2", len(decls))
	}
	if decls[0].Type != AnnotationTypeBindingGroup || *decls[0].Binding != 0 {
		t.Errorf("declaration 0 = %+v, want group annotation at binding 0", decls[0])
	}
	if decls[1].Type != AnnotationTypeProvider || decls[1].Args[0] != AnnotationArgCellsIn {
		t.Errorf("declaration 1 = %+v, want cells_in provider", decls[1])
	}
}

func TestProcessArrayTypeDeclaration(t *testing.T) {
	pp := NewPreProcessor()

	out, err := pp.Process("//@life:group 0 1 storage_read cells array<cell_vertex>\n")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !strings.Contains(out, "@group(0) @binding(1) var<storage, read> cells: array<VertexInput>;") {
		t.Errorf("output missing generated array declaration:\n%s", out)
	}
}

func TestProcessResetsDeclarations(t *testing.T) {
	pp := NewPreProcessor()

	if _, err := pp.Process("//@life:provider 0 1 cells_in\n//@life:provider 0 2 cells_out\n"); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := len(pp.Declarations()); got != 2 {
		t.Fatalf("Declarations() length after first Process = %d, want 2", got)
	}

	if _, err := pp.Process("//@life:provider 0 1 cells\n"); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	decls := pp.Declarations()
	if len(decls) != 1 {
		t.Fatalf("Declarations() length after second Process = %d, want 1", len(decls))
	}
	if decls[0].Args[0] != AnnotationArgCells {
		t.Errorf("declaration = %+v, want cells provider", decls[0])
	}
}

func TestProcessUnknownIncludeErrors(t *testing.T) {
	pp := NewPreProcessor()
	if _, err := pp.Process("//@life:include cells_in\n"); err == nil {
		t.Error("Process() with unregistered include did not error")
	}
}
