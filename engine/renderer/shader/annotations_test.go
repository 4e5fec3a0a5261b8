package shader

import (
	"strings"
	"testing"
)

func TestParseAnnotationGroup(t *testing.T) {
	a, err := parseAnnotation("//@life:group 0 2 storage_read_write cell_state_out array<grid_size>", 7)
	if err != nil {
		t.Fatalf("parseAnnotation() error = %v", err)
	}
	if a == nil {
		t.Fatal("parseAnnotation() = nil, want annotation")
	}
	if a.Type != AnnotationTypeBindingGroup {
		t.Errorf("Type = %q, want %q", a.Type, AnnotationTypeBindingGroup)
	}
	if *a.Group != 0 || *a.Binding != 2 {
		t.Errorf("Group/Binding = %d/%d, want 0/2", *a.Group, *a.Binding)
	}
	if len(a.Args) != 3 {
		t.Fatalf("Args length = %d, want 3", len(a.Args))
	}
	if a.Args[0] != annotationArgStorageTypeReadWrite {
		t.Errorf("Args[0] = %q, want %q", a.Args[0], annotationArgStorageTypeReadWrite)
	}
	if a.Args[1] != "cell_state_out" {
		t.Errorf("Args[1] = %q, want cell_state_out", a.Args[1])
	}
	if a.Args[2] != "array<grid_size>" {
		t.Errorf("Args[2] = %q, want array<grid_size>", a.Args[2])
	}
	if a.Line != 7 {
		t.Errorf("Line = %d, want 7", a.Line)
	}
}

func TestParseAnnotationProvider(t *testing.T) {
	a, err := parseAnnotation("//@life:provider 0 1 cells_in", 3)
	if err != nil {
		t.Fatalf("parseAnnotation() error = %v", err)
	}
	if a.Type != AnnotationTypeProvider {
		t.Errorf("Type = %q, want %q", a.Type, AnnotationTypeProvider)
	}
	if *a.Group != 0 || *a.Binding != 1 {
		t.Errorf("Group/Binding = %d/%d, want 0/1", *a.Group, *a.Binding)
	}
	if len(a.Args) != 1 || a.Args[0] != AnnotationArgCellsIn {
		t.Errorf("Args = %v, want [%q]", a.Args, AnnotationArgCellsIn)
	}
}

func TestParseAnnotationInclude(t *testing.T) {
	a, err := parseAnnotation("//@life:include grid_size", 1)
	if err != nil {
		t.Fatalf("parseAnnotation() error = %v", err)
	}
	if a.Type != annotationTypeInclude {
		t.Errorf("Type = %q, want %q", a.Type, annotationTypeInclude)
	}
	if len(a.Args) != 1 || a.Args[0] != AnnotationArgGridSize {
		t.Errorf("Args = %v, want [%q]", a.Args, AnnotationArgGridSize)
	}
}

func TestParseAnnotationNonAnnotationLine(t *testing.T) {
	lines := []string{
		"",
		"struct GridSize {",
		"@group(0) @binding(0) var<uniform> grid: GridSize;",
		"// a plain comment",
	}
	for _, line := range lines {
		a, err := parseAnnotation(line, 1)
		if err != nil {
			t.Errorf("parseAnnotation(%q) error = %v", line, err)
		}
		if a != nil {
			t.Errorf("parseAnnotation(%q) = %+v, want nil", line, a)
		}
	}
}

func TestParseAnnotationErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "unknown type", line: "//@life:texture 0 0", want: "unknown @life annotation type"},
		{name: "include missing arg", line: "//@life:include", want: "exactly one argument"},
		{name: "include unknown struct", line: "//@life:include camera", want: "unknown struct type"},
		{name: "group wrong arity", line: "//@life:group 0 0 storage_uniform grid", want: "exactly five arguments"},
		{name: "group bad group number", line: "//@life:group x 0 storage_uniform grid grid_size", want: "invalid group number"},
		{name: "group unknown address space", line: "//@life:group 0 0 workgroup grid grid_size", want: "unknown address space"},
		{name: "group unknown struct", line: "//@life:group 0 0 storage_uniform grid lights", want: "unknown struct type"},
		{name: "group unknown array element", line: "//@life:group 0 1 storage_read cells array<lights>", want: "unknown array element type"},
		{name: "provider wrong arity", line: "//@life:provider 0 cells_in", want: "exactly three arguments"},
		{name: "provider unknown identity", line: "//@life:provider 0 1 particles", want: "unknown provider identity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAnnotation(tt.line, 5)
			if err == nil {
				t.Fatalf("parseAnnotation(%q) did not error", tt.line)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
