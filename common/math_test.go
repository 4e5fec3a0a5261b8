package common

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestSliceToBytesFloat32(t *testing.T) {
	data := []float32{0, 1, 0.5}

	buf := SliceToBytes(data)
	if len(buf) != 12 {
		t.Fatalf("SliceToBytes() length = %d, want 12", len(buf))
	}
	for i, want := range data {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
		if got != want {
			t.Errorf("element %d = %v, want %v", i, got, want)
		}
	}
}

func TestSliceToBytesUint32(t *testing.T) {
	data := []uint32{0, 1, 2, 2, 1, 3}

	buf := SliceToBytes(data)
	if len(buf) != 24 {
		t.Fatalf("SliceToBytes() length = %d, want 24", len(buf))
	}
	for i, want := range data {
		if got := binary.LittleEndian.Uint32(buf[i*4 : i*4+4]); got != want {
			t.Errorf("element %d = %d, want %d", i, got, want)
		}
	}
}

func TestSliceToBytesEmpty(t *testing.T) {
	if buf := SliceToBytes([]float32(nil)); buf != nil {
		t.Errorf("SliceToBytes(nil) = %v, want nil", buf)
	}
	if buf := SliceToBytes([]float32{}); buf != nil {
		t.Errorf("SliceToBytes(empty) = %v, want nil", buf)
	}
}

func TestStructToBytes(t *testing.T) {
	v := struct {
		A float32
		B float32
	}{A: 3, B: 4}

	buf := StructToBytes(&v)
	if len(buf) != 8 {
		t.Fatalf("StructToBytes() length = %d, want 8", len(buf))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])); got != 3 {
		t.Errorf("field A = %v, want 3", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])); got != 4 {
		t.Errorf("field B = %v, want 4", got)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 7, 3); got != 7 {
		t.Errorf("Coalesce(0, 0, 7, 3) = %d, want 7", got)
	}
	if got := Coalesce("", "a"); got != "a" {
		t.Errorf("Coalesce(\"\", \"a\") = %q, want a", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce(0, 0) = %d, want 0", got)
	}
}
