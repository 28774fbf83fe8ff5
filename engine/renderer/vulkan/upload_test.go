package vulkan

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/greenmatthew/velecs/engine/math"
)

func TestVertexBytesLayout(t *testing.T) {
	vertices := []math.Vertex{
		{
			Position: math.Vec3{X: 1.0, Y: 2.0, Z: 3.0},
			Colour:   math.Vec3{X: 0.5, Y: 0.25, Z: 0.125},
		},
	}

	data := vertexBytes(vertices)

	// Six float32 components per vertex, position then colour.
	if len(data) != 24 {
		t.Fatalf("expected 24 bytes per vertex, got %d", len(data))
	}
	want := []float32{1.0, 2.0, 3.0, 0.5, 0.25, 0.125}
	for i, expected := range want {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		if got := stdmath.Float32frombits(bits); got != expected {
			t.Errorf("component %d: expected %f, got %f", i, expected, got)
		}
	}
}

func TestVertexBytesEmpty(t *testing.T) {
	if data := vertexBytes(nil); data != nil {
		t.Errorf("expected nil for empty vertex slice, got %d bytes", len(data))
	}
}

func TestIndexBytesLayout(t *testing.T) {
	indices := []uint32{0, 1, 0x01020304}

	data := indexBytes(indices)

	if len(data) != 12 {
		t.Fatalf("expected 12 bytes, got %d", len(data))
	}
	for i, expected := range indices {
		if got := binary.LittleEndian.Uint32(data[i*4:]); got != expected {
			t.Errorf("index %d: expected %#x, got %#x", i, expected, got)
		}
	}
}
