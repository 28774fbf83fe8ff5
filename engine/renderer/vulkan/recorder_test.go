package vulkan

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/greenmatthew/velecs/engine/math"
)

func TestBindTrackerMinimizesRebinds(t *testing.T) {
	var tracker bindTracker[string]
	sequence := []string{"p1", "p1", "p2", "p1"}

	binds := 0
	for _, pipeline := range sequence {
		if tracker.Changed(pipeline) {
			binds++
		}
	}

	if binds != 3 {
		t.Errorf("expected 3 binds for sequence %v, got %d", sequence, binds)
	}
}

func TestBindTrackerFirstValueAlwaysBinds(t *testing.T) {
	var tracker bindTracker[int]
	if !tracker.Changed(0) {
		t.Error("first bind must always report a change, even for the zero value")
	}
	if tracker.Changed(0) {
		t.Error("repeat of the same value must not rebind")
	}
}

func TestPackPushConstantsLayout(t *testing.T) {
	mvp := math.NewMat4Identity()
	colour := math.Vec4{X: 1.0, Y: 0.5, Z: 0.25, W: 1.0}

	packed := packPushConstants(mvp, colour)

	// Matrix occupies the first 64 bytes in declaration order.
	for i := 0; i < 16; i++ {
		bits := binary.LittleEndian.Uint32(packed[i*4:])
		if got := stdmath.Float32frombits(bits); got != mvp.Data[i] {
			t.Errorf("matrix element %d: expected %f, got %f", i, mvp.Data[i], got)
		}
	}

	wantColour := []float32{1.0, 0.5, 0.25, 1.0}
	for i, expected := range wantColour {
		bits := binary.LittleEndian.Uint32(packed[64+i*4:])
		if got := stdmath.Float32frombits(bits); got != expected {
			t.Errorf("colour component %d: expected %f, got %f", i, expected, got)
		}
	}
}
