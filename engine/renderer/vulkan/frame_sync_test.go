package vulkan

import (
	"testing"
)

// The guards run before any device interaction, so the transition rules can
// be exercised without a GPU by seeding the state directly.

func TestFrameCycleGuardsRejectOutOfOrderCalls(t *testing.T) {
	cases := []struct {
		op    string
		state FrameState
		call  func(s *FrameSync) error
	}{
		{"BeginFrame", FrameAcquired, func(s *FrameSync) error {
			_, err := s.BeginFrame(nil, nil)
			return err
		}},
		{"BeginFrame", FrameRecording, func(s *FrameSync) error {
			_, err := s.BeginFrame(nil, nil)
			return err
		}},
		{"BeginFrame", FrameSubmitted, func(s *FrameSync) error {
			_, err := s.BeginFrame(nil, nil)
			return err
		}},
		{"BeginRecording", FrameIdle, func(s *FrameSync) error {
			return s.BeginRecording()
		}},
		{"Submit", FrameIdle, func(s *FrameSync) error {
			return s.Submit(nil, nil)
		}},
		{"Submit", FrameAcquired, func(s *FrameSync) error {
			return s.Submit(nil, nil)
		}},
		{"Present", FrameRecording, func(s *FrameSync) error {
			return s.Present(nil, nil, 0)
		}},
	}

	for _, tc := range cases {
		sync := &FrameSync{state: tc.state}
		if err := tc.call(sync); err == nil {
			t.Errorf("%s in state %s: expected error, got nil", tc.op, tc.state)
		}
		if sync.state != tc.state {
			t.Errorf("%s in state %s: state changed to %s on rejected call", tc.op, tc.state, sync.state)
		}
	}
}

func TestBeginRecordingAdvancesState(t *testing.T) {
	sync := &FrameSync{state: FrameAcquired}
	if err := sync.BeginRecording(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sync.State() != FrameRecording {
		t.Errorf("expected recording state, got %s", sync.State())
	}
}

func TestAbandonFrameReturnsToIdle(t *testing.T) {
	sync := &FrameSync{state: FrameAcquired, frameNumber: 7}
	sync.AbandonFrame()
	if sync.State() != FrameIdle {
		t.Errorf("expected idle state, got %s", sync.State())
	}
	if sync.FrameNumber() != 7 {
		t.Errorf("abandoned frame must not count as completed, counter at %d", sync.FrameNumber())
	}
}

// Abandoning an acquired frame leaves the acquire semaphore signaled with
// nothing waiting on it. The next BeginFrame must flush that signal, so
// the abandon has to record it.
func TestAbandonFrameMarksOrphanedAcquire(t *testing.T) {
	for _, state := range []FrameState{FrameAcquired, FrameRecording} {
		sync := &FrameSync{state: state}
		sync.AbandonFrame()
		if !sync.staleAcquire {
			t.Errorf("abandon from %s should flag the orphaned acquire signal", state)
		}
		if sync.State() != FrameIdle {
			t.Errorf("abandon from %s should return to idle, got %s", state, sync.State())
		}
	}

	// Nothing was acquired, nothing to flush.
	idle := &FrameSync{state: FrameIdle}
	idle.AbandonFrame()
	if idle.staleAcquire {
		t.Error("abandon from idle should not flag a flush")
	}
}
