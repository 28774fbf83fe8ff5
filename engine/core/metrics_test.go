package core

import "testing"

func TestMetricsAveragesFrameTime(t *testing.T) {
	MetricsInitialize()
	metricsState = &MetricsState{}

	// 60 frames at a steady 16ms.
	for i := 0; i < int(FRAME_SAMPLE_COUNT); i++ {
		MetricsUpdate(0.016)
	}

	avg := MetricsFrameTime()
	if avg < 15.9 || avg > 16.1 {
		t.Errorf("expected ~16ms average frame time, got %fms", avg)
	}
}

func TestMetricsCountsFramesPerSecond(t *testing.T) {
	MetricsInitialize()
	metricsState = &MetricsState{}

	// 30 frames spanning just over one second.
	for i := 0; i < 30; i++ {
		MetricsUpdate(0.034)
	}

	if fps := MetricsFPS(); fps < 28 || fps > 31 {
		t.Errorf("expected roughly 30 fps, got %f", fps)
	}
}
