package core

import "sync"

const FRAME_SAMPLE_COUNT uint8 = 60

// MetricsState tracks a rolling frame-time average and a once-per-second FPS
// figure, fed from the main loop clock.
type MetricsState struct {
	sampleCursor  uint8
	frameSamples  [FRAME_SAMPLE_COUNT]float64
	frameMSAvg    float64
	frames        int32
	accumulatedMS float64
	fps           float64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{}
	})
	return nil
}

// MetricsUpdate records one frame's elapsed time in seconds.
func MetricsUpdate(frameElapsed float64) {
	frameMS := frameElapsed * 1000.0

	metricsState.frameSamples[metricsState.sampleCursor] = frameMS
	if metricsState.sampleCursor == FRAME_SAMPLE_COUNT-1 {
		sum := 0.0
		for i := uint8(0); i < FRAME_SAMPLE_COUNT; i++ {
			sum += metricsState.frameSamples[i]
		}
		metricsState.frameMSAvg = sum / float64(FRAME_SAMPLE_COUNT)
	}
	metricsState.sampleCursor++
	metricsState.sampleCursor %= FRAME_SAMPLE_COUNT

	metricsState.accumulatedMS += frameMS
	if metricsState.accumulatedMS > 1000 {
		metricsState.fps = float64(metricsState.frames)
		metricsState.accumulatedMS -= 1000
		metricsState.frames = 0
	}
	metricsState.frames++
}

func MetricsFPS() float64 {
	return metricsState.fps
}

func MetricsFrameTime() float64 {
	return metricsState.frameMSAvg
}

func MetricsFrame() (float64, float64) {
	return metricsState.fps, metricsState.frameMSAvg
}
