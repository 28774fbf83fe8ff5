package math

import (
	"time"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/rand"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

var randSeeded bool = false

func seedOnce() {
	if !randSeeded {
		rand.Seed(uint64(time.Now().UnixNano()))
		randSeeded = true
	}
}

func RandomInRange(min, max int32) int32 {
	seedOnce()
	return (rand.Int31() % (max - min + 1)) + min
}

func FRandomInRange(min, max float32) float32 {
	seedOnce()
	return min + rand.Float32()*(max-min)
}
