package testutil

import (
	"os"
	"strconv"
	"time"

	"github.com/rexlang/rex/pkg/env"
)

// ScaledMs returns ms milliseconds, scaled by the REX_TEST_TIME_SCALE
// environment variable. If the variable does not exist, the scale defaults
// to 1.
func ScaledMs(ms int) time.Duration {
	return time.Duration(
		float64(ms) * float64(time.Millisecond) * getTestTimeScale())
}

func getTestTimeScale() float64 {
	scaleVar := os.Getenv(env.REX_TEST_TIME_SCALE)
	if scaleVar == "" {
		return 1
	}
	scale, err := strconv.ParseFloat(scaleVar, 64)
	if err != nil || scale <= 0 {
		return 1
	}
	return scale
}
