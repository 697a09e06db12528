package leak

import (
	"os"
	"strconv"
	"sync/atomic"

	"github.com/guileen/leakdetect/logger"
)

// Configuration keys consulted once at package initialization. The names are
// part of the module's external contract.
const (
	// PropLevel selects the detection level (variant name or ordinal).
	PropLevel = "io.netty.leakDetection.level"
	// PropLevelOld is the legacy spelling of PropLevel and is consulted only
	// when PropLevel is unset.
	PropLevelOld = "io.netty.leakDetectionLevel"
	// PropNoLeakDetection is a legacy boolean; a truthy value makes
	// LevelDisabled the default, which an explicit level key overrides.
	PropNoLeakDetection = "io.netty.noResourceLeakDetection"
	// PropTargetRecords sets the access-trail depth target.
	PropTargetRecords = "io.netty.leakDetection.targetRecords"
)

const (
	// DefaultSamplingInterval is used by NewDetector. A power of two keeps the
	// sampling draw cheap but is not required.
	DefaultSamplingInterval = 128
	// DefaultTargetRecords is the default access-trail depth target.
	DefaultTargetRecords = 4
)

// targetRecords is process-wide: trails back off probabilistically once they
// grow past it.
var targetRecords atomic.Int32

func init() {
	loadConfig(os.Getenv)
}

// loadConfig applies the environment-driven configuration. Split out from
// init so tests can drive it with a fake environment.
func loadConfig(getenv func(string) string) {
	def := DefaultLevel
	if v := getenv(PropNoLeakDetection); v != "" {
		if disabled, err := strconv.ParseBool(v); err == nil && disabled {
			def = LevelDisabled
		}
		logger.Warn("deprecated configuration key",
			"key", PropNoLeakDetection, "replacement", PropLevel)
	}

	levelStr := getenv(PropLevelOld)
	if v := getenv(PropLevel); v != "" {
		levelStr = v
	}
	lvl := def
	if levelStr != "" {
		lvl = ParseLevel(levelStr)
	}
	currentLevel.Store(int32(lvl))

	records := DefaultTargetRecords
	if v := getenv(PropTargetRecords); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			records = n
		}
	}
	targetRecords.Store(int32(records))

	logger.Debug("leak detection configured",
		"level", lvl.String(), "target_records", records)
}

// TargetRecords returns the process-wide access-trail depth target.
func TargetRecords() int {
	return int(targetRecords.Load())
}

// SetTargetRecords adjusts the access-trail depth target at runtime. Values
// at or below zero disable access recording entirely.
func SetTargetRecords(n int) {
	targetRecords.Store(int32(n))
}
