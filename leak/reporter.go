package leak

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/guileen/leakdetect/logger"
)

// Report describes one emitted leak.
type Report struct {
	ID           uuid.UUID `json:"id"`
	ResourceType string    `json:"resource_type"`
	// Records is the rendered access trail; empty for untraced leaks.
	Records string    `json:"records,omitempty"`
	Time    time.Time `json:"time"`
}

// Traced reports whether the leak carries an access trail.
func (r Report) Traced() bool {
	return r.Records != ""
}

// Message renders the stable, user-observable report line.
func (r Report) Message() string {
	if r.Traced() {
		return fmt.Sprintf("LEAK: %s.release() was not called before it's garbage-collected. "+
			"See https://github.com/guileen/leakdetect#reference-counted-resources for more information.%s",
			r.ResourceType, r.Records)
	}
	return fmt.Sprintf("LEAK: %s.release() was not called before it's garbage-collected. "+
		"Enable advanced leak reporting to find out where the leak occurred. "+
		"To enable advanced leak reporting, set the environment variable '%s=advanced' "+
		"or call leak.SetLevel() "+
		"See https://github.com/guileen/leakdetect#reference-counted-resources for more information.",
		r.ResourceType, PropLevel)
}

// Reporter receives leak reports. Implementations must be safe for concurrent
// use.
type Reporter interface {
	// Enabled reports whether emitting is currently worthwhile; when false
	// the detector retires reclaimed trackers without rendering their trails.
	Enabled() bool
	// ReportLeak delivers one deduplicated leak report.
	ReportLeak(Report)
}

// LogReporter is the default Reporter; it emits leak reports through the
// module logger at error level.
type LogReporter struct{}

// Enabled reports whether the logger would emit at error level.
func (LogReporter) Enabled() bool {
	return logger.Logger.Enabled(context.Background(), slog.LevelError)
}

// ReportLeak logs the report.
func (LogReporter) ReportLeak(r Report) {
	logger.Error(r.Message(),
		"resource_type", r.ResourceType, "report_id", r.ID.String())
}
