package journal

import (
	"github.com/guileen/leakdetect/leak"
	"github.com/guileen/leakdetect/logger"
)

// Reporter mirrors every leak report into a journal before handing it to the
// wrapped reporter. Install it with Detector.SetReporter.
type Reporter struct {
	journal *Journal
	next    leak.Reporter
}

// NewReporter decorates next with journaling. A nil next falls back to the
// default log reporter.
func NewReporter(j *Journal, next leak.Reporter) *Reporter {
	if next == nil {
		next = leak.LogReporter{}
	}
	return &Reporter{journal: j, next: next}
}

// Enabled always reports true: the journal wants the rendered trail even when
// the wrapped reporter would not emit.
func (r *Reporter) Enabled() bool {
	return true
}

// ReportLeak journals the report, then forwards it.
func (r *Reporter) ReportLeak(rep leak.Report) {
	if err := r.journal.Append(rep); err != nil {
		logger.Warn("failed to journal leak report",
			"report_id", rep.ID.String(), "error", err.Error())
	}
	r.next.ReportLeak(rep)
}
