package train

import (
	"log"
	"time"
)

// EpochReport summarizes one epoch.
type EpochReport struct {
	Epoch    int           // 1-based epoch number
	Epochs   int           // Configured epoch count
	MeanLoss float64       // Mean of the per-batch losses
	Batches  int           // Number of steps taken
	Samples  int           // Number of samples consumed
	Duration time.Duration // Wall time for the epoch
}

// Reporter is the sink for per-epoch results.
type Reporter interface {
	ReportEpoch(EpochReport)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(EpochReport)

// ReportEpoch calls f(r).
func (f ReporterFunc) ReportEpoch(r EpochReport) { f(r) }

// LogReporter writes one line per epoch to a standard logger.
type LogReporter struct {
	Logger *log.Logger // nil uses the standard logger
}

// ReportEpoch logs r.
func (l LogReporter) ReportEpoch(r EpochReport) {
	logf := log.Printf
	if l.Logger != nil {
		logf = l.Logger.Printf
	}
	logf("epoch=%d/%d batches=%d samples=%d loss=%.4f duration_ms=%.1f",
		r.Epoch, r.Epochs, r.Batches, r.Samples, r.MeanLoss, float64(r.Duration.Microseconds())/1000)
}

// History records every report in memory.
type History struct {
	Reports []EpochReport
}

// ReportEpoch appends r.
func (h *History) ReportEpoch(r EpochReport) {
	h.Reports = append(h.Reports, r)
}

// Losses returns the mean loss of every recorded epoch.
func (h *History) Losses() []float64 {
	losses := make([]float64, len(h.Reports))
	for i, r := range h.Reports {
		losses[i] = r.MeanLoss
	}
	return losses
}

// Multi fans a report out to several reporters.
type Multi []Reporter

// ReportEpoch forwards r to every reporter in order.
func (m Multi) ReportEpoch(r EpochReport) {
	for _, rep := range m {
		rep.ReportEpoch(r)
	}
}
