package app

import (
	"go.opentelemetry.io/otel"

	"github.com/jsamuelsen/quotebox/internal/domain"
)

const instrumentationName = "github.com/jsamuelsen/quotebox/internal/app"

var tracer = otel.Tracer(instrumentationName)

// Submission outcomes reported to Recorder.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder receives business events. The Prometheus collectors in
// platform/metrics implement it.
type Recorder interface {
	QuoteViewed()
	VoteApplied(dir domain.Direction, state domain.VoteState)
	SubmissionRecorded(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) QuoteViewed() {}
func (nopRecorder) VoteApplied(domain.Direction, domain.VoteState) {}
func (nopRecorder) SubmissionRecorded(string) {}
