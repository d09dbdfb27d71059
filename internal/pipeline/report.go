package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mkaelin/limmat-events/internal/event"
)

// SourceReport summarizes one source within a run.
type SourceReport struct {
	Source     string        `json:"source"`
	Method     string        `json:"method"`
	Confidence float64       `json:"confidence"`
	Found      int           `json:"found"`
	Created    int           `json:"created"`
	Updated    int           `json:"updated"`
	Skipped    int           `json:"skipped"`
	Errors     []string      `json:"errors,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// Failed reports whether the source produced nothing and recorded
// errors.
func (sr SourceReport) Failed() bool {
	return sr.Found == 0 && len(sr.Errors) > 0
}

// Report summarizes a collection run.
type Report struct {
	RunID      uuid.UUID      `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []SourceReport `json:"sources"`

	// NewEvents lists the events created during this run, for
	// announcements.
	NewEvents []*event.Canonical `json:"new_events,omitempty"`
}

// NewReport starts an empty report with a fresh run ID.
func NewReport() *Report {
	return &Report{RunID: uuid.New(), StartedAt: time.Now().UTC()}
}

func (r *Report) TotalFound() int {
	n := 0
	for _, src := range r.Sources {
		n += src.Found
	}
	return n
}

func (r *Report) TotalCreated() int {
	n := 0
	for _, src := range r.Sources {
		n += src.Created
	}
	return n
}

func (r *Report) TotalUpdated() int {
	n := 0
	for _, src := range r.Sources {
		n += src.Updated
	}
	return n
}

func (r *Report) TotalSkipped() int {
	n := 0
	for _, src := range r.Sources {
		n += src.Skipped
	}
	return n
}

// Status grades the finished run for the run counter metric.
func (r *Report) Status(ctx context.Context) string {
	if ctx.Err() != nil {
		return "cancelled"
	}
	failed := 0
	for _, src := range r.Sources {
		if src.Failed() {
			failed++
		}
	}
	switch {
	case len(r.Sources) > 0 && failed == len(r.Sources):
		return "failed"
	case failed > 0:
		return "partial"
	default:
		return "ok"
	}
}
