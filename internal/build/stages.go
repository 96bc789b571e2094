package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitepipe/internal/logfields"
	"git.home.luguber.info/inful/sitepipe/internal/metrics"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, st *State) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

type namedStage struct {
	name string
	fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first error. There is no partial-failure mode: a build either completes or
// fails with the original cause surfaced.
func runStages(ctx context.Context, st *State, stages []namedStage) error {
	for _, stage := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(stage.name, ctx.Err())
			st.Recorder.IncStageResult(stage.name, metrics.ResultCanceled)
			return se
		default:
		}

		t0 := time.Now()
		err := stage.fn(ctx, st)
		dur := time.Since(t0)
		st.Report.StageDurations[stage.name] = dur
		st.Recorder.ObserveStageDuration(stage.name, dur)
		slog.LogAttrs(ctx, slog.LevelDebug, "Stage finished",
			logfields.BuildID(st.Report.BuildID),
			logfields.Stage(stage.name),
			logfields.DurationMS(float64(dur.Milliseconds())))

		if err != nil {
			if se, ok := err.(*StageError); ok {
				switch se.Kind {
				case StageErrorCanceled:
					st.Recorder.IncStageResult(stage.name, metrics.ResultCanceled)
				default:
					st.Recorder.IncStageResult(stage.name, metrics.ResultFatal)
				}
				return se
			}
			st.Recorder.IncStageResult(stage.name, metrics.ResultFatal)
			return newFatalStageError(stage.name, err)
		}
		st.Recorder.IncStageResult(stage.name, metrics.ResultSuccess)
	}
	return nil
}
