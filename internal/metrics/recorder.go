package metrics

import "time"

// PageOutcome is what happened to one page during the output stage.
type PageOutcome string

const (
	OutcomeOutputNormally       PageOutcome = "output_normally"
	OutcomeSkippedBecauseEmpty  PageOutcome = "skipped_because_empty"
	OutcomeSkippedBecauseStatus PageOutcome = "skipped_because_status"
	OutcomeUnchanged            PageOutcome = "unchanged"
)

// RunOutcome is the final status of a pull.
type RunOutcome string

const (
	RunSuccess  RunOutcome = "success"
	RunFailed   RunOutcome = "failed"
	RunCanceled RunOutcome = "canceled"
)

// Recorder defines the metrics a pull reports. Implementations must be safe
// for use from the retry executor and the remote client.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome RunOutcome)
	AddPageOutcome(outcome PageOutcome, n int)
	ObserveRemoteCall(operation string, d time.Duration, success bool)
	IncRetry(operation string)
	IncRetryExhausted(operation string)
	SetPagesDiscovered(n int)
	SetFilesRemoved(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)    {}
func (NoopRecorder) ObserveRunDuration(time.Duration)              {}
func (NoopRecorder) IncRunOutcome(RunOutcome)                      {}
func (NoopRecorder) AddPageOutcome(PageOutcome, int)               {}
func (NoopRecorder) ObserveRemoteCall(string, time.Duration, bool) {}
func (NoopRecorder) IncRetry(string)                               {}
func (NoopRecorder) IncRetryExhausted(string)                      {}
func (NoopRecorder) SetPagesDiscovered(int)                        {}
func (NoopRecorder) SetFilesRemoved(int)                           {}
