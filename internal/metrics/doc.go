// Package metrics records pull run metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing has to check for nil:
//
//	type Puller struct {
//	    recorder metrics.Recorder
//	}
//
// A pull is a short-lived batch job with nothing to scrape, so the Prometheus
// recorder is exported by writing the node_exporter textfile format at the
// end of each run (see WriteTextfile). The schedule command keeps one recorder
// for its lifetime, so counters accumulate across runs.
package metrics
