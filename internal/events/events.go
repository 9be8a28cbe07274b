// Package events provides an event system for benchmark run notifications.
package events

import "time"

// Type represents the type of event
type Type string

const (
	// TypeRunStarted is emitted when a harness run begins
	TypeRunStarted Type = "run_started"
	// TypeCheckCompleted is emitted after each correctness check
	TypeCheckCompleted Type = "check_completed"
	// TypeBenchStarted is emitted when a benchmark phase begins
	TypeBenchStarted Type = "bench_started"
	// TypeBenchProgress is emitted periodically while a benchmark runs
	TypeBenchProgress Type = "bench_progress"
	// TypeBenchCompleted is emitted when a benchmark phase finishes
	TypeBenchCompleted Type = "bench_completed"
	// TypeConnectionLost is emitted when a connection fails mid-run
	TypeConnectionLost Type = "connection_lost"
	// TypeRunCompleted is emitted when the whole harness run finishes
	TypeRunCompleted Type = "run_completed"
)

// Event represents a single harness lifecycle notification
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Run       string    `json:"run,omitempty"`
	Data      Data      `json:"data,omitempty"`
}

// Data contains event-specific payload fields
type Data struct {
	Check      string  `json:"check,omitempty"`
	Passed     bool    `json:"passed,omitempty"`
	Test       string  `json:"test,omitempty"`
	Client     int     `json:"client,omitempty"`
	Operations uint64  `json:"operations,omitempty"`
	Errors     uint64  `json:"errors,omitempty"`
	Throughput float64 `json:"throughput,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// NewRunStarted creates a run start event
func NewRunStarted(run string) Event {
	return Event{Type: TypeRunStarted, Timestamp: time.Now(), Run: run}
}

// NewCheckCompleted creates a correctness check completion event
func NewCheckCompleted(run, check string, passed bool) Event {
	return Event{
		Type:      TypeCheckCompleted,
		Timestamp: time.Now(),
		Run:       run,
		Data:      Data{Check: check, Passed: passed},
	}
}

// NewBenchStarted creates a benchmark phase start event
func NewBenchStarted(run, test string) Event {
	return Event{
		Type:      TypeBenchStarted,
		Timestamp: time.Now(),
		Run:       run,
		Data:      Data{Test: test},
	}
}

// NewBenchProgress creates a benchmark progress event
func NewBenchProgress(run, test string, ops, errs uint64) Event {
	return Event{
		Type:      TypeBenchProgress,
		Timestamp: time.Now(),
		Run:       run,
		Data:      Data{Test: test, Operations: ops, Errors: errs},
	}
}

// NewBenchCompleted creates a benchmark phase completion event
func NewBenchCompleted(run, test string, ops, errs uint64, throughput float64) Event {
	return Event{
		Type:      TypeBenchCompleted,
		Timestamp: time.Now(),
		Run:       run,
		Data:      Data{Test: test, Operations: ops, Errors: errs, Throughput: throughput},
	}
}

// NewConnectionLost creates a connection failure event
func NewConnectionLost(run string, clientID int, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      TypeConnectionLost,
		Timestamp: time.Now(),
		Run:       run,
		Data:      Data{Client: clientID, Error: errMsg},
	}
}

// NewRunCompleted creates a run completion event
func NewRunCompleted(run string) Event {
	return Event{Type: TypeRunCompleted, Timestamp: time.Now(), Run: run}
}
