package driver

import "time"

// Stage describes a high-level phase of a run.
type Stage string

const (
	// StageLoad reads files from disk.
	StageLoad Stage = "load"
	// StageAnalyze lexes a file and scans its trivia.
	StageAnalyze Stage = "analyze"
	// StageFix applies fixes to a file.
	StageFix Stage = "fix"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file, or for the whole run when File is empty.
type Event struct {
	File     string
	Stage    Stage
	Status   Status
	Err      error
	Elapsed  time.Duration
	Findings int
	Cached   bool
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use; AnalyzeDir reports from worker goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
