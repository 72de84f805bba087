package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Stage describes a phase of handling one file.
type Stage string

const (
	// StageParse is reading and parsing the file.
	StageParse Stage = "parse"
	// StageCheck is validating the parsed IR.
	StageCheck Stage = "check"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file checked clean.
	StatusDone Status = "done"
	// StatusError indicates parsing or validation failed.
	StatusError Status = "error"
)

// Event reports progress for one file.
type Event struct {
	File   string
	Stage  Stage
	Status Status
	Err    error
}

// ProgressSink consumes progress events.
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
	if sink != nil {
		sink.OnEvent(evt)
	}
}

// CheckFiles validates every file concurrently, at most jobs at a time
// (0 means one per CPU). Every file gets its own ir.Context, so workers
// never share mutable IR state. Results come back indexed like files;
// the returned error is non-nil only when ctx was cancelled.
func CheckFiles(ctx context.Context, files []string, jobs int, sink ProgressSink) ([]Result, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	for _, f := range files {
		emit(sink, Event{File: f, Stage: StageParse, Status: StatusQueued})
	}

	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for k, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[k] = Result{Path: f, Err: err}
				return err
			}
			emit(sink, Event{File: f, Stage: StageParse, Status: StatusWorking})
			res := CheckFile(f)
			results[k] = res
			if res.Err != nil {
				emit(sink, Event{File: f, Stage: StageCheck, Status: StatusError, Err: res.Err})
			} else {
				emit(sink, Event{File: f, Stage: StageCheck, Status: StatusDone})
			}
			return nil
		})
	}
	err := g.Wait()
	return results, err
}
