package realtime

import (
	"context"
	"log/slog"

	"transitgraph/internal/timetable"
)

// Tasks waiting to execute. Enqueue blocks when the queue is full so
// updates are never dropped silently; sources are network-paced and
// tolerate a briefly blocked enqueue.
const writerQueueDepth = 64

// Writer is the single path through which any shared timetable
// mutation happens, regardless of which feed produced the task. Tasks
// execute one at a time in submission order, each observing the state
// left by the previous one. Execution publishes a new snapshot with
// one atomic swap, so concurrent readers only ever see a timetable
// from before or after a task, never in between.
type Writer struct {
	tt     *timetable.Timetable
	tasks  chan Task
	sink   MetricsSink
	logger *slog.Logger
}

// NewWriter creates the writer for the given timetable.
func NewWriter(tt *timetable.Timetable, sink MetricsSink, logger *slog.Logger) *Writer {
	return &Writer{
		tt:     tt,
		tasks:  make(chan Task, writerQueueDepth),
		sink:   sink,
		logger: logger,
	}
}

// Enqueue schedules a task for exactly one serialized execution.
// Completion is only observable through a later snapshot read.
func (w *Writer) Enqueue(t Task) {
	w.tasks <- t
}

// Run executes queued tasks until the context is cancelled. It must
// run in exactly one goroutine.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case task := <-w.tasks:
			w.apply(task)
		case <-ctx.Done():
			w.logger.Info("graph writer stopped")
			return
		}
	}
}

func (w *Writer) apply(task Task) {
	b := w.tt.Snapshot().Builder()
	res := task.Apply(b)
	w.tt.Publish(b.Build())
	w.report(res)
}

// report guards the writer against the sink: a panicking sink must
// not take down the mutation path.
func (w *Writer) report(res Result) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("metrics sink panicked", "feed", res.FeedID, "panic", r)
		}
	}()
	w.sink.Report(res)
}
