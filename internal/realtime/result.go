package realtime

// Result is the outcome of applying one mutation task: how many
// entities in the batch were applied, how many were skipped, and why.
// A batch partially failing is normal, not exceptional. Results are
// produced once per task execution, handed to the metrics sink and
// then discarded.
type Result struct {
	FeedID  string
	Success int
	Failure int
	Reasons map[string]int
}

func newResult(feedID string) Result {
	return Result{FeedID: feedID, Reasons: make(map[string]int)}
}

func (r *Result) ok() {
	r.Success++
}

func (r *Result) fail(reason string) {
	r.Failure++
	r.Reasons[reason]++
}
