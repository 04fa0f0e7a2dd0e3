package indexnow

// FlushState reports how a flush attempt ended.
type FlushState string

// FlushState constants.
const (
	// FlushIdle means nothing was attempted: disabled or empty queue.
	FlushIdle FlushState = "idle"
	// FlushDeferred means the rate limiter or a concurrent flush held the
	// slot. The queue is untouched.
	FlushDeferred FlushState = "deferred"
	// FlushSucceeded means the endpoint accepted the batch.
	FlushSucceeded FlushState = "succeeded"
	// FlushFailed means the batch was not accepted. See Record for why.
	FlushFailed FlushState = "failed"
)

// FlushResult describes one flush attempt.
type FlushResult struct {
	State FlushState `json:"state"`

	// URLs is the batch selected for submission, oldest first.
	URLs []string `json:"urls,omitempty"`

	// Record is the stored outcome. Nil for idle and deferred flushes.
	Record *ResultRecord `json:"record,omitempty"`
}

// KeyCheck is the result of a successful key verification.
type KeyCheck struct {
	URL string `json:"url"`

	// Note is an advisory message, set when the key file is reachable but empty.
	Note string `json:"note,omitempty"`
}
