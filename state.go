package indexnow

import (
	"context"
	"time"
)

// ResultRecord is the outcome of the most recent submission attempt.
// Only one record exists at a time; each attempt overwrites it.
type ResultRecord struct {
	ID           string    `json:"id"`
	Time         time.Time `json:"time"`
	OK           bool      `json:"ok"`
	Endpoint     string    `json:"endpoint,omitempty"`
	Submitted    int       `json:"submitted,omitempty"`
	Status       int       `json:"status,omitempty"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`

	// ErrorBody holds the start of the response body for HttpError failures.
	ErrorBody string `json:"errorBody,omitempty"`
}

// Err reconstructs the failure as an *Error, or returns nil for a success.
func (r *ResultRecord) Err() error {
	if r == nil || r.OK {
		return nil
	}
	return &Error{Code: r.ErrorCode, Message: r.ErrorMessage, Status: r.Status, Body: r.ErrorBody}
}

// StateStore holds the rate-limit clocks and the last ResultRecord.
//
// ClaimSubmit and ClaimSitemap are the critical sections that serialize
// concurrent flushes: each checks its clock and records the claim in one
// atomic step.
type StateStore interface {
	// ClaimSubmit reserves the general submit slot. It returns false if
	// AllowGeneralSubmit rejects now or another unexpired lease is held.
	// A successful claim holds a lease that expires after lease.
	ClaimSubmit(ctx context.Context, now time.Time, minInterval, lease time.Duration) (bool, error)

	// ReleaseSubmit drops the lease. If success is true the last successful
	// submit time is set to now.
	ReleaseSubmit(ctx context.Context, now time.Time, success bool) error

	// ResetSubmitClock forgets the last successful submit time so the next
	// flush is not rate limited.
	ResetSubmitClock(ctx context.Context) error

	// LastSubmitAt returns the last successful submit time, or the zero time.
	LastSubmitAt(ctx context.Context) (time.Time, error)

	// ClaimSitemap checks AllowSitemapSubmit and, if allowed, records now as
	// the last sitemap submission.
	ClaimSitemap(ctx context.Context, now time.Time, cooldown time.Duration) (bool, error)

	// SetResult overwrites the stored ResultRecord.
	SetResult(ctx context.Context, r *ResultRecord) error

	// Result returns the stored ResultRecord.
	// Returns ENOTFOUND if no attempt has been recorded.
	Result(ctx context.Context) (*ResultRecord, error)

	// PurgeState deletes the clocks, lease and ResultRecord.
	PurgeState(ctx context.Context) error
}

// Status summarizes the submitter for the administrative surface.
type Status struct {
	Enabled      bool          `json:"enabled"`
	Queue        int           `json:"queue"`
	LastSubmitAt time.Time     `json:"lastSubmitAt"`
	Last         *ResultRecord `json:"last,omitempty"`
}
