// Package submit implements the IndexNow submission core: queueing changed
// URLs, flushing them in rate-limited batches, the sitemap side channel and
// key verification.
package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/indexnow"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// bodyPrefixLimit caps how much of an error response body is kept.
const bodyPrefixLimit = 500

// Service orchestrates queueing and submission. Scheduler and Logger are
// optional; all other fields are required.
type Service struct {
	Settings  indexnow.SettingsStore
	Queue     indexnow.QueueStore
	State     indexnow.StateStore
	Scheduler indexnow.Scheduler
	Client    indexnow.HTTPClient
	Logger    *slog.Logger

	// PublicTypes restricts configurable resource types. Empty allows any.
	PublicTypes []string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	flights singleflight.Group
}

// Config loads a fresh config snapshot.
func (s *Service) Config(ctx context.Context) (*indexnow.Config, error) {
	return indexnow.LoadConfig(ctx, s.Settings, s.PublicTypes)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SubmitURLs validates urls and POSTs them to the configured endpoint in a
// single request. The returned record describes the outcome; it is not stored.
// Local validation failures are returned as failed records without any
// network call.
func (s *Service) SubmitURLs(ctx context.Context, cfg *indexnow.Config, urls []string) *indexnow.ResultRecord {
	status, submitted, err := s.submitURLs(ctx, cfg, urls)
	rec := &indexnow.ResultRecord{
		ID:       uuid.New().String(),
		Time:     s.now().UTC(),
		OK:       err == nil,
		Endpoint: cfg.Endpoint,
	}
	if err != nil {
		rec.ErrorCode = indexnow.ErrorCode(err)
		rec.ErrorMessage = indexnow.ErrorMessage(err)
		rec.Status = indexnow.ErrorStatus(err)
		rec.ErrorBody = indexnow.ErrorBody(err)
		if cfg.Debug {
			s.logger().Warn("submit failed",
				"id", rec.ID,
				"code", rec.ErrorCode,
				"status", rec.Status,
				"message", rec.ErrorMessage,
			)
		}
		return rec
	}

	rec.Submitted = submitted
	rec.Status = status
	if cfg.Debug {
		s.logger().Info("submit ok", "id", rec.ID, "count", rec.Submitted)
	}
	return rec
}

// submitURLs returns the response status and the number of URLs sent.
func (s *Service) submitURLs(ctx context.Context, cfg *indexnow.Config, urls []string) (int, int, error) {
	if !cfg.Enabled {
		return 0, 0, indexnow.Errorf(indexnow.EDISABLED, "IndexNow is disabled.")
	}
	urls = indexnow.NormalizeURLs(urls)
	if len(urls) == 0 {
		return 0, 0, indexnow.Errorf(indexnow.ENOVALIDURLS, "No valid URLs to submit.")
	}
	if cfg.Key == "" {
		return 0, 0, indexnow.Errorf(indexnow.EMISSINGKEY, "IndexNow key is not configured.")
	}
	if cfg.Endpoint == "" {
		return 0, 0, indexnow.Errorf(indexnow.EINVALIDENDPOINT, "IndexNow endpoint is invalid.")
	}
	host := cfg.Host()
	if host == "" {
		return 0, 0, indexnow.Errorf(indexnow.EINVALIDSITE, "Unable to determine site host.")
	}

	body, err := json.Marshal(indexnow.Payload{
		Host:        host,
		Key:         cfg.Key,
		KeyLocation: cfg.KeyLocationURL(),
		URLList:     urls,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, indexnow.SubmitTimeout)
	defer cancel()

	resp, err := s.Client.PostJSON(ctx, cfg.Endpoint, body)
	if err != nil {
		return 0, 0, indexnow.Errorf(indexnow.ETRANSPORT, "IndexNow request failed: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, 0, indexnow.HTTPErrorf(indexnow.EHTTP, resp.StatusCode, bodyPrefix(resp.Body),
			"IndexNow returned HTTP %d.", resp.StatusCode)
	}
	return resp.StatusCode, len(urls), nil
}

// bodyPrefix returns at most bodyPrefixLimit bytes of body without splitting
// a UTF-8 sequence.
func bodyPrefix(body []byte) string {
	if len(body) <= bodyPrefixLimit {
		return string(body)
	}
	return strings.ToValidUTF8(string(body[:bodyPrefixLimit]), "")
}
