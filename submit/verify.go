package submit

import (
	"context"
	"net/http"
	"strings"

	"github.com/fwojciec/indexnow"
)

// emptyKeyNote is attached to a successful check whose key file is empty.
const emptyKeyNote = "Key file is reachable but empty. This may still work, but check your setup."

// VerifyKey checks that the key file is publicly readable at the key location.
func (s *Service) VerifyKey(ctx context.Context) (*indexnow.KeyCheck, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	return s.verifyKey(ctx, cfg)
}

func (s *Service) verifyKey(ctx context.Context, cfg *indexnow.Config) (*indexnow.KeyCheck, error) {
	if cfg.Key == "" {
		return nil, indexnow.Errorf(indexnow.EMISSINGKEY, "IndexNow key is not configured.")
	}
	keyURL := cfg.KeyLocationURL()
	if keyURL == "" {
		return nil, indexnow.Errorf(indexnow.EINVALIDSITE, "Unable to determine the key location: site URL is not configured.")
	}

	ctx, cancel := context.WithTimeout(ctx, indexnow.SubmitTimeout)
	defer cancel()

	resp, err := s.Client.Get(ctx, keyURL)
	if err != nil {
		return nil, indexnow.Errorf(indexnow.ETRANSPORT, "Key location request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, indexnow.HTTPErrorf(indexnow.EKEYNOTREACHABLE, resp.StatusCode, bodyPrefix(resp.Body),
			"Key location returned HTTP %d.", resp.StatusCode)
	}

	check := &indexnow.KeyCheck{URL: keyURL}
	if strings.TrimSpace(string(resp.Body)) == "" {
		check.Note = emptyKeyNote
	}
	return check, nil
}
