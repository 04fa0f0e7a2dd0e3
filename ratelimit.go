package indexnow

import "time"

const (
	// SitemapCooldown is the minimum interval between sitemap submissions.
	SitemapCooldown = 12 * time.Hour

	// SubmitLease bounds how long a claimed submit slot stays held if its
	// holder never releases it. It must exceed SubmitTimeout.
	SubmitLease = 30 * time.Second
)

// AllowGeneralSubmit reports whether a queue flush may dispatch at now, given
// the time of the last successful submission.
func AllowGeneralSubmit(now, lastSuccessfulSubmitAt time.Time, minInterval time.Duration) bool {
	if minInterval <= 0 {
		return true
	}
	return now.Sub(lastSuccessfulSubmitAt) >= minInterval
}

// AllowSitemapSubmit reports whether the sitemap may be submitted at now.
// It runs on its own clock, independent of AllowGeneralSubmit.
func AllowSitemapSubmit(now, lastSitemapSubmitAt time.Time, cooldown time.Duration) bool {
	if cooldown <= 0 {
		return true
	}
	return now.Sub(lastSitemapSubmitAt) >= cooldown
}

// MinInterval returns the configured minimum interval between submissions.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.MinSecondsBetweenSubmits) * time.Second
}
