// Package indexnow notifies IndexNow-style search endpoints when pages on a
// site change. Changed URLs are queued, deduplicated and submitted in
// rate-limited batches; the shared key can be verified at its public
// location.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, http/, viper/, chi/).
// The submission logic itself lives in submit/.
package indexnow
