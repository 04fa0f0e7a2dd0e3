package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/indexnow"
	"github.com/fwojciec/indexnow/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func urls(entries []*indexnow.QueueEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.URL
	}
	return out
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		for _, table := range []string{"queue", "submit_state", "settings", "scheduled_tasks"} {
			var n int
			err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
			require.NoError(t, err, table)
		}
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(filepath.Join(t.TempDir(), "test.db"))
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		var journalMode string
		err = db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})

	t.Run("reopening keeps data", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "test.db")
		ctx := context.Background()

		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		require.NoError(t, sqlite.NewQueueService(db).Put(ctx, indexnow.QueueEntry{URL: "https://example.com/a", EnqueuedAt: t0}, 10, 0))
		require.NoError(t, db.Close())

		db = sqlite.NewDB(path)
		require.NoError(t, db.Open())
		defer db.Close()

		n, err := sqlite.NewQueueService(db).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestQueueService_Put(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates and refreshes", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewQueueService(db)
		ctx := context.Background()

		require.NoError(t, svc.Put(ctx, indexnow.QueueEntry{URL: "https://example.com/a", EnqueuedAt: t0}, 10, 0))
		require.NoError(t, svc.Put(ctx, indexnow.QueueEntry{URL: "https://example.com/b", EnqueuedAt: t0}, 10, 0))
		require.NoError(t, svc.Put(ctx, indexnow.QueueEntry{URL: "https://example.com/a", EnqueuedAt: t0.Add(time.Minute)}, 10, 0))

		got, err := svc.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, []string{"https://example.com/b", "https://example.com/a"}, urls(got))
		assert.True(t, got[1].EnqueuedAt.Equal(t0.Add(time.Minute)))
	})

	t.Run("keeps the most recent entries at capacity", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewQueueService(db)
		ctx := context.Background()

		for i := range 10 {
			entry := indexnow.QueueEntry{URL: fmt.Sprintf("https://example.com/%d", i), EnqueuedAt: t0}
			require.NoError(t, svc.Put(ctx, entry, 4, 0))
		}

		got, err := svc.List(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://example.com/6",
			"https://example.com/7",
			"https://example.com/8",
			"https://example.com/9",
		}, urls(got))
	})

	t.Run("hides and drops expired entries", func(t *testing.T) {
		t.Parallel()

		now := t0
		db := setupTestDB(t)
		db.Now = func() time.Time { return now }
		svc := sqlite.NewQueueService(db)
		ctx := context.Background()

		require.NoError(t, svc.Put(ctx, indexnow.QueueEntry{URL: "https://example.com/old", EnqueuedAt: now}, 10, time.Hour))
		now = now.Add(2 * time.Hour)

		n, err := svc.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, svc.Put(ctx, indexnow.QueueEntry{URL: "https://example.com/new", EnqueuedAt: now}, 10, time.Hour))
		got, err := svc.List(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/new"}, urls(got))
	})

	t.Run("concurrent puts lose nothing", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewQueueService(db)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				entry := indexnow.QueueEntry{URL: fmt.Sprintf("https://example.com/%d", i), EnqueuedAt: t0}
				assert.NoError(t, svc.Put(ctx, entry, indexnow.MaxQueueSize, 0))
			}()
		}
		wg.Wait()

		n, err := svc.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 50, n)
	})
}

func TestQueueService_ListRemove(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := sqlite.NewQueueService(db)
	ctx := context.Background()

	for _, u := range []string{"a", "b", "c"} {
		require.NoError(t, svc.Put(ctx, indexnow.QueueEntry{URL: "https://example.com/" + u, EnqueuedAt: t0}, 10, 0))
	}

	batch, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, urls(batch))

	require.NoError(t, svc.Remove(ctx, urls(batch)))

	rest, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/c"}, urls(rest))

	require.NoError(t, svc.Clear(ctx))
	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStateService_ClaimSubmit(t *testing.T) {
	t.Parallel()

	t.Run("lease blocks a second claim", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewStateService(setupTestDB(t))
		ctx := context.Background()

		ok, err := svc.ClaimSubmit(ctx, t0, 10*time.Second, indexnow.SubmitLease)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.ClaimSubmit(ctx, t0.Add(time.Second), 10*time.Second, indexnow.SubmitLease)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("success advances the clock", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewStateService(setupTestDB(t))
		ctx := context.Background()

		_, err := svc.ClaimSubmit(ctx, t0, 10*time.Second, indexnow.SubmitLease)
		require.NoError(t, err)
		require.NoError(t, svc.ReleaseSubmit(ctx, t0, true))

		last, err := svc.LastSubmitAt(ctx)
		require.NoError(t, err)
		assert.True(t, last.Equal(t0))

		ok, err := svc.ClaimSubmit(ctx, t0.Add(5*time.Second), 10*time.Second, indexnow.SubmitLease)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = svc.ClaimSubmit(ctx, t0.Add(11*time.Second), 10*time.Second, indexnow.SubmitLease)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("failure leaves the clock alone", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewStateService(setupTestDB(t))
		ctx := context.Background()

		_, err := svc.ClaimSubmit(ctx, t0, 10*time.Second, indexnow.SubmitLease)
		require.NoError(t, err)
		require.NoError(t, svc.ReleaseSubmit(ctx, t0, false))

		last, err := svc.LastSubmitAt(ctx)
		require.NoError(t, err)
		assert.True(t, last.IsZero())

		ok, err := svc.ClaimSubmit(ctx, t0.Add(time.Second), 10*time.Second, indexnow.SubmitLease)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reset clears the clock", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewStateService(setupTestDB(t))
		ctx := context.Background()

		require.NoError(t, svc.ReleaseSubmit(ctx, t0, true))
		require.NoError(t, svc.ResetSubmitClock(ctx))

		ok, err := svc.ClaimSubmit(ctx, t0.Add(time.Second), 10*time.Second, indexnow.SubmitLease)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("one winner across connections", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "state.db")
		ctx := context.Background()

		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 4 {
			db := sqlite.NewDB(path)
			require.NoError(t, db.Open())
			t.Cleanup(func() { db.Close() })
			svc := sqlite.NewStateService(db)

			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := svc.ClaimSubmit(ctx, t0, 10*time.Second, indexnow.SubmitLease)
				assert.NoError(t, err)
				if ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
	})
}

func TestStateService_ClaimSitemap(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewStateService(setupTestDB(t))
	ctx := context.Background()

	ok, err := svc.ClaimSitemap(ctx, t0, indexnow.SitemapCooldown)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.ClaimSitemap(ctx, t0.Add(11*time.Hour), indexnow.SitemapCooldown)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.ClaimSitemap(ctx, t0.Add(12*time.Hour+time.Second), indexnow.SitemapCooldown)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStateService_Result(t *testing.T) {
	t.Parallel()

	t.Run("returns not found before any attempt", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewStateService(setupTestDB(t))

		_, err := svc.Result(context.Background())
		require.Error(t, err)
		assert.Equal(t, indexnow.ENOTFOUND, indexnow.ErrorCode(err))
	})

	t.Run("round trips a failure", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewStateService(setupTestDB(t))
		ctx := context.Background()

		rec := &indexnow.ResultRecord{
			ID:           "b2d5c1c4-0000-4000-8000-000000000000",
			Time:         t0,
			Endpoint:     indexnow.DefaultEndpoint,
			Submitted:    2,
			Status:       500,
			ErrorCode:    indexnow.EHTTP,
			ErrorMessage: "IndexNow returned HTTP 500.",
			ErrorBody:    "boom",
		}
		require.NoError(t, svc.SetResult(ctx, rec))

		got, err := svc.Result(ctx)
		require.NoError(t, err)
		assert.Equal(t, indexnow.EHTTP, indexnow.ErrorCode(got.Err()))
		assert.Equal(t, 500, got.Status)
		assert.Equal(t, "boom", got.ErrorBody)
		assert.True(t, got.Time.Equal(t0))

		require.NoError(t, svc.PurgeState(ctx))
		_, err = svc.Result(ctx)
		assert.Equal(t, indexnow.ENOTFOUND, indexnow.ErrorCode(err))
	})
}

func TestSettingsService(t *testing.T) {
	t.Parallel()

	t.Run("empty before first save", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSettingsService(setupTestDB(t))

		got, err := svc.LoadSettings(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("saved settings normalize to the same config", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewSettingsService(setupTestDB(t))
		ctx := context.Background()

		cfg := indexnow.Normalize(indexnow.Settings{
			indexnow.SettingKey:              "abcdef12",
			indexnow.SettingSiteURL:          "https://example.com",
			indexnow.SettingMaxURLsPerSubmit: 25,
			indexnow.SettingResourceTypes:    []string{"post", "product"},
		}, nil)
		require.NoError(t, svc.SaveSettings(ctx, cfg.Settings()))

		loaded, err := indexnow.LoadConfig(ctx, svc, nil)
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)

		require.NoError(t, svc.DeleteSettings(ctx))
		got, err := svc.LoadSettings(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSchedulerService(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewSchedulerService(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, svc.Ensure(ctx, indexnow.TaskFlush, t0.Add(time.Minute)))
	require.NoError(t, svc.Ensure(ctx, indexnow.TaskFlush, t0.Add(time.Hour)))

	due, err := svc.ClaimDue(ctx, t0)
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = svc.ClaimDue(ctx, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{indexnow.TaskFlush}, due)

	due, err = svc.ClaimDue(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)

	require.NoError(t, svc.Ensure(ctx, indexnow.TaskFlush, t0))
	require.NoError(t, svc.Clear(ctx, indexnow.TaskFlush))
	due, err = svc.ClaimDue(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)
}
