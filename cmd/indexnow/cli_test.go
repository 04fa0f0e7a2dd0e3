package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/indexnow"
	main "github.com/fwojciec/indexnow/cmd/indexnow"
	"github.com/fwojciec/indexnow/memory"
	"github.com/fwojciec/indexnow/mock"
	"github.com/fwojciec/indexnow/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// endpoint answers IndexNow POSTs with status and serves the key file.
type endpoint struct {
	mu     sync.Mutex
	status int
	posts  []indexnow.Payload
}

func (e *endpoint) client() *mock.HTTPClient {
	return &mock.HTTPClient{
		PostJSONFn: func(_ context.Context, _ string, body []byte) (*indexnow.Response, error) {
			var p indexnow.Payload
			if err := json.Unmarshal(body, &p); err != nil {
				return nil, err
			}
			e.mu.Lock()
			defer e.mu.Unlock()
			e.posts = append(e.posts, p)
			return &indexnow.Response{StatusCode: e.status, Body: []byte("server says no")}, nil
		},
		GetFn: func(_ context.Context, url string) (*indexnow.Response, error) {
			if strings.HasSuffix(url, "/abc12345.txt") {
				return &indexnow.Response{StatusCode: http.StatusOK, Body: []byte("abc12345")}, nil
			}
			return &indexnow.Response{StatusCode: http.StatusNotFound}, nil
		},
	}
}

func (e *endpoint) sent() []indexnow.Payload {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]indexnow.Payload(nil), e.posts...)
}

type harness struct {
	deps     *main.Dependencies
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	endpoint *endpoint
}

func newHarness(t *testing.T, settings indexnow.Settings) *harness {
	t.Helper()

	h := &harness{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		endpoint: &endpoint{status: http.StatusOK},
	}
	svc := &submit.Service{
		Settings:  memory.NewSettingsStore(settings),
		Queue:     memory.NewQueueStore(),
		State:     memory.NewStateStore(),
		Scheduler: memory.NewScheduler(),
		Client:    h.endpoint.client(),
	}
	h.deps = &main.Dependencies{
		Ctx:     context.Background(),
		Stdout:  h.stdout,
		Stderr:  h.stderr,
		Service: svc,
	}
	return h
}

func (h *harness) count(t *testing.T) int {
	t.Helper()
	n, err := h.deps.Service.Count(context.Background())
	require.NoError(t, err)
	return n
}

func siteSettings() indexnow.Settings {
	return indexnow.Settings{
		indexnow.SettingKey:     "abc12345",
		indexnow.SettingSiteURL: "https://example.com",
	}
}

func TestEnqueueCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("queues valid URLs and skips invalid ones", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		cmd := &main.EnqueueCmd{URLs: []string{"https://example.com/a", "nope", "https://example.com/b"}}
		err := cmd.Run(h.deps)

		require.NoError(t, err)
		assert.Contains(t, h.stdout.String(), "Queued 2 URLs (2 pending)")
		assert.Contains(t, h.stderr.String(), `skipping invalid URL "nope"`)
		assert.Equal(t, 2, h.count(t))
		assert.Empty(t, h.endpoint.sent())
	})

	t.Run("flushes when asked", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		cmd := &main.EnqueueCmd{URLs: []string{"https://example.com/a"}, Flush: true}
		err := cmd.Run(h.deps)

		require.NoError(t, err)
		assert.Contains(t, h.stdout.String(), "Submitted 1 URLs")
		require.Len(t, h.endpoint.sent(), 1)
		assert.Zero(t, h.count(t))
	})

	t.Run("adds sitemap URLs", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())
		h.deps.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, cfg *indexnow.Config, filter *indexnow.URLFilter) ([]string, error) {
				assert.Equal(t, "https://example.com", cfg.SiteURL)
				require.NotNil(t, filter)
				urls := []string{}
				for _, u := range []string{"https://example.com/blog/1", "https://example.com/about"} {
					if filter.Match(u) {
						urls = append(urls, u)
					}
				}
				return urls, nil
			},
		}

		cmd := &main.EnqueueCmd{FromSitemap: true, Filter: []string{"/blog/"}}
		err := cmd.Run(h.deps)

		require.NoError(t, err)
		assert.Equal(t, 1, h.count(t))
	})

	t.Run("reports sitemap errors", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())
		h.deps.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(context.Context, *indexnow.Config, *indexnow.URLFilter) ([]string, error) {
				return nil, indexnow.Errorf(indexnow.EINVALIDSITE, "Site URL is not configured.")
			},
		}

		cmd := &main.EnqueueCmd{FromSitemap: true}
		err := cmd.Run(h.deps)

		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "error: Site URL is not configured.")
	})

	t.Run("rejects an invalid filter", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())
		h.deps.Sitemaps = &mock.SitemapService{}

		cmd := &main.EnqueueCmd{FromSitemap: true, Filter: []string{"("}}
		err := cmd.Run(h.deps)

		assert.Equal(t, indexnow.EINVALID, indexnow.ErrorCode(err))
	})

	t.Run("requires URLs", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		err := (&main.EnqueueCmd{}).Run(h.deps)

		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "--from-sitemap")
	})

	t.Run("refuses while disabled", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, indexnow.Settings{indexnow.SettingEnabled: false})

		err := (&main.EnqueueCmd{URLs: []string{"https://example.com/a"}}).Run(h.deps)

		assert.Equal(t, indexnow.EDISABLED, indexnow.ErrorCode(err))
		assert.Zero(t, h.count(t))
	})
}

func TestEventCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("queues a published post", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		cmd := &main.EventCmd{Kind: "published", URL: "https://example.com/a", Type: "post", Status: "publish", Flush: true}
		err := cmd.Run(h.deps)

		require.NoError(t, err)
		assert.Contains(t, h.stdout.String(), "Queued https://example.com/a")
		assert.Len(t, h.endpoint.sent(), 1)
	})

	t.Run("ignores drafts", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		cmd := &main.EventCmd{Kind: "updated", URL: "https://example.com/a", Type: "post", Status: "draft"}
		err := cmd.Run(h.deps)

		require.NoError(t, err)
		assert.Contains(t, h.stdout.String(), "Ignored")
		assert.Zero(t, h.count(t))
	})
}

func TestSubmitCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports an empty queue", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		err := (&main.SubmitCmd{}).Run(h.deps)

		require.NoError(t, err)
		assert.Contains(t, h.stdout.String(), "Nothing to submit.")
	})

	t.Run("reports deferral and forces", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())
		require.NoError(t, h.deps.Service.Enqueue(context.Background(), "https://example.com/a"))
		require.NoError(t, (&main.SubmitCmd{}).Run(h.deps))
		require.NoError(t, h.deps.Service.Enqueue(context.Background(), "https://example.com/b"))

		require.NoError(t, (&main.SubmitCmd{}).Run(h.deps))
		assert.Contains(t, h.stdout.String(), "deferred")
		assert.Len(t, h.endpoint.sent(), 1)

		require.NoError(t, (&main.SubmitCmd{Force: true}).Run(h.deps))
		assert.Len(t, h.endpoint.sent(), 2)
		assert.Zero(t, h.count(t))
	})

	t.Run("returns delivery failures", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())
		h.endpoint.status = http.StatusForbidden
		require.NoError(t, h.deps.Service.Enqueue(context.Background(), "https://example.com/a"))

		err := (&main.SubmitCmd{}).Run(h.deps)

		assert.Equal(t, indexnow.EHTTP, indexnow.ErrorCode(err))
		assert.Contains(t, h.stderr.String(), "error: IndexNow returned HTTP 403.")
		assert.Equal(t, 1, h.count(t))
	})
}

func TestSitemapCmd_Run(t *testing.T) {
	t.Parallel()

	h := newHarness(t, map[string]any{
		indexnow.SettingKey:           "abc12345",
		indexnow.SettingSiteURL:       "https://example.com",
		indexnow.SettingSubmitSitemap: true,
	})

	require.NoError(t, (&main.SitemapCmd{}).Run(h.deps))
	require.NoError(t, (&main.SitemapCmd{}).Run(h.deps))

	assert.Contains(t, h.stdout.String(), "Submitted sitemap")
	assert.Contains(t, h.stdout.String(), "Sitemap not submitted")
	sent := h.endpoint.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"https://example.com/sitemap.xml"}, sent[0].URLList)
}

func TestQueueCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists queued URLs oldest first", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())
		require.NoError(t, h.deps.Service.Enqueue(context.Background(), "https://example.com/a"))
		require.NoError(t, h.deps.Service.Enqueue(context.Background(), "https://example.com/b"))

		require.NoError(t, (&main.QueueCmd{}).Run(h.deps))

		out := h.stdout.String()
		assert.Less(t, strings.Index(out, "https://example.com/a"), strings.Index(out, "https://example.com/b"))
	})

	t.Run("limits output", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())
		require.NoError(t, h.deps.Service.Enqueue(context.Background(), "https://example.com/a"))
		require.NoError(t, h.deps.Service.Enqueue(context.Background(), "https://example.com/b"))

		require.NoError(t, (&main.QueueCmd{Limit: 1}).Run(h.deps))

		assert.NotContains(t, h.stdout.String(), "https://example.com/b")
	})

	t.Run("reports an empty queue", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		require.NoError(t, (&main.QueueCmd{}).Run(h.deps))

		assert.Contains(t, h.stdout.String(), "Queue is empty")
	})
}

func TestClearCmd_Run(t *testing.T) {
	t.Parallel()

	h := newHarness(t, siteSettings())
	require.NoError(t, h.deps.Service.Enqueue(context.Background(), "https://example.com/a"))

	require.NoError(t, (&main.ClearCmd{}).Run(h.deps))

	assert.Contains(t, h.stdout.String(), "Queue cleared.")
	assert.Zero(t, h.count(t))
	assert.Empty(t, h.endpoint.sent())
}

func TestVerifyCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports a reachable key", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		require.NoError(t, (&main.VerifyCmd{}).Run(h.deps))

		assert.Contains(t, h.stdout.String(), "https://example.com/abc12345.txt")
	})

	t.Run("reports an unreachable key", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, map[string]any{
			indexnow.SettingKey:     "zzz12345",
			indexnow.SettingSiteURL: "https://example.com",
		})

		err := (&main.VerifyCmd{}).Run(h.deps)

		assert.Equal(t, indexnow.EKEYNOTREACHABLE, indexnow.ErrorCode(err))
		assert.Contains(t, h.stderr.String(), "HTTP 404")
	})
}

func TestStatusCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints a summary", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())
		h.endpoint.status = http.StatusTooManyRequests
		require.NoError(t, h.deps.Service.Enqueue(context.Background(), "https://example.com/a"))
		_, err := h.deps.Service.Flush(context.Background())
		require.NoError(t, err)

		require.NoError(t, (&main.StatusCmd{}).Run(h.deps))

		out := h.stdout.String()
		assert.Contains(t, out, "Enabled:      yes")
		assert.Contains(t, out, "Queued URLs:  1")
		assert.Contains(t, out, "Last submit:  never")
		assert.Contains(t, out, "HttpError")
		assert.Contains(t, out, "server says no")
	})

	t.Run("prints JSON", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		require.NoError(t, (&main.StatusCmd{JSON: true}).Run(h.deps))

		var st indexnow.Status
		require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &st))
		assert.True(t, st.Enabled)
		assert.Nil(t, st.Last)
	})
}

func TestSettingsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("shows settings with the key masked", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		require.NoError(t, (&main.SettingsShowCmd{}).Run(h.deps))

		out := h.stdout.String()
		assert.Contains(t, out, "key: abc1****")
		assert.Contains(t, out, "site_url: https://example.com")
		assert.Contains(t, out, "max_urls_per_submit: 100")
		assert.NotContains(t, out, "abc12345")
	})

	t.Run("reveals the key on request", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		require.NoError(t, (&main.SettingsShowCmd{Reveal: true}).Run(h.deps))

		assert.Contains(t, h.stdout.String(), "key: abc12345")
	})

	t.Run("sets typed values", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)

		cmd := &main.SettingsSetCmd{Pairs: []string{
			"key=12345678",
			"site_url=https://example.org/",
			"max_urls_per_submit=25",
			"submit_sitemap=true",
			"post_types=[post, product]",
		}}
		require.NoError(t, cmd.Run(h.deps))

		cfg, err := h.deps.Service.Config(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "12345678", cfg.Key)
		assert.Equal(t, "https://example.org", cfg.SiteURL)
		assert.Equal(t, 25, cfg.MaxURLsPerSubmit)
		assert.True(t, cfg.SubmitSitemap)
		assert.Equal(t, []string{"post", "product"}, cfg.ResourceTypes)
		assert.Contains(t, h.stdout.String(), "Settings saved.")
	})

	t.Run("rejects malformed pairs", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)

		err := (&main.SettingsSetCmd{Pairs: []string{"enabled"}}).Run(h.deps)

		assert.Equal(t, indexnow.EINVALID, indexnow.ErrorCode(err))
		assert.Contains(t, h.stderr.String(), "expected name=value")
	})

	t.Run("rejects unknown settings", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)

		err := (&main.SettingsSetCmd{Pairs: []string{"colour=blue"}}).Run(h.deps)

		assert.Equal(t, indexnow.EINVALID, indexnow.ErrorCode(err))
	})

	t.Run("rejects a malformed key", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		err := (&main.SettingsSetCmd{Pairs: []string{"key=abc123"}}).Run(h.deps)

		assert.Equal(t, indexnow.EINVALID, indexnow.ErrorCode(err))
		cfg, cfgErr := h.deps.Service.Config(context.Background())
		require.NoError(t, cfgErr)
		assert.Equal(t, "abc12345", cfg.Key)
	})
}

func TestRunDueCmd_Run(t *testing.T) {
	t.Parallel()

	h := newHarness(t, siteSettings())

	require.NoError(t, (&main.RunDueCmd{}).Run(h.deps))

	assert.Contains(t, h.stdout.String(), "No tasks due.")
}

func TestPurgeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("requires --force without opt-in", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())

		err := (&main.PurgeCmd{}).Run(h.deps)

		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "--force")
	})

	t.Run("purges with --force", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())
		require.NoError(t, h.deps.Service.Enqueue(context.Background(), "https://example.com/a"))

		require.NoError(t, (&main.PurgeCmd{Force: true}).Run(h.deps))

		assert.Zero(t, h.count(t))
		cfg, err := h.deps.Service.Config(context.Background())
		require.NoError(t, err)
		assert.Empty(t, cfg.Key)
	})

	t.Run("reports store failures", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, siteSettings())
		h.deps.Service.Queue = &mock.QueueStore{
			ClearFn: func(context.Context) error { return errors.New("database is locked") },
		}

		err := (&main.PurgeCmd{Force: true}).Run(h.deps)

		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "error: Internal error.")
	})
}
