package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/indexnow"
)

// Run executes the enqueue command.
func (c *EnqueueCmd) Run(deps *Dependencies) error {
	if len(c.URLs) == 0 && !c.FromSitemap {
		fmt.Fprintln(deps.Stderr, "error: give at least one URL or use --from-sitemap")
		return indexnow.Errorf(indexnow.EINVALID, "no URLs to enqueue")
	}

	cfg, err := deps.Service.Config(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	if !cfg.Enabled {
		fmt.Fprintln(deps.Stderr, "error: IndexNow is disabled. Run 'indexnow settings set enabled=true' to enable it.")
		return indexnow.Errorf(indexnow.EDISABLED, "IndexNow is disabled.")
	}

	urls := c.URLs
	if c.FromSitemap {
		discovered, err := c.discover(deps, cfg)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
			return err
		}
		urls = append(urls, discovered...)
	}

	queued := 0
	for _, raw := range urls {
		if _, ok := indexnow.NormalizeURL(raw); !ok {
			fmt.Fprintf(deps.Stderr, "skipping invalid URL %q\n", raw)
			continue
		}
		if err := deps.Service.Enqueue(deps.Ctx, raw); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
			return err
		}
		queued++
	}

	n, err := deps.Service.Count(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Queued %d URLs (%d pending)\n", queued, n)

	if !c.Flush {
		return nil
	}
	res, err := deps.Service.Flush(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	return printFlushResult(deps.Stdout, deps.Stderr, res)
}

func (c *EnqueueCmd) discover(deps *Dependencies, cfg *indexnow.Config) ([]string, error) {
	if deps.Sitemaps == nil {
		return nil, indexnow.Errorf(indexnow.EINTERNAL, "sitemap discovery is not available")
	}
	filter, err := indexnow.CompileURLFilter(c.Filter, c.Exclude)
	if err != nil {
		return nil, err
	}
	urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, cfg, filter)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		fmt.Fprintln(deps.Stderr, "No URLs found in sitemaps.")
	}
	if len(urls) > indexnow.MaxQueueSize {
		fmt.Fprintf(deps.Stderr, "Found %d URLs; only the newest %d stay queued.\n", len(urls), indexnow.MaxQueueSize)
	}
	return urls, nil
}

// printFlushResult describes a flush on w and returns the delivery failure,
// if any, as an error.
func printFlushResult(w, errw io.Writer, res *indexnow.FlushResult) error {
	switch res.State {
	case indexnow.FlushIdle:
		fmt.Fprintln(w, "Nothing to submit.")
	case indexnow.FlushDeferred:
		fmt.Fprintln(w, "Submission deferred: rate limited or another submission is in progress.")
	case indexnow.FlushSucceeded:
		fmt.Fprintf(w, "Submitted %d URLs to %s (HTTP %d)\n", res.Record.Submitted, res.Record.Endpoint, res.Record.Status)
	case indexnow.FlushFailed:
		err := res.Record.Err()
		fmt.Fprintf(errw, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	return nil
}
