package main

import (
	"fmt"

	"github.com/fwojciec/indexnow"
)

// Run executes the submit command.
func (c *SubmitCmd) Run(deps *Dependencies) error {
	flush := deps.Service.Flush
	if c.Force {
		flush = deps.Service.ForceFlush
	}

	res, err := flush(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	return printFlushResult(deps.Stdout, deps.Stderr, res)
}

// Run executes the sitemap command.
func (c *SitemapCmd) Run(deps *Dependencies) error {
	rec, err := deps.Service.SubmitSitemap(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	if rec == nil {
		fmt.Fprintln(deps.Stdout, "Sitemap not submitted: disabled, no site URL, or submitted within the last 12 hours.")
		return nil
	}
	if err := rec.Err(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Submitted sitemap to %s (HTTP %d)\n", rec.Endpoint, rec.Status)
	return nil
}

// Run executes the run-due command.
func (c *RunDueCmd) Run(deps *Dependencies) error {
	results, err := deps.Service.RunDue(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No tasks due.")
		return nil
	}

	var failed error
	for _, res := range results {
		if err := printFlushResult(deps.Stdout, deps.Stderr, res); err != nil {
			failed = err
		}
	}
	return failed
}
