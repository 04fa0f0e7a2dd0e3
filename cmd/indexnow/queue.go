package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/indexnow"
)

// Run executes the queue command.
func (c *QueueCmd) Run(deps *Dependencies) error {
	entries, err := deps.Service.Queue.List(deps.Ctx, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(deps.Stdout, "Queue is empty. Use 'indexnow enqueue' to add URLs.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", e.EnqueuedAt.Local().Format(time.DateTime), e.URL)
	}
	return nil
}

// Run executes the clear command.
func (c *ClearCmd) Run(deps *Dependencies) error {
	if err := deps.Service.Clear(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, "Queue cleared.")
	return nil
}
