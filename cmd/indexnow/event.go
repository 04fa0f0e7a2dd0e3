package main

import (
	"fmt"

	"github.com/fwojciec/indexnow"
)

// Run executes the event command.
func (c *EventCmd) Run(deps *Dependencies) error {
	ev := indexnow.ChangeEvent{
		Kind:           indexnow.ChangeKind(c.Kind),
		URL:            c.URL,
		Type:           c.Type,
		Status:         c.Status,
		PreviousStatus: c.Previous,
	}

	queued, err := deps.Service.HandleChange(deps.Ctx, ev)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	if !queued {
		fmt.Fprintln(deps.Stdout, "Ignored: change does not affect public content.")
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Queued %s\n", ev.URL)

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
