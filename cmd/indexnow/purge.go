package main

import (
	"fmt"

	"github.com/fwojciec/indexnow"
)

// Run executes the purge command.
func (c *PurgeCmd) Run(deps *Dependencies) error {
	err := deps.Service.Purge(deps.Ctx, c.Force)
	switch {
	case indexnow.ErrorCode(err) == indexnow.EINVALID:
		fmt.Fprintln(deps.Stderr, "error: purge_on_uninstall is off; use --force to purge anyway")
		return err
	case err != nil:
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, "Purged settings, queued URLs and state.")
	return nil
}
