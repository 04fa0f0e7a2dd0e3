package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/indexnow"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	st, err := deps.Service.Status(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	enabled := "no"
	if st.Enabled {
		enabled = "yes"
	}
	fmt.Fprintf(deps.Stdout, "Enabled:      %s\n", enabled)
	fmt.Fprintf(deps.Stdout, "Queued URLs:  %d\n", st.Queue)
	fmt.Fprintf(deps.Stdout, "Last submit:  %s\n", formatTime(st.LastSubmitAt))

	switch {
	case st.Last == nil:
		fmt.Fprintln(deps.Stdout, "Last result:  none")
	case st.Last.OK:
		fmt.Fprintf(deps.Stdout, "Last result:  ok, %d URLs (HTTP %d) at %s\n",
			st.Last.Submitted, st.Last.Status, formatTime(st.Last.Time))
	default:
		fmt.Fprintf(deps.Stdout, "Last result:  %s at %s: %s\n",
			st.Last.ErrorCode, formatTime(st.Last.Time), st.Last.ErrorMessage)
		if st.Last.ErrorBody != "" {
			fmt.Fprintf(deps.Stdout, "Response:     %s\n", st.Last.ErrorBody)
		}
	}
	return nil
}

// Run executes the verify command.
func (c *VerifyCmd) Run(deps *Dependencies) error {
	check, err := deps.Service.VerifyKey(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", indexnow.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Key file is reachable at %s\n", check.URL)
	if check.Note != "" {
		fmt.Fprintf(deps.Stdout, "Note: %s\n", check.Note)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}
