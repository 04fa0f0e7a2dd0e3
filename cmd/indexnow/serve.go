package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inchi "github.com/fwojciec/indexnow/chi"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Run executes the serve command. It blocks until interrupted.
func (c *ServeCmd) Run(deps *Dependencies) error {
	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return fmt.Errorf("failed to listen on %s: %w", c.Addr, err)
	}

	srv := &http.Server{
		Handler:           inchi.NewHandler(deps.Service, deps.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	interval := c.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	fmt.Fprintf(deps.Stdout, "Listening on http://%s\n", ln.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				results, err := deps.Service.RunDue(gctx)
				if err != nil {
					deps.Logger.Error("scheduled flush failed", "err", err)
					continue
				}
				for _, res := range results {
					deps.Logger.Debug("scheduled flush", "state", res.State, "urls", len(res.URLs))
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	fmt.Fprintln(deps.Stdout, "Server stopped.")
	return nil
}
