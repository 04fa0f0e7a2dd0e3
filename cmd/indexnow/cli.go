package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/indexnow"
	"github.com/fwojciec/indexnow/submit"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Service  *submit.Service
	Sitemaps indexnow.SitemapService
	Logger   *slog.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB        string  `name:"db" env:"INDEXNOW_DB" help:"SQLite database path"`
	Config    string  `name:"config" type:"path" help:"Read settings from a YAML file instead of the database"`
	Debug     bool    `help:"Log outbound requests to stderr"`
	RateLimit float64 `name:"rate-limit" default:"2" help:"Outbound requests per second per host (0 disables pacing)"`

	Enqueue  EnqueueCmd  `cmd:"" help:"Queue URLs for submission"`
	Event    EventCmd    `cmd:"" help:"Report a content change"`
	Submit   SubmitCmd   `cmd:"" help:"Submit the oldest queued URLs"`
	Sitemap  SitemapCmd  `cmd:"" help:"Submit the sitemap URL (at most once per 12 hours)"`
	Queue    QueueCmd    `cmd:"" help:"List queued URLs"`
	Clear    ClearCmd    `cmd:"" help:"Empty the queue without submitting"`
	Verify   VerifyCmd   `cmd:"" help:"Check that the key file is publicly reachable"`
	Status   StatusCmd   `cmd:"" help:"Show the queue size and the last result"`
	Settings SettingsCmd `cmd:"" help:"Show or change settings"`
	RunDue   RunDueCmd   `cmd:"" name:"run-due" help:"Run scheduled fallback flushes that are due"`
	Serve    ServeCmd    `cmd:"" help:"Serve the HTTP API and run scheduled flushes"`
	Purge    PurgeCmd    `cmd:"" help:"Delete all settings, queued URLs and state"`
}

// EnqueueCmd is the "enqueue" subcommand.
type EnqueueCmd struct {
	URLs        []string `arg:"" optional:"" help:"URLs to queue"`
	FromSitemap bool     `name:"from-sitemap" help:"Also queue every URL listed in the site's sitemaps"`
	Filter      []string `short:"F" name:"filter" help:"With --from-sitemap, only queue URLs matching regex (repeatable)"`
	Exclude     []string `short:"x" name:"exclude" help:"With --from-sitemap, skip URLs matching regex (repeatable)"`
	Flush       bool     `help:"Submit right after queueing"`
}

// EventCmd is the "event" subcommand.
type EventCmd struct {
	Kind     string `arg:"" enum:"published,updated,unpublished,trashed,deleted" help:"Change kind (published, updated, unpublished, trashed, deleted)"`
	URL      string `arg:"" help:"Public URL of the resource"`
	Type     string `short:"t" default:"post" help:"Resource type"`
	Status   string `short:"s" help:"Resource status after the change"`
	Previous string `short:"p" help:"Resource status before the change"`
	Flush    bool   `help:"Submit right after queueing"`
}

// SubmitCmd is the "submit" subcommand.
type SubmitCmd struct {
	Force bool `short:"f" help:"Ignore the minimum interval since the last submission"`
}

// SitemapCmd is the "sitemap" subcommand.
type SitemapCmd struct{}

// QueueCmd is the "queue" subcommand.
type QueueCmd struct {
	Limit int `short:"n" default:"0" help:"Show at most this many URLs (0 for all)"`
}

// ClearCmd is the "clear" subcommand.
type ClearCmd struct{}

// VerifyCmd is the "verify" subcommand.
type VerifyCmd struct{}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	JSON bool `help:"Print status as JSON"`
}

// SettingsCmd groups the settings subcommands.
type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" default:"1" help:"Print the effective settings as YAML"`
	Set  SettingsSetCmd  `cmd:"" help:"Change settings"`
}

// SettingsShowCmd is the "settings show" subcommand.
type SettingsShowCmd struct {
	Reveal bool `help:"Print the key in full"`
}

// SettingsSetCmd is the "settings set" subcommand.
type SettingsSetCmd struct {
	Pairs []string `arg:"" help:"Settings as name=value pairs"`
}

// RunDueCmd is the "run-due" subcommand.
type RunDueCmd struct{}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr     string        `default:"127.0.0.1:8080" help:"Listen address"`
	Interval time.Duration `default:"15s" help:"How often to run due fallback flushes"`
}

// PurgeCmd is the "purge" subcommand.
type PurgeCmd struct {
	Force bool `help:"Purge even if purge_on_uninstall is off"`
}
