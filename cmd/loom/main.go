// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command loom inspects and recomputes a loom project document.
//
// Usage:
//
//	loom [flags] [config.toml]
//
// The optional TOML config file carries the same settings as the
// flags; flags take precedence. One pass loads the project, prints a
// summary, recomputes everything that needs it, and flushes. With
// -watch the tool keeps running, draining queued changes on an
// interval and recomputing, optionally subscribed to a websocket
// change feed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cogentcore.org/loom/base/errors"
	"cogentcore.org/loom/base/logx"
	"cogentcore.org/loom/compute"
	"cogentcore.org/loom/feed"
	"cogentcore.org/loom/project"
	"cogentcore.org/loom/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		errors.Log(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("loom", flag.ExitOnError)
	fs.String("project", "", "project document path")
	fs.Bool("watch", false, "keep running: drain changes and recompute on every interval")
	fs.String("feed", "", "websocket change feed URL for watch mode")
	fs.String("interval", "", "watch-mode drain interval, such as 1s or 250ms")
	fs.String("log-level", "", "log level: debug, info, warn, or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg := defaultConfig()
	if file := fs.Arg(0); file != "" {
		if err := openConfig(cfg, file); err != nil {
			return err
		}
	}
	overrideFromFlags(cfg, fs)
	logx.SetLevelFromString(cfg.LogLevel)
	logx.Init()

	interval, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		return fmt.Errorf("bad interval %q: %w", cfg.Interval, err)
	}

	store, err := storage.NewFile(cfg.Project)
	if err != nil {
		return err
	}
	defer func() { errors.Log(store.Close()) }()

	p, err := project.Load(store)
	if err != nil {
		return err
	}
	defer p.Close()

	summarize(p, cfg.Project)
	ev := compute.NewExec(compute.StandardRegistry())
	p.Recompute(ev)
	reportErrors(p)

	if !cfg.Watch {
		return nil
	}
	return watch(p, store, ev, cfg, interval)
}

// watch drains the pending-change queue on every interval, recomputing
// when anything arrived, until interrupted. The document watcher only
// warns on external modification; the tool never merges foreign edits
// into a live graph.
func watch(p *project.Project, store *storage.File, ev compute.Evaluator, cfg *Config, interval time.Duration) error {
	err := store.Watch(func() {
		slog.Warn("project document changed externally; restart to pick up the changes", "path", store.Path())
	})
	if err != nil {
		return err
	}
	if cfg.Feed != "" {
		client, err := feed.Connect(cfg.Feed, p)
		if err != nil {
			return err
		}
		client.OnClose(func() {
			slog.Warn("change feed disconnected", "url", cfg.Feed)
		})
		defer func() { errors.Log(client.Close()) }()
		slog.Info("subscribed to change feed", "url", cfg.Feed)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := p.DrainChanges(); n > 0 {
				slog.Debug("drained changes", "count", n)
				p.Recompute(ev)
				reportErrors(p)
				errors.Log(store.Flush())
			}
		case <-sig:
			return nil
		}
	}
}

// summarize prints the collection counts and the resolution state of
// the computations.
func summarize(p *project.Project, path string) {
	fmt.Printf("project: %s\n", path)
	fmt.Printf("  data items:    %d\n", p.DataItems.Len())
	fmt.Printf("  display items: %d\n", p.DisplayItems.Len())
	fmt.Printf("  structures:    %d\n", p.Structures.Len())
	fmt.Printf("  connections:   %d\n", p.Connections.Len())
	unresolved := 0
	for _, c := range p.Computations.Items() {
		if !c.IsResolved() {
			unresolved++
		}
	}
	if unresolved > 0 {
		fmt.Printf("  computations:  %d (%d unresolved)\n", p.Computations.Len(), unresolved)
	} else {
		fmt.Printf("  computations:  %d\n", p.Computations.Len())
	}
}

// reportErrors prints the error text of every failed computation.
func reportErrors(p *project.Project) {
	for _, c := range p.Computations.Items() {
		if text := c.ErrorText(); text != "" {
			fmt.Printf("  computation %s: %s\n", c.UUID, text)
		}
	}
}
