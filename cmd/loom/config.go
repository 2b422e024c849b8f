// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"flag"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the tool settings, read from an optional TOML file with
// command-line flags taking precedence.
type Config struct {

	// Project is the path of the project document.
	Project string `toml:"project"`

	// Watch keeps the tool running after the first pass, draining
	// queued changes and recomputing on every interval.
	Watch bool `toml:"watch"`

	// Feed is the websocket URL of a change producer to subscribe to
	// in watch mode. Empty disables the feed.
	Feed string `toml:"feed"`

	// Interval is the watch-mode drain interval, as parsed by
	// [time.ParseDuration], such as "1s" or "250ms".
	Interval string `toml:"interval"`

	// LogLevel is the log verbosity: debug, info, warn, or error.
	LogLevel string `toml:"log-level"`
}

func defaultConfig() *Config {
	return &Config{
		Project:  "project.loom",
		Interval: "1s",
		LogLevel: "info",
	}
}

// openConfig reads a TOML config file over cfg.
func openConfig(cfg *Config, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewDecoder(bufio.NewReader(f)).Decode(cfg)
}

// overrideFromFlags copies every flag the user actually set over the
// corresponding config field, so flags win over the file.
func overrideFromFlags(cfg *Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "project":
			cfg.Project = f.Value.String()
		case "watch":
			cfg.Watch = f.Value.String() == "true"
		case "feed":
			cfg.Feed = f.Value.String()
		case "interval":
			cfg.Interval = f.Value.String()
		case "log-level":
			cfg.LogLevel = f.Value.String()
		}
	})
}
