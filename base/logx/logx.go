// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logx provides a simple logging level system
// on top of the standard library log/slog, with default
// levels settable through the debug and release build tags.
package logx

import "log/slog"

// UserLevel is the verbosity level that the user has selected for
// what logging and printing messages should be shown. Messages at
// levels at or above the current level are shown. It defaults to
// [slog.LevelInfo], or [slog.LevelDebug] with the debug build tag,
// or [slog.LevelWarn] with the release build tag.
var UserLevel = defaultUserLevel

// Init applies [UserLevel] to the default [slog] logger.
// It should be called after any change to [UserLevel].
func Init() {
	slog.SetLogLoggerLevel(UserLevel)
}

// SetLevelFromString sets [UserLevel] from a string name
// (debug, info, warn, or error) and applies it. Unknown
// names leave the level unchanged.
func SetLevelFromString(level string) {
	switch level {
	case "debug":
		UserLevel = slog.LevelDebug
	case "info":
		UserLevel = slog.LevelInfo
	case "warn":
		UserLevel = slog.LevelWarn
	case "error":
		UserLevel = slog.LevelError
	}
	Init()
}
