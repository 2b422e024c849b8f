// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errors

import (
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

// Log takes the given error and logs it if it is non-nil.
// The intended usage is:
//
//	errors.Log(MyFunc(v))
//
// or
//
//	return errors.Log(MyFunc(v))
func Log(err error) error {
	if err != nil {
		slog.Error(err.Error() + " | " + CallerInfo())
	}
	return err
}

// Log1 can be used in a one-line return statement from a function
// that returns a value and an error, handling the error by logging it.
// The intended usage is:
//
//	return errors.Log1(MyFunc(v))
func Log1[T any](v T, err error) T {
	if err != nil {
		slog.Error(err.Error() + " | " + CallerInfo())
	}
	return v
}

// Must panics if the given error is non-nil.
// It should only be used for errors that truly cannot happen,
// or in initialization code where a failure must stop the program.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 is a version of [Must] for functions with one return value
// in addition to the error.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Ignore deliberately ignores the given error.
// It exists so that such sites are explicit and searchable.
func Ignore(err error) {} //nolint:all

// Ignore1 is a version of [Ignore] for functions with one return value
// in addition to the error.
func Ignore1[T any](v T, err error) T { //nolint:all
	return v
}

// CallerInfo returns string information about the caller
// of the function that called CallerInfo.
func CallerInfo() string {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	res := ""
	if f := runtime.FuncForPC(pc); f != nil {
		name := f.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		res = name + " "
	}
	if i := strings.LastIndex(file, "/"); i >= 0 {
		file = file[i+1:]
	}
	return res + "(" + file + ":" + strconv.Itoa(line) + ")"
}
