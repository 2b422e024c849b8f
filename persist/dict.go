// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package persist

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Dict helpers for reading persisted representations. JSON decoding
// produces float64 for all numbers and map[string]any for all objects,
// so the accessors coerce accordingly.

// DictString returns the string at the given key, if present.
func DictString(dict map[string]any, key string) (string, bool) {
	s, ok := dict[key].(string)
	return s, ok
}

// DictBool returns the bool at the given key, if present.
func DictBool(dict map[string]any, key string) (bool, bool) {
	b, ok := dict[key].(bool)
	return b, ok
}

// DictInt returns the integer at the given key, if present,
// coercing from float64 as produced by JSON decoding.
func DictInt(dict map[string]any, key string) (int, bool) {
	switch n := dict[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// DictFloat returns the float at the given key, if present.
func DictFloat(dict map[string]any, key string) (float64, bool) {
	switch n := dict[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// DictUUID parses the UUID string at the given key.
func DictUUID(dict map[string]any, key string) (uuid.UUID, error) {
	s, ok := dict[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("persist: dict key %q is not a uuid string", key)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("persist: dict key %q: %w", key, err)
	}
	return u, nil
}

// DictTime parses the RFC 3339 time at the given key, if present.
func DictTime(dict map[string]any, key string) (time.Time, bool) {
	s, ok := dict[key].(string)
	if !ok {
		return time.Time{}, false
	}
	tm, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return tm, true
}

// DictSlice returns the slice at the given key, if present.
func DictSlice(dict map[string]any, key string) ([]any, bool) {
	s, ok := dict[key].([]any)
	return s, ok
}

// DictMap returns the nested dict at the given key, if present.
func DictMap(dict map[string]any, key string) (map[string]any, bool) {
	m, ok := dict[key].(map[string]any)
	return m, ok
}

// DictFloats returns the float64 slice at the given key, coercing
// element-wise from []any as held in memory or produced by JSON
// decoding.
func DictFloats(dict map[string]any, key string) ([]float64, bool) {
	switch s := dict[key].(type) {
	case []float64:
		out := make([]float64, len(s))
		copy(out, s)
		return out, true
	case []any:
		out := make([]float64, 0, len(s))
		for _, e := range s {
			switch f := e.(type) {
			case float64:
				out = append(out, f)
			case int:
				out = append(out, float64(f))
			case int64:
				out = append(out, float64(f))
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

// DictInts returns the int slice at the given key, coercing
// element-wise from []any as held in memory or produced by JSON
// decoding.
func DictInts(dict map[string]any, key string) ([]int, bool) {
	switch s := dict[key].(type) {
	case []int:
		out := make([]int, len(s))
		copy(out, s)
		return out, true
	case []any:
		out := make([]int, 0, len(s))
		for _, e := range s {
			switch f := e.(type) {
			case int:
				out = append(out, f)
			case int64:
				out = append(out, int(f))
			case float64:
				out = append(out, int(f))
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}
