// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
)

// IDField is the one field the sync layer interprets.
const IDField = "id"

// Record is one server-defined entity. Only the "id" field has meaning
// to the console.
type Record map[string]any

// ID returns the record's integer identifier. The value may be any
// integral numeric type produced by JSON or CBOR decoding, or by a
// caller building records by hand. ok is false when the field is
// missing or not an integer.
func (r Record) ID() (id int64, ok bool) {
	return toID(r[IDField])
}

func toID(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Clone returns a shallow copy: the top-level map is new, nested
// values are shared. Stores never mutate nested values, so a shallow
// copy is enough to isolate readers from later updates.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// UnmarshalJSON decodes a JSON object, converting numbers to int64
// when integral and float64 otherwise.
func (r *Record) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("entity: record must be a JSON object, got %s", bytes.TrimSpace(data))
	}
	for key, value := range fields {
		fields[key] = normalizeNumbers(value)
	}
	*r = fields
	return nil
}

func normalizeNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for key, nested := range v {
			v[key] = normalizeNumbers(nested)
		}
		return v
	case []any:
		for i, nested := range v {
			v[i] = normalizeNumbers(nested)
		}
		return v
	}
	return value
}
