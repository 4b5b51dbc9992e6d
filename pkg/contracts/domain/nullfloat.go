package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// NullFloat64 is a float64 that may be unknown. A zero value is unknown,
// which keeps "no data" distinguishable from a measured 0.
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

// Some returns a known value.
func Some(v float64) NullFloat64 {
	return NullFloat64{Float64: v, Valid: true}
}

// None returns an unknown value.
func None() NullFloat64 {
	return NullFloat64{}
}

// ValueOr returns the value when known, def otherwise.
func (n NullFloat64) ValueOr(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Float64
}

// NaN returns the value or NaN when unknown. Used at plotting boundaries only.
func (n NullFloat64) NaN() float64 {
	return n.ValueOr(math.NaN())
}

// String formats the value for CSV output; unknown values are empty.
func (n NullFloat64) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// MarshalJSON encodes unknown values as null
func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON accepts a number or null
func (n *NullFloat64) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}

// ParseNullFloat64 parses a CSV cell. Empty cells are unknown.
func ParseNullFloat64(s string) (NullFloat64, error) {
	if s == "" {
		return None(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None(), err
	}
	return Some(v), nil
}
