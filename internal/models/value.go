// Package models defines data structures for peerscope
package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is an optional float. The zero value is undefined.
// Undefined values marshal to JSON null and render as "N/A".
type Value struct {
	v  float64
	ok bool
}

// Of returns a defined value. NaN and infinities are treated as undefined.
func Of(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{v: f, ok: true}
}

// Undefined returns an undefined value
func Undefined() Value {
	return Value{}
}

// Get returns the float and whether it is defined
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// Defined reports whether the value holds a number
func (v Value) Defined() bool {
	return v.ok
}

// Float returns the number, or 0 when undefined
func (v Value) Float() float64 {
	if !v.ok {
		return 0
	}
	return v.v
}

// Format renders the value with prec decimals, or "N/A"
func (v Value) Format(prec int) string {
	if !v.ok {
		return "N/A"
	}
	return strconv.FormatFloat(v.v, 'f', prec, 64)
}

func (v Value) String() string {
	return v.Format(2)
}

// MarshalJSON writes the number or null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON accepts a number or null
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}
