// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Data is a single named value known to a flow instance.
type Data struct {
	Name  string
	Value cty.Value

	// GeneratedBy names the builder that produced the value. Empty for data
	// supplied by the caller.
	GeneratedBy string
}

// NewData creates a Data item for the given name and value.
func NewData(name string, value cty.Value) *Data {
	return &Data{Name: name, Value: value}
}

// StringData is a shorthand for a Data holding a cty string.
func StringData(name, value string) *Data {
	return NewData(name, cty.StringVal(value))
}

// DataFromGo converts a plain Go value into a Data item using its implied cty
// type.
func DataFromGo(name string, value any) (*Data, error) {
	ty, err := gocty.ImpliedType(value)
	if err != nil {
		return nil, fmt.Errorf("data %q: %w", name, err)
	}
	val, err := gocty.ToCtyValue(value, ty)
	if err != nil {
		return nil, fmt.Errorf("data %q: %w", name, err)
	}
	return NewData(name, val), nil
}

// WithGeneratedBy returns a copy of d stamped with the producing builder.
func (d *Data) WithGeneratedBy(builder string) *Data {
	clone := *d
	clone.GeneratedBy = builder
	return &clone
}

// String implements fmt.Stringer.
func (d *Data) String() string {
	if d == nil {
		return "<nil>"
	}
	if d.GeneratedBy == "" {
		return d.Name
	}
	return fmt.Sprintf("%s (by %s)", d.Name, d.GeneratedBy)
}

// FormatValue renders the value as compact JSON. Null and unknown values
// render as "null".
func (d *Data) FormatValue() string {
	if d == nil || d.Value.IsNull() || !d.Value.IsWhollyKnown() {
		return "null"
	}
	b, err := ctyjson.Marshal(d.Value, d.Value.Type())
	if err != nil {
		return d.Value.GoString()
	}
	return string(b)
}
