// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"errors"
	"fmt"
)

// BuilderMeta is the static description of a builder: its name, the items it
// consumes, and the single item it produces.
type BuilderMeta struct {
	Name     string
	Consumes []string
	Produces string
}

// Validate ensures the metadata is well-formed.
func (m BuilderMeta) Validate() error {
	if m.Name == "" {
		return errors.New("builder: name is required")
	}
	if m.Produces == "" {
		return fmt.Errorf("builder %s: produces is required", m.Name)
	}
	seen := make(map[string]struct{}, len(m.Consumes))
	for _, name := range m.Consumes {
		if name == "" {
			return fmt.Errorf("builder %s: consumes contains an empty name", m.Name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("builder %s: %s consumed twice", m.Name, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// ConsumesAny returns the consumed names that are present in active, in
// declaration order.
func (m BuilderMeta) ConsumesAny(active map[string]struct{}) []string {
	var hits []string
	for _, name := range m.Consumes {
		if _, ok := active[name]; ok {
			hits = append(hits, name)
		}
	}
	return hits
}
