// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import "sort"

// ExecutionResponse holds the items produced during exactly one run, keyed by
// name. It is not the cumulative data set.
type ExecutionResponse struct {
	Responses map[string]*Data

	// Sweeps is the number of passes over the layered builder order the run
	// needed to converge.
	Sweeps int
}

// NewExecutionResponse returns an empty response.
func NewExecutionResponse() *ExecutionResponse {
	return &ExecutionResponse{Responses: map[string]*Data{}}
}

// Get returns the produced item with the given name.
func (r *ExecutionResponse) Get(name string) (*Data, bool) {
	if r == nil {
		return nil, false
	}
	d, ok := r.Responses[name]
	return d, ok
}

// Len returns the number of produced items.
func (r *ExecutionResponse) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Responses)
}

// Names returns the produced item names in sorted order.
func (r *ExecutionResponse) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Responses))
	for name := range r.Responses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
