// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

// BuildContext is handed to every builder invocation of a run.
type BuildContext struct {
	// DataSet is the run's working set. The executor replaces it with its
	// private copy when the run starts.
	DataSet *DataSet

	// Values carries caller-supplied request data that is not part of the
	// flow's data set.
	Values map[string]any
}

// NewBuildContext returns a context over ds with an empty Values map.
func NewBuildContext(ds *DataSet) *BuildContext {
	return &BuildContext{DataSet: ds, Values: map[string]any{}}
}

// Data returns the named item from the working set.
func (c *BuildContext) Data(name string) (*Data, bool) {
	if c == nil {
		return nil, false
	}
	return c.DataSet.Get(name)
}
