// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import "sort"

// DataSet maps item names to the latest known Data for a flow instance.
//
// A DataSet is not safe for concurrent mutation. The executor always works on
// a private copy and only hands the result back once a run has converged.
type DataSet struct {
	items map[string]*Data
}

// NewDataSet returns a DataSet seeded with the given items. Later items with
// the same name replace earlier ones.
func NewDataSet(items ...*Data) *DataSet {
	ds := &DataSet{items: make(map[string]*Data, len(items))}
	for _, item := range items {
		ds.Merge(item)
	}
	return ds
}

// Copy returns an independent DataSet holding the same items.
func (ds *DataSet) Copy() *DataSet {
	return ds.CopyExcluding(nil)
}

// CopyExcluding returns an independent copy without the named items.
func (ds *DataSet) CopyExcluding(names map[string]struct{}) *DataSet {
	out := &DataSet{items: make(map[string]*Data, ds.Len())}
	if ds == nil {
		return out
	}
	for name, item := range ds.items {
		if _, skip := names[name]; skip {
			continue
		}
		out.items[name] = item
	}
	return out
}

// Merge adds or replaces a single item. Nil items are ignored.
func (ds *DataSet) Merge(item *Data) {
	if item == nil {
		return
	}
	if ds.items == nil {
		ds.items = make(map[string]*Data)
	}
	ds.items[item.Name] = item
}

// MergeDelta merges every item of the delta in order.
func (ds *DataSet) MergeDelta(delta DataDelta) {
	for _, item := range delta {
		ds.Merge(item)
	}
}

// ContainsAll reports whether every name is present.
func (ds *DataSet) ContainsAll(names []string) bool {
	for _, name := range names {
		if !ds.Has(name) {
			return false
		}
	}
	return true
}

// Has reports whether an item with the given name is present.
func (ds *DataSet) Has(name string) bool {
	if ds == nil {
		return false
	}
	_, ok := ds.items[name]
	return ok
}

// Get returns the named item, if present.
func (ds *DataSet) Get(name string) (*Data, bool) {
	if ds == nil {
		return nil, false
	}
	item, ok := ds.items[name]
	return item, ok
}

// Len returns the number of items.
func (ds *DataSet) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.items)
}

// Names returns the item names in sorted order.
func (ds *DataSet) Names() []string {
	if ds == nil {
		return nil
	}
	names := make([]string, 0, len(ds.items))
	for name := range ds.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Items returns the items sorted by name.
func (ds *DataSet) Items() []*Data {
	names := ds.Names()
	out := make([]*Data, 0, len(names))
	for _, name := range names {
		out = append(out, ds.items[name])
	}
	return out
}

// DataDelta is the ordered batch of new items supplied to a single run.
type DataDelta []*Data

// NewDelta builds a delta from the given items, dropping nils.
func NewDelta(items ...*Data) DataDelta {
	delta := make(DataDelta, 0, len(items))
	for _, item := range items {
		if item != nil {
			delta = append(delta, item)
		}
	}
	return delta
}

// Names returns the item names in delta order, skipping nil items.
func (d DataDelta) Names() []string {
	names := make([]string, 0, len(d))
	for _, item := range d {
		if item != nil {
			names = append(names, item.Name)
		}
	}
	return names
}
