// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the statestore.Store interface.
//
// Data sets are copied on the way in and on the way out, so neither the
// caller nor a concurrent run can mutate what is stored.
package inmemorystore

import (
	"context"
	"sync"

	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/statestore"
)

// Store keeps one data set per key in a sync.Map.
type Store struct {
	sets sync.Map // Key: string, Value: *model.DataSet
}

var _ statestore.Store = (*Store)(nil)

// New creates a new, empty in-memory store.
func New() *Store {
	return &Store{}
}

// Load returns a copy of the data set saved under key.
func (s *Store) Load(_ context.Context, key string) (*model.DataSet, error) {
	v, ok := s.sets.Load(key)
	if !ok {
		return model.NewDataSet(), nil
	}
	return v.(*model.DataSet).Copy(), nil
}

// Save stores a copy of ds under key.
func (s *Store) Save(_ context.Context, key string, ds *model.DataSet) error {
	s.sets.Store(key, ds.Copy())
	return nil
}

// Keys returns the number of keys currently stored.
func (s *Store) Keys() int {
	n := 0
	s.sets.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
