// Package statestore defines where a flow instance's data set lives between
// runs.
//
// The executor only ever mutates an Instance in memory. A Store is what lets
// the next invocation start from the committed data set of the previous one:
// the app loads before a run and saves after a successful run, so a failed
// run never reaches the store.
//
// Implementations:
//   - inmemorystore: process-local, for embedding and tests
//   - datafile.FileStore: one JSON file, for the CLI's -state flag
package statestore

import (
	"context"

	"github.com/specialistvlad/dataflowgo/internal/model"
)

// Store persists committed data sets by key. The app uses the flow name as
// the key.
type Store interface {
	// Load returns the data set saved under key, or an empty data set when
	// nothing was saved yet. The caller owns the returned set.
	Load(ctx context.Context, key string) (*model.DataSet, error)

	// Save replaces whatever was stored under key. The store must not retain
	// ds itself.
	Save(ctx context.Context, key string, ds *model.DataSet) error
}
