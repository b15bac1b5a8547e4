package datafile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/statestore"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

const stateVersion = 1

type stateFile struct {
	Version int                  `json:"version"`
	Flow    string               `json:"flow,omitempty"`
	Items   map[string]stateItem `json:"items"`
}

type stateItem struct {
	Type        json.RawMessage `json:"type"`
	Value       json.RawMessage `json:"value"`
	GeneratedBy string          `json:"generated_by,omitempty"`
}

// SaveState writes ds to path, replacing any previous file atomically.
func SaveState(path, flowName string, ds *model.DataSet) error {
	sf := stateFile{Version: stateVersion, Flow: flowName, Items: map[string]stateItem{}}
	for _, item := range ds.Items() {
		ty := item.Value.Type()
		tyJSON, err := ctyjson.MarshalType(ty)
		if err != nil {
			return fmt.Errorf("state item %q: %w", item.Name, err)
		}
		valJSON, err := ctyjson.Marshal(item.Value, ty)
		if err != nil {
			return fmt.Errorf("state item %q: %w", item.Name, err)
		}
		sf.Items[item.Name] = stateItem{Type: tyJSON, Value: valJSON, GeneratedBy: item.GeneratedBy}
	}

	buf, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create state file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadState reads a data set saved by SaveState. A missing file yields an
// empty data set. A file saved for a different flow is rejected.
func LoadState(path, flowName string) (*model.DataSet, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewDataSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var sf stateFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("failed to decode state file %s: %w", path, err)
	}
	if sf.Version != stateVersion {
		return nil, fmt.Errorf("state file %s: unsupported version %d", path, sf.Version)
	}
	if sf.Flow != "" && flowName != "" && sf.Flow != flowName {
		return nil, fmt.Errorf("state file %s belongs to flow %q, not %q", path, sf.Flow, flowName)
	}

	ds := model.NewDataSet()
	for name, item := range sf.Items {
		ty, err := ctyjson.UnmarshalType(item.Type)
		if err != nil {
			return nil, fmt.Errorf("state item %q: %w", name, err)
		}
		val, err := ctyjson.Unmarshal(item.Value, ty)
		if err != nil {
			return nil, fmt.Errorf("state item %q: %w", name, err)
		}
		d := model.NewData(name, val)
		d.GeneratedBy = item.GeneratedBy
		ds.Merge(d)
	}
	return ds, nil
}

// FileStore is a statestore.Store backed by one state file. The store key
// is recorded as the file's flow name, so a file is never loaded for a
// different key.
type FileStore struct {
	Path string
}

var _ statestore.Store = (*FileStore)(nil)

// NewFileStore returns a store over path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load implements statestore.Store.
func (s *FileStore) Load(_ context.Context, key string) (*model.DataSet, error) {
	return LoadState(s.Path, key)
}

// Save implements statestore.Store.
func (s *FileStore) Save(_ context.Context, key string, ds *model.DataSet) error {
	return SaveState(s.Path, key, ds)
}
