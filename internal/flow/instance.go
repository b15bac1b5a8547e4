package flow

import (
	"github.com/google/uuid"
	"github.com/specialistvlad/dataflowgo/internal/model"
)

// Instance carries a flow's data set across runs. The executor replaces the
// data set only at the end of a successful run; concurrent runs against the
// same Instance must be serialized by the caller.
type Instance struct {
	ID   string
	Flow *DataFlow

	dataSet *model.DataSet
}

// NewInstance returns an instance of f with an empty data set.
func NewInstance(f *DataFlow) *Instance {
	return NewInstanceWithData(f, model.NewDataSet())
}

// NewInstanceWithData returns an instance of f seeded with ds, for example a
// data set restored from an earlier process.
func NewInstanceWithData(f *DataFlow, ds *model.DataSet) *Instance {
	if ds == nil {
		ds = model.NewDataSet()
	}
	return &Instance{ID: uuid.NewString(), Flow: f, dataSet: ds}
}

// DataSet returns the instance's persisted data set.
func (i *Instance) DataSet() *model.DataSet {
	return i.dataSet
}

// SetDataSet replaces the persisted data set.
func (i *Instance) SetDataSet(ds *model.DataSet) {
	i.dataSet = ds
}
