// Package executor runs a data flow incrementally.
//
// Given an instance's current data set and a delta of newly available items,
// the executor sweeps the flow's layered builder order and runs every builder
// whose consumed items intersect the set of "active" (just changed) names and
// are all present. Produced items are merged back into a private working set
// and become active themselves, so downstream builders see them later in the
// same sweep. When looping is enabled the sweep repeats with the newly
// generated names as the active set, until the target item is produced or a
// sweep produces nothing new.
//
// # Lifecycle
//
// Every run is wrapped by listener notifications:
//
//	PreProcessing                      (fatal on failure, no builder runs)
//	  BeforeExecute -> Build -> AfterExecute | AfterException   (per builder)
//	PostProcessing                     (always, with the response or the error)
//
// Only PreProcessing failures and builder failures change a run's outcome.
// Everything else a listener does wrong (an error or a panic) is logged and
// dropped.
//
// # State
//
// Per-run bookkeeping (which builders already ran, the active and newly
// generated names) lives in a run value created for each call and thrown
// away afterwards, so one Executor and one DataFlow can serve any number of
// concurrent runs on different instances. An instance's data set is replaced
// exactly once, at the end of a successful run, minus transient items.
package executor
