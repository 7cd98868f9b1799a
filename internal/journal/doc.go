// Package journal keeps a history of runs and their filesystem steps in a
// SQLite database.
//
// Every convert, tag, volume or playlist run gets a row with a UUID, and
// every reorganize step or tag unit it performs gets a step row. After a
// failed reorganization the step rows are the persisted partial-state
// report:
//
//	store, err := journal.Open(filepath.Join(stateDir, "journal.db"))
//	run, err := store.Begin(ctx, journal.KindConvert, root)
//	exec := reorganize.NewExecutor(lockPath, store.Recorder(run.ID), sink)
//	...
//	err = store.Finish(ctx, run.ID, journal.StatusSucceeded, "")
package journal
