// Package reorganize places converted files after a directory has been
// transcoded.
//
// A Plan is computed once from the source directory, the names of the
// converted originals and a Policy, then handed to an Executor which runs
// its steps in order under a file lock:
//
//	plan, err := reorganize.NewPlan("/music/Album", []string{"01.flac"}, reorganize.Policy{InPlace: true})
//	if err != nil {
//	    return err
//	}
//	exec := reorganize.NewExecutor("/var/lib/audiotag/reorganize.lock", nil, sink)
//	err = exec.Execute(ctx, plan)
//
// # Policies
//
//	InPlace  DeleteOriginals  Result
//	false    -                staging "<src> (converted)" kept, source untouched
//	true     true             originals removed, converted files moved in
//	true     false            originals archived in ".<name>", converted files moved in
//
// DeleteOriginals implies InPlace.
//
// # Failure
//
// Destinations are checked before anything is touched. Once execution
// starts there is no rollback: the first failing step stops the plan and
// a *PartialStateError lists what was done, what failed and what is left.
package reorganize
