// Package tagedit reformats multipart tag values (several values joined by
// a delimiter) across directories of audio files.
//
// # Formatting
//
// Formatter splits a value on the old delimiter, trims each part, applies
// a case rule and rejoins with the new delimiter. Tokens listed in the
// override map are forced to their own case afterwards:
//
//	f := tagedit.NewFormatter(tagedit.DefaultOverrides())
//	f.Format("aor/Pop", "/", "|", model.CaseTitle) // "AOR|Pop"
//
// # Stage and Commit
//
// Edits for one (directory, field) unit happen in two phases. Stage reads
// every eligible file and computes the new values without writing;
// Commit then saves every changed file:
//
//	cs, err := editor.Stage(ctx, task)
//	if err != nil {
//	    return err
//	}
//	err = cs.Commit(ctx)
//
// # Batches
//
// Batch runs a fixed list of field rules over many directories. A failing
// unit is recorded in the Report and skipped. Delimiter validation is the
// exception: a comma for a guarded field (artist, composer) stops the
// whole run before any file is opened.
package tagedit
