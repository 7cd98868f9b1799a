package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/handiism/audiotagtools/internal/config"
	"github.com/handiism/audiotagtools/internal/journal"
	"github.com/handiism/audiotagtools/internal/model"
	"github.com/handiism/audiotagtools/internal/scan"
	"github.com/handiism/audiotagtools/internal/tagedit"
)

type delimiterFlags struct {
	old string
	new string
}

func (d *delimiterFlags) register(cmd *cobra.Command, oldDefault, newDefault string) {
	cmd.Flags().StringVarP(&d.old, "old", "o", oldDefault, "Delimiter separating the parts now")
	cmd.Flags().StringVarP(&d.new, "new", "n", newDefault, "Delimiter to join the parts with")
}

// resolve falls back to the configured delimiters for flags left unset.
func (d delimiterFlags) resolve(cmd *cobra.Command, s *config.Settings) (string, string) {
	old, new := s.Tags.OldDelimiter, s.Tags.NewDelimiter
	if cmd.Flags().Changed("old") {
		old = d.old
	}
	if cmd.Flags().Changed("new") {
		new = d.new
	}
	return old, new
}

func newFormatter(s *config.Settings) *tagedit.Formatter {
	overrides := s.Tags.CaseOverrides
	if overrides == nil {
		overrides = tagedit.DefaultOverrides()
	}
	return tagedit.NewFormatter(overrides)
}

func newTagsCommand(cc *commandContext) *cobra.Command {
	var delims delimiterFlags

	cmd := &cobra.Command{
		Use:   "tags <root>",
		Short: "Normalize multipart tags of every MP3 directory under root",
		Long: "Normalize the configured tag fields of every MP3 directory under root. Each\n" +
			"(directory, field) pair is independent: a failure is reported and the\n" +
			"rest still run.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			settings, err := cc.ensureSettings()
			if err != nil {
				return err
			}
			root, err := resolveDir(args[0])
			if err != nil {
				return err
			}
			old, new := delims.resolve(cmd, settings)

			ctx := cmd.Context()
			scope, err := cc.beginRun(cmd, journal.KindTags, root)
			if err != nil {
				return err
			}
			var status journal.Status
			defer func() { scope.finish(ctx, status, "", err) }()

			dirs, err := scan.FindMusicDirs(ctx, root, scan.Extension("mp3"))
			if err != nil {
				return err
			}
			editor := tagedit.NewEditor(tagedit.EditorConfig{Formatter: newFormatter(settings)})
			batch := tagedit.NewBatch(editor, tagedit.BatchOptions{
				OldDelimiter: old,
				NewDelimiter: new,
				Rules:        settings.Tags.Fields,
				Guarded:      settings.Tags.GuardedFields,
			}, scope.sink)

			report, runErr := batch.Run(ctx, scan.Dirs(dirs))
			if report == nil {
				return runErr
			}
			for _, o := range report.Outcomes {
				scope.recordUnit(ctx, o.Task.Dir, o.Task.Field, o.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTagReport(report))
			if runErr != nil {
				return runErr
			}
			if failed := report.Failed(); len(failed) > 0 {
				status = journal.StatusDegraded
				return fmt.Errorf("%d of %d units failed", len(failed), len(report.Outcomes))
			}
			return nil
		},
	}

	delims.register(cmd, "/", "|")
	return cmd
}

func renderTagReport(report *tagedit.Report) string {
	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		result := "ok"
		if o.Err != nil {
			result = o.Err.Error()
		}
		rows = append(rows, []string{
			filepath.Base(o.Task.Dir),
			o.Task.Field,
			strconv.Itoa(o.Files),
			strconv.Itoa(o.Changed),
			result,
		})
	}
	return renderTable(
		[]string{"Directory", "Field", "Files", "Changed", "Result"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func newTagCommand(cc *commandContext) *cobra.Command {
	var delims delimiterFlags
	var caseName string

	cmd := &cobra.Command{
		Use:   "tag <field> <dir>",
		Short: "Normalize one tag field of the MP3 files in a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			settings, err := cc.ensureSettings()
			if err != nil {
				return err
			}
			field := strings.ToLower(strings.TrimSpace(args[0]))
			dir, err := resolveDir(args[1])
			if err != nil {
				return err
			}
			rule, err := model.ParseCaseRule(caseName)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("case") {
				rule = configuredCase(settings, field)
			}
			old, new := delims.resolve(cmd, settings)

			ctx := cmd.Context()
			scope, err := cc.beginRun(cmd, journal.KindTags, dir)
			if err != nil {
				return err
			}
			defer func() { scope.finish(ctx, "", "", err) }()

			editor := tagedit.NewEditor(tagedit.EditorConfig{Formatter: newFormatter(settings)})
			task := model.TagEditTask{Dir: dir, Field: field, OldDelimiter: old, NewDelimiter: new, Case: rule}
			cs, err := editor.Apply(ctx, task, settings.Tags.GuardedFields)
			if cs != nil {
				scope.recordUnit(ctx, dir, field, err)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(cs.Changes) == 0 {
				fmt.Fprintf(out, "No %s tags to change in %d files\n", field, cs.Files)
				return nil
			}
			rows := make([][]string, 0, len(cs.Changes))
			for _, c := range cs.Changes {
				rows = append(rows, []string{filepath.Base(c.Path), c.Old, c.New})
			}
			fmt.Fprintln(out, renderTable([]string{"File", "Old", "New"}, rows, nil))
			fmt.Fprintf(out, "Changed %d of %d files\n", len(cs.Changes), cs.Files)
			return nil
		},
	}

	delims.register(cmd, "/", "|")
	cmd.Flags().StringVarP(&caseName, "case", "c", "none", "Case rule: none, capitalize, title, upper or lower")
	return cmd
}

// configuredCase returns the case rule configured for field, or none.
func configuredCase(s *config.Settings, field string) model.CaseRule {
	for _, r := range s.Tags.Fields {
		if r.Field == field {
			return r.Case
		}
	}
	return model.CaseNone
}

func newFormatCommand(cc *commandContext) *cobra.Command {
	var delims delimiterFlags
	var caseName string
	var stdout bool

	cmd := &cobra.Command{
		Use:   "format <string>",
		Short: "Format one multipart tag string",
		Long: "Format one multipart tag string and copy the result to the clipboard, or print\n" +
			"it with --stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cc.ensureSettings()
			if err != nil {
				return err
			}
			rule, err := model.ParseCaseRule(caseName)
			if err != nil {
				return err
			}
			if delims.old == "" || delims.new == "" {
				return fmt.Errorf("%w: delimiters must not be empty", model.ErrInvalidDelimiter)
			}

			formatted := newFormatter(settings).Format(args[0], delims.old, delims.new, rule)
			if stdout {
				fmt.Fprintln(cmd.OutOrStdout(), formatted)
				return nil
			}
			if err := clipboard.WriteAll(formatted); err != nil {
				return fmt.Errorf("copy to clipboard (use --stdout to print instead): %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Copied to clipboard: %s\n", formatted)
			return nil
		},
	}

	delims.register(cmd, ",", "|")
	cmd.Flags().StringVarP(&caseName, "case", "c", "title", "Case rule: none, capitalize, title, upper or lower")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print instead of copying to the clipboard")
	return cmd
}
