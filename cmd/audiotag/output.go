package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// listOutput is where list-producing commands send their lines.
type listOutput struct {
	clipboard bool
	file      string
	silent    bool
}

// write prints lines to out unless silent, then copies them to the
// clipboard and writes them to the output file as requested. An existing
// output file is never overwritten.
func (o listOutput) write(out io.Writer, lines []string) error {
	joined := strings.Join(lines, "\n")
	if !o.silent {
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
	}
	if o.clipboard {
		if err := clipboard.WriteAll(joined); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	if o.file != "" {
		f, err := os.OpenFile(o.file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return fmt.Errorf("write %s: %w", o.file, err)
		}
		if _, err := io.WriteString(f, joined+"\n"); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", o.file, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("write %s: %w", o.file, err)
		}
	}
	return nil
}
