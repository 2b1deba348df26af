package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nonogarden/go-nonogram/puzzle"
)

func validate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: nonogram validate <catalog.json>

Parse a catalog file, report how many entries survive validation, and
exit non-zero if none do. Rejected entries are logged with their reason.
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("catalog file required")
	}

	catalog, err := puzzle.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("OK: %d valid puzzles\n", catalog.Len())
	return nil
}
