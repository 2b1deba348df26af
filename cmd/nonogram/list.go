package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nonogarden/go-nonogram/puzzle"
)

func list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	difficulty := fs.String("difficulty", "", "Only show puzzles of this difficulty")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: nonogram list [options] <catalog.json>

List the puzzles in a catalog.

Options:
`)
		fs.PrintDefaults()
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

	for i, p := range catalog.Puzzles() {
		if *difficulty != "" && string(p.Difficulty) != *difficulty {
			continue
		}
		fmt.Printf("%3d  %s  %dx%d  %d colors  %s  %s\n",
			i, p.ID, p.Width, p.Height, p.Colors(), p.Difficulty, p.Title)
	}
	return nil
}
