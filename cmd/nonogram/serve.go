package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/nonogarden/go-nonogram/puzzle"
	"github.com/nonogarden/go-nonogram/server"
	"github.com/nonogarden/go-nonogram/storage"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8420", "Listen address")
	catalogPath := fs.String("puzzles", "puzzles.json", "Puzzle catalog file")
	dbPath := fs.String("db", "nonogram.db", "SQLite database path")
	watch := fs.Bool("watch", false, "Reload the catalog when the file changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: nonogram serve [options]

Start the play server: WebSocket sessions on /ws, catalog browsing on
/api/puzzles.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	catalog, err := puzzle.Load(*catalogPath)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d puzzles from %s", catalog.Len(), *catalogPath)

	store, err := storage.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(catalog, store)

	if *watch {
		go func() {
			err := puzzle.Watch(context.Background(), *catalogPath, srv.SetCatalog)
			if err != nil && err != context.Canceled {
				log.Printf("catalog watcher stopped: %v", err)
			}
		}()
	}

	log.Printf("Listening on %s", *addr)
	return http.ListenAndServe(*addr, srv)
}
