// Command bookstruct prints the sections of one or more e-book files in
// reading order.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/bookstruct/internal/config"
	"github.com/dgallion1/bookstruct/internal/container"
	"github.com/dgallion1/bookstruct/internal/doctree"
	"github.com/dgallion1/bookstruct/internal/structure"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("bookstruct", flag.ContinueOnError)
	fs.SetOutput(stderr)
	strategy := fs.String("strategy", cfg.Strategy, "auto, structural or anchor")
	format := fs.String("format", "text", "output format: text or json")
	skipFailed := fs.Bool("skip-failed", cfg.SkipFailed, "keep going when a content document fails")
	verbose := fs.Bool("v", false, "debug logging to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: bookstruct [flags] FILE...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg.Strategy = *strategy
	cfg.SkipFailed = *skipFailed
	if err := cfg.ValidateStructuring(); err != nil {
		fmt.Fprintf(stderr, "bookstruct: %v\n", err)
		return 2
	}
	r, err := newRenderer(*format, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "bookstruct: %v\n", err)
		return 2
	}

	engine := structure.NewEngine(cfg.Profile(), cfg.StructureOptions(), log)

	status := 0
	for _, path := range fs.Args() {
		book, err := structureFile(engine, path)
		if err != nil {
			fmt.Fprintf(stderr, "bookstruct: %s: %v\n", path, err)
			status = 1
			continue
		}
		for _, d := range book.Failed() {
			fmt.Fprintf(stderr, "bookstruct: %s: %s: %s\n", path, d.ID, d.Error)
			status = 1
		}
		if err := r.render(path, book); err != nil {
			fmt.Fprintf(stderr, "bookstruct: write: %v\n", err)
			return 1
		}
	}
	return status
}

func structureFile(engine *structure.Engine, path string) (*doctree.Book, error) {
	c, err := container.Open(path)
	if err != nil {
		if errors.Is(err, container.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("unsupported file type")
		}
		return nil, err
	}
	return engine.StructureBook(c)
}
