// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command instadb-cli is a small driver over the instadb package,
// exercising the four host-facing operations (open, store, fetch,
// associate) against a real heap file from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	instadb "github.com/prokopschield/insta-db"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "instadb-cli:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: instadb-cli <store|fetch|associate> [flags]")
	}

	cmd, rest := args[0], args[1:]

	flags := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	file := flags.StringP("file", "f", "instadb.db", "primary heap file")
	size := flags.Int64P("size", "s", 16<<20, "heap capacity in bytes (only used on first creation)")
	mirrors := flags.StringArray("mirror", nil, "write-mirror path (repeatable)")
	overlays := flags.StringArray("overlay", nil, "read-only overlay path (repeatable)")
	verbose := flags.BoolP("verbose", "v", false, "enable diagnostic logging")
	dereference := flags.Bool("dereference", false, "follow the val pointer (fetch only)")

	if err := flags.Parse(rest); err != nil {
		return err
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	opts := []instadb.Option{
		instadb.WithStorageFile(*file),
		instadb.WithSize(*size),
	}
	for _, m := range *mirrors {
		opts = append(opts, instadb.WithMirror(m))
	}
	for _, o := range *overlays {
		opts = append(opts, instadb.WithOverlay(o))
	}
	if logger != nil {
		opts = append(opts, instadb.WithLogger(logger))
	}

	store, err := instadb.Open(opts...)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer store.Close()

	switch cmd {
	case "store":
		return runStore(store, flags.Args())
	case "fetch":
		return runFetch(store, flags.Args(), *dereference)
	case "associate":
		return runAssociate(store, flags.Args())
	default:
		return fmt.Errorf("unknown command %q (want store, fetch, or associate)", cmd)
	}
}

func runStore(store *instadb.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: instadb-cli store [flags] <payload>")
	}
	hash, err := store.StoreString(args[0])
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	fmt.Println(hash)
	return nil
}

func runFetch(store *instadb.Store, args []string, dereference bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: instadb-cli fetch [flags] <hash>")
	}

	buf, err := store.Fetch(args[0], true, dereference)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	os.Stdout.Write(buf)
	fmt.Println()
	return nil
}

func runAssociate(store *instadb.Store, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: instadb-cli associate [flags] <key> <value>")
	}
	ok, err := store.AssociateStrings(args[0], args[1])
	if err != nil {
		return fmt.Errorf("associate: %w", err)
	}
	if !ok {
		return fmt.Errorf("associate: did not succeed")
	}
	return nil
}
