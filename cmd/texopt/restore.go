package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/fatih/color"

	"github.com/tragoedia0722/texopt/pkg/assetdb"
	"github.com/tragoedia0722/texopt/pkg/journal"
)

func runRestore(ctx context.Context, args []string) error {
	var c commonFlags
	var dryRun bool
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	c.register(fs)
	fs.BoolVar(&dryRun, "dry-run", false, "report what would be restored without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := assetdb.Open(c.project)
	if err != nil {
		return err
	}

	j, err := journal.OpenExisting(c.journalPath())
	if errors.Is(err, journal.ErrNoJournal) {
		fmt.Println("nothing to restore")
		return nil
	}
	if err != nil {
		return err
	}
	defer j.Close()

	n, err := db.WithJournal(j).WithDryRun(dryRun).Restore(ctx, fs.Args())
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("dry run, %d sidecars would be restored\n", db.Stats().Pending)
		return nil
	}
	fmt.Println(color.GreenString("%d sidecars restored", n))
	return nil
}
