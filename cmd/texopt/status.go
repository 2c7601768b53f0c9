package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/tragoedia0722/texopt/pkg/assetdb"
	"github.com/tragoedia0722/texopt/pkg/journal"
)

func runStatus(ctx context.Context, args []string) error {
	var c commonFlags
	var verify bool
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	c.register(fs)
	fs.BoolVar(&verify, "verify", false, "check that every backup can be restored")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := assetdb.Open(c.project)
	if err != nil {
		return err
	}

	j, err := journal.OpenExisting(c.journalPath())
	if errors.Is(err, journal.ErrNoJournal) {
		fmt.Println("nothing applied yet")
		return nil
	}
	if err != nil {
		return err
	}
	defer j.Close()

	statuses, err := db.WithJournal(j).Status(ctx)
	if err != nil {
		return err
	}
	runs, err := j.Runs(ctx)
	if err != nil {
		return err
	}
	usage, err := j.Usage(ctx)
	if err != nil {
		return err
	}

	printStatus(os.Stdout, statuses)

	fmt.Printf("%d assets journaled, %d runs, journal size %s\n",
		len(statuses), len(runs), humanize.Bytes(usage))
	if len(runs) > 0 {
		last := runs[len(runs)-1]
		fmt.Printf("last run %s: %d processed, %d skipped\n",
			humanize.Time(last.StartedAt), last.Processed, last.Skipped)
	}

	if !verify {
		return nil
	}

	result, err := j.Verify(ctx)
	if err != nil {
		return err
	}
	for _, d := range result.ErrorDetails {
		fmt.Println(color.RedString("%s", d))
	}
	if !result.CanRestore {
		return ErrBackupsIncomplete
	}
	fmt.Printf("backups verified: %d entries, %s\n", result.Entries, humanize.Bytes(uint64(result.TotalSize)))
	return nil
}

func printStatus(w io.Writer, statuses []assetdb.AssetStatus) {
	width := 0
	for _, s := range statuses {
		if n := runewidth.StringWidth(s.Path); n > width {
			width = n
		}
	}

	for _, s := range statuses {
		state := s.State.String()
		switch s.State {
		case assetdb.StateModified:
			state = color.YellowString(state)
		case assetdb.StateMissing:
			state = color.RedString(state)
		}

		size := "-"
		if s.Width > 0 {
			size = fmt.Sprintf("%dx%d", s.Width, s.Height)
		}
		fmt.Fprintf(w, "%s  %-9s  %s\n", runewidth.FillRight(s.Path, width), size, state)
	}
}
