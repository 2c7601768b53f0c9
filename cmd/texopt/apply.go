package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/tragoedia0722/texopt/pkg/applier"
	"github.com/tragoedia0722/texopt/pkg/assetdb"
	"github.com/tragoedia0722/texopt/pkg/journal"
	"github.com/tragoedia0722/texopt/pkg/progress"
	"github.com/tragoedia0722/texopt/pkg/settings"
)

type applyFlags struct {
	commonFlags
	config      string
	max         int
	compression string
	platform    string
	format      string
	cleanup     string
	readable    string
	resize      string
	scope       string
	dryRun      bool
}

func parseApply(args []string) (*applyFlags, settings.Config, error) {
	f := &applyFlags{}
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	f.register(fs)
	fs.StringVar(&f.config, "config", "", "JSON configuration file")
	fs.IntVar(&f.max, "max", settings.DefaultMaxDimension, "maximum texture dimension (power of two)")
	fs.StringVar(&f.compression, "compression", "compressed", "uncompressed, compressed, compressed-hq or compressed-lq")
	fs.StringVar(&f.platform, "platform", settings.DefaultTargetPlatform, "build target of the override block")
	fs.StringVar(&f.format, "format", "auto", "auto, dxt1, dxt5, bc7, etc2 or astc6x6")
	fs.StringVar(&f.cleanup, "cleanup", "guaranteed", "progress cleanup: guaranteed or best-effort")
	fs.StringVar(&f.readable, "readable", "disable", "read/write flag: disable (normal maps stay readable) or keep")
	fs.StringVar(&f.resize, "resize", "mitchell", "resize algorithm: mitchell or bilinear")
	fs.StringVar(&f.scope, "scope", settings.DefaultSearchScope, "comma-separated search folders")
	fs.BoolVar(&f.dryRun, "dry-run", false, "report what would change without writing")

	if err := fs.Parse(args); err != nil {
		return nil, settings.Config{}, err
	}
	if fs.NArg() != 0 {
		return nil, settings.Config{}, fmt.Errorf("apply takes no arguments, got %q", fs.Args())
	}

	cfg := settings.Default()
	if f.config != "" {
		loaded, err := settings.LoadFile(f.config)
		if err != nil {
			return nil, settings.Config{}, err
		}
		cfg = loaded
	}

	// Flags given on the command line override the file.
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		err = f.override(&cfg, fl.Name)
	})
	if err != nil {
		return nil, settings.Config{}, err
	}
	return f, cfg, nil
}

func (f *applyFlags) override(cfg *settings.Config, name string) error {
	var err error
	switch name {
	case "max":
		cfg.MaxDimension = f.max
	case "compression":
		cfg.Compression, err = settings.ParseCompression(f.compression)
	case "platform":
		cfg.TargetPlatform = f.platform
	case "format":
		var format settings.Format
		if format, err = settings.ParseFormat(f.format); err == nil {
			if format == settings.FormatAutomatic {
				cfg.FormatPolicy = settings.FormatPolicyAutomatic
			} else {
				cfg.FormatPolicy = settings.FormatPolicyFixed
				cfg.FixedFormat = format
			}
		}
	case "cleanup":
		cfg.CleanupPolicy, err = settings.ParseCleanupPolicy(f.cleanup)
	case "readable":
		cfg.ReadablePolicy, err = settings.ParseReadablePolicy(f.readable)
	case "resize":
		cfg.ResizeAlgorithm, err = settings.ParseResizeAlgorithm(f.resize)
	case "scope":
		cfg.SearchScope = splitList(f.scope)
	}
	if err != nil {
		return fmt.Errorf("-%s: %w", name, err)
	}
	return nil
}

func runApply(ctx context.Context, args []string) error {
	f, cfg, err := parseApply(args)
	if err != nil {
		return err
	}

	db, err := assetdb.Open(f.project)
	if err != nil {
		return err
	}
	db.WithDryRun(f.dryRun)

	// A dry run leaves the project untouched, journal directory included.
	var j *journal.Journal
	if !f.dryRun {
		j, err = journal.Open(f.journalPath())
		if err != nil {
			return err
		}
		defer j.Close()
		db.WithJournal(j)
	}

	sink := progress.Multi(progress.NewTerminal(os.Stderr), progress.NewLog(log))
	started := time.Now().UTC()
	result, applyErr := applier.NewApplier(db).WithProgress(sink).Apply(ctx, cfg)

	if j != nil && result != nil {
		run := journal.Run{
			StartedAt: started,
			Duration:  result.Duration,
			Config:    cfg,
			Total:     result.Total,
			Processed: result.Processed,
			Skipped:   result.Skipped,
		}
		if applyErr != nil {
			run.Error = applyErr.Error()
		}
		if err := j.RecordRun(ctx, run); err != nil {
			log.Warnw("failed to record run", "error", err)
		}
	}

	if applyErr != nil {
		return applyErr
	}

	stats := db.Stats()
	detail := fmt.Sprintf("%d written, %d unchanged", stats.Written, stats.Unchanged)
	if f.dryRun {
		detail = fmt.Sprintf("dry run, %d would change", stats.Pending)
	}
	fmt.Printf("%s (%s)\n", color.GreenString("%s", result.Summary()), detail)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
