package assetdb

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/tragoedia0722/texopt/pkg/journal"
)

// State describes a journaled sidecar relative to what texopt last wrote.
type State int

const (
	// StateApplied means the sidecar holds the bytes texopt wrote.
	StateApplied State = iota
	// StateModified means the sidecar changed after texopt wrote it.
	StateModified
	// StateMissing means the sidecar no longer exists.
	StateMissing
)

func (s State) String() string {
	switch s {
	case StateApplied:
		return "applied"
	case StateModified:
		return "modified"
	case StateMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// AssetStatus pairs a journal entry with the current state of its sidecar.
type AssetStatus struct {
	journal.Entry
	State State
}

// Status reports every journaled asset, sorted by path.
func (d *Database) Status(ctx context.Context) ([]AssetStatus, error) {
	if d.journal == nil {
		return nil, ErrNoJournal
	}

	entries, err := d.journal.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]AssetStatus, 0, len(entries))
	for _, e := range entries {
		st, err := d.state(e)
		if err != nil {
			return nil, err
		}
		out = append(out, AssetStatus{Entry: e, State: st})
	}
	return out, nil
}

func (d *Database) state(e journal.Entry) (State, error) {
	metaPath, err := d.metaPath(e.Path)
	if err != nil {
		return StateMissing, err
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StateMissing, nil
		}
		return StateMissing, &MetaError{Path: e.Path, Op: "read", Err: err}
	}

	sum, err := d.journal.Sum(data)
	if err != nil {
		return StateMissing, err
	}
	if sum.String() != e.AppliedCID {
		return StateModified, nil
	}
	return StateApplied, nil
}

// Restore writes the backed-up original sidecar of each path and removes
// its journal entry. An empty paths restores every journaled asset. It
// returns the number of sidecars rewritten.
func (d *Database) Restore(ctx context.Context, paths []string) (int, error) {
	if d.journal == nil {
		return 0, ErrNoJournal
	}

	if len(paths) == 0 {
		entries, err := d.journal.List(ctx)
		if err != nil {
			return 0, err
		}
		for _, e := range entries {
			paths = append(paths, e.Path)
		}
	}

	restored := 0
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return restored, err
		}

		wrote, err := d.restoreOne(ctx, p)
		if err != nil {
			return restored, err
		}
		if wrote {
			restored++
		}
	}

	log.Infof("%d sidecars restored", restored)
	return restored, nil
}

func (d *Database) restoreOne(ctx context.Context, assetPath string) (bool, error) {
	e, err := d.journal.Get(ctx, assetPath)
	if err != nil {
		return false, err
	}

	original, err := d.journal.Original(ctx, e.BackupCID)
	if err != nil {
		return false, &MetaError{Path: assetPath, Op: "restore", Err: err}
	}

	metaPath, err := d.metaPath(assetPath)
	if err != nil {
		return false, err
	}

	if st, _ := d.state(*e); st == StateModified {
		log.Warnw("sidecar changed since apply, restoring anyway", "path", assetPath)
	}

	current, err := os.ReadFile(metaPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, &MetaError{Path: assetPath, Op: "read", Err: err}
	}

	if d.dryRun {
		if !bytes.Equal(current, original) {
			d.pending.Add(1)
			log.Infow("would restore", "path", assetPath)
		}
		return false, nil
	}

	wrote := false
	if !bytes.Equal(current, original) {
		if err := replaceMeta(metaPath, nil, original); err != nil {
			return false, &MetaError{Path: assetPath, Op: "restore", Err: err}
		}
		d.written.Add(1)
		wrote = true
	}

	if err := d.journal.Forget(ctx, assetPath); err != nil {
		return wrote, &MetaError{Path: assetPath, Op: "journal", Err: err}
	}
	return wrote, nil
}
