// Package journal records what texopt changed in a project so it can be
// inspected and undone.
//
// The journal keeps two kinds of data in one storage directory:
//
//   - backups: the original bytes of every .meta file the tool rewrote,
//     stored once as raw blocks addressed by CIDv1 (sha2-256)
//   - entries: one JSON record per asset path with the backup CID, the CID
//     of the bytes last written and the probed source size, plus one JSON
//     record per run
//
// The first backup of an asset wins; later runs never replace it, so a
// restore always returns the asset to its state before texopt touched it.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/ipfs/boxo/blockstore"
	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
	logging "github.com/ipfs/go-log/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/multiformats/go-multicodec"
	mh "github.com/multiformats/go-multihash"

	"github.com/tragoedia0722/texopt/internal/storage"
	"github.com/tragoedia0722/texopt/pkg/settings"
)

var log = logging.Logger("texopt/journal")

var (
	assetsPrefix = ds.NewKey("/assets")
	runsPrefix   = ds.NewKey("/runs")
)

var (
	// ErrNotFound is returned when the journal has no entry for a path.
	ErrNotFound = errors.New("no journal entry")

	// ErrNoJournal is returned by OpenExisting when nothing was journaled yet.
	ErrNoJournal = errors.New("no journal")

	// ErrBackupMissing is returned when an entry references a backup block
	// that is no longer in the store.
	ErrBackupMissing = errors.New("backup block missing")
)

// Entry is the journal record of one asset.
type Entry struct {
	Path       string    `json:"path"`
	GUID       string    `json:"guid,omitempty"`
	BackupCID  string    `json:"backupCid"`
	AppliedCID string    `json:"appliedCid"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	Applies    int       `json:"applies"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Run summarizes one apply pass.
type Run struct {
	StartedAt time.Time       `json:"startedAt"`
	Duration  time.Duration   `json:"duration"`
	Config    settings.Config `json:"config"`
	DryRun    bool            `json:"dryRun,omitempty"`
	Total     int             `json:"total"`
	Processed int             `json:"processed"`
	Skipped   int             `json:"skipped"`
	Error     string          `json:"error,omitempty"`
}

type Journal struct {
	storage    *storage.Storage
	blockStore blockstore.Blockstore
	builder    cid.Builder
}

// Open opens (creating if needed) the journal stored at path.
func Open(path string) (*Journal, error) {
	s, err := storage.NewStorage(path)
	if err != nil {
		return nil, err
	}

	return &Journal{
		storage:    s,
		blockStore: blockstore.NewBlockstore(s.Datastore()),
		builder: cid.V1Builder{
			Codec:    uint64(multicodec.Raw),
			MhType:   mh.SHA2_256,
			MhLength: -1,
		},
	}, nil
}

// OpenExisting opens the journal at path without creating it. It returns
// ErrNoJournal when path holds no initialized journal.
func OpenExisting(path string) (*Journal, error) {
	expanded, err := homedir.Expand(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	if !storage.FileExists(storage.DatastoreSpecPath(expanded)) {
		return nil, fmt.Errorf("%w: %s", ErrNoJournal, expanded)
	}
	return Open(expanded)
}

// Path returns the storage directory.
func (j *Journal) Path() string {
	return j.storage.Path()
}

func (j *Journal) Close() error {
	return j.storage.Close()
}

// Destroy closes the journal and removes its directory.
func (j *Journal) Destroy() error {
	return j.storage.Destroy()
}

// Usage returns the disk usage of the journal in bytes.
func (j *Journal) Usage(ctx context.Context) (uint64, error) {
	return j.storage.GetStorageUsage(ctx)
}

// Sum returns the content address data would be stored under.
func (j *Journal) Sum(data []byte) (cid.Cid, error) {
	return j.builder.Sum(data)
}

// Backup stores data as a block and returns its CID. Storing the same bytes
// twice is a no-op.
func (j *Journal) Backup(ctx context.Context, data []byte) (cid.Cid, error) {
	sum, err := j.builder.Sum(data)
	if err != nil {
		return cid.Undef, err
	}

	has, err := j.blockStore.Has(ctx, sum)
	if err != nil {
		return cid.Undef, err
	}
	if has {
		return sum, nil
	}

	blk, err := blocks.NewBlockWithCid(data, sum)
	if err != nil {
		return cid.Undef, err
	}

	if err := j.blockStore.Put(ctx, blk); err != nil {
		return cid.Undef, err
	}
	return sum, nil
}

// HasBackup reports whether the block for c is present.
func (j *Journal) HasBackup(ctx context.Context, c string) (bool, error) {
	parsed, err := cid.Parse(c)
	if err != nil {
		return false, err
	}
	return j.blockStore.Has(ctx, parsed)
}

// Original returns the backed-up bytes for a CID string.
func (j *Journal) Original(ctx context.Context, c string) ([]byte, error) {
	parsed, err := cid.Parse(c)
	if err != nil {
		return nil, err
	}

	blk, err := j.blockStore.Get(ctx, parsed)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrBackupMissing, c)
		}
		return nil, err
	}
	return blk.RawData(), nil
}

// Record stores e, keeping the BackupCID of an existing entry for the same
// path and counting applies.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	prev, err := j.Get(ctx, e.Path)
	switch {
	case err == nil:
		if prev.BackupCID != "" {
			e.BackupCID = prev.BackupCID
		}
		e.Applies = prev.Applies + 1
	case errors.Is(err, ErrNotFound):
		e.Applies = 1
	default:
		return err
	}

	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	log.Debugw("journal record", "path", e.Path, "backup", e.BackupCID, "applied", e.AppliedCID)
	return j.storage.Datastore().Put(ctx, assetKey(e.Path), b)
}

// Get returns the entry for path or ErrNotFound.
func (j *Journal) Get(ctx context.Context, path string) (*Entry, error) {
	b, err := j.storage.Datastore().Get(ctx, assetKey(path))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode entry %s: %w", path, err)
	}
	return &e, nil
}

// List returns every entry sorted by path.
func (j *Journal) List(ctx context.Context) ([]Entry, error) {
	results, err := j.storage.Datastore().Query(ctx, query.Query{Prefix: assetsPrefix.String()})
	if err != nil {
		return nil, err
	}
	rest, err := results.Rest()
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(rest))
	for _, r := range rest {
		var e Entry
		if err := json.Unmarshal(r.Value, &e); err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", r.Key, err)
		}
		out = append(out, e)
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Path < out[b].Path })
	return out, nil
}

// Forget removes the entry for path. Backup blocks are kept; other entries
// may share them.
func (j *Journal) Forget(ctx context.Context, path string) error {
	return j.storage.Datastore().Delete(ctx, assetKey(path))
}

// RecordRun appends a run summary.
func (j *Journal) RecordRun(ctx context.Context, r Run) error {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}

	b, err := json.Marshal(r)
	if err != nil {
		return err
	}

	key := runsPrefix.ChildString(fmt.Sprintf("%020d", r.StartedAt.UnixNano()))
	return j.storage.Datastore().Put(ctx, key, b)
}

// Runs returns run summaries, oldest first.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	results, err := j.storage.Datastore().Query(ctx, query.Query{
		Prefix: runsPrefix.String(),
		Orders: []query.Order{query.OrderByKey{}},
	})
	if err != nil {
		return nil, err
	}
	rest, err := results.Rest()
	if err != nil {
		return nil, err
	}

	out := make([]Run, 0, len(rest))
	for _, r := range rest {
		var run Run
		if err := json.Unmarshal(r.Value, &run); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", r.Key, err)
		}
		out = append(out, run)
	}
	return out, nil
}

func assetKey(path string) ds.Key {
	return assetsPrefix.ChildString(path)
}

func isNotFound(err error) bool {
	return errors.Is(err, ds.ErrNotFound) || ipldNotFound(err)
}

// ipldNotFound matches the not-found error the blockstore returns without
// importing its package.
func ipldNotFound(err error) bool {
	var nf interface{ NotFound() bool }
	return errors.As(err, &nf) && nf.NotFound()
}
