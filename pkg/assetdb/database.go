// Package assetdb is a filesystem asset registry over a project directory.
//
// Every asset has a YAML sidecar "<asset>.meta" holding its GUID and
// importer settings. Find enumerates texture assets that have a sidecar,
// ResolveToImporter parses the sidecar, and committing an importer rewrites
// the sidecar in place. With a journal attached, the original bytes are
// backed up before the first rewrite and can be restored later.
package assetdb

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/mitchellh/go-homedir"

	"github.com/tragoedia0722/texopt/pkg/applier"
	"github.com/tragoedia0722/texopt/pkg/journal"
	"github.com/tragoedia0722/texopt/pkg/unitymeta"
)

var log = logging.Logger("texopt/assetdb")

// MetaExt is the sidecar suffix.
const MetaExt = ".meta"

var textureExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".tga": {}, ".psd": {}, ".tif": {},
	".tiff": {}, ".bmp": {}, ".exr": {}, ".hdr": {}, ".gif": {}, ".iff": {},
	".pict": {}, ".webp": {},
}

// Stats counts what commits did during the lifetime of a Database.
type Stats struct {
	Written   int64 // sidecars rewritten
	Unchanged int64 // commits whose encoding matched the file on disk
	Pending   int64 // dry-run commits that would have written
}

// journalStore is the part of *journal.Journal commits and restores use.
type journalStore interface {
	Backup(ctx context.Context, data []byte) (cid.Cid, error)
	Sum(data []byte) (cid.Cid, error)
	Original(ctx context.Context, c string) ([]byte, error)
	Record(ctx context.Context, e journal.Entry) error
	Get(ctx context.Context, path string) (*journal.Entry, error)
	List(ctx context.Context) ([]journal.Entry, error)
	Forget(ctx context.Context, path string) error
}

type Database struct {
	root    string
	journal journalStore
	dryRun  bool

	written   atomic.Int64
	unchanged atomic.Int64
	pending   atomic.Int64
}

var _ applier.Registry = (*Database)(nil)

// Open returns a Database rooted at the project directory root. root
// supports ~ expansion.
func Open(root string) (*Database, error) {
	expRoot, err := homedir.Expand(root)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(expRoot)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &MetaError{Path: abs, Op: "open", Err: ErrNotProject}
	}

	return &Database{root: abs}, nil
}

// WithJournal attaches j; commits back up and record through it.
func (d *Database) WithJournal(j *journal.Journal) *Database {
	d.journal = nil
	if j != nil {
		d.journal = j
	}
	return d
}

// WithDryRun makes commits compute their output without writing anything.
func (d *Database) WithDryRun(dryRun bool) *Database {
	d.dryRun = dryRun
	return d
}

// Root returns the absolute project directory.
func (d *Database) Root() string {
	return d.root
}

func (d *Database) Stats() Stats {
	return Stats{
		Written:   d.written.Load(),
		Unchanged: d.unchanged.Load(),
		Pending:   d.pending.Load(),
	}
}

// Find returns the sorted, slash-separated, project-relative paths of the
// texture assets below each folder of scope.
func (d *Database) Find(ctx context.Context, kind string, scope []string) ([]string, error) {
	if kind != applier.TextureKind {
		return nil, ErrUnsupportedKind
	}

	seen := make(map[string]struct{})
	for _, s := range scope {
		dir, err := d.abs(s)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, &MetaError{Path: s, Op: "find", Err: ErrScopeNotFound}
		}

		if err := d.walk(ctx, dir, seen); err != nil {
			return nil, err
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	log.Debugw("find", "kind", kind, "scope", scope, "count", len(paths))
	return paths, nil
}

func (d *Database) walk(ctx context.Context, dir string, seen map[string]struct{}) error {
	return filepath.WalkDir(dir, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := e.Name()
		if e.IsDir() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if p != dir && isIgnored(name) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || !isTexture(name) {
			return nil
		}
		if _, err := os.Stat(p + MetaExt); err != nil {
			return nil
		}

		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		seen[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
}

// ResolveToImporter parses the sidecar of assetPath. Assets without a
// sidecar or without a TextureImporter block resolve to none.
func (d *Database) ResolveToImporter(ctx context.Context, assetPath string) (applier.Importer, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	metaPath, err := d.metaPath(assetPath)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &MetaError{Path: assetPath, Op: "read", Err: err}
	}

	doc, err := unitymeta.Parse(data)
	if err != nil {
		return nil, false, &MetaError{Path: assetPath, Op: "parse", Err: err}
	}
	if !doc.HasTextureImporter() {
		log.Debugw("not a texture importer", "path", assetPath, "importer", doc.ImporterKind())
		return nil, false, nil
	}

	return &textureImporter{Document: doc, db: d, original: data}, true, nil
}

func (d *Database) abs(rel string) (string, error) {
	p := filepath.Join(d.root, filepath.FromSlash(path.Clean(rel)))
	r, err := filepath.Rel(d.root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", &MetaError{Path: rel, Op: "resolve", Err: ErrOutsideProject}
	}
	return p, nil
}

func (d *Database) metaPath(assetPath string) (string, error) {
	p, err := d.abs(assetPath)
	if err != nil {
		return "", err
	}
	return p + MetaExt, nil
}

// isIgnored reports folders the editor does not import.
func isIgnored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}

func isTexture(name string) bool {
	_, ok := textureExts[strings.ToLower(filepath.Ext(name))]
	return ok
}
