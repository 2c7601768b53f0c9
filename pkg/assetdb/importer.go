package assetdb

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tragoedia0722/texopt/pkg/applier"
	"github.com/tragoedia0722/texopt/pkg/journal"
	"github.com/tragoedia0722/texopt/pkg/unitymeta"
)

// textureImporter edits one parsed sidecar. original holds the bytes the
// document was parsed from, or last written.
type textureImporter struct {
	*unitymeta.Document
	db       *Database
	original []byte
}

var _ applier.Importer = (*textureImporter)(nil)

func (t *textureImporter) Platform(name string) applier.PlatformSettings {
	return t.Document.Platform(name)
}

// CommitAndReimport writes the document back to the sidecar of assetPath.
// The file is left untouched when the encoding is byte-identical.
func (t *textureImporter) CommitAndReimport(ctx context.Context, assetPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := t.Encode()
	if err != nil {
		return &MetaError{Path: assetPath, Op: "encode", Err: err}
	}

	if bytes.Equal(out, t.original) {
		t.db.unchanged.Add(1)
		log.Debugw("unchanged", "path", assetPath)
		return nil
	}

	if t.db.dryRun {
		t.db.pending.Add(1)
		log.Infow("would rewrite", "path", assetPath)
		return nil
	}

	metaPath, err := t.db.metaPath(assetPath)
	if err != nil {
		return err
	}

	if t.db.journal == nil {
		if err := replaceMeta(metaPath, t.original, out); err != nil {
			return &MetaError{Path: assetPath, Op: "write", Err: err}
		}
		t.original = out
		t.db.written.Add(1)
		return nil
	}

	// The entry goes in before the write so a written sidecar always has
	// a backup to restore from.
	recorded, err := t.record(ctx, assetPath, out)
	if err != nil {
		return err
	}

	if err := replaceMeta(metaPath, t.original, out); err != nil {
		if recorded {
			if ferr := t.db.journal.Forget(ctx, assetPath); ferr != nil {
				log.Warnw("failed to drop journal entry", "path", assetPath, "error", ferr)
			}
		}
		return &MetaError{Path: assetPath, Op: "write", Err: err}
	}
	t.original = out
	t.db.written.Add(1)
	return nil
}

// record backs up the bytes on disk and journals the commit of out. It
// reports whether the entry is new, so a failed write can drop it.
func (t *textureImporter) record(ctx context.Context, assetPath string, out []byte) (bool, error) {
	j := t.db.journal

	_, err := j.Get(ctx, assetPath)
	isNew := errors.Is(err, journal.ErrNotFound)
	if err != nil && !isNew {
		return false, &MetaError{Path: assetPath, Op: "journal", Err: err}
	}

	backup, err := j.Backup(ctx, t.original)
	if err != nil {
		return false, &MetaError{Path: assetPath, Op: "backup", Err: err}
	}

	applied, err := j.Sum(out)
	if err != nil {
		return false, &MetaError{Path: assetPath, Op: "journal", Err: err}
	}

	src, _ := t.db.abs(assetPath)
	w, h := probeDimensions(src)

	err = j.Record(ctx, journal.Entry{
		Path:       assetPath,
		GUID:       t.GUID(),
		BackupCID:  backup.String(),
		AppliedCID: applied.String(),
		Width:      w,
		Height:     h,
	})
	if err != nil {
		return false, &MetaError{Path: assetPath, Op: "journal", Err: err}
	}
	return isNew, nil
}

// probeDimensions returns the pixel size of the source image, or zeros for
// formats the image package cannot decode (psd, tga, exr and friends).
func probeDimensions(src string) (int, int) {
	f, err := os.Open(src)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Debugw("probe open failed", "path", src, "error", err)
		}
		return 0, 0
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		log.Debugw("probe skipped", "path", src, "error", err)
		return 0, 0
	}

	log.Debugw("probed", "path", src, "format", format, "width", cfg.Width, "height", cfg.Height)
	return cfg.Width, cfg.Height
}
