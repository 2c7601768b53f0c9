package assetdb

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rogpeppe/go-internal/lockedfile"
)

// replaceMeta atomically replaces the file at name with out. With a non-nil
// expect the file must exist and still hold expect, otherwise ErrModified
// is returned and nothing is written. With a nil expect a missing file is
// created.
//
// Writers coordinate through an advisory lock on the current file. Readers
// that take no lock see either the old or the new contents, never a mix.
func replaceMeta(name string, expect, out []byte) error {
	info, err := os.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && expect == nil {
			return renameInto(name, out, 0o644)
		}
		return err
	}

	// Edit creates missing files; the Stat above rules that out.
	f, err := lockedfile.Edit(name)
	if err != nil {
		return err
	}
	defer f.Close()

	// Another writer may have renamed a new file over name while we waited
	// for the lock on the old one.
	locked, err := f.Stat()
	if err != nil {
		return err
	}
	now, err := os.Stat(name)
	if err != nil || !os.SameFile(locked, now) {
		return ErrModified
	}

	if expect != nil {
		var current bytes.Buffer
		if _, err := current.ReadFrom(f); err != nil {
			return err
		}
		if !bytes.Equal(current.Bytes(), expect) {
			return ErrModified
		}
	}

	return renameInto(name, out, info.Mode().Perm())
}

// renameInto writes data to a hidden temporary file next to name, syncs it
// and renames it over name.
func renameInto(name string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(name)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}
