package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	ds "github.com/ipfs/go-datastore"
)

// setupStorage 创建临时目录并打开存储，测试结束时自动关闭。
func setupStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	dir := t.TempDir()

	s, err := NewStorage(dir)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("warning: failed to close storage: %v", err)
		}
	})

	return s, dir
}

func TestNewStorage(t *testing.T) {
	s, dir := setupStorage(t)

	if s.Path() != filepath.Clean(dir) {
		t.Errorf("path mismatch: got %s, want %s", s.Path(), dir)
	}
	if !FileExists(DatastoreSpecPath(dir)) {
		t.Error("datastore_spec should be written")
	}
	if _, err := os.Stat(filepath.Join(dir, LockFile)); err != nil {
		t.Errorf("lock file should exist while open: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "backups")); err != nil {
		t.Errorf("flatfs directory should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "journal")); err != nil {
		t.Errorf("leveldb directory should exist: %v", err)
	}
}

func TestNewStorage_EmptyPath(t *testing.T) {
	if _, err := NewStorage(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestNewStorage_ExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	s, err := newStorage("~/texopt-test")
	if err != nil {
		t.Fatalf("newStorage failed: %v", err)
	}
	if s.path != filepath.Join(home, "texopt-test") {
		t.Errorf("path not expanded: %s", s.path)
	}
}

func TestStorage_SecondOpenerIsRejected(t *testing.T) {
	_, dir := setupStorage(t)

	_, err := NewStorage(dir)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	var lockErr *LockError
	if !errors.As(err, &lockErr) {
		t.Errorf("expected *LockError, got %T", err)
	}
}

func TestStorage_ReopenAfterClose(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	key := ds.NewKey("/assets/a")

	s, err := NewStorage(dir)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	if err := s.Datastore().Put(ctx, key, []byte("value")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LockFile)); !os.IsNotExist(err) {
		t.Error("lock file should be removed on close")
	}

	s2, err := NewStorage(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	v, err := s2.Datastore().Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(v) != "value" {
		t.Errorf("value = %q", v)
	}
}

func TestStorage_StaleLockIsIgnored(t *testing.T) {
	dir := t.TempDir()
	// PID 0x7ffffffe 几乎不可能存在
	if err := os.WriteFile(filepath.Join(dir, LockFile), []byte("2147483646"), 0o644); err != nil {
		t.Fatalf("write lock: %v", err)
	}

	s, err := NewStorage(dir)
	if err != nil {
		t.Fatalf("stale lock should not block: %v", err)
	}
	s.Close()
}

func TestStorage_CloseTwice(t *testing.T) {
	s, _ := setupStorage(t)

	if err := s.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if _, err := s.GetStorageUsage(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestStorage_Destroy(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal-root")

	s, err := NewStorage(dir)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	if err := s.Destroy(); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory should be removed")
	}
}

func TestStorage_SpecMismatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(DatastoreSpecPath(dir), []byte(`{"type":"levelds","path":"other"}`), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	_, err := NewStorage(dir)
	if !errors.Is(err, ErrSpecMismatch) {
		t.Fatalf("expected ErrSpecMismatch, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, LockFile)); !os.IsNotExist(statErr) {
		t.Error("failed open must release the lock")
	}
}

func TestStorage_BackupsMount(t *testing.T) {
	s, dir := setupStorage(t)
	ctx := context.Background()

	// FlatFS 只接受大写 base32 风格的键
	key := ds.NewKey(BackupsMountpoint + "/CIQTESTKEY")
	if err := s.Datastore().Put(ctx, key, []byte("backup")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var found bool
	_ = filepath.Walk(filepath.Join(dir, "backups"), func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && filepath.Ext(path) == ".data" {
			found = true
		}
		return nil
	})
	if !found {
		t.Error("backup key should be stored by flatfs")
	}

	usage, err := s.GetStorageUsage(ctx)
	if err != nil {
		t.Fatalf("GetStorageUsage failed: %v", err)
	}
	if usage == 0 {
		t.Error("usage should be non-zero after a write")
	}
}
