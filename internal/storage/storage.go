package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	ds "github.com/ipfs/go-datastore"
	"github.com/mitchellh/go-homedir"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// LockFile 是存储目录中的锁文件名，内容为持有者的 PID。
const LockFile = ".journal.lock"

// Storage 是一个已加锁并打开的存储目录。
type Storage struct {
	locker   sync.Mutex
	closed   atomic.Bool
	path     string
	lockFile *lockedfile.File
	ds       Datastore
}

// NewStorage 在 path 下初始化（如有需要）并打开存储。path 支持 ~ 展开。
func NewStorage(path string) (*Storage, error) {
	r, err := newStorage(path)
	if err != nil {
		return nil, err
	}

	if err := Writable(r.path); err != nil {
		return nil, err
	}

	if err := initSpec(r.path, DefaultDiskSpec()); err != nil {
		return nil, err
	}

	if err := r.open(); err != nil {
		return nil, err
	}

	return r, nil
}

func newStorage(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("no path provided")
	}

	expPath, err := homedir.Expand(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return &Storage{path: expPath}, nil
}

// Path 返回展开后的存储目录。
func (r *Storage) Path() string {
	return r.path
}

// Datastore 返回根 datastore；/blocks 前缀路由到 FlatFS。
func (r *Storage) Datastore() Datastore {
	r.locker.Lock()
	defer r.locker.Unlock()

	return r.ds
}

// GetStorageUsage 返回各后端报告的磁盘占用总和。
func (r *Storage) GetStorageUsage(ctx context.Context) (uint64, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	return ds.DiskUsage(ctx, r.Datastore())
}

// Close 关闭 datastore 并释放锁。重复调用返回 nil。
func (r *Storage) Close() error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if r.ds != nil {
		if err := r.ds.Close(); err != nil {
			errs = append(errs, &StorageError{Operation: "close datastore", Path: r.path, Err: err})
		}
	}

	if err := r.releaseLock(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Destroy 关闭存储并删除整个目录。
func (r *Storage) Destroy() error {
	if err := r.Close(); err != nil {
		return err
	}
	return os.RemoveAll(r.path)
}

func (r *Storage) open() error {
	r.locker.Lock()
	defer r.locker.Unlock()

	lockPath := filepath.Join(r.path, LockFile)

	// lockedfile.Create 在锁被持有时会阻塞，先通过 PID 探测。
	if err := probeLock(lockPath); err != nil {
		return err
	}

	lockFile, err := lockedfile.Create(lockPath)
	if err != nil {
		return &LockError{Path: lockPath, Err: err}
	}
	if _, err := lockFile.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = lockFile.Close()
		return &LockError{Path: lockPath, Err: err}
	}
	r.lockFile = lockFile

	keepLocked := false
	defer func() {
		if !keepLocked {
			_ = r.releaseLock()
		}
	}()

	if err := r.openDatastore(); err != nil {
		return err
	}

	keepLocked = true
	return nil
}

func (r *Storage) openDatastore() error {
	dsc, err := AnyDatastoreConfig(DefaultDiskSpec())
	if err != nil {
		return err
	}
	spec := dsc.DiskSpec()

	onDisk, err := r.readSpec()
	if err != nil {
		return err
	}

	if onDisk != spec.String() {
		return &StorageError{Operation: "open datastore", Path: r.path,
			Err: fmt.Errorf("%w: want '%s', found '%s'", ErrSpecMismatch, spec.String(), onDisk)}
	}

	d, err := dsc.Create(r.path)
	if err != nil {
		return &StorageError{Operation: "open datastore", Path: r.path, Err: err}
	}

	r.ds = d
	return nil
}

func (r *Storage) releaseLock() error {
	if r.lockFile == nil {
		return nil
	}

	lockPath := r.lockFile.Name()
	err := r.lockFile.Close()
	r.lockFile = nil

	if rmErr := os.Remove(lockPath); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	if err != nil {
		return &LockError{Path: lockPath, Err: err}
	}
	return nil
}

func (r *Storage) readSpec() (string, error) {
	b, err := os.ReadFile(DatastoreSpecPath(r.path))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func initSpec(path string, conf DiskSpec) error {
	specPath := DatastoreSpecPath(path)
	if FileExists(specPath) {
		return nil
	}

	dsc, err := AnyDatastoreConfig(conf)
	if err != nil {
		return err
	}

	return os.WriteFile(specPath, dsc.DiskSpec().Bytes(), 0o600)
}
