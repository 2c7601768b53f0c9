package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const specFileName = "datastore_spec"

// Writable 确保目录存在且可写。
func Writable(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &StorageError{Operation: "create directory", Path: path, Err: err}
	}

	f, err := os.CreateTemp(path, "._check_writable*")
	if err != nil {
		return &StorageError{Operation: "check writability", Path: path,
			Err: fmt.Errorf("cannot create test file: %w", err)}
	}
	name := f.Name()
	defer os.Remove(name)

	if err := f.Close(); err != nil {
		return &StorageError{Operation: "check writability", Path: path, Err: err}
	}

	return nil
}

// DatastoreSpecPath 返回 repoPath 下 datastore_spec 文件的路径。
func DatastoreSpecPath(repoPath string) string {
	return filepath.Join(repoPath, specFileName)
}

// FileExists 检查文件是否存在且非空。
func FileExists(filename string) bool {
	fi, err := os.Stat(filename)
	if err != nil {
		return false
	}

	return fi.Size() > 0
}

// resolvePath 在 basePath 为相对路径时将其拼接到 rootPath 下。
func resolvePath(rootPath, basePath string) string {
	if filepath.IsAbs(basePath) {
		return basePath
	}
	return filepath.Join(rootPath, basePath)
}

// probeLock 检查锁文件是否属于仍在运行的进程（包括当前进程）。
// 进程退出后遗留的锁文件视为过期，可以被覆盖。
func probeLock(lockPath string) error {
	b, err := os.ReadFile(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &LockError{Path: lockPath, Err: err}
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return nil
	}

	if pid == os.Getpid() || processAlive(pid) {
		return &LockError{Path: lockPath, Err: fmt.Errorf("%w (pid %d)", ErrLocked, pid)}
	}
	return nil
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}
