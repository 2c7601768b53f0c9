package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed 表示存储已关闭。
	ErrClosed = errors.New("storage is closed")

	// ErrLocked 表示存储目录正被另一个持有者使用。
	ErrLocked = errors.New("storage is locked by another process")

	// ErrSpecMismatch 表示磁盘上的 datastore_spec 与当前版本不一致。
	ErrSpecMismatch = errors.New("datastore spec does not match")

	errMissingOrWrongType = errors.New("missing or wrong type")
)

// StorageError 表示存储操作期间的错误。
type StorageError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s failed at %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConfigError 表示 datastore 配置中的字段错误。
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("config field '%s' (value: %v): %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("config field '%s': %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LockError 表示锁文件相关的错误。
type LockError struct {
	Path string
	Err  error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("lock file error at %s: %v", e.Path, e.Err)
}

func (e *LockError) Unwrap() error {
	return e.Err
}
