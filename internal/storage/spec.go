// Package storage 提供 texopt journal 的持久化存储。
//
// 存储目录由一个 mount datastore 组成：
//   - /blocks: FlatFS，保存原始 .meta 内容（按 CID 寻址的块）
//   - /: LevelDB，保存每个资源的 journal 记录和运行摘要
//
// 两个后端都包装在 go-ds-measure 中，目录由 lockedfile 锁保护，
// 同一时间只允许一个进程打开。
//
// 基本使用：
//
//	store, err := storage.NewStorage("~/project/Library/texopt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	d := store.Datastore()
package storage

import (
	"bytes"
	"encoding/json"
)

const (
	// BackupsMountpoint 是备份块所在的挂载前缀。
	BackupsMountpoint = "/blocks"

	backupsPrefix = "texopt.backups.datastore"
	journalPrefix = "texopt.journal.datastore"
)

// DiskSpec 是写入 datastore_spec 文件的存储配置。
type DiskSpec map[string]interface{}

// DefaultDiskSpec 返回 journal 的默认存储配置。
func DefaultDiskSpec() DiskSpec {
	return map[string]interface{}{
		"type": "mount",
		"mounts": []interface{}{
			map[string]interface{}{
				"mountpoint": BackupsMountpoint,
				"type":       "measure",
				"prefix":     backupsPrefix,
				"child": map[string]interface{}{
					"type":      "flatfs",
					"path":      "backups",
					"sync":      true,
					"shardFunc": "/repo/flatfs/shard/v1/next-to-last/2",
				},
			},
			map[string]interface{}{
				"mountpoint": "/",
				"type":       "measure",
				"prefix":     journalPrefix,
				"child": map[string]interface{}{
					"type":        "levelds",
					"path":        "journal",
					"compression": "snappy",
				},
			},
		},
	}
}

// Bytes 将 DiskSpec 序列化为 JSON。
func (s DiskSpec) Bytes() []byte {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}

	return bytes.TrimSpace(b)
}

func (s DiskSpec) String() string {
	return string(s.Bytes())
}
