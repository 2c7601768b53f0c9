package storage

import (
	"sort"

	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/mount"
)

type mountDatastoreConfig struct {
	mounts []mountItem
}

type mountItem struct {
	ds     DatastoreConfig
	prefix ds.Key
}

// MountDatastoreConfig 读取 "mounts" 数组，每项包含 "mountpoint" 和子配置。
// 挂载点按前缀降序排列，保证更具体的前缀优先匹配。
func MountDatastoreConfig(params map[string]interface{}) (DatastoreConfig, error) {
	mounts, ok := params["mounts"].([]interface{})
	if !ok {
		return nil, &ConfigError{Field: "mounts", Err: errMissingOrWrongType}
	}

	var config mountDatastoreConfig
	for _, item := range mounts {
		mountParams, ok := item.(map[string]interface{})
		if !ok {
			return nil, &ConfigError{Field: "mounts", Value: item, Err: errMissingOrWrongType}
		}

		child, err := AnyDatastoreConfig(mountParams)
		if err != nil {
			return nil, err
		}

		prefix, ok := mountParams["mountpoint"].(string)
		if !ok {
			return nil, &ConfigError{Field: "mountpoint", Err: errMissingOrWrongType}
		}

		config.mounts = append(config.mounts, mountItem{
			ds:     child,
			prefix: ds.NewKey(prefix),
		})
	}

	sort.Slice(config.mounts, func(i, j int) bool {
		return config.mounts[i].prefix.String() > config.mounts[j].prefix.String()
	})

	return &config, nil
}

func (cfg *mountDatastoreConfig) DiskSpec() DiskSpec {
	mounts := make([]interface{}, len(cfg.mounts))
	for i, m := range cfg.mounts {
		mountSpec := m.ds.DiskSpec()
		if mountSpec == nil {
			mountSpec = make(map[string]interface{})
		}
		mountSpec["mountpoint"] = m.prefix.String()
		mounts[i] = mountSpec
	}

	return map[string]interface{}{
		"type":   "mount",
		"mounts": mounts,
	}
}

func (cfg *mountDatastoreConfig) Create(path string) (Datastore, error) {
	mounts := make([]mount.Mount, 0, len(cfg.mounts))

	for _, m := range cfg.mounts {
		store, err := m.ds.Create(path)
		if err != nil {
			for _, opened := range mounts {
				_ = opened.Datastore.Close()
			}
			return nil, err
		}

		mounts = append(mounts, mount.Mount{Prefix: m.prefix, Datastore: store})
	}

	return mount.New(mounts), nil
}
