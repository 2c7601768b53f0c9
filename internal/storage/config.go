package storage

import (
	"fmt"
	"sort"
	"strings"

	ds "github.com/ipfs/go-datastore"
)

// Datastore 是 journal 使用的批处理 datastore。
type Datastore interface {
	ds.Batching
}

// DatastoreConfig 描述一种后端：DiskSpec 用于与磁盘上的配置比较，
// Create 在 path 下打开实例。
type DatastoreConfig interface {
	DiskSpec() DiskSpec
	Create(path string) (Datastore, error)
}

// ConfigFactory 从配置映射构造 DatastoreConfig。
type ConfigFactory func(map[string]interface{}) (DatastoreConfig, error)

// factories 在包初始化后只读。
var factories map[string]ConfigFactory

func init() {
	factories = map[string]ConfigFactory{
		"mount":   MountDatastoreConfig,
		"measure": MeasureDatastoreConfig,
		"levelds": LevelDBDatastoreConfig,
		"flatfs":  FlatFsDatastoreConfig,
	}
}

// AnyDatastoreConfig 根据 "type" 字段选择工厂并构造配置。
func AnyDatastoreConfig(params map[string]interface{}) (DatastoreConfig, error) {
	datastoreType, ok := params["type"].(string)
	if !ok {
		return nil, &ConfigError{Field: "type", Err: errMissingOrWrongType}
	}

	factory := factories[strings.ToLower(datastoreType)]
	if factory == nil {
		return nil, &ConfigError{Field: "type", Value: datastoreType,
			Err: fmt.Errorf("unknown datastore type (available: %v)", knownTypes())}
	}

	return factory(params)
}

func knownTypes() []string {
	types := make([]string, 0, len(factories))
	for name := range factories {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
