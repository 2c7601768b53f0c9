package storage

import (
	"errors"
	"testing"
)

func TestAnyDatastoreConfig_Default(t *testing.T) {
	dsc, err := AnyDatastoreConfig(DefaultDiskSpec())
	if err != nil {
		t.Fatalf("AnyDatastoreConfig failed: %v", err)
	}

	spec := dsc.DiskSpec()
	if spec["type"] != "mount" {
		t.Errorf("type = %v", spec["type"])
	}

	mounts, ok := spec["mounts"].([]interface{})
	if !ok || len(mounts) != 2 {
		t.Fatalf("mounts = %v", spec["mounts"])
	}

	// 更长的前缀排在前面
	first := mounts[0].(map[string]interface{})
	if first["mountpoint"] != BackupsMountpoint {
		t.Errorf("first mountpoint = %v", first["mountpoint"])
	}

	// DiskSpec 的序列化结果是稳定的
	again, _ := AnyDatastoreConfig(DefaultDiskSpec())
	if again.DiskSpec().String() != spec.String() {
		t.Error("DiskSpec serialization should be deterministic")
	}
}

func TestAnyDatastoreConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]interface{}
		field  string
	}{
		{"missing type", map[string]interface{}{}, "type"},
		{"unknown type", map[string]interface{}{"type": "badger"}, "type"},
		{"leveldb without path", map[string]interface{}{"type": "levelds"}, "path"},
		{"leveldb bad compression", map[string]interface{}{"type": "levelds", "path": "x", "compression": "zstd"}, "compression"},
		{"flatfs without shard", map[string]interface{}{"type": "flatfs", "path": "x", "sync": true}, "shardFunc"},
		{"flatfs bad shard", map[string]interface{}{"type": "flatfs", "path": "x", "sync": true, "shardFunc": "nope"}, "shardFunc"},
		{"flatfs without sync", map[string]interface{}{"type": "flatfs", "path": "x", "shardFunc": "/repo/flatfs/shard/v1/next-to-last/2"}, "sync"},
		{"measure without child", map[string]interface{}{"type": "measure", "prefix": "p"}, "child"},
		{"mount without mounts", map[string]interface{}{"type": "mount"}, "mounts"},
		{"mount without mountpoint", map[string]interface{}{"type": "mount", "mounts": []interface{}{
			map[string]interface{}{"type": "levelds", "path": "x"},
		}}, "mountpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AnyDatastoreConfig(tt.params)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestAnyDatastoreConfig_TypeIsCaseInsensitive(t *testing.T) {
	if _, err := AnyDatastoreConfig(map[string]interface{}{"type": "LevelDS", "path": "x"}); err != nil {
		t.Errorf("type should be case-insensitive: %v", err)
	}
}
