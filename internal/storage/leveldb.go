package storage

import (
	"fmt"

	levelds "github.com/ipfs/go-ds-leveldb"
	ldbopts "github.com/syndtr/goleveldb/leveldb/opt"
)

type levelDBDatastoreConfig struct {
	path        string
	compression ldbopts.Compression
	compName    string
}

// LevelDBDatastoreConfig 需要 "path"，"compression" 可选（none、snappy 或留空）。
func LevelDBDatastoreConfig(params map[string]interface{}) (DatastoreConfig, error) {
	path, ok := params["path"].(string)
	if !ok {
		return nil, &ConfigError{Field: "path", Err: errMissingOrWrongType}
	}

	cfg := &levelDBDatastoreConfig{path: path}
	switch v := params["compression"]; v {
	case "none":
		cfg.compression, cfg.compName = ldbopts.NoCompression, "none"
	case "snappy":
		cfg.compression, cfg.compName = ldbopts.SnappyCompression, "snappy"
	case "", nil:
		cfg.compression = ldbopts.DefaultCompression
	default:
		return nil, &ConfigError{Field: "compression", Value: v,
			Err: fmt.Errorf("unrecognized compression")}
	}

	return cfg, nil
}

func (cfg *levelDBDatastoreConfig) DiskSpec() DiskSpec {
	spec := map[string]interface{}{
		"type": "levelds",
		"path": cfg.path,
	}
	if cfg.compName != "" {
		spec["compression"] = cfg.compName
	}
	return spec
}

func (cfg *levelDBDatastoreConfig) Create(path string) (Datastore, error) {
	return levelds.NewDatastore(resolvePath(path, cfg.path), &levelds.Options{
		Compression: cfg.compression,
	})
}
