package storage

import (
	measure "github.com/ipfs/go-ds-measure"
)

type measureDatastoreConfig struct {
	child  DatastoreConfig
	prefix string
}

// MeasureDatastoreConfig 用 go-ds-measure 包装 "child"，指标名以 "prefix" 开头。
func MeasureDatastoreConfig(params map[string]interface{}) (DatastoreConfig, error) {
	childField, ok := params["child"].(map[string]interface{})
	if !ok {
		return nil, &ConfigError{Field: "child", Err: errMissingOrWrongType}
	}

	child, err := AnyDatastoreConfig(childField)
	if err != nil {
		return nil, err
	}

	prefix, ok := params["prefix"].(string)
	if !ok {
		return nil, &ConfigError{Field: "prefix", Err: errMissingOrWrongType}
	}

	return &measureDatastoreConfig{child: child, prefix: prefix}, nil
}

func (c *measureDatastoreConfig) DiskSpec() DiskSpec {
	return c.child.DiskSpec()
}

func (c *measureDatastoreConfig) Create(path string) (Datastore, error) {
	child, err := c.child.Create(path)
	if err != nil {
		return nil, err
	}

	return measure.New(c.prefix, child), nil
}
