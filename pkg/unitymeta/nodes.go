package unitymeta

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	intTag = "!!int"
	strTag = "!!str"
	mapTag = "!!map"
	seqTag = "!!seq"
)

// lookup returns the value node for key in mapping m, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// appendKey adds key with value to mapping m.
func appendKey(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: strTag, Value: key},
		value,
	)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: mapTag}
}

// getInt reads an integer field, returning def when missing or not a number.
func getInt(m *yaml.Node, key string, def int) int {
	v := lookup(m, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return def
	}
	n, err := strconv.Atoi(v.Value)
	if err != nil {
		return def
	}
	return n
}

// setInt writes an integer field, replacing whatever node was there.
func setInt(m *yaml.Node, key string, value int) {
	setScalar(m, intTag, key, strconv.Itoa(value))
}

func setScalar(m *yaml.Node, tag, key, value string) {
	if v := lookup(m, key); v != nil {
		*v = yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
		return
	}
	appendKey(m, key, scalar(tag, value))
}

// Booleans are stored as 0/1 integers.
func getBool(m *yaml.Node, key string) bool {
	return getInt(m, key, 0) != 0
}

func setBool(m *yaml.Node, key string, value bool) {
	if value {
		setInt(m, key, 1)
		return
	}
	setInt(m, key, 0)
}

func getString(m *yaml.Node, key string) string {
	v := lookup(m, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}
	return v.Value
}

// child returns the mapping stored at key, creating it when absent or when
// the existing value is not a mapping.
func child(m *yaml.Node, key string) *yaml.Node {
	v := lookup(m, key)
	if v != nil && v.Kind == yaml.MappingNode {
		return v
	}
	if v != nil {
		*v = *mapping()
		return v
	}
	c := mapping()
	appendKey(m, key, c)
	return c
}
