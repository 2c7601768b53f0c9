// Package unitymeta reads and edits the TextureImporter block of .meta
// sidecar documents.
//
// A meta document is a small YAML mapping:
//
//	fileFormatVersion: 2
//	guid: 6b2f4c0a9d1e4f3ab7c8d9e0f1a2b3c4
//	TextureImporter:
//	  mipmaps:
//	    enableMipMap: 1
//	  isReadable: 0
//	  maxTextureSize: 2048
//	  textureType: 0
//	  platformSettings:
//	  - buildTarget: DefaultTexturePlatform
//	    maxTextureSize: 2048
//	    ...
//
// The whole node tree is kept, so keys this package does not know about
// survive Parse followed by Encode. Encode writes the editor's own layout,
// so a sidecar the editor wrote encodes back to the same bytes when nothing
// was changed.
package unitymeta

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tragoedia0722/texopt/pkg/settings"
)

const (
	textureImporterKey  = "TextureImporter"
	platformSettingsKey = "platformSettings"

	// DefaultPlatform is the build target holding the non-override settings.
	DefaultPlatform = "DefaultTexturePlatform"

	defaultMaxTextureSize = 2048
	encodeIndent          = 2
)

// Document is a parsed meta document.
type Document struct {
	root     *yaml.Node // document node
	top      *yaml.Node // top-level mapping
	importer *yaml.Node // TextureImporter mapping, nil when absent
}

// Parse decodes data into a Document. Documents without a TextureImporter
// block are valid; HasTextureImporter reports false for them.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, ErrNotMeta
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode || lookup(top, "guid") == nil {
		return nil, ErrNotMeta
	}

	doc := &Document{root: &root, top: top}
	if imp := lookup(top, textureImporterKey); imp != nil && imp.Kind == yaml.MappingNode {
		doc.importer = imp
	}
	return doc, nil
}

// GUID returns the asset GUID.
func (d *Document) GUID() string {
	return getString(d.top, "guid")
}

// HasTextureImporter reports whether the document configures a texture.
func (d *Document) HasTextureImporter() bool {
	return d.importer != nil
}

// ImporterKind returns the name of the importer block, e.g.
// "TextureImporter" or "AudioImporter", or "" when there is none.
func (d *Document) ImporterKind() string {
	for i := 0; i+1 < len(d.top.Content); i += 2 {
		key := d.top.Content[i].Value
		if len(key) > len("Importer") && key[len(key)-len("Importer"):] == "Importer" {
			return key
		}
	}
	return ""
}

// MaxDimension returns the importer-wide maximum texture size.
func (d *Document) MaxDimension() int {
	return getInt(d.importer, "maxTextureSize", defaultMaxTextureSize)
}

// SetMaxDimension writes the importer-wide maximum texture size, which also
// lives on the default platform block when that block exists.
func (d *Document) SetMaxDimension(size int) {
	if d.importer == nil {
		return
	}
	setInt(d.importer, "maxTextureSize", size)
	if p := d.findPlatform(DefaultPlatform); p != nil {
		setInt(p, "maxTextureSize", size)
	}
}

func (d *Document) MipmapEnabled() bool {
	return getBool(lookup(d.importer, "mipmaps"), "enableMipMap")
}

func (d *Document) SetMipmapEnabled(enabled bool) {
	if d.importer == nil {
		return
	}
	setBool(child(d.importer, "mipmaps"), "enableMipMap", enabled)
}

func (d *Document) Readable() bool {
	return getBool(d.importer, "isReadable")
}

func (d *Document) SetReadable(readable bool) {
	if d.importer == nil {
		return
	}
	setBool(d.importer, "isReadable", readable)
}

// TextureType returns the importer's classification of the asset.
func (d *Document) TextureType() settings.TextureType {
	return settings.TextureType(getInt(d.importer, "textureType", int(settings.TextureDefault)))
}

// CompressionQuality returns the default platform's quality hint.
func (d *Document) CompressionQuality() int {
	return getInt(d.findPlatform(DefaultPlatform), "compressionQuality", 50)
}

// SetCompressionQuality writes the quality hint of the default platform.
func (d *Document) SetCompressionQuality(quality int) {
	if d.importer == nil {
		return
	}
	setInt(d.Platform(DefaultPlatform).node, "compressionQuality", quality)
}

// Platforms lists the build targets that have a platform block.
func (d *Document) Platforms() []string {
	seq := lookup(d.importer, platformSettingsKey)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(seq.Content))
	for _, item := range seq.Content {
		if target := getString(item, "buildTarget"); target != "" {
			out = append(out, target)
		}
	}
	return out
}

// Platform returns the block for target, appending a new non-overridden
// block when the document has none. It returns nil for documents without a
// TextureImporter.
func (d *Document) Platform(target string) *PlatformBlock {
	if d.importer == nil {
		return nil
	}
	if p := d.findPlatform(target); p != nil {
		return &PlatformBlock{node: p}
	}

	seq := lookup(d.importer, platformSettingsKey)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		fresh := &yaml.Node{Kind: yaml.SequenceNode, Tag: seqTag}
		if seq != nil {
			*seq = *fresh
		} else {
			appendKey(d.importer, platformSettingsKey, fresh)
			seq = fresh
		}
	}

	block := newPlatformNode(target, d.MaxDimension())
	seq.Style &^= yaml.FlowStyle // "platformSettings: []" in fresh metas
	seq.Content = append(seq.Content, block)
	return &PlatformBlock{node: block}
}

func (d *Document) findPlatform(target string) *yaml.Node {
	seq := lookup(d.importer, platformSettingsKey)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	for _, item := range seq.Content {
		if getString(item, "buildTarget") == target {
			return item
		}
	}
	return nil
}

// Encode serializes the document in the layout the editor writes.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(encodeIndent)
	if err := enc.Encode(d.root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return unityLayout(buf.Bytes()), nil
}
