package unitymeta

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tragoedia0722/texopt/pkg/settings"
)

const platformSerializedVersion = 3

// PlatformBlock is one entry of platformSettings. It edits the document in
// place.
type PlatformBlock struct {
	node *yaml.Node
}

func newPlatformNode(target string, maxSize int) *yaml.Node {
	m := mapping()
	setInt(m, "serializedVersion", platformSerializedVersion)
	setScalar(m, strTag, "buildTarget", target)
	setInt(m, "maxTextureSize", maxSize)
	setInt(m, "resizeAlgorithm", int(settings.ResizeMitchell))
	setInt(m, "textureFormat", int(settings.FormatAutomatic))
	setInt(m, "textureCompression", int(settings.Compressed))
	setInt(m, "compressionQuality", 50)
	setInt(m, "crunchedCompression", 0)
	setInt(m, "allowsAlphaSplitting", 0)
	setInt(m, "overridden", 0)
	return m
}

// BuildTarget returns the target name of the block.
func (p *PlatformBlock) BuildTarget() string {
	return getString(p.node, "buildTarget")
}

func (p *PlatformBlock) Overridden() bool {
	return getBool(p.node, "overridden")
}

func (p *PlatformBlock) SetOverridden(overridden bool) {
	setBool(p.node, "overridden", overridden)
}

func (p *PlatformBlock) MaxDimension() int {
	return getInt(p.node, "maxTextureSize", defaultMaxTextureSize)
}

func (p *PlatformBlock) SetMaxDimension(size int) {
	setInt(p.node, "maxTextureSize", size)
}

func (p *PlatformBlock) Compression() settings.Compression {
	return settings.Compression(getInt(p.node, "textureCompression", int(settings.Compressed)))
}

func (p *PlatformBlock) SetCompression(c settings.Compression) {
	setInt(p.node, "textureCompression", int(c))
}

func (p *PlatformBlock) Format() settings.Format {
	return settings.Format(getInt(p.node, "textureFormat", int(settings.FormatAutomatic)))
}

func (p *PlatformBlock) SetFormat(f settings.Format) {
	setInt(p.node, "textureFormat", int(f))
}

func (p *PlatformBlock) ResizeAlgorithm() settings.ResizeAlgorithm {
	return settings.ResizeAlgorithm(getInt(p.node, "resizeAlgorithm", int(settings.ResizeMitchell)))
}

func (p *PlatformBlock) SetResizeAlgorithm(r settings.ResizeAlgorithm) {
	setInt(p.node, "resizeAlgorithm", int(r))
}

func (p *PlatformBlock) String() string {
	return p.BuildTarget() + "(" + strconv.Itoa(p.MaxDimension()) + ", " + p.Compression().String() + ")"
}
