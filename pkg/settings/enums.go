package settings

import (
	"fmt"
	"strings"
)

// Compression is the compression trade-off written into a platform block.
// Values match the serialized textureCompression field.
type Compression int

const (
	Uncompressed Compression = iota
	Compressed
	CompressedHQ
	CompressedLQ
)

var compressionNames = map[Compression]string{
	Uncompressed: "uncompressed",
	Compressed:   "compressed",
	CompressedHQ: "compressed-hq",
	CompressedLQ: "compressed-lq",
}

func (c Compression) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("compression(%d)", int(c))
}

// ParseCompression accepts the names printed by String. "medium" is an
// alias of compressed-lq.
func ParseCompression(s string) (Compression, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "medium" {
		return CompressedLQ, nil
	}
	for c, name := range compressionNames {
		if name == v {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: compression %q", ErrUnknownValue, s)
}

func (c Compression) MarshalText() ([]byte, error) {
	if _, ok := compressionNames[c]; !ok {
		return nil, fmt.Errorf("%w: compression %d", ErrUnknownValue, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Compression) UnmarshalText(text []byte) error {
	v, err := ParseCompression(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Format is a texture format of a platform block. Automatic lets the
// pipeline pick one from the compression mode.
type Format int

const (
	FormatAutomatic Format = -1
	FormatDXT1      Format = 10
	FormatDXT5      Format = 12
	FormatBC7       Format = 25
	FormatETC2RGBA8 Format = 47
	FormatASTC6x6   Format = 50
)

var formatNames = map[Format]string{
	FormatAutomatic: "auto",
	FormatDXT1:      "dxt1",
	FormatDXT5:      "dxt5",
	FormatBC7:       "bc7",
	FormatETC2RGBA8: "etc2",
	FormatASTC6x6:   "astc6x6",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", int(f))
}

func ParseFormat(s string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "automatic" {
		return FormatAutomatic, nil
	}
	for f, name := range formatNames {
		if name == v {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: format %q", ErrUnknownValue, s)
}

func (f Format) MarshalText() ([]byte, error) {
	if _, ok := formatNames[f]; !ok {
		return nil, fmt.Errorf("%w: format %d", ErrUnknownValue, int(f))
	}
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ResizeAlgorithm is the downscale filter used when a source is larger
// than the maximum dimension.
type ResizeAlgorithm int

const (
	ResizeMitchell ResizeAlgorithm = iota
	ResizeBilinear
)

func (r ResizeAlgorithm) String() string {
	switch r {
	case ResizeMitchell:
		return "mitchell"
	case ResizeBilinear:
		return "bilinear"
	}
	return fmt.Sprintf("resize(%d)", int(r))
}

func ParseResizeAlgorithm(s string) (ResizeAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mitchell":
		return ResizeMitchell, nil
	case "bilinear":
		return ResizeBilinear, nil
	}
	return 0, fmt.Errorf("%w: resize algorithm %q", ErrUnknownValue, s)
}

func (r ResizeAlgorithm) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *ResizeAlgorithm) UnmarshalText(text []byte) error {
	v, err := ParseResizeAlgorithm(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// TextureType is the importer's classification of an asset. Only NormalMap
// changes applier behavior.
type TextureType int

const (
	TextureDefault       TextureType = 0
	TextureNormalMap     TextureType = 1
	TextureGUI           TextureType = 2
	TextureCookie        TextureType = 4
	TextureLightmap      TextureType = 6
	TextureCursor        TextureType = 7
	TextureSprite        TextureType = 8
	TextureSingleChannel TextureType = 10
)

func (t TextureType) String() string {
	switch t {
	case TextureDefault:
		return "default"
	case TextureNormalMap:
		return "normal-map"
	case TextureGUI:
		return "gui"
	case TextureCookie:
		return "cookie"
	case TextureLightmap:
		return "lightmap"
	case TextureCursor:
		return "cursor"
	case TextureSprite:
		return "sprite"
	case TextureSingleChannel:
		return "single-channel"
	}
	return fmt.Sprintf("texture-type(%d)", int(t))
}

// FormatPolicy chooses between passing Automatic through and forcing
// Config.FixedFormat.
type FormatPolicy int

const (
	FormatPolicyAutomatic FormatPolicy = iota
	FormatPolicyFixed
)

func (p FormatPolicy) String() string {
	if p == FormatPolicyFixed {
		return "fixed"
	}
	return "automatic"
}

func (p FormatPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *FormatPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "automatic", "auto":
		*p = FormatPolicyAutomatic
	case "fixed":
		*p = FormatPolicyFixed
	default:
		return fmt.Errorf("%w: format policy %q", ErrUnknownValue, text)
	}
	return nil
}

// CleanupPolicy controls when the progress sink is ended.
type CleanupPolicy int

const (
	// CleanupGuaranteed ends progress on every exit path, errors included.
	CleanupGuaranteed CleanupPolicy = iota
	// CleanupBestEffort ends progress only after the loop completes.
	CleanupBestEffort
)

func (p CleanupPolicy) String() string {
	if p == CleanupBestEffort {
		return "best-effort"
	}
	return "guaranteed"
}

func ParseCleanupPolicy(s string) (CleanupPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guaranteed":
		return CleanupGuaranteed, nil
	case "best-effort", "besteffort":
		return CleanupBestEffort, nil
	}
	return 0, fmt.Errorf("%w: cleanup policy %q", ErrUnknownValue, s)
}

func (p CleanupPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *CleanupPolicy) UnmarshalText(text []byte) error {
	v, err := ParseCleanupPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ReadablePolicy controls the CPU read/write flag.
type ReadablePolicy int

const (
	// ReadableDisableExceptNormalMaps clears the flag on everything that is
	// not classified as a normal map; normal maps keep it set.
	ReadableDisableExceptNormalMaps ReadablePolicy = iota
	// ReadableKeep leaves the flag as the importer has it.
	ReadableKeep
)

func (p ReadablePolicy) String() string {
	if p == ReadableKeep {
		return "keep"
	}
	return "disable"
}

func ParseReadablePolicy(s string) (ReadablePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disable":
		return ReadableDisableExceptNormalMaps, nil
	case "keep":
		return ReadableKeep, nil
	}
	return 0, fmt.Errorf("%w: readable policy %q", ErrUnknownValue, s)
}

func (p ReadablePolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *ReadablePolicy) UnmarshalText(text []byte) error {
	v, err := ParseReadablePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
