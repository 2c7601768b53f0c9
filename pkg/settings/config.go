// Package settings holds the run configuration of a batch texture pass.
//
// A Config is a plain value: build one with Default, adjust fields or load
// a JSON file with LoadFile, then pass it to the applier. Nothing in this
// package keeps process-wide state.
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const (
	DefaultMaxDimension   = 1024
	DefaultTargetPlatform = "Standalone"
	DefaultSearchScope    = "Assets"

	MinDimension = 32
	MaxDimension = 16384

	// Quality written for Compressed; every other mode gets fullQuality.
	compressedQuality = 50
	fullQuality       = 100
)

// Config is the immutable configuration of one run. The same values are
// applied to every asset; the UI-name mipmap rule and the normal-map
// readable exception are the only per-asset differences.
type Config struct {
	MaxDimension    int             `json:"maxDimension"`
	Compression     Compression     `json:"compression"`
	TargetPlatform  string          `json:"targetPlatform"`
	FormatPolicy    FormatPolicy    `json:"formatPolicy"`
	FixedFormat     Format          `json:"fixedFormat"`
	CleanupPolicy   CleanupPolicy   `json:"cleanupPolicy"`
	ResizeAlgorithm ResizeAlgorithm `json:"resizeAlgorithm"`
	ReadablePolicy  ReadablePolicy  `json:"readablePolicy"`
	SearchScope     []string        `json:"searchScope"`
}

// Default returns the configuration the editor window starts with.
func Default() Config {
	return Config{
		MaxDimension:    DefaultMaxDimension,
		Compression:     Compressed,
		TargetPlatform:  DefaultTargetPlatform,
		FormatPolicy:    FormatPolicyAutomatic,
		FixedFormat:     FormatDXT5,
		CleanupPolicy:   CleanupGuaranteed,
		ResizeAlgorithm: ResizeMitchell,
		ReadablePolicy:  ReadableDisableExceptNormalMaps,
		SearchScope:     []string{DefaultSearchScope},
	}
}

// PlatformFormat is the format written into the target platform block.
func (c Config) PlatformFormat() Format {
	if c.FormatPolicy == FormatPolicyFixed {
		return c.FixedFormat
	}
	return FormatAutomatic
}

// CompressionQuality is the 0-100 quality hint for the default platform.
func (c Config) CompressionQuality() int {
	if c.Compression == Compressed {
		return compressedQuality
	}
	return fullQuality
}

// Scope returns a copy of SearchScope so callers cannot alias the config.
func (c Config) Scope() []string {
	out := make([]string, len(c.SearchScope))
	copy(out, c.SearchScope)
	return out
}

// Validate checks every field and returns the first *ConfigError found.
func (c Config) Validate() error {
	if c.MaxDimension < MinDimension || c.MaxDimension > MaxDimension {
		return &ConfigError{Field: "maxDimension", Value: c.MaxDimension,
			Err: fmt.Errorf("%w: must be within [%d, %d]", ErrOutOfRange, MinDimension, MaxDimension)}
	}
	if c.MaxDimension&(c.MaxDimension-1) != 0 {
		return &ConfigError{Field: "maxDimension", Value: c.MaxDimension,
			Err: fmt.Errorf("%w: must be a power of two", ErrOutOfRange)}
	}
	if _, ok := compressionNames[c.Compression]; !ok {
		return &ConfigError{Field: "compression", Value: int(c.Compression), Err: ErrUnknownValue}
	}
	if strings.TrimSpace(c.TargetPlatform) == "" {
		return &ConfigError{Field: "targetPlatform", Err: ErrEmpty}
	}
	if c.FormatPolicy != FormatPolicyAutomatic && c.FormatPolicy != FormatPolicyFixed {
		return &ConfigError{Field: "formatPolicy", Value: int(c.FormatPolicy), Err: ErrUnknownValue}
	}
	if c.FormatPolicy == FormatPolicyFixed {
		if _, ok := formatNames[c.FixedFormat]; !ok || c.FixedFormat == FormatAutomatic {
			return &ConfigError{Field: "fixedFormat", Value: int(c.FixedFormat), Err: ErrUnknownValue}
		}
	}
	if c.CleanupPolicy != CleanupGuaranteed && c.CleanupPolicy != CleanupBestEffort {
		return &ConfigError{Field: "cleanupPolicy", Value: int(c.CleanupPolicy), Err: ErrUnknownValue}
	}
	if c.ResizeAlgorithm != ResizeMitchell && c.ResizeAlgorithm != ResizeBilinear {
		return &ConfigError{Field: "resizeAlgorithm", Value: int(c.ResizeAlgorithm), Err: ErrUnknownValue}
	}
	if c.ReadablePolicy != ReadableDisableExceptNormalMaps && c.ReadablePolicy != ReadableKeep {
		return &ConfigError{Field: "readablePolicy", Value: int(c.ReadablePolicy), Err: ErrUnknownValue}
	}
	if len(c.SearchScope) == 0 {
		return &ConfigError{Field: "searchScope", Err: ErrEmpty}
	}
	for _, s := range c.SearchScope {
		if strings.TrimSpace(s) == "" || filepath.IsAbs(s) || strings.Contains(s, "..") {
			return &ConfigError{Field: "searchScope", Value: s,
				Err: fmt.Errorf("%w: scope must be a project-relative folder", ErrOutOfRange)}
		}
	}
	return nil
}

// LoadFile reads a JSON configuration. Fields missing from the file keep
// their Default values and unknown fields are rejected. A leading ~ in path
// is expanded to the home directory.
func LoadFile(path string) (Config, error) {
	expPath, err := homedir.Expand(filepath.Clean(path))
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(expPath)
	if err != nil {
		return Config{}, err
	}

	return Decode(data)
}

// Decode parses a JSON configuration document on top of Default.
func Decode(data []byte) (Config, error) {
	cfg := Default()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
