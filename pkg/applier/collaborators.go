package applier

import (
	"context"

	"github.com/tragoedia0722/texopt/pkg/settings"
)

// Registry enumerates assets and resolves them to importers.
type Registry interface {
	// Find returns the ordered paths of all assets of kind below scope.
	Find(ctx context.Context, kind string, scope []string) ([]string, error)

	// ResolveToImporter returns the importer for path. ok is false, with a
	// nil error, when the asset is not a texture.
	ResolveToImporter(ctx context.Context, path string) (imp Importer, ok bool, err error)
}

// Importer owns the import settings of a single asset.
type Importer interface {
	MaxDimension() int
	SetMaxDimension(size int)

	MipmapEnabled() bool
	SetMipmapEnabled(enabled bool)

	Readable() bool
	SetReadable(readable bool)

	TextureType() settings.TextureType

	// SetCompressionQuality sets the 0-100 quality of the default platform.
	SetCompressionQuality(quality int)

	// Platform returns the override block for a build target. Changes made
	// through it are part of the importer's state.
	Platform(name string) PlatformSettings

	// CommitAndReimport persists the settings and re-imports the asset.
	CommitAndReimport(ctx context.Context, path string) error
}

// PlatformSettings is a per-target override block of an importer.
type PlatformSettings interface {
	Overridden() bool
	SetOverridden(overridden bool)

	MaxDimension() int
	SetMaxDimension(size int)

	Compression() settings.Compression
	SetCompression(c settings.Compression)

	Format() settings.Format
	SetFormat(f settings.Format)

	ResizeAlgorithm() settings.ResizeAlgorithm
	SetResizeAlgorithm(r settings.ResizeAlgorithm)
}

// ProgressSink displays run progress. fraction is within [0, 1].
type ProgressSink interface {
	Begin(title string)
	Update(title, message string, fraction float64)
	End()
}
