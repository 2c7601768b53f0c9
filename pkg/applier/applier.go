// Package applier applies one texture configuration to every texture asset
// a registry knows about and asks the registry's importers to re-import
// each of them.
//
// For every asset the applier:
//
//   - sets the maximum dimension
//   - disables mipmaps for UI art and enables them everywhere else
//   - marks the target platform block overridden and writes size,
//     compression, format and resize algorithm into it
//   - clears the read/write flag unless the asset is a normal map
//   - commits the settings and triggers a re-import
//
// Assets that do not resolve to a texture importer are skipped silently.
// The first collaborator error stops the run; assets already committed keep
// their new settings.
//
// Example usage:
//
//	a := applier.NewApplier(db).WithProgress(progress.NewTerminal(os.Stderr))
//	result, err := a.Apply(ctx, settings.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
//
// Thread Safety:
//
// Apply visits assets one at a time and must not be called concurrently on
// the same Applier. Parallelism, if any, belongs inside the registry.
package applier

import (
	"context"
	"fmt"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/tragoedia0722/texopt/pkg/settings"
)

var log = logging.Logger("texopt/applier")

// Result summarizes a run.
type Result struct {
	Total     int           // Paths returned by the registry
	Processed int           // Assets whose settings were committed
	Skipped   int           // Paths that did not resolve to a texture importer
	Paths     []string      // Processed paths in visiting order
	Duration  time.Duration // Wall time of the run
}

// Summary is the human-readable completion message.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d textures processed", r.Processed)
}

// UIPredicate reports whether an asset path denotes UI art.
type UIPredicate func(path string) bool

// IsUIAsset is the default UIPredicate: the path contains "UI" or "Canvas"
// (case-sensitive).
func IsUIAsset(path string) bool {
	return strings.Contains(path, uiMarker) || strings.Contains(path, canvasMarker)
}

type Applier struct {
	registry  Registry
	progress  ProgressSink
	isUIAsset UIPredicate
}

// NewApplier creates an Applier over registry with the default UI predicate
// and no progress sink.
func NewApplier(registry Registry) *Applier {
	return &Applier{
		registry:  registry,
		isUIAsset: IsUIAsset,
	}
}

// WithProgress sets the sink that receives progress updates.
// Returns the applier for method chaining.
func (a *Applier) WithProgress(sink ProgressSink) *Applier {
	a.progress = sink
	return a
}

// WithUIPredicate replaces the UI classification used for the mipmap rule.
// A nil predicate restores IsUIAsset.
func (a *Applier) WithUIPredicate(pred UIPredicate) *Applier {
	if pred == nil {
		pred = IsUIAsset
	}
	a.isUIAsset = pred
	return a
}

// Apply runs one pass with cfg. The returned Result is non-nil whenever the
// enumeration succeeded, including when a later asset fails.
func (a *Applier) Apply(ctx context.Context, cfg settings.Config) (*Result, error) {
	if a.registry == nil {
		return nil, ErrNilRegistry
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	paths, err := a.registry.Find(ctx, TextureKind, cfg.Scope())
	if err != nil {
		return nil, wrapFind(err)
	}

	result := &Result{Total: len(paths)}
	tracker := newProgressTracker(a.progress, progressTitle)
	tracker.begin()
	if cfg.CleanupPolicy == settings.CleanupGuaranteed {
		defer tracker.end()
	}

	log.Infof("optimizing %d textures", len(paths))

	for i, path := range paths {
		if err := checkInterruption(ctx); err != nil {
			result.Duration = time.Since(start)
			return result, wrapInterrupted(path, err)
		}

		tracker.update(path, fraction(i, len(paths)))

		applied, err := a.applyOne(ctx, cfg, path)
		if err != nil {
			result.Duration = time.Since(start)
			log.Errorf("texture pass stopped after %d textures: %v", result.Processed, err)
			return result, err
		}

		if !applied {
			result.Skipped++
			continue
		}

		result.Processed++
		result.Paths = append(result.Paths, path)
	}

	tracker.update(doneMessage, 1)
	tracker.end()

	result.Duration = time.Since(start)
	log.Infof("optimization complete: %s (%d skipped) in %s", result.Summary(), result.Skipped, result.Duration)

	return result, nil
}

// applyOne configures and re-imports a single asset. It returns false when
// the path has no texture importer.
func (a *Applier) applyOne(ctx context.Context, cfg settings.Config, path string) (bool, error) {
	imp, ok, err := a.registry.ResolveToImporter(ctx, path)
	if err != nil {
		return false, wrapResolve(path, err)
	}
	if !ok || imp == nil {
		log.Debugw("skipping non-texture asset", "path", path)
		return false, nil
	}

	imp.SetMaxDimension(cfg.MaxDimension)
	imp.SetMipmapEnabled(!a.isUIAsset(path))
	imp.SetCompressionQuality(cfg.CompressionQuality())

	platform := imp.Platform(cfg.TargetPlatform)
	platform.SetOverridden(true)
	platform.SetMaxDimension(cfg.MaxDimension)
	platform.SetCompression(cfg.Compression)
	platform.SetFormat(cfg.PlatformFormat())
	platform.SetResizeAlgorithm(cfg.ResizeAlgorithm)

	if cfg.ReadablePolicy == settings.ReadableDisableExceptNormalMaps {
		// Normal maps stay CPU-readable for tooling that samples them.
		imp.SetReadable(imp.TextureType() == settings.TextureNormalMap)
	}

	if err := imp.CommitAndReimport(ctx, path); err != nil {
		return false, wrapReimport(path, err)
	}

	log.Debugw("texture reimported", "path", path, "type", imp.TextureType().String())
	return true, nil
}

// checkInterruption returns the context error once ctx is done.
func checkInterruption(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
