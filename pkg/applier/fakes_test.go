package applier

import (
	"context"
	"errors"

	"github.com/tragoedia0722/texopt/pkg/settings"
)

// ============================================================
// In-memory collaborators
// ============================================================

type fakePlatform struct {
	overridden  bool
	maxSize     int
	compression settings.Compression
	format      settings.Format
	resize      settings.ResizeAlgorithm
}

func (p *fakePlatform) Overridden() bool { return p.overridden }
func (p *fakePlatform) SetOverridden(v bool) { p.overridden = v }
func (p *fakePlatform) MaxDimension() int { return p.maxSize }
func (p *fakePlatform) SetMaxDimension(v int) { p.maxSize = v }
func (p *fakePlatform) Compression() settings.Compression { return p.compression }
func (p *fakePlatform) SetCompression(v settings.Compression) { p.compression = v }
func (p *fakePlatform) Format() settings.Format { return p.format }
func (p *fakePlatform) SetFormat(v settings.Format) { p.format = v }
func (p *fakePlatform) ResizeAlgorithm() settings.ResizeAlgorithm { return p.resize }
func (p *fakePlatform) SetResizeAlgorithm(v settings.ResizeAlgorithm) { p.resize = v }

type fakeImporter struct {
	maxSize     int
	mipmaps     bool
	readable    bool
	quality     int
	textureType settings.TextureType
	platforms   map[string]*fakePlatform

	mutations int
	commits   int
	commitErr   error
	commitPanic any
}

func newFakeImporter(tt settings.TextureType) *fakeImporter {
	return &fakeImporter{
		maxSize:     2048,
		mipmaps:     true,
		readable:    true,
		textureType: tt,
		platforms:   make(map[string]*fakePlatform),
	}
}

func (f *fakeImporter) MaxDimension() int { return f.maxSize }
func (f *fakeImporter) SetMaxDimension(v int) { f.mutations++; f.maxSize = v }
func (f *fakeImporter) MipmapEnabled() bool { return f.mipmaps }
func (f *fakeImporter) SetMipmapEnabled(v bool) { f.mutations++; f.mipmaps = v }
func (f *fakeImporter) Readable() bool { return f.readable }
func (f *fakeImporter) SetReadable(v bool) { f.mutations++; f.readable = v }
func (f *fakeImporter) TextureType() settings.TextureType { return f.textureType }
func (f *fakeImporter) SetCompressionQuality(q int) { f.mutations++; f.quality = q }

func (f *fakeImporter) Platform(name string) PlatformSettings {
	p, ok := f.platforms[name]
	if !ok {
		p = &fakePlatform{maxSize: 2048, format: settings.FormatAutomatic}
		f.platforms[name] = p
	}
	return p
}

func (f *fakeImporter) CommitAndReimport(ctx context.Context, path string) error {
	if f.commitPanic != nil {
		panic(f.commitPanic)
	}
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits++
	return nil
}

// snapshot captures the observable importer state for idempotence checks.
type importerState struct {
	maxSize  int
	mipmaps  bool
	readable bool
	quality  int
	platform fakePlatform
}

func (f *fakeImporter) snapshot(platform string) importerState {
	s := importerState{
		maxSize:  f.maxSize,
		mipmaps:  f.mipmaps,
		readable: f.readable,
		quality:  f.quality,
	}
	if p, ok := f.platforms[platform]; ok {
		s.platform = *p
	}
	return s
}

type fakeRegistry struct {
	paths      []string
	importers  map[string]*fakeImporter
	findErr    error
	resolveErr map[string]error

	findKind  string
	findScope []string
	resolved  []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		importers:  make(map[string]*fakeImporter),
		resolveErr: make(map[string]error),
	}
}

// add registers path; a nil importer makes the path unresolvable.
func (r *fakeRegistry) add(path string, imp *fakeImporter) {
	r.paths = append(r.paths, path)
	if imp != nil {
		r.importers[path] = imp
	}
}

func (r *fakeRegistry) Find(ctx context.Context, kind string, scope []string) ([]string, error) {
	r.findKind = kind
	r.findScope = scope
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out, nil
}

func (r *fakeRegistry) ResolveToImporter(ctx context.Context, path string) (Importer, bool, error) {
	r.resolved = append(r.resolved, path)
	if err := r.resolveErr[path]; err != nil {
		return nil, false, err
	}
	imp, ok := r.importers[path]
	if !ok {
		return nil, false, nil
	}
	return imp, true, nil
}

type progressEvent struct {
	kind     string
	message  string
	fraction float64
}

type recordingSink struct {
	events []progressEvent
}

func (s *recordingSink) Begin(title string) {
	s.events = append(s.events, progressEvent{kind: "begin", message: title})
}

func (s *recordingSink) Update(title, message string, fraction float64) {
	s.events = append(s.events, progressEvent{kind: "update", message: message, fraction: fraction})
}

func (s *recordingSink) End() {
	s.events = append(s.events, progressEvent{kind: "end"})
}

func (s *recordingSink) count(kind string) int {
	n := 0
	for _, e := range s.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func (s *recordingSink) fractions() []float64 {
	var out []float64
	for _, e := range s.events {
		if e.kind == "update" {
			out = append(out, e.fraction)
		}
	}
	return out
}

var errPipeline = errors.New("pipeline exploded")
