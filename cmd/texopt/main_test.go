package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tragoedia0722/texopt/pkg/settings"
)

func TestParseApply_Defaults(t *testing.T) {
	f, cfg, err := parseApply(nil)
	if err != nil {
		t.Fatalf("parseApply failed: %v", err)
	}
	if f.project != "." {
		t.Errorf("project = %q", f.project)
	}
	if f.journalPath() != filepath.Join(".", "Library", "texopt") {
		t.Errorf("journal = %q", f.journalPath())
	}

	want := settings.Default()
	if cfg.MaxDimension != want.MaxDimension || cfg.FormatPolicy != want.FormatPolicy {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseApply_Flags(t *testing.T) {
	_, cfg, err := parseApply([]string{
		"-max", "512",
		"-compression", "compressed-hq",
		"-platform", "Android",
		"-format", "astc6x6",
		"-cleanup", "best-effort",
		"-readable", "keep",
		"-resize", "bilinear",
		"-scope", "Assets/Art, Assets/UI",
	})
	if err != nil {
		t.Fatalf("parseApply failed: %v", err)
	}

	if cfg.MaxDimension != 512 {
		t.Errorf("max = %d", cfg.MaxDimension)
	}
	if cfg.Compression != settings.CompressedHQ {
		t.Errorf("compression = %s", cfg.Compression)
	}
	if cfg.TargetPlatform != "Android" {
		t.Errorf("platform = %s", cfg.TargetPlatform)
	}
	if cfg.FormatPolicy != settings.FormatPolicyFixed || cfg.FixedFormat != settings.FormatASTC6x6 {
		t.Errorf("format = %s/%s", cfg.FormatPolicy, cfg.FixedFormat)
	}
	if cfg.CleanupPolicy != settings.CleanupBestEffort {
		t.Errorf("cleanup = %s", cfg.CleanupPolicy)
	}
	if cfg.ReadablePolicy != settings.ReadableKeep {
		t.Errorf("readable = %s", cfg.ReadablePolicy)
	}
	if cfg.ResizeAlgorithm != settings.ResizeBilinear {
		t.Errorf("resize = %s", cfg.ResizeAlgorithm)
	}
	if len(cfg.SearchScope) != 2 || cfg.SearchScope[1] != "Assets/UI" {
		t.Errorf("scope = %v", cfg.SearchScope)
	}
}

func TestParseApply_FlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texopt.json")
	if err := os.WriteFile(path, []byte(`{"maxDimension": 256, "targetPlatform": "iPhone"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, cfg, err := parseApply([]string{"-config", path, "-max", "2048"})
	if err != nil {
		t.Fatalf("parseApply failed: %v", err)
	}
	if cfg.MaxDimension != 2048 {
		t.Errorf("flag should win: max = %d", cfg.MaxDimension)
	}
	if cfg.TargetPlatform != "iPhone" {
		t.Errorf("file value should survive: platform = %s", cfg.TargetPlatform)
	}
}

func TestParseApply_BadValue(t *testing.T) {
	_, _, err := parseApply([]string{"-compression", "lossy"})
	if !errors.Is(err, settings.ErrUnknownValue) {
		t.Errorf("expected ErrUnknownValue, got %v", err)
	}
}

func TestMain1_UnknownCommand(t *testing.T) {
	if err := main1([]string{"explode"}); !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage, got %v", err)
	}
}

func TestRunApply_DryRunLeavesProjectUntouched(t *testing.T) {
	root := t.TempDir()
	meta := "fileFormatVersion: 2\nguid: 0123456789abcdef0123456789abcdef\nTextureImporter:\n  maxTextureSize: 2048\n"
	if err := os.MkdirAll(filepath.Join(root, "Assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Assets", "a.png"), []byte("not really a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Assets", "a.png.meta"), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runApply(context.Background(), []string{"-project", root, "-dry-run"}); err != nil {
		t.Fatalf("runApply failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "Assets", "a.png.meta"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != meta {
		t.Error("dry run must not rewrite the sidecar")
	}
	if _, err := os.Stat(filepath.Join(root, "Library")); !os.IsNotExist(err) {
		t.Error("dry run must not create the journal")
	}
}

func TestReadOnlyCommands_FreshProject(t *testing.T) {
	for name, run := range map[string]func(context.Context, []string) error{
		"status":  runStatus,
		"restore": runRestore,
	} {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			if err := os.MkdirAll(filepath.Join(root, "Assets"), 0o755); err != nil {
				t.Fatal(err)
			}

			if err := run(context.Background(), []string{"-project", root}); err != nil {
				t.Fatalf("%s failed: %v", name, err)
			}
			if _, err := os.Stat(filepath.Join(root, "Library")); !os.IsNotExist(err) {
				t.Errorf("%s must not create the journal", name)
			}
		})
	}
}
