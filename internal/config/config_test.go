package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sunholo/mgenc/internal/backend"
	"github.com/sunholo/mgenc/internal/errors"
	"github.com/sunholo/mgenc/internal/optimize"

	_ "github.com/sunholo/mgenc/internal/backend/c"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "build.yml")
	content := `target: c
preferences:
  naming_convention: camel_case
  hashtables: map
optimization: O2
output: out/program
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Target != "c" {
		t.Errorf("expected target c, got %s", c.Target)
	}
	prefs := c.ToPreferences()
	if prefs.NamingConvention != "camel_case" {
		t.Errorf("expected camel_case, got %s", prefs.NamingConvention)
	}
	if prefs.Hashtables != "map" {
		t.Errorf("expected map, got %s", prefs.Hashtables)
	}
	level, err := c.OptimizationLevel()
	if err != nil {
		t.Fatalf("OptimizationLevel failed: %v", err)
	}
	if level != optimize.O2 {
		t.Errorf("expected O2, got %v", level)
	}
}

func TestLoadRejectsUnknownTarget(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "build.yml")
	if err := os.WriteFile(path, []byte("target: rust\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for an unknown target")
	}
}

func TestLoadRejectsUnknownPreferenceKey(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "build.yml")
	content := `target: c
preferences:
  optimize_for_speed: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for an unrecognized preference key")
	}
	rep, ok := errors.AsReport(err)
	if !ok {
		t.Fatalf("expected a structured report, got: %v", err)
	}
	if rep.Code != errors.CFG001 {
		t.Errorf("expected CFG001, got %s", rep.Code)
	}
}

func TestLoadMissingTarget(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "build.yml")
	if err := os.WriteFile(path, []byte("optimization: O1\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for a missing target")
	}
}

func TestToPreferencesMergesOverDefaults(t *testing.T) {
	c := &Compilation{
		Target: "c",
		Preferences: map[string]string{
			"naming_convention":    "camel_case",
			"use_pattern_matching": "true",
		},
	}
	got := c.ToPreferences()
	want := backend.Preferences{
		NamingConvention:   "camel_case",
		UsePatternMatching: true,
		Hashtables:         "stdlib",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToPreferences() mismatch (-want +got):\n%s", diff)
	}
}

func TestOptimizationLevelRejectsOutOfRange(t *testing.T) {
	c := &Compilation{Target: "c", Optimization: "O9"}
	if _, err := c.OptimizationLevel(); err == nil {
		t.Fatal("expected an error for an out-of-range optimization level")
	}
}
