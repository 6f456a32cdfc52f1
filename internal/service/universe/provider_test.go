package universe

import (
	"os"
	"path/filepath"
	"testing"

	"TechScreen/internal/domain/models"
	"TechScreen/pkg/logger"
)

func TestUniverseDefaults(t *testing.T) {
	p := New(nil, logger.Nop())
	for _, class := range models.AllAssetClasses() {
		got, err := p.Universe(class)
		if err != nil {
			t.Fatalf("%s: %v", class, err)
		}
		if len(got) == 0 {
			t.Fatalf("%s: empty default universe", class)
		}
	}
}

func TestUniverseFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bonds.txt")
	if err := os.WriteFile(path, []byte("TLT\nIEF\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p := New(map[models.AssetClass]string{models.ClassBonds: path}, logger.Nop())
	got, err := p.Universe(models.ClassBonds)
	if err != nil {
		t.Fatalf("universe: %v", err)
	}
	if len(got) != 2 || got[0] != "TLT" || got[1] != "IEF" {
		t.Fatalf("got %v", got)
	}
}

func TestUniverseMissingFileFallsBack(t *testing.T) {
	p := New(map[models.AssetClass]string{models.ClassBonds: "/nope.txt"}, logger.Nop())
	got, err := p.Universe(models.ClassBonds)
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if len(got) == 0 || got[0] != "TLT" {
		t.Fatalf("expected default bond universe, got %v", got)
	}
}

func TestUniverseUnreadableFile(t *testing.T) {
	// a directory opens fine but fails on read
	dir := t.TempDir()
	p := New(map[models.AssetClass]string{models.ClassBonds: dir}, logger.Nop())
	if _, err := p.Universe(models.ClassBonds); err == nil {
		t.Fatalf("expected error for unreadable configured file")
	}
}

func TestUniverseUnknownClass(t *testing.T) {
	p := New(nil, logger.Nop())
	if _, err := p.Universe(models.AssetClass("crypto")); err == nil {
		t.Fatalf("expected error for unknown class")
	}
}
