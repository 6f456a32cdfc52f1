package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSymbolFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universe.txt")
	content := "# equities screen\nspy\nQQQ  # large cap tech\n\nspy\niwm\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadSymbolFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"SPY", "QQQ", "IWM"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestLoadSymbolFileMissing(t *testing.T) {
	if _, err := LoadSymbolFile("/nonexistent/universe.txt"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
