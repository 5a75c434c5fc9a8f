package localstate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataDir_Override(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(envHome, tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir error: %v", err)
	}
	if dir != tmp {
		t.Fatalf("expected dir %s, got %s", tmp, dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("dir not created: %v", err)
	}
}

func TestDBPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(envHome, tmp)

	p, err := DBPath("")
	if err != nil {
		t.Fatalf("DBPath error: %v", err)
	}
	expected := filepath.Join(tmp, dbFilename)
	if p != expected {
		t.Fatalf("expected path %s, got %s", expected, p)
	}
}

func TestDBPath_ExplicitDir(t *testing.T) {
	t.Setenv(envHome, t.TempDir())
	explicit := filepath.Join(t.TempDir(), "nested")

	p, err := DBPath(explicit)
	if err != nil {
		t.Fatalf("DBPath error: %v", err)
	}
	if p != filepath.Join(explicit, dbFilename) {
		t.Fatalf("unexpected path %s", p)
	}
	if _, err := os.Stat(explicit); err != nil {
		t.Fatalf("explicit dir not created: %v", err)
	}
}
