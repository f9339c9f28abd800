package panel

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	write := func(title string) {
		t.Helper()
		if err := os.WriteFile(path, []byte("dashboard:\n  title: \""+title+"\"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	write("First")
	s, err := NewStore(NewLoader(path))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if got := s.Current().Dashboard.Title; got != "First" {
		t.Fatalf("title = %q", got)
	}

	write("Second")
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := s.Current().Dashboard.Title; got != "Second" {
		t.Errorf("title after reload = %q", got)
	}

	if err := os.WriteFile(path, []byte("dashboard: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err == nil {
		t.Error("expected reload error")
	}
	if got := s.Current().Dashboard.Title; got != "Second" {
		t.Errorf("failed reload replaced copy: %q", got)
	}
}

func TestStaticStore(t *testing.T) {
	c := Default()
	s := Static(c)
	if s.Current() != c {
		t.Error("Static did not serve the given copy")
	}
	if err := s.Reload(); err != nil {
		t.Errorf("Reload on static store: %v", err)
	}
}
