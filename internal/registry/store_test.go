package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vhostmgr/internal/config"
	"vhostmgr/internal/domainutil"
	"vhostmgr/internal/renderer"
)

func newTestStore(t *testing.T) (*Store, *config.DirConfig) {
	t.Helper()
	base := t.TempDir()
	dirs := &config.DirConfig{
		SitesAvailable: filepath.Join(base, "sites-available"),
		SitesEnabled:   filepath.Join(base, "sites-enabled"),
		SSLDir:         filepath.Join(base, "ssl"),
	}
	if err := dirs.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() failed: %v", err)
	}
	return NewStore(dirs), dirs
}

func names(entries []Entry) map[string]bool {
	m := make(map[string]bool, len(entries))
	for _, e := range entries {
		m[e.Name] = true
	}
	return m
}

func TestCreate_AlreadyExists(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Create("example.com", "a"); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	err := s.Create("example.com", "b")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}

	text, _ := s.ReadText("example.com")
	if text != "a" {
		t.Errorf("Expected original text to survive, got %q", text)
	}
}

func TestCreate_InvalidName(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Create("../escape", "x")
	if !errors.Is(err, domainutil.ErrInvalidDomain) {
		t.Errorf("Expected ErrInvalidDomain, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	text, err := renderer.Render("example.com")
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if err := s.Create("example.com", text); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "example.com" {
		t.Fatalf("Expected one entry example.com, got %+v", entries)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
	if s.IsEnabled("example.com") {
		t.Error("Expected new entry to be disabled")
	}

	if err := s.Enable("example.com"); err != nil {
		t.Fatalf("Enable() failed: %v", err)
	}
	if !s.IsEnabled("example.com") {
		t.Error("Expected entry to be enabled")
	}
}

func TestEnable_Idempotent(t *testing.T) {
	s, dirs := newTestStore(t)
	s.Create("example.com", "x")

	for i := 0; i < 2; i++ {
		if err := s.Enable("example.com"); err != nil {
			t.Fatalf("Enable() #%d failed: %v", i+1, err)
		}
	}

	files, err := os.ReadDir(dirs.SitesEnabled)
	if err != nil {
		t.Fatalf("ReadDir() failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected exactly one enabled reference, got %d", len(files))
	}
}

func TestEnable_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Enable("missing.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestEnable_ReplacesForeignLink(t *testing.T) {
	s, dirs := newTestStore(t)
	s.Create("example.com", "x")

	other := filepath.Join(t.TempDir(), "other.conf")
	os.WriteFile(other, []byte("y"), 0644)
	if err := os.Symlink(other, dirs.EnabledPath("example.com")); err != nil {
		t.Fatalf("Symlink() failed: %v", err)
	}

	if s.IsEnabled("example.com") {
		t.Error("A link to a foreign file must not count as enabled")
	}

	if err := s.Enable("example.com"); err != nil {
		t.Fatalf("Enable() failed: %v", err)
	}
	if !s.IsEnabled("example.com") {
		t.Error("Expected link to be repointed at the available entry")
	}
}

func TestDisable_NeverEnabled(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("example.com", "x")

	if err := s.Disable("example.com"); err != nil {
		t.Errorf("Disable() on a never-enabled domain failed: %v", err)
	}
}

func TestRemove(t *testing.T) {
	s, dirs := newTestStore(t)
	s.Create("example.com", "x")
	s.Enable("example.com")

	if err := s.Remove("example.com"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if s.Exists("example.com") {
		t.Error("Expected available entry to be gone")
	}
	if _, err := os.Lstat(dirs.EnabledPath("example.com")); !os.IsNotExist(err) {
		t.Error("Expected enabled reference to be gone")
	}

	if err := s.Remove("example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second Remove, got %v", err)
	}
}

func TestList_SkipsReservedAndInvalid(t *testing.T) {
	s, dirs := newTestStore(t)
	s.Create("example.com", "x")

	extra := []string{"default.conf", "default-ssl.conf", "notes.txt", "-bad.conf"}
	for _, name := range extra {
		os.WriteFile(filepath.Join(dirs.SitesAvailable, name), []byte("server {}"), 0644)
	}
	os.Mkdir(filepath.Join(dirs.SitesAvailable, "dir.conf"), 0755)

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	got := names(entries)
	if len(got) != 1 || !got["example.com"] {
		t.Errorf("Expected only example.com, got %v", got)
	}
}

func TestList_MissingDirectory(t *testing.T) {
	dirs := &config.DirConfig{SitesAvailable: filepath.Join(t.TempDir(), "nope")}
	entries, err := NewStore(dirs).List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestWriteText(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.WriteText("example.com", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	s.Create("example.com", "x")
	if err := s.WriteText("example.com", "patched"); err != nil {
		t.Fatalf("WriteText() failed: %v", err)
	}
	text, err := s.ReadText("example.com")
	if err != nil {
		t.Fatalf("ReadText() failed: %v", err)
	}
	if text != "patched" {
		t.Errorf("Expected patched text, got %q", text)
	}
}
