package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vhostmgr/internal/config"
	"vhostmgr/internal/domainutil"
)

var (
	// ErrAlreadyExists is returned by Create when the available entry exists.
	ErrAlreadyExists = errors.New("domain already exists")
	// ErrNotFound is returned when the available entry does not exist.
	ErrNotFound = errors.New("domain not found")
)

// Entry is one available config as seen on disk.
type Entry struct {
	Name      string
	Path      string
	CreatedAt time.Time
}

// Store manages sites-available files and their sites-enabled symlinks.
// It does no locking; callers serialize writers.
type Store struct {
	dirs *config.DirConfig
}

// NewStore creates a registry store over dirs
func NewStore(dirs *config.DirConfig) *Store {
	return &Store{dirs: dirs}
}

func (s *Store) checkName(domain string) error {
	if !domainutil.Validate(domain) {
		return fmt.Errorf("%q: %w", domain, domainutil.ErrInvalidDomain)
	}
	return nil
}

// Exists reports whether an available entry exists for domain
func (s *Store) Exists(domain string) bool {
	if !domainutil.Validate(domain) {
		return false
	}
	_, err := os.Stat(s.dirs.ConfigPath(domain))
	return err == nil
}

// Create writes the available entry for domain
func (s *Store) Create(domain, text string) error {
	if err := s.checkName(domain); err != nil {
		return err
	}

	f, err := os.OpenFile(s.dirs.ConfigPath(domain), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", domain, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create config: %w", err)
	}

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	return f.Close()
}

// Enable links sites-enabled/<domain>.conf to the available entry.
// A link that already points at the entry is left as is; a foreign one is replaced.
func (s *Store) Enable(domain string) error {
	if err := s.checkName(domain); err != nil {
		return err
	}
	if !s.Exists(domain) {
		return fmt.Errorf("%s: %w", domain, ErrNotFound)
	}
	if s.IsEnabled(domain) {
		return nil
	}

	target := s.dirs.ConfigPath(domain)
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}
	link := s.dirs.EnabledPath(domain)

	// Create temporary symlink and rename it into place
	tempLink := link + ".tmp"
	os.Remove(tempLink)

	if err := os.Symlink(target, tempLink); err != nil {
		return fmt.Errorf("failed to create temp symlink: %w", err)
	}

	if err := os.Rename(tempLink, link); err != nil {
		os.Remove(tempLink)
		return fmt.Errorf("failed to rename symlink: %w", err)
	}

	return nil
}

// Disable removes the enabled reference. Missing references are not an error.
func (s *Store) Disable(domain string) error {
	if err := s.checkName(domain); err != nil {
		return err
	}

	if err := os.Remove(s.dirs.EnabledPath(domain)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove enabled link: %w", err)
	}
	return nil
}

// Remove disables domain and deletes its available entry
func (s *Store) Remove(domain string) error {
	if err := s.checkName(domain); err != nil {
		return err
	}
	if !s.Exists(domain) {
		return fmt.Errorf("%s: %w", domain, ErrNotFound)
	}

	if err := s.Disable(domain); err != nil {
		return err
	}

	if err := os.Remove(s.dirs.ConfigPath(domain)); err != nil {
		return fmt.Errorf("failed to remove config: %w", err)
	}
	return nil
}

// IsEnabled reports whether the enabled reference resolves to the available entry.
func (s *Store) IsEnabled(domain string) bool {
	if !domainutil.Validate(domain) {
		return false
	}

	linkInfo, err := os.Stat(s.dirs.EnabledPath(domain))
	if err != nil {
		return false
	}
	entryInfo, err := os.Stat(s.dirs.ConfigPath(domain))
	if err != nil {
		return false
	}
	return os.SameFile(linkInfo, entryInfo)
}

// List enumerates available entries in directory order.
// Reserved, non-.conf and invalid names are skipped.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dirs.SitesAvailable)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sites-available: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".conf") {
			continue
		}

		name := strings.TrimSuffix(de.Name(), ".conf")
		if domainutil.IsReserved(name) || !domainutil.Validate(name) {
			continue
		}

		path := filepath.Join(s.dirs.SitesAvailable, de.Name())
		info, err := os.Stat(path)
		if err != nil {
			// removed between ReadDir and Stat
			continue
		}

		entries = append(entries, Entry{
			Name:      name,
			Path:      path,
			CreatedAt: createdAt(info),
		})
	}

	return entries, nil
}

// ReadText returns the available entry's text
func (s *Store) ReadText(domain string) (string, error) {
	if err := s.checkName(domain); err != nil {
		return "", err
	}

	data, err := os.ReadFile(s.dirs.ConfigPath(domain))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", domain, ErrNotFound)
		}
		return "", fmt.Errorf("failed to read config: %w", err)
	}
	return string(data), nil
}

// WriteText replaces the available entry's text
func (s *Store) WriteText(domain, text string) error {
	if err := s.checkName(domain); err != nil {
		return err
	}
	if !s.Exists(domain) {
		return fmt.Errorf("%s: %w", domain, ErrNotFound)
	}

	if err := os.WriteFile(s.dirs.ConfigPath(domain), []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
