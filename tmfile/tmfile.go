// Package tmfile implements xlft.lock — a translation-memory file that
// tracks MD5 checksums of unit source texts per target language. With
// --force, units whose source is unchanged since the last successful run
// can be skipped instead of re-translated, saving tokens and time.
//
// The file is stored next to the input document as xlft.lock.
package tmfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileName is the default translation-memory file name.
const FileName = "xlft.lock"

// Version is the file format version.
const Version = 1

// Memory represents the xlft.lock file structure.
type Memory struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // language -> unit id -> md5

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads the translation memory from the given directory.
// Returns an empty memory if the file doesn't exist.
func Load(dir string) (*Memory, error) {
	path := filepath.Join(dir, FileName)
	m := &Memory{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.path = path

	if m.Checksums == nil {
		m.Checksums = make(map[string]map[string]string)
	}
	return m, nil
}

// Save writes the translation memory to disk.
func (m *Memory) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.path == "" {
		return fmt.Errorf("translation memory path not set")
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling translation memory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", m.path, err)
	}
	return nil
}

// Path returns the translation memory file path.
func (m *Memory) Path() string {
	return m.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// IsChanged checks whether a unit's source text changed since the last
// successful translation. Returns true for units never seen before.
func (m *Memory) IsChanged(lang, unitID, source string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, ok := m.Checksums[lang]
	if !ok {
		return true
	}
	oldHash, ok := ids[unitID]
	if !ok {
		return true
	}
	return oldHash != Hash(source)
}

// Update records the checksum of a unit's source after successful translation.
func (m *Memory) Update(lang, unitID, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Checksums[lang] == nil {
		m.Checksums[lang] = make(map[string]string)
	}
	m.Checksums[lang][unitID] = Hash(source)
}

// Clean removes checksums for unit IDs no longer present in the document,
// so stale entries don't accumulate.
func (m *Memory) Clean(lang string, currentIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.Checksums[lang]
	if existing == nil {
		return
	}
	valid := make(map[string]bool, len(currentIDs))
	for _, id := range currentIDs {
		valid[id] = true
	}
	for id := range existing {
		if !valid[id] {
			delete(existing, id)
		}
	}
}

// RemoveLang removes all checksums for a target language.
func (m *Memory) RemoveLang(lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Checksums, lang)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of languages and total units tracked.
func (m *Memory) Stats() (langs, units int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	langs = len(m.Checksums)
	for _, ids := range m.Checksums {
		units += len(ids)
	}
	return
}

// Langs returns the sorted list of tracked target languages.
func (m *Memory) Langs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	langs := make([]string, 0, len(m.Checksums))
	for l := range m.Checksums {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}
