package tmfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashDeterministic(t *testing.T) {
	h1 := Hash("hello world")
	h2 := Hash("hello world")
	if h1 != h2 {
		t.Errorf("Hash not deterministic: %s != %s", h1, h2)
	}
	h3 := Hash("different")
	if h1 == h3 {
		t.Errorf("Hash collision: %s == %s", h1, h3)
	}
}

func TestLoadNonExistent(t *testing.T) {
	m, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error for non-existent file: %v", err)
	}
	if m.Version != Version {
		t.Errorf("Version = %d, want %d", m.Version, Version)
	}
	if len(m.Checksums) != 0 {
		t.Errorf("Checksums not empty: %v", m.Checksums)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	m.Update("es", "greeting", "Hello")
	m.Update("es", "farewell", "Goodbye")
	m.Update("de", "greeting", "Hello")

	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("memory file not created at %s", path)
	}

	m2, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}

	langs, units := m2.Stats()
	if langs != 2 {
		t.Errorf("langs = %d, want 2", langs)
	}
	if units != 3 {
		t.Errorf("units = %d, want 3", units)
	}
}

func TestIsChanged(t *testing.T) {
	m := &Memory{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}

	// unknown unit is always changed
	if !m.IsChanged("es", "greeting", "Hello") {
		t.Error("new unit should be changed")
	}

	m.Update("es", "greeting", "Hello")
	if m.IsChanged("es", "greeting", "Hello") {
		t.Error("unchanged unit should not be changed")
	}

	if !m.IsChanged("es", "greeting", "Hello!") {
		t.Error("modified source should be changed")
	}

	// a language never translated is always changed
	if !m.IsChanged("de", "greeting", "Hello") {
		t.Error("different language should be changed")
	}
}

func TestClean(t *testing.T) {
	m := &Memory{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}

	m.Update("es", "greeting", "Hello")
	m.Update("es", "farewell", "Goodbye")
	m.Update("es", "removed", "Old string")

	m.Clean("es", []string{"greeting", "farewell"})

	if m.IsChanged("es", "greeting", "Hello") {
		t.Error("greeting should still be tracked")
	}
	if !m.IsChanged("es", "removed", "Old string") {
		t.Error("removed should be dropped by Clean")
	}
}

func TestRemoveLang(t *testing.T) {
	m := &Memory{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}

	m.Update("es", "greeting", "Hello")
	m.RemoveLang("es")

	langs, _ := m.Stats()
	if langs != 0 {
		t.Errorf("langs after RemoveLang = %d, want 0", langs)
	}
}

func TestLangs(t *testing.T) {
	m := &Memory{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}

	m.Update("de", "greeting", "Hello")
	m.Update("es", "greeting", "Hello")
	m.Update("ar", "greeting", "Hello")

	langs := m.Langs()
	expected := []string{"ar", "de", "es"}
	if len(langs) != len(expected) {
		t.Fatalf("langs len = %d, want %d", len(langs), len(expected))
	}
	for i, want := range expected {
		if langs[i] != want {
			t.Errorf("langs[%d] = %q, want %q", i, langs[i], want)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := &Memory{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			id := "unit" + string(rune('0'+n))
			m.Update("es", id, "value")
			m.IsChanged("es", id, "value")
			m.Stats()
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	_, units := m.Stats()
	if units != 10 {
		t.Errorf("units after concurrent writes = %d, want 10", units)
	}
}
