// Package settings provides storage for xlft user settings: engine
// credentials and custom translation prompts.
//
// All settings live in the XDG data directory:
//
//	$XDG_DATA_HOME/xlft/  (default: ~/.local/share/xlft/)
//
// Files stored:
//   - auth.json     — API keys per engine
//   - prompts.json  — translation system prompt overrides
//
// auth.json is a JSON object keyed by engine name; file permissions are
// 0600 (owner read/write only).
//
// Lookup order for API keys:
//  1. --api-key flag (highest priority)
//  2. XLFT_API_KEY environment variable
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "xlft"
	fileName    = "auth.json"
)

// Credential holds the stored secrets for one engine.
type Credential struct {
	Key string `json:"key"`
	// BaseURL overrides the engine endpoint (ollama, custom-openai).
	BaseURL string `json:"baseUrl,omitempty"`
	// Model overrides the engine's default model.
	Model string `json:"model,omitempty"`
}

// Store holds all engine credentials, keyed by engine name.
type Store map[string]*Credential

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for xlft.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// PromptsFilePath returns the path to the prompts.json file.
func PromptsFilePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prompts.json"), nil
}

// DataDir returns the xlft data directory path.
func DataDir() (string, error) {
	return dataDir()
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return make(Store)
	}
	if store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the credential for an engine, or nil if not found.
func Get(engine string) *Credential {
	store := Load()
	return store[engine]
}

// SetAPIKey stores an API key for an engine (upsert, keeps base URL/model).
func SetAPIKey(engine, key string) error {
	store := Load()
	cred := store[engine]
	if cred == nil {
		cred = &Credential{}
	}
	cred.Key = key
	store[engine] = cred
	return Save(store)
}

// SetAPIKeyWithBaseURL stores an API key and endpoint for an engine.
func SetAPIKeyWithBaseURL(engine, key, baseURL string) error {
	store := Load()
	cred := store[engine]
	if cred == nil {
		cred = &Credential{}
	}
	cred.Key = key
	cred.BaseURL = baseURL
	store[engine] = cred
	return Save(store)
}

// Remove deletes credentials for an engine.
func Remove(engine string) error {
	store := Load()
	if _, ok := store[engine]; !ok {
		return nil
	}
	delete(store, engine)
	return Save(store)
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Display helpers
// ---------------------------------------------------------------------------

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
