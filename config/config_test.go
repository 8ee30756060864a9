package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/l10n-kit/xlft/settings"
	"github.com/l10n-kit/xlft/translate"
)

// initViper gives each test a clean viper instance with an isolated home
// and data directory, so host config files and credentials can't leak in.
func initViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XLFT_API_KEY", "")
	t.Setenv("XLFT_ENGINE", "")
	t.Setenv("XLFT_MODEL", "")
	t.Setenv("XLFT_BASE_URL", "")
	Init("")
	t.Cleanup(viper.Reset)
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name      string
		flag      string
		path      string
		docTarget string
		want      string
		wantErr   bool
	}{
		{name: "flag wins", flag: "de", path: "messages.es.xlf", docTarget: "fr", want: "de"},
		{name: "flag canonicalized", flag: "PT_br", path: "messages.xlf", want: "pt-BR"},
		{name: "filename code", path: "app/messages.es.xlf", docTarget: "fr", want: "es"},
		{name: "document attribute", path: "messages.xlf", docTarget: "fr", want: "fr"},
		{name: "version suffix is not a language", path: "app.v2.xlf", wantErr: true},
		{name: "nothing to go on", path: "messages.xlf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLanguage(tt.flag, tt.path, tt.docTarget)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if !errors.Is(err, ErrConfig) {
					t.Errorf("error = %v, want ErrConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveLanguage: %v", err)
			}
			if got != tt.want {
				t.Errorf("language = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveEngine_UnknownEngine(t *testing.T) {
	initViper(t)

	_, err := ResolveEngine(EngineOverrides{Engine: "bing"})
	if err == nil {
		t.Fatal("expected error for unknown engine")
	}
	if !errors.Is(err, ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}
	if !strings.Contains(err.Error(), "bing") {
		t.Errorf("error should name the engine: %v", err)
	}
}

func TestResolveEngine_MissingAPIKey(t *testing.T) {
	initViper(t)

	_, err := ResolveEngine(EngineOverrides{Engine: translate.EngineOpenAI})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !errors.Is(err, ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}
}

func TestResolveEngine_FlagKey(t *testing.T) {
	initViper(t)

	eng, err := ResolveEngine(EngineOverrides{
		Engine: translate.EngineOpenAI,
		APIKey: "sk-from-flag",
	})
	if err != nil {
		t.Fatalf("ResolveEngine: %v", err)
	}
	if eng.APIKey != "sk-from-flag" {
		t.Errorf("APIKey = %q, want flag value", eng.APIKey)
	}
	if eng.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want engine default", eng.Model)
	}
}

func TestResolveEngine_EnvOverStore(t *testing.T) {
	initViper(t)

	if err := settings.SetAPIKey(translate.EngineOpenAI, "sk-stored"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	t.Setenv("XLFT_API_KEY", "sk-from-env")

	eng, err := ResolveEngine(EngineOverrides{Engine: translate.EngineOpenAI})
	if err != nil {
		t.Fatalf("ResolveEngine: %v", err)
	}
	if eng.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want env value over stored", eng.APIKey)
	}
}

func TestResolveEngine_StoredCredential(t *testing.T) {
	initViper(t)

	if err := settings.SetAPIKeyWithBaseURL(translate.EngineOpenAI, "sk-stored", "https://proxy.example.com/v1"); err != nil {
		t.Fatalf("SetAPIKeyWithBaseURL: %v", err)
	}

	eng, err := ResolveEngine(EngineOverrides{Engine: translate.EngineOpenAI})
	if err != nil {
		t.Fatalf("ResolveEngine: %v", err)
	}
	if eng.APIKey != "sk-stored" {
		t.Errorf("APIKey = %q, want stored value", eng.APIKey)
	}
	if eng.BaseURL != "https://proxy.example.com/v1" {
		t.Errorf("BaseURL = %q, want stored override", eng.BaseURL)
	}
}

func TestResolveEngine_OllamaNeedsNoKey(t *testing.T) {
	initViper(t)

	eng, err := ResolveEngine(EngineOverrides{Engine: translate.EngineOllama})
	if err != nil {
		t.Fatalf("ResolveEngine: %v", err)
	}
	if eng.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", eng.APIKey)
	}
	if eng.BaseURL == "" {
		t.Error("ollama should have a default base URL")
	}
}

func TestResolveEngine_CustomNeedsBaseURL(t *testing.T) {
	initViper(t)

	_, err := ResolveEngine(EngineOverrides{Engine: translate.EngineCustomOpenAI})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("error = %v, want ErrConfig", err)
	}

	eng, err := ResolveEngine(EngineOverrides{
		Engine:  translate.EngineCustomOpenAI,
		BaseURL: "http://llm.internal:8080/v1",
		Model:   "qwen2.5",
	})
	if err != nil {
		t.Fatalf("ResolveEngine with base URL: %v", err)
	}
	if eng.BaseURL != "http://llm.internal:8080/v1" {
		t.Errorf("BaseURL = %q", eng.BaseURL)
	}
}

func TestResolveEngine_FlagOverrides(t *testing.T) {
	initViper(t)

	eng, err := ResolveEngine(EngineOverrides{
		Engine:  translate.EngineOpenAI,
		Model:   "gpt-4o",
		APIKey:  "sk-x",
		Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("ResolveEngine: %v", err)
	}
	if eng.Model != "gpt-4o" {
		t.Errorf("Model = %q, want flag override", eng.Model)
	}
	if eng.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", eng.Timeout)
	}
}

func TestResolveEngine_DefaultEngine(t *testing.T) {
	initViper(t)

	eng, err := ResolveEngine(EngineOverrides{APIKey: "sk-x"})
	if err != nil {
		t.Fatalf("ResolveEngine: %v", err)
	}
	if eng.ID != translate.EngineOpenAI {
		t.Errorf("default engine = %q, want %q", eng.ID, translate.EngineOpenAI)
	}
}

func TestBatchSize(t *testing.T) {
	initViper(t)

	if got := BatchSize(50); got != 50 {
		t.Errorf("BatchSize default = %d, want 50", got)
	}

	viper.Set("batch-size", 10)
	if got := BatchSize(50); got != 10 {
		t.Errorf("BatchSize configured = %d, want 10", got)
	}
}
