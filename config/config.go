// Package config resolves the runtime configuration of a translation run
// from four layers, highest priority first: CLI flags, XLFT_-prefixed
// environment variables, the .xlft.yaml config file, and the credential
// store in the user data directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/l10n-kit/xlft/langcode"
	"github.com/l10n-kit/xlft/settings"
	"github.com/l10n-kit/xlft/translate"
)

// ErrConfig reports unusable configuration: an unknown engine, a missing
// API key, or no way to determine the target language.
var ErrConfig = errors.New("configuration error")

// Init initializes viper: the explicit config file if given, otherwise
// .xlft.yaml in the working directory or home, plus XLFT_* environment
// variables (XLFT_ENGINE, XLFT_MODEL, XLFT_API_KEY, XLFT_BASE_URL).
func Init(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".xlft")
	}

	viper.SetEnvPrefix("XLFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; flags and env still apply.
	_ = viper.ReadInConfig()
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// EngineOverrides carries the engine-related CLI flags.
type EngineOverrides struct {
	Engine  string
	Model   string
	APIKey  string
	BaseURL string
	Proxy   string
	Timeout time.Duration
}

// ResolveEngine builds the engine configuration for a run. Every field
// follows the flag > env/config > credential store > engine default
// order; a missing API key for a hosted engine or an unknown engine name
// is a configuration error.
func ResolveEngine(ov EngineOverrides) (translate.Engine, error) {
	name := firstNonEmpty(ov.Engine, viper.GetString("engine"), translate.EngineOpenAI)

	engines := translate.DefaultEngines()
	eng, ok := engines[name]
	if !ok {
		return translate.Engine{}, fmt.Errorf(
			"%w: unknown engine %q (available: %s, %s, %s, %s)",
			ErrConfig, name,
			translate.EngineOpenAI, translate.EngineGoogle,
			translate.EngineOllama, translate.EngineCustomOpenAI)
	}

	cred := settings.Get(name)

	if model := firstNonEmpty(ov.Model, viper.GetString("model"), credModel(cred)); model != "" {
		eng.Model = model
	}
	if baseURL := firstNonEmpty(ov.BaseURL, viper.GetString("base-url"), credBaseURL(cred)); baseURL != "" {
		eng.BaseURL = baseURL
	}
	eng.APIKey = firstNonEmpty(ov.APIKey, viper.GetString("api-key"), credKey(cred))
	eng.Proxy = ov.Proxy
	if ov.Timeout > 0 {
		eng.Timeout = ov.Timeout
	}

	if eng.BaseURL == "" {
		return translate.Engine{}, fmt.Errorf(
			"%w: engine %q requires --base-url (or XLFT_BASE_URL)", ErrConfig, name)
	}
	if eng.NeedsAPIKey() && eng.APIKey == "" {
		return translate.Engine{}, fmt.Errorf(
			"%w: no API key for engine %q: pass --api-key, set XLFT_API_KEY, or run 'xlft auth login %s'",
			ErrConfig, name, name)
	}
	if eng.Model == "" {
		return translate.Engine{}, fmt.Errorf(
			"%w: engine %q requires --model (or XLFT_MODEL)", ErrConfig, name)
	}

	return eng, nil
}

// ResolveLanguage determines the target language for a run: the explicit
// flag wins, then the filename convention (name.CODE.xlf), then the
// document's target-language attribute. No match is a configuration error.
func ResolveLanguage(flagLang, inputPath, docTarget string) (string, error) {
	if flagLang != "" {
		return langcode.Canonical(flagLang), nil
	}
	if code, ok := langcode.FromFilename(inputPath); ok {
		return code, nil
	}
	if docTarget != "" {
		return langcode.Canonical(docTarget), nil
	}
	return "", fmt.Errorf(
		"%w: cannot determine target language: pass --language, name the file like messages.es.xlf, or set target-language in the document",
		ErrConfig)
}

// BatchSize returns the configured batch size (config/env), or def.
func BatchSize(def int) int {
	if viper.IsSet("batch-size") {
		if n := viper.GetInt("batch-size"); n >= 0 {
			return n
		}
	}
	return def
}

func credModel(c *settings.Credential) string {
	if c == nil {
		return ""
	}
	return c.Model
}

func credBaseURL(c *settings.Credential) string {
	if c == nil {
		return ""
	}
	return c.BaseURL
}

func credKey(c *settings.Credential) string {
	if c == nil {
		return ""
	}
	return c.Key
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
