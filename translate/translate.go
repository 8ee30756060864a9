// Package translate sends untranslated XLIFF units to an AI translation
// engine and applies the results. Units are batched, one HTTP request per
// batch, batches processed sequentially. A circuit breaker makes the
// remaining batches fail fast once the engine looks dead.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"github.com/l10n-kit/xlft/langcode"
	"github.com/l10n-kit/xlft/settings"
	"github.com/l10n-kit/xlft/xliff"
)

// ErrService reports a failure of the translation engine: network errors,
// API errors, and responses that violate the batch contract. All engine
// failures wrap it.
var ErrService = errors.New("translation service error")

// ---------------------------------------------------------------------------
// Engines
// ---------------------------------------------------------------------------

const (
	EngineOpenAI       = "openai"
	EngineGoogle       = "google"
	EngineOllama       = "ollama"
	EngineCustomOpenAI = "custom-openai"
)

// Engine holds the configuration for an AI translation service.
type Engine struct {
	// ID is the engine identifier (openai, google, ollama, custom-openai).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// Model is the model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// NeedsAPIKey reports whether the engine requires an API key.
func (e Engine) NeedsAPIKey() bool {
	return e.ID == EngineOpenAI || e.ID == EngineGoogle
}

// DefaultEngines returns the pre-configured engine definitions.
func DefaultEngines() map[string]Engine {
	return map[string]Engine{
		EngineOpenAI: {
			ID:      EngineOpenAI,
			Name:    "OpenAI",
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 120 * time.Second,
		},
		EngineGoogle: {
			ID:      EngineGoogle,
			Name:    "Google AI (Gemini)",
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.0-flash",
			Timeout: 120 * time.Second,
		},
		EngineOllama: {
			ID:      EngineOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3.1",
			Timeout: 300 * time.Second,
		},
		EngineCustomOpenAI: {
			ID:      EngineCustomOpenAI,
			Name:    "Custom OpenAI",
			Model:   "",
			Timeout: 120 * time.Second,
		},
	}
}

// ---------------------------------------------------------------------------
// System prompt configuration
// ---------------------------------------------------------------------------

// PromptsConfig holds system prompts loaded from prompts.json.
type PromptsConfig struct {
	Prompts map[string]string `json:"prompts"`
}

var globalPrompts *PromptsConfig

// LoadPromptsFromFile loads system prompts from a JSON file.
// A missing file is not an error: embedded defaults are used.
func LoadPromptsFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read prompts file: %w", err)
	}

	var config PromptsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse prompts file: %w", err)
	}

	globalPrompts = &config
	return nil
}

func createDefaultPromptsFile(path string) error {
	config := PromptsConfig{
		Prompts: map[string]string{"default": DefaultSystemPrompt},
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling default prompts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating prompts directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing default prompts file: %w", err)
	}
	return nil
}

// LoadPromptsFromDefaultLocations loads the prompt overrides from the user
// data directory ($XDG_DATA_HOME/xlft/prompts.json), creating the file with
// built-in defaults on first use. Returns the path of the loaded file.
func LoadPromptsFromDefaultLocations() (string, error) {
	path, err := settings.PromptsFilePath()
	if err != nil {
		return "", fmt.Errorf("cannot determine prompts file path: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefaultPromptsFile(path); err != nil {
			return "", fmt.Errorf("creating default prompts file: %w", err)
		}
	}

	if err := LoadPromptsFromFile(path); err != nil {
		return "", err
	}
	if globalPrompts != nil {
		return path, nil
	}
	return "", nil
}

func getPrompt() string {
	if globalPrompts != nil {
		if prompt, ok := globalPrompts.Prompts["default"]; ok && prompt != "" {
			return prompt
		}
	}
	return DefaultSystemPrompt
}

// DefaultSystemPrompt is the built-in system prompt for XLIFF unit
// translation.
const DefaultSystemPrompt = `You are a professional translator specializing in software and product localization. You are translating UI strings extracted from an XLIFF localization file.

CONTEXT AWARENESS:
- The audience is software users
- Tone: professional yet approachable, clear and concise
- Use IT/software terminology that is standard in {{targetLang}} tech community
- Adapt to the application's specific domain based on the source text context

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for NATURALNESS and FLUENCY in the target language, not word-for-word
- Use idiomatic expressions natural to {{targetLang}}, not literal translations
- Adapt sentence structure to match {{targetLang}} conventions
- Maintain the original tone and intent, but express it naturally in {{targetLang}}

CRITICAL MARKUP PRESERVATION RULES:
- Source strings may contain XLIFF inline placeholder elements such as <x id="..."/>, <g id="...">...</g>, <ph>...</ph>, or HTML tags. Keep every tag and its attributes EXACTLY as-is; translate only the human-readable text around and inside them.
- Preserve interpolation placeholders exactly ({{name}}, {0}, %s, %d, etc.).
- Preserve leading/trailing whitespace, newlines, and punctuation patterns.
- Keep brand names and proper nouns unchanged.

TECHNICAL REQUIREMENTS:
- Return ONLY a JSON array of translated strings, one for each input entry, in the same order.
- Return ONLY the JSON array, no explanations or markdown code blocks.`

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls the translation behavior.
type Options struct {
	// Engine is the AI engine configuration.
	Engine Engine
	// Language is the target language code (e.g., "es", "pt-BR").
	Language string
	// LanguageName is the human-readable name (e.g., "Spanish").
	LanguageName string
	// BatchSize is how many units to translate per API call (0 = all at once).
	BatchSize int
	// Timeout is the per-request timeout (overrides engine timeout if set).
	Timeout time.Duration
	// MaxRetries is the number of retries on 429/5xx. Default 0: a single
	// attempt per batch.
	MaxRetries int
	// SystemPrompt overrides the default system prompt.
	SystemPrompt string
	// OnProgress is called after each batch is translated.
	OnProgress func(lang string, done, total int)
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits error messages during translation.
	OnError func(format string, args ...any)
	// Verbose enables request-level logging.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	if o.Engine.Timeout > 0 {
		return o.Engine.Timeout
	}
	return 120 * time.Second
}

// resolvedPrompt returns the system prompt with {{targetLang}} replaced.
func (o *Options) resolvedPrompt() string {
	prompt := o.SystemPrompt
	if prompt == "" {
		prompt = getPrompt()
	}
	langName := o.LanguageName
	if langName == "" {
		langName = langcode.Resolve(o.Language).Name
	}
	return strings.ReplaceAll(prompt, "{{targetLang}}", langName)
}

// ---------------------------------------------------------------------------
// HTTP client with proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Support both --proxy flag and HTTP_PROXY/HTTPS_PROXY env vars
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Client talks to one translation engine.
type Client struct {
	opts    Options
	http    *http.Client
	oai     *openai.Client // nil for the google engine
	breaker *gobreaker.CircuitBreaker
}

// NewClient builds a client for the engine configured in opts.
func NewClient(opts Options) *Client {
	c := &Client{
		opts: opts,
		http: makeHTTPClient(opts.Engine.Proxy, opts.effectiveTimeout()),
	}

	if opts.Engine.ID != EngineGoogle {
		cfg := openai.DefaultConfig(opts.Engine.APIKey)
		if opts.Engine.BaseURL != "" {
			cfg.BaseURL = strings.TrimRight(opts.Engine.BaseURL, "/")
		}
		cfg.HTTPClient = c.http
		c.oai = openai.NewClientWithConfig(cfg)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "translate:" + opts.Engine.ID,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return c
}

// TranslateBatch translates one batch of source strings. The response must
// contain exactly one translation per source, in order.
func (c *Client) TranslateBatch(ctx context.Context, sources []string) ([]string, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		return c.translateBatch(ctx, sources)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: engine unavailable after repeated failures", ErrService)
		}
		return nil, err
	}
	return res.([]string), nil
}

func (c *Client) translateBatch(ctx context.Context, sources []string) ([]string, error) {
	systemPrompt := c.opts.resolvedPrompt()
	userPrompt := buildUserPrompt(sources)

	var text string
	var err error
	if c.opts.Engine.ID == EngineGoogle {
		text, err = c.callGemini(ctx, systemPrompt, userPrompt)
	} else {
		text, err = c.chatComplete(ctx, systemPrompt, userPrompt)
	}
	if err != nil {
		return nil, err
	}

	return parseTranslations(text, len(sources))
}

// buildUserPrompt lists the numbered source strings for one batch.
func buildUserPrompt(sources []string) string {
	var b strings.Builder
	b.WriteString("Translate these entries:\n\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "%d. %s\n", i+1, escapeForPrompt(s))
	}
	fmt.Fprintf(&b, "\nReturn a JSON array with exactly %d translated strings.", len(sources))
	return b.String()
}

// ---------------------------------------------------------------------------
// OpenAI-compatible engines (openai, ollama, custom-openai)
// ---------------------------------------------------------------------------

func (c *Client) chatComplete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.opts.Engine.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
	}

	maxRetries := c.opts.MaxRetries
	for attempt := 0; ; attempt++ {
		if c.opts.Verbose {
			log.Printf("[DEBUG] %s attempt %d: chat completion (%s)",
				c.opts.Engine.Name, attempt+1, c.opts.Engine.Model)
		}

		resp, err := c.oai.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("%w: empty response from %s", ErrService, c.opts.Engine.Name)
			}
			return resp.Choices[0].Message.Content, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if attempt >= maxRetries || !retryableOpenAIError(err) {
			return "", fmt.Errorf("%w: %v", ErrService, err)
		}

		wait := retryWait(err, attempt)
		c.opts.log("retrying in %v after: %v", wait, err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
}

func retryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= 500
	}
	// transport errors are worth one more try
	return true
}

func retryWait(err error, attempt int) time.Duration {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return 65 * time.Second // 60s window + 5s buffer
	}
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// ---------------------------------------------------------------------------
// Google Gemini engine (native generateContent API)
// ---------------------------------------------------------------------------

func buildGeminiRequest(systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type genConfig struct {
		Temperature float64 `json:"temperature"`
	}
	req := struct {
		Contents          []content `json:"contents"`
		GenerationConfig  genConfig `json:"generationConfig"`
		SystemInstruction *content  `json:"systemInstruction,omitempty"`
	}{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		GenerationConfig: genConfig{Temperature: temperature},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}
	return json.Marshal(req)
}

// extractGeminiText pulls candidates[0].content.parts[0].text.
func extractGeminiText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	if candidates, ok := raw["candidates"].([]any); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]any); ok {
			if content, ok := candidate["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]any); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

// parseRetryDelay extracts the retry delay from a 429 response body,
// looking for Google's RetryInfo detail. Defaults to 60s + 5s buffer.
func parseRetryDelay(body []byte) time.Duration {
	const defaultDelay = 65 * time.Second

	var errResp struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return defaultDelay
	}

	for _, detail := range errResp.Error.Details {
		if strings.Contains(detail.Type, "RetryInfo") && detail.RetryDelay != "" {
			d := strings.TrimSuffix(detail.RetryDelay, "s")
			if secs, err := strconv.ParseFloat(d, 64); err == nil {
				return time.Duration(secs*1000)*time.Millisecond + 5*time.Second
			}
		}
	}

	return defaultDelay
}

func (c *Client) callGemini(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	eng := c.opts.Engine
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(eng.BaseURL, "/"), eng.Model)

	body, err := buildGeminiRequest(systemPrompt, userPrompt, 0.3)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	maxRetries := c.opts.MaxRetries
	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if eng.APIKey != "" {
			req.Header.Set("x-goog-api-key", eng.APIKey)
		}

		if c.opts.Verbose {
			log.Printf("[DEBUG] %s attempt %d: POST %s", eng.Name, attempt+1, endpoint)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt < maxRetries {
				wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(wait):
				}
				continue
			}
			return "", fmt.Errorf("%w: API request failed: %v", ErrService, err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt < maxRetries {
				retryDelay := parseRetryDelay(respBody)
				c.opts.log("rate limited, waiting %v before retry", retryDelay)
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(retryDelay):
				}
				continue
			}
			return "", fmt.Errorf("%w: rate limited: %s", ErrService, truncate(string(respBody), 300))
		}

		if resp.StatusCode != http.StatusOK {
			if attempt < maxRetries && resp.StatusCode >= 500 {
				wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(wait):
				}
				continue
			}
			return "", fmt.Errorf("%w: API returned status %d: %s",
				ErrService, resp.StatusCode, truncate(string(respBody), 500))
		}

		text, err := extractGeminiText(respBody)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrService, err)
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: exhausted all %d retries", ErrService, maxRetries)
}

// ---------------------------------------------------------------------------
// Response parsing
// ---------------------------------------------------------------------------

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseTranslations parses the engine response into exactly expected
// strings. Markdown code fences are stripped and the outermost JSON array
// extracted; anything else — unparsable JSON or a count mismatch — is a
// service error, so a misaligned response can never be merged.
func parseTranslations(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	startIdx := strings.Index(content, "[")
	endIdx := strings.LastIndex(content, "]")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var translations []string
	if err := json.Unmarshal([]byte(content), &translations); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON array of strings: %v\nResponse: %s",
			ErrService, err, truncate(content, 300))
	}

	if len(translations) != expected {
		return nil, fmt.Errorf("%w: got %d translations, expected %d",
			ErrService, len(translations), expected)
	}

	return translations, nil
}

// ---------------------------------------------------------------------------
// Document-level translation
// ---------------------------------------------------------------------------

// Result summarizes a translation run.
type Result struct {
	// Translated is the number of units that received a translation.
	Translated int
	// Failed is the number of units left untranslated by failed batches.
	Failed int
	// Batches is the total number of batches attempted.
	Batches int
	// FailedBatches counts batches whose request or response failed.
	FailedBatches int
	// Errors holds one error per failed batch.
	Errors []error
}

// TranslateUnits translates the given units in sequential batches, applying
// each batch's results through Unit.SetTarget as it completes. A failed
// batch leaves its units untouched and is recorded in the result; remaining
// batches still run (the circuit breaker short-circuits them once the
// engine looks dead). Only context cancellation aborts the run.
func (c *Client) TranslateUnits(ctx context.Context, units []*xliff.Unit) (Result, error) {
	var res Result
	if len(units) == 0 {
		return res, nil
	}

	batchSize := c.opts.BatchSize
	if batchSize <= 0 {
		batchSize = len(units)
	}
	batches := splitUnits(units, batchSize)
	res.Batches = len(batches)
	total := len(units)
	done := 0

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if c.opts.Verbose {
			c.opts.log("batch %d/%d (%d units)", i+1, len(batches), len(batch))
		}

		sources := make([]string, len(batch))
		for j, u := range batch {
			sources[j] = u.Source
		}

		translations, err := c.TranslateBatch(ctx, sources)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return res, err
			}
			res.FailedBatches++
			res.Failed += len(batch)
			res.Errors = append(res.Errors,
				fmt.Errorf("translating batch %d/%d: %w", i+1, len(batches), err))
			c.opts.logError("batch %d/%d failed: %v", i+1, len(batches), err)
			done += len(batch)
			continue
		}

		for j, u := range batch {
			u.SetTarget(translations[j])
		}
		res.Translated += len(batch)

		done += len(batch)
		if c.opts.OnProgress != nil {
			c.opts.OnProgress(c.opts.Language, done, total)
		}
	}

	return res, nil
}

// Err returns the aggregate error of a run, or nil if every batch succeeded.
func (r Result) Err() error {
	if r.FailedBatches == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d batches failed (%d units untranslated)",
		ErrService, r.FailedBatches, r.Batches, r.Failed)
}

// splitUnits divides units into batches of the given size.
func splitUnits(units []*xliff.Unit, batchSize int) [][]*xliff.Unit {
	if batchSize <= 0 || batchSize >= len(units) {
		return [][]*xliff.Unit{units}
	}
	var batches [][]*xliff.Unit
	for i := 0; i < len(units); i += batchSize {
		end := i + batchSize
		if end > len(units) {
			end = len(units)
		}
		batches = append(batches, units[i:end])
	}
	return batches
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// escapeForPrompt prepares a string for inclusion in the AI prompt.
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return fmt.Sprintf(`"%s"`, s)
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
