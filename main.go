// xlft — XLIFF translator: fills untranslated units in .xlf files using AI.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/l10n-kit/xlft/config"
	"github.com/l10n-kit/xlft/langcode"
	"github.com/l10n-kit/xlft/settings"
	"github.com/l10n-kit/xlft/tmfile"
	"github.com/l10n-kit/xlft/translate"
	"github.com/l10n-kit/xlft/xliff"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// errIO marks file read/write failures so they map to their own exit code.
var errIO = errors.New("I/O error")

// exitCode maps an error to the process exit status:
//
//	2  malformed or non-XLIFF input
//	3  unusable configuration (engine, key, language)
//	4  translation service failure
//	5  file I/O failure
//	1  anything else
func exitCode(err error) int {
	switch {
	case errors.Is(err, xliff.ErrFormat):
		return 2
	case errors.Is(err, config.ErrConfig):
		return 3
	case errors.Is(err, translate.ErrService):
		return 4
	case errors.Is(err, errIO):
		return 5
	}
	return 1
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xlft",
		Short: "XLIFF translator with AI engines",
		Long: `xlft — XLIFF translator: fills untranslated units in .xlf files using AI.

Parses XLIFF 1.2 and 2.0 documents, sends untranslated source strings to an
AI translation engine in batches, and merges the translations back without
reformatting the rest of the file.

Commands:
  translate   Translate untranslated units in an XLIFF file
  status      Show translation statistics for an XLIFF file
  auth        Manage engine API keys

Engines:
  openai         OpenAI — API key
  google         Google AI (Gemini) — API key
  ollama         Ollama local server
  custom-openai  Custom OpenAI-compatible endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.Init(cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .xlft.yaml in . or $HOME)")

	root.AddCommand(
		newTranslateCmd(),
		newStatusCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(exitCode(err))
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xlft version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// status (read-only: document info + translation stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <file.xlf>",
		Short: "Show translation statistics for an XLIFF file",
		Long: `Show document info and translation statistics.

Displays the XLIFF version, source/target languages, and per-unit
translation progress. Does not modify any files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(args[0])
		},
	}
}

func runStatus(path string) error {
	doc, err := parseInput(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%sDocument%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	fmt.Fprintf(os.Stderr, "  File:       %s\n", path)
	fmt.Fprintf(os.Stderr, "  XLIFF:      %s\n", doc.Version)
	if doc.SourceLang != "" {
		fmt.Fprintf(os.Stderr, "  Source:     %s (%s)\n", doc.SourceLang, langcode.Resolve(doc.SourceLang).Name)
	}
	if doc.TargetLang != "" {
		fmt.Fprintf(os.Stderr, "  Target:     %s (%s)\n", doc.TargetLang, langcode.Resolve(doc.TargetLang).Name)
	} else if code, ok := langcode.FromFilename(path); ok {
		fmt.Fprintf(os.Stderr, "  Target:     %s (%s, from filename)\n", code, langcode.Resolve(code).Name)
	}

	total, translated, untranslated := doc.Stats()
	percent := 0
	if total > 0 {
		percent = translated * 100 / total
	}

	statusColor := colorGreen
	if percent < 50 {
		statusColor = colorRed
	} else if percent < 100 {
		statusColor = colorYellow
	}

	fmt.Fprintf(os.Stderr, "\n%sTranslation Statistics%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Units:        %d\n", total)
	fmt.Fprintf(os.Stderr, "  Translated:   %d\n", translated)
	fmt.Fprintf(os.Stderr, "  Untranslated: %d\n", untranslated)
	fmt.Fprintf(os.Stderr, "  Progress:     %s%d%%%s\n", statusColor, percent, colorReset)
	fmt.Fprintln(os.Stderr)

	if untranslated > 0 {
		logInfo("Run 'xlft translate %s' to fill the missing translations.", path)
	}
	return nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		// Target selection
		language string
		inline   bool
		force    bool
		output   string

		// Engine selection
		engine  string
		apiKey  string
		model   string
		baseURL string

		// Translation behavior
		batchSize int
		prompt    string
		verbose   bool
		dryRun    bool
		noCache   bool

		// Network
		timeout    time.Duration
		proxy      string
		maxRetries int
	)

	cmd := &cobra.Command{
		Use:   "translate <file.xlf>",
		Short: "Translate untranslated units in an XLIFF file",
		Long: `Translate untranslated units in an XLIFF file using an AI engine.

The target language is taken from --language, the filename (name.CODE.xlf),
or the document's target-language attribute, in that order. By default the
result is written next to the input as name.translated.xlf; use --inline to
overwrite the input, or --output for an explicit path.

Already-translated units are left untouched unless --force is given. With
--force, units whose source text is unchanged since the last run (tracked
in xlft.lock) are still skipped; --no-cache disables that.

Examples:
  # Language from the filename
  xlft translate messages.es.xlf

  # Explicit language, overwrite in place
  xlft translate messages.xlf -l pt-BR --inline

  # Re-translate everything with a local model
  xlft translate messages.de.xlf --force --engine ollama --model llama3.1

  # Show what would be translated
  xlft translate messages.es.xlf --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch := batchSize
			if !cmd.Flags().Changed("batch-size") {
				batch = config.BatchSize(batchSize)
			}
			return runTranslate(args[0], translateArgs{
				language: language, inline: inline, force: force, output: output,
				engine: engine, apiKey: apiKey, model: model, baseURL: baseURL,
				batchSize: batch, prompt: prompt, verbose: verbose,
				dryRun: dryRun, noCache: noCache,
				timeout: timeout, proxy: proxy, maxRetries: maxRetries,
			})
		},
	}

	// Target selection
	cmd.Flags().StringVarP(&language, "language", "l", "", "Target language code (default: from filename or document)")
	cmd.Flags().BoolVarP(&inline, "inline", "i", false, "Overwrite the input file instead of writing a new one")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-translate already translated units")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: name.translated.xlf)")

	// Engine selection
	cmd.Flags().StringVar(&engine, "engine", "", "AI engine: openai, google, ollama, custom-openai (default: openai)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default: engine default)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or XLFT_API_KEY env var)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Custom API base URL")

	// Translation behavior
	cmd.Flags().IntVar(&batchSize, "batch-size", 50, "Units per API request (0 = all at once)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Custom system prompt (use {{targetLang}} placeholder)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be translated without calling AI")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore xlft.lock source checksums with --force")

	// Network
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Request timeout (0 = engine default)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 0, "Maximum retries on rate limit or server errors")

	_ = cmd.RegisterFlagCompletionFunc("engine", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"openai\tOpenAI — API key required",
			"google\tGoogle AI (Gemini) — API key required",
			"ollama\tOllama local server",
			"custom-openai\tCustom OpenAI-compatible endpoint",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = cmd.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		e, _ := cmd.Flags().GetString("engine")
		switch e {
		case "google":
			return []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-1.5-pro"}, cobra.ShellCompDirectiveNoFileComp
		case "ollama":
			return []string{"llama3.1", "qwen2.5", "mistral", "phi3"}, cobra.ShellCompDirectiveNoFileComp
		default:
			return []string{"gpt-4o-mini", "gpt-4o"}, cobra.ShellCompDirectiveNoFileComp
		}
	})

	return cmd
}

type translateArgs struct {
	language string
	inline   bool
	force    bool
	output   string

	engine, apiKey, model, baseURL string

	batchSize int
	prompt    string
	verbose   bool
	dryRun    bool
	noCache   bool

	timeout    time.Duration
	proxy      string
	maxRetries int
}

func runTranslate(input string, a translateArgs) error {
	doc, err := parseInput(input)
	if err != nil {
		return err
	}

	lang, err := config.ResolveLanguage(a.language, input, doc.TargetLang)
	if err != nil {
		return err
	}
	langName := langcode.Resolve(lang).Name

	eng, err := config.ResolveEngine(config.EngineOverrides{
		Engine:  a.engine,
		Model:   a.model,
		APIKey:  a.apiKey,
		BaseURL: a.baseURL,
		Proxy:   a.proxy,
		Timeout: a.timeout,
	})
	if err != nil {
		return err
	}

	if a.verbose {
		if cf := config.ConfigFileUsed(); cf != "" {
			logInfo("Using config file: %s", cf)
		}
	}

	// Custom prompt overrides from $XDG_DATA_HOME/xlft/prompts.json.
	if promptsPath, err := translate.LoadPromptsFromDefaultLocations(); err == nil && promptsPath != "" && a.verbose {
		logInfo("Using prompts file: %s", promptsPath)
	}

	pending := doc.Pending(a.force)

	// With --force, xlft.lock lets us skip units whose source text is
	// unchanged since the last successful run.
	var memory *tmfile.Memory
	if !a.noCache {
		memory, err = tmfile.Load(filepath.Dir(input))
		if err != nil {
			logWarning("Ignoring translation memory: %v", err)
			memory = nil
		}
	}
	if a.force && memory != nil {
		kept := pending[:0]
		skipped := 0
		for _, u := range pending {
			if !u.HasTarget || memory.IsChanged(lang, u.ID, u.Source) {
				kept = append(kept, u)
			} else {
				skipped++
			}
		}
		pending = kept
		if skipped > 0 {
			logInfo("Skipping %d unchanged units (tracked in %s)", skipped, tmfile.FileName)
		}
	}

	total, translated, _ := doc.Stats()
	logInfo("Engine: %s (%s), Model: %s", eng.Name, eng.ID, eng.Model)
	logInfo("Target: %s (%s)", langName, lang)
	logInfo("Units: %d total, %d translated, %d to translate", total, translated, len(pending))

	if len(pending) == 0 {
		logSuccess("All units are translated!")
		return nil
	}

	if a.dryRun {
		for _, u := range pending {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", u.ID, truncateSource(u.Source, 60))
		}
		logInfo("Dry run: %d units would be sent to %s", len(pending), eng.Name)
		return nil
	}

	// Graceful cancellation: on interrupt nothing is written.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logWarning("Interrupted, no changes written")
		cancel()
	}()

	client := translate.NewClient(translate.Options{
		Engine:       eng,
		Language:     lang,
		LanguageName: langName,
		BatchSize:    a.batchSize,
		Timeout:      a.timeout,
		MaxRetries:   a.maxRetries,
		SystemPrompt: a.prompt,
		Verbose:      a.verbose,
		OnProgress: func(lang string, done, total int) {
			logInfo("  %s: %d/%d", lang, done, total)
		},
		OnLog:   logInfo,
		OnError: logError,
	})

	res, err := client.TranslateUnits(ctx, pending)
	if err != nil {
		return err
	}

	out := outputPath(input, a.inline, a.output)
	if err := doc.WriteFile(out); err != nil {
		return fmt.Errorf("%w: %v", errIO, err)
	}

	if memory != nil {
		for _, u := range pending {
			if u.HasTarget && u.State == "translated" {
				memory.Update(lang, u.ID, u.Source)
			}
		}
		ids := make([]string, 0, len(doc.Units))
		for _, u := range doc.Units {
			ids = append(ids, u.ID)
		}
		memory.Clean(lang, ids)
		if err := memory.Save(); err != nil {
			logWarning("Saving translation memory: %v", err)
		}
	}

	if res.FailedBatches > 0 {
		logWarning("Wrote %s with %d units left untranslated", out, res.Failed)
		return res.Err()
	}

	logSuccess("Translated %d units → %s", res.Translated, out)
	return nil
}

// parseInput reads and parses an XLIFF file, mapping read failures to the
// I/O exit code and parse failures to the format exit code.
func parseInput(path string) (*xliff.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errIO, err)
	}
	return xliff.Parse(data)
}

// outputPath decides where the result goes: the input itself with --inline,
// the explicit --output path, or name.translated.xlf next to the input.
func outputPath(input string, inline bool, output string) string {
	if inline {
		return input
	}
	if output != "" {
		return output
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".translated" + ext
}

func truncateSource(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ---------------------------------------------------------------------------
// auth (API key management)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage engine API keys",
		Long: `Manage API keys for AI translation engines.

API key engines:
  openai        OpenAI platform API key
  google        Google AI Studio (Gemini) API key
  custom-openai Custom OpenAI-compatible endpoint (key + base URL)

No auth required:
  ollama        Local Ollama server

Keys are stored in ` + "$XDG_DATA_HOME/xlft/auth.json" + ` with 0600 permissions.

Examples:
  xlft auth login openai          Store an OpenAI API key
  xlft auth login custom-openai   Store a key + endpoint URL
  xlft auth list                  Show stored credentials (masked)
  xlft auth logout openai         Remove one engine's key
  xlft auth logout                Remove all credentials`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <engine>",
		Short: "Store an API key for an engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := args[0]
			engines := translate.DefaultEngines()
			eng, ok := engines[engine]
			if !ok {
				return fmt.Errorf("%w: unknown engine %q", config.ErrConfig, engine)
			}
			if engine == translate.EngineOllama {
				logInfo("Ollama needs no API key. Use --base-url if the server is remote.")
				return nil
			}

			scanner := bufio.NewScanner(os.Stdin)

			fmt.Fprintf(os.Stderr, "Enter API key for %s: ", eng.Name)
			if !scanner.Scan() {
				return fmt.Errorf("%w: no input received", config.ErrConfig)
			}
			key := strings.TrimSpace(scanner.Text())
			if key == "" {
				return fmt.Errorf("%w: empty API key", config.ErrConfig)
			}

			if engine == translate.EngineCustomOpenAI {
				fmt.Fprintf(os.Stderr, "Enter base URL (e.g. http://llm.internal:8080/v1): ")
				if !scanner.Scan() {
					return fmt.Errorf("%w: no input received", config.ErrConfig)
				}
				baseURL := strings.TrimSpace(scanner.Text())
				if baseURL == "" {
					return fmt.Errorf("%w: custom-openai requires a base URL", config.ErrConfig)
				}
				if err := settings.SetAPIKeyWithBaseURL(engine, key, baseURL); err != nil {
					return fmt.Errorf("%w: %v", errIO, err)
				}
			} else {
				if err := settings.SetAPIKey(engine, key); err != nil {
					return fmt.Errorf("%w: %v", errIO, err)
				}
			}

			logSuccess("Stored API key for %s in %s", eng.Name, settings.FilePath())
			return nil
		},
	}

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout [engine]",
		Short: "Remove stored credentials",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if err := settings.RemoveAll(); err != nil {
					return fmt.Errorf("%w: %v", errIO, err)
				}
				logSuccess("Removed all stored credentials")
				return nil
			}
			if err := settings.Remove(args[0]); err != nil {
				return fmt.Errorf("%w: %v", errIO, err)
			}
			logSuccess("Removed credentials for %s", args[0])
			return nil
		},
	}
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show stored credentials (masked)",
		Run: func(cmd *cobra.Command, args []string) {
			store := settings.Load()
			if len(store) == 0 {
				logInfo("No stored credentials. Run 'xlft auth login <engine>' first.")
				return
			}

			fmt.Fprintf(os.Stderr, "\n%sStored Credentials%s\n", colorBlue, colorReset)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
			engines := translate.DefaultEngines()
			for id, cred := range store {
				name := id
				if eng, ok := engines[id]; ok {
					name = eng.Name
				}
				fmt.Fprintf(os.Stderr, "  %-14s %-20s %s", id, name, settings.MaskKey(cred.Key))
				if cred.BaseURL != "" {
					fmt.Fprintf(os.Stderr, "  (%s)", cred.BaseURL)
				}
				fmt.Fprintln(os.Stderr)
			}
			fmt.Fprintf(os.Stderr, "\n  File: %s\n\n", settings.FilePath())
		},
	}
}
