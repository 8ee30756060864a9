package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/l10n-kit/xlft/config"
	"github.com/l10n-kit/xlft/translate"
	"github.com/l10n-kit/xlft/xliff"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		inline bool
		output string
		want   string
	}{
		{name: "default derives translated name", input: "messages.es.xlf", want: "messages.es.translated.xlf"},
		{name: "inline overwrites input", input: "messages.es.xlf", inline: true, want: "messages.es.xlf"},
		{name: "explicit output wins", input: "messages.xlf", output: "out/done.xlf", want: "out/done.xlf"},
		{name: "inline beats explicit output", input: "a.xlf", inline: true, output: "b.xlf", want: "a.xlf"},
		{name: "path with directories", input: "locale/app.de.xlf", want: "locale/app.de.translated.xlf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPath(tt.input, tt.inline, tt.output)
			if got != tt.want {
				t.Errorf("outputPath(%q, %v, %q) = %q, want %q",
					tt.input, tt.inline, tt.output, got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "format error", err: fmt.Errorf("%w: junk", xliff.ErrFormat), want: 2},
		{name: "config error", err: fmt.Errorf("%w: no language", config.ErrConfig), want: 3},
		{name: "service error", err: fmt.Errorf("%w: 500", translate.ErrService), want: 4},
		{name: "io error", err: fmt.Errorf("%w: permission denied", errIO), want: 5},
		{name: "anything else", err: errors.New("boom"), want: 1},
		{name: "deeply wrapped", err: fmt.Errorf("run: %w", fmt.Errorf("%w: bad", xliff.ErrFormat)), want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestTruncateSource(t *testing.T) {
	if got := truncateSource("short", 60); got != "short" {
		t.Errorf("truncateSource(short) = %q", got)
	}
	if got := truncateSource("line\nbreak", 60); got != "line break" {
		t.Errorf("newlines should be flattened: %q", got)
	}
	long := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	if got := truncateSource(long, 10); got != "aaaaaaaaaa..." {
		t.Errorf("truncateSource(long) = %q", got)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"translate", "status", "auth", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered: %v", name, err)
		}
	}
}

func TestTranslateCommandFlags(t *testing.T) {
	root := newRootCmd()
	cmd, _, err := root.Find([]string{"translate"})
	if err != nil {
		t.Fatalf("translate command: %v", err)
	}

	shorthand := map[string]string{
		"language": "l",
		"inline":   "i",
		"force":    "f",
		"output":   "o",
	}
	for name, short := range shorthand {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			t.Errorf("flag --%s not registered", name)
			continue
		}
		if f.Shorthand != short {
			t.Errorf("flag --%s shorthand = %q, want %q", name, f.Shorthand, short)
		}
	}

	if f := cmd.Flags().Lookup("batch-size"); f == nil || f.DefValue != "50" {
		t.Errorf("batch-size default = %v, want 50", f)
	}
	if f := cmd.Flags().Lookup("max-retries"); f == nil || f.DefValue != "0" {
		t.Errorf("max-retries default = %v, want 0", f)
	}
}
