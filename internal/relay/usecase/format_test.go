package usecase_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"telegram-task-relay/internal/model"
	"telegram-task-relay/internal/relay/usecase"
	pkgTelegram "telegram-task-relay/pkg/telegram"
)

func TestFormatSuccess(t *testing.T) {
	tests := []struct {
		name     string
		result   model.CallbackResult
		debug    bool
		contains []string
		absent   []string
		exact    *string
	}{
		{
			name:     "debug with output",
			result:   model.CallbackResult{Success: true, Iterations: 3, MaxIterations: 25, Duration: "12s", Output: "done"},
			debug:    true,
			contains: []string{"✅ Task completed", "iterations: 3/25", "duration: 12s", "```\ndone\n```"},
			absent:   []string{"Warnings"},
		},
		{
			name:     "debug with warnings",
			result:   model.CallbackResult{Success: true, MaxIterations: 25, Output: "ok", Error: "\x1b[33mdeprecated flag\x1b[0m"},
			debug:    true,
			contains: []string{"⚠️ Warnings:\n```\ndeprecated flag\n```", "duration: n/a"},
		},
		{
			name:   "plain output",
			result: model.CallbackResult{Success: true, Output: "line1\r\nline2\n", Error: "ignored"},
			exact:  strPtr("line1\nline2"),
		},
		{
			name:   "plain with nothing to show",
			result: model.CallbackResult{Success: true},
			exact:  strPtr(""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.FormatSuccess(tt.result, tt.debug)
			if tt.exact != nil && got != *tt.exact {
				t.Fatalf("expected %q, got %q", *tt.exact, got)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("expected %q in %q", s, got)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(got, s) {
					t.Errorf("did not expect %q in %q", s, got)
				}
			}
		})
	}
}

func TestFormatSuccess_Limits(t *testing.T) {
	long := strings.Repeat("é", 5000)

	plain := usecase.FormatSuccess(model.CallbackResult{Success: true, Output: long}, false)
	if !strings.HasSuffix(plain, "... (truncated)") {
		t.Error("expected truncation marker")
	}
	if n := utf8.RuneCountInString(plain); n > 4000+len([]rune("\n\n... (truncated)")) {
		t.Errorf("plain output too long: %d runes", n)
	}

	debug := usecase.FormatSuccess(model.CallbackResult{Success: true, MaxIterations: 25, Output: long}, true)
	if strings.Count(debug, "é") != 3500 {
		t.Errorf("expected 3500 output runes, got %d", strings.Count(debug, "é"))
	}

	// Warnings and output together must still fit in one message.
	full := usecase.FormatSuccess(model.CallbackResult{
		Success:       true,
		MaxIterations: 25,
		Output:        strings.Repeat("a", 10000),
		Error:         strings.Repeat("w", 1000),
		Duration:      "12s",
	}, true)
	if n := pkgTelegram.TextLength(full); n > pkgTelegram.MaxMessageLength {
		t.Errorf("debug message is %d UTF-16 units, limit %d", n, pkgTelegram.MaxMessageLength)
	}
	if strings.Count(full, "w") != 500 {
		t.Errorf("expected 500 warning runes, got %d", strings.Count(full, "w"))
	}
	if !strings.HasSuffix(full, "(truncated)\n```") {
		t.Errorf("expected the output block to stay closed after truncation, got tail %q", full[len(full)-30:])
	}
}

func TestFormatError(t *testing.T) {
	r := model.CallbackResult{Error: "\x1b[31mexit status 1\x1b[0m\r\n"}

	if got := usecase.FormatError(r, false); got != "❌ Failed: exit status 1" {
		t.Errorf("unexpected plain error: %q", got)
	}
	if got := usecase.FormatError(r, true); got != "❌ Command failed\nexit status 1" {
		t.Errorf("unexpected debug error: %q", got)
	}
	if got := usecase.FormatError(model.CallbackResult{ExitCode: 2}, false); !strings.Contains(got, "code 2") {
		t.Errorf("expected exit code fallback, got %q", got)
	}
}

func strPtr(s string) *string { return &s }
