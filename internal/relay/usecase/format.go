package usecase

import (
	"fmt"
	"strings"

	"telegram-task-relay/internal/model"
	"telegram-task-relay/pkg/sanitize"
	pkgTelegram "telegram-task-relay/pkg/telegram"
)

const (
	debugOutputLimit = 3500
	plainOutputLimit = 4000
	warningsLimit    = 500

	completedMarker = "✅ Task completed"
	failedHeader    = "❌ Command failed"
	failedPrefix    = "❌ Failed: "
	warningsHeader  = "⚠️ Warnings:"

	sectionSeparator = "\n\n"
)

// FormatSuccess renders a successful result. Debug mode adds metadata and warnings and
// wraps the output in a code block. Returns "" when there is nothing to show.
func FormatSuccess(result model.CallbackResult, debug bool) string {
	var sections []string

	if debug {
		duration := result.Duration
		if duration == "" {
			duration = "n/a"
		}
		sections = append(sections, strings.Join([]string{
			completedMarker,
			fmt.Sprintf("iterations: %d/%d", result.Iterations, result.MaxIterations),
			"duration: " + duration,
		}, "\n"))

		if warnings := sanitize.Clean(result.Error); warnings != "" {
			sections = append(sections, warningsHeader+"\n"+codeBlock(sanitize.Truncate(warnings, warningsLimit)))
		}
	}

	if output := sanitize.Clean(result.Output); output != "" {
		if debug {
			sections = append(sections, codeBlock(sanitize.Truncate(output, debugOutputRoom(sections))))
		} else {
			sections = append(sections, sanitize.Truncate(output, plainOutputLimit))
		}
	}

	return strings.Join(sections, sectionSeparator)
}

// FormatError renders a failed result.
func FormatError(result model.CallbackResult, debug bool) string {
	msg := sanitize.Clean(result.Error)
	if msg == "" {
		msg = fmt.Sprintf("task exited with code %d", result.ExitCode)
	}
	msg = sanitize.Truncate(msg, plainOutputLimit)

	if debug {
		return failedHeader + "\n" + msg
	}
	return failedPrefix + msg
}

// debugOutputRoom is how much output still fits in one message after the sections already
// rendered, capped at debugOutputLimit.
func debugOutputRoom(sections []string) int {
	used := pkgTelegram.TextLength(strings.Join(sections, "\n\n"))
	overhead := len(sectionSeparator) + pkgTelegram.TextLength(codeBlock("")) + pkgTelegram.TextLength(sanitize.TruncationMarker)
	room := pkgTelegram.MaxMessageLength - used - overhead
	if room > debugOutputLimit {
		room = debugOutputLimit
	}
	if room < 0 {
		room = 0
	}
	return room
}

func codeBlock(s string) string {
	return "```\n" + s + "\n```"
}
