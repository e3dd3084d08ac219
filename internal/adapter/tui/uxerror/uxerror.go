// Package uxerror translates startup and wiring errors into operator-facing
// messages with recovery hints. Exchange failures never reach it; those are
// collapsed into the fixed transcript message.
package uxerror

import (
	"errors"
	"fmt"
	"strings"

	"hibot/internal/adapter/tui/theme"
	"hibot/internal/domain"
	"hibot/internal/infra/config"
)

// FriendlyError is an operator-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading
	Message string   // one-liner explanation
	Hints   []string // actionable recovery suggestions
	Raw     string   // original error text
}

// Render formats the FriendlyError for a terminal.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(theme.SymbolError + " " + fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  해결 방법:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
		}
	}
	if fe.Raw != "" && fe.Raw != fe.Message {
		sb.WriteString("\n  ")
		sb.WriteString(theme.Dim.Render(fe.Raw))
	}
	return sb.String()
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

var patterns = []errorPattern{
	{
		match: func(err error) bool {
			var ve *config.ValidationError
			return errors.As(err, &ve)
		},
		produce: func(err error) FriendlyError {
			var ve *config.ValidationError
			errors.As(err, &ve)
			return FriendlyError{
				Title:   "설정 값이 올바르지 않아요",
				Message: fmt.Sprintf("%d개의 설정 항목을 확인해주세요.", len(ve.Errors)),
				Hints:   ve.Errors,
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrConfigLoad) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "설정 파일을 읽을 수 없어요",
				Message: "The configuration file could not be loaded.",
				Hints:   []string{"Check the --config path or HIBOT_CONFIG", "Make sure the file is not group/world writable (chmod 600)"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrIndexOutOfRange) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "없는 질문 번호예요",
				Message: "The quick-reply index is outside the catalog.",
				Hints:   []string{"Run 'hibot faq --list' to see valid numbers"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrInvariantViolation) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "대화 상태가 어긋났어요",
				Message: "The transcript was found in an inconsistent state.",
				Hints:   []string{"Restart hibot", "Report the log lines tagged with this exchange_id"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match:   containsAny("address already in use", "bind:"),
		produce: constantError("메트릭 주소를 열 수 없어요", "The metrics listener could not bind its address.", []string{"Change metrics.addr or HIBOT_METRICS_ADDR", "Disable metrics with HIBOT_METRICS_ENABLED=false"}),
	},
	{
		match:   containsAny("could not open a new tty", "/dev/tty", "inappropriate ioctl"),
		produce: constantError("터미널을 열 수 없어요", "The interactive UI needs a terminal.", []string{"Use 'hibot ask' or 'hibot faq' for non-interactive use"}),
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "알 수 없는 오류", Raw: "nil"}
	}

	for _, p := range patterns {
		if p.match(err) {
			return p.produce(err)
		}
	}

	return FriendlyError{
		Title:   "예상하지 못한 오류",
		Message: err.Error(),
		Hints:   []string{"Try again", "Run with HIBOT_LOGGER_LEVEL=debug for more details"},
		Raw:     err.Error(),
	}
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// constantError returns a produce func that always returns the same FriendlyError.
func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{
			Title:   title,
			Message: message,
			Hints:   hints,
			Raw:     err.Error(),
		}
	}
}
