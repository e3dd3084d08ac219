package uxerror

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"hibot/internal/domain"
	"hibot/internal/infra/config"
)

func TestHumanize(t *testing.T) {
	ve := &config.ValidationError{Errors: []string{"backend.base_url is required", "backend.timeout must be positive"}}

	tests := []struct {
		name      string
		err       error
		wantTitle string
		wantHint  string
	}{
		{"validation", fmt.Errorf("load: %w", ve), "설정 값이 올바르지 않아요", "backend.timeout must be positive"},
		{"config load", fmt.Errorf("%w: parse hibot.yaml: bad", domain.ErrConfigLoad), "설정 파일을 읽을 수 없어요", "chmod 600"},
		{"index", domain.WrapOp("Controller.Select", domain.NewDomainError("Catalog.At", domain.ErrIndexOutOfRange, "index 9")), "없는 질문 번호예요", "faq --list"},
		{"invariant", domain.NewDomainError("Store.Resolve", domain.ErrInvariantViolation, "no pending"), "대화 상태가 어긋났어요", "Restart hibot"},
		{"bind", errors.New("listen tcp 127.0.0.1:9464: bind: address already in use"), "메트릭 주소를 열 수 없어요", "HIBOT_METRICS_ENABLED=false"},
		{"tty", errors.New("could not open a new TTY: open /dev/tty: no such device"), "터미널을 열 수 없어요", "hibot ask"},
		{"fallback", errors.New("something odd"), "예상하지 못한 오류", "HIBOT_LOGGER_LEVEL=debug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := Humanize(tt.err)
			assert.Equal(t, tt.wantTitle, fe.Title)
			found := false
			for _, h := range fe.Hints {
				if strings.Contains(h, tt.wantHint) {
					found = true
				}
			}
			assert.True(t, found, "hints %v should mention %q", fe.Hints, tt.wantHint)
		})
	}
}

func TestHumanize_Nil(t *testing.T) {
	fe := Humanize(nil)
	assert.Equal(t, "알 수 없는 오류", fe.Title)
}

func TestRender(t *testing.T) {
	fe := FriendlyError{
		Title:   "Title",
		Message: "message",
		Hints:   []string{"first", "second"},
		Raw:     "raw text",
	}
	out := fe.Render()
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "message")
	assert.Contains(t, out, "해결 방법:")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "raw text")
}

func TestRender_SkipsRawEqualToMessage(t *testing.T) {
	fe := FriendlyError{Title: "T", Message: "same", Raw: "same"}
	out := fe.Render()
	assert.NotContains(t, out, "해결 방법:")
	assert.Equal(t, 1, strings.Count(out, "same"))
}
