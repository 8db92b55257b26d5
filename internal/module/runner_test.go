package module

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"xsslab/internal/logger"
	"xsslab/internal/payloads"
)

// scriptedPrompter answers prompts from a fixed map; unknown prompts decline.
type scriptedPrompter struct {
	answers map[string]bool
}

func (p *scriptedPrompter) Approve(prompt string) bool {
	return p.answers[prompt]
}

func newTestRunner(interactive bool, answers map[string]bool) *Runner {
	return &Runner{
		Log:         logger.NewConsole(logger.ERROR),
		Prompter:    &scriptedPrompter{answers: answers},
		Interactive: interactive,
	}
}

func threePayloads() []payloads.Attempt {
	return []payloads.Attempt{
		{Payload: "<a>", Key: "one", Index: 0},
		{Payload: "<b>", Key: "two", Index: 1},
		{Payload: "<c>", Key: "three", Index: 2},
	}
}

func TestRun_StopsAtFirstSuccess(t *testing.T) {
	r := newTestRunner(false, nil)
	var attempted []int

	outcome := r.Run(context.Background(), Scenario{
		Name:     "Demo",
		Baseline: func(*Runner) error { return nil },
		Payloads: threePayloads(),
		Attempt: func(_ *Runner, p payloads.Attempt) bool {
			attempted = append(attempted, p.Index)
			return p.Index == 1
		},
	})

	assert.True(t, outcome.Ran)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, 1, outcome.FirstSuccessIndex)
	assert.Equal(t, []int{0, 1}, attempted, "payloads after the first success must not run")
	assert.Len(t, outcome.Attempted, 2)
}

func TestRun_AllPayloadsFail(t *testing.T) {
	r := newTestRunner(false, nil)
	successCalled := false

	outcome := r.Run(context.Background(), Scenario{
		Name:      "Demo",
		Baseline:  func(*Runner) error { return nil },
		Payloads:  threePayloads(),
		Attempt:   func(*Runner, payloads.Attempt) bool { return false },
		OnSuccess: func(*Runner) { successCalled = true },
	})

	assert.True(t, outcome.Ran)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, -1, outcome.FirstSuccessIndex)
	assert.Len(t, outcome.Attempted, 3)
	assert.False(t, successCalled)
}

func TestRun_IntroPromptDeclined(t *testing.T) {
	r := newTestRunner(true, map[string]bool{"go?": false})
	baselineCalled := false

	outcome := r.Run(context.Background(), Scenario{
		Name:        "Demo",
		IntroPrompt: "go?",
		Baseline: func(*Runner) error {
			baselineCalled = true
			return nil
		},
	})

	assert.False(t, outcome.Ran)
	assert.False(t, baselineCalled, "a declined go/no-go must stop before any network activity")
}

func TestRun_BaselineStopped(t *testing.T) {
	r := newTestRunner(false, nil)

	outcome := r.Run(context.Background(), Scenario{
		Name:     "Demo",
		Baseline: func(*Runner) error { return ErrStopped },
		Payloads: threePayloads(),
		Attempt:  func(*Runner, payloads.Attempt) bool { return true },
	})

	assert.False(t, outcome.Ran)
	assert.Empty(t, outcome.Attempted)
}

func TestRun_BaselineFailure(t *testing.T) {
	r := newTestRunner(false, nil)

	outcome := r.Run(context.Background(), Scenario{
		Name:     "Demo",
		Baseline: func(*Runner) error { return errors.New("target unreachable") },
		Payloads: threePayloads(),
		Attempt:  func(*Runner, payloads.Attempt) bool { return true },
	})

	assert.True(t, outcome.Ran)
	assert.False(t, outcome.Succeeded)
	assert.Empty(t, outcome.Attempted)
}

func TestRun_PayloadPromptDeclinedSkips(t *testing.T) {
	r := newTestRunner(true, map[string]bool{"intro?": true, "fire?": false})
	attemptCalled := false

	outcome := r.Run(context.Background(), Scenario{
		Name:          "Demo",
		IntroPrompt:   "intro?",
		Baseline:      func(*Runner) error { return nil },
		Payloads:      threePayloads(),
		PayloadPrompt: "fire?",
		Attempt: func(*Runner, payloads.Attempt) bool {
			attemptCalled = true
			return true
		},
	})

	assert.True(t, outcome.Ran)
	assert.False(t, outcome.Succeeded)
	assert.False(t, attemptCalled)
	assert.Empty(t, outcome.Attempted)
}

func TestRun_UnconditionalSucceedsWithoutPayloads(t *testing.T) {
	r := newTestRunner(false, nil)
	successCalled := false

	outcome := r.Run(context.Background(), Scenario{
		Name:          "Demo",
		Baseline:      func(*Runner) error { return nil },
		Unconditional: true,
		OnSuccess:     func(*Runner) { successCalled = true },
	})

	assert.True(t, outcome.Ran)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, -1, outcome.FirstSuccessIndex)
	assert.True(t, successCalled)
}

func TestRun_CancelledContextStopsPayloads(t *testing.T) {
	r := newTestRunner(false, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := r.Run(ctx, Scenario{
		Name:     "Demo",
		Baseline: func(*Runner) error { return nil },
		Payloads: threePayloads(),
		Attempt:  func(*Runner, payloads.Attempt) bool { return true },
	})

	assert.True(t, outcome.Ran)
	assert.False(t, outcome.Succeeded)
	assert.Empty(t, outcome.Attempted)
}

func TestApprove_NonInteractiveAutoApproves(t *testing.T) {
	r := newTestRunner(false, map[string]bool{"anything": false})
	assert.True(t, r.Approve("anything"))
}

func TestPayloadSnippet(t *testing.T) {
	t.Run("Payload highlighted", func(t *testing.T) {
		body := "<html><body><pre>Hello <script>alert(1)</script></pre></body></html>"
		snippet, hint := PayloadSnippet(body, "<script>alert(1)</script>")
		assert.Contains(t, snippet, "<<PAYLOAD>><script>alert(1)</script><<PAYLOAD>>")
		assert.Contains(t, hint, "highlighted")
	})

	t.Run("Payload absent shows leading bytes", func(t *testing.T) {
		snippet, hint := PayloadSnippet("<html>nothing here</html>", "<script>")
		assert.Equal(t, "<html>nothing here</html>", snippet)
		assert.Contains(t, hint, "not present")
	})

	t.Run("Empty body", func(t *testing.T) {
		snippet, _ := PayloadSnippet("", "<script>")
		assert.Equal(t, "(empty response body)", snippet)
	})
}

func TestBuildCurl(t *testing.T) {
	t.Run("GET with query params", func(t *testing.T) {
		cmd := buildCurl("GET", "http://localhost/vulnerabilities/xss_r/",
			url.Values{"name": {"<script>alert(1)</script>"}}, nil, "", false)
		assert.Equal(t,
			`curl -sS -G 'http://localhost/vulnerabilities/xss_r/' --data-urlencode 'name=<script>alert(1)</script>'`,
			cmd)
	})

	t.Run("POST with cookies through proxy", func(t *testing.T) {
		cmd := buildCurl("POST", "http://localhost/vulnerabilities/xss_s/",
			nil, url.Values{"txtName": {"XSS Test User"}}, "PHPSESSID=abc; security=low", true)
		assert.Contains(t, cmd, "--proxy http://127.0.0.1:8080")
		assert.Contains(t, cmd, `--cookie 'PHPSESSID=abc; security=low'`)
		assert.Contains(t, cmd, "-X POST")
		assert.Contains(t, cmd, `-d 'txtName=XSS Test User'`)
	})

	t.Run("Single quotes escaped", func(t *testing.T) {
		cmd := buildCurl("GET", "http://localhost/page",
			url.Values{"name": {"it's"}}, nil, "", false)
		assert.Contains(t, cmd, `'name=it'\''s'`)
	})
}
