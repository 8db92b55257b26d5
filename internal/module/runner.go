// Package module provides the shared shape of the three XSS walkthrough
// scenarios: a linear step sequence over a fixed ordered payload list, each
// step independently confirmable in interactive mode. Scenario modules supply
// only their baseline check, payload list, per-payload attempt, and success
// hook; everything else (approval prompts, curl reproductions, evidence
// blocks) lives here.
package module

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"xsslab/internal/dispatch"
	"xsslab/internal/dvwa"
	"xsslab/internal/explain"
	"xsslab/internal/logger"
	"xsslab/internal/payloads"
	"xsslab/internal/target"
)

// ErrStopped signals that the operator declined a mid-scenario go/no-go.
// The scenario reports "not run" and makes no further network calls.
var ErrStopped = errors.New("module stopped by user")

// Outcome is what a scenario reports back to the orchestrator.
type Outcome struct {
	Name              string
	Attempted         []payloads.Attempt
	Ran               bool
	Succeeded         bool
	FirstSuccessIndex int // -1 when no payload succeeded
}

// Scenario parameterizes the shared runner. Attempt dispatches one payload
// and reports whether the classifier deemed it successful.
type Scenario struct {
	Name          string
	Intro         func(r *Runner)
	IntroPrompt   string
	Baseline      func(r *Runner) error
	Payloads      []payloads.Attempt
	PayloadPrompt string // empty disables per-payload confirmation
	Attempt       func(r *Runner, p payloads.Attempt) bool
	OnSuccess     func(r *Runner)

	// Unconditional marks a scenario whose success is completing the
	// explanatory sequence rather than a classifier verdict (DOM).
	Unconditional bool
}

// Runner carries the collaborators every scenario needs plus the shared
// step counter.
type Runner struct {
	Dispatcher  *dispatch.Dispatcher
	Auth        *dvwa.Authenticator
	Target      *target.Descriptor
	Log         *logger.Logger
	Prompter    Prompter
	Interactive bool

	step int
}

// Step emits the next numbered walkthrough step.
func (r *Runner) Step(title, description string) {
	r.step++
	r.Log.Step(r.step, title, description)
}

// Approve asks the operator for a go/no-go. In non-interactive mode every
// prompt is auto-approved.
func (r *Runner) Approve(prompt string) bool {
	if !r.Interactive {
		return true
	}
	approved := r.Prompter.Approve(prompt)
	r.Log.Info("User response to %q: approved=%t", prompt, approved)
	return approved
}

// Run executes the scenario's step sequence. A declined go/no-go terminates
// the module with Ran=false and no further network calls. Payload iteration
// stops at the first success; later payloads are never attempted.
func (r *Runner) Run(ctx context.Context, sc Scenario) Outcome {
	outcome := Outcome{Name: sc.Name, FirstSuccessIndex: -1}
	r.step = 0

	if sc.Intro != nil {
		sc.Intro(r)
	}

	if sc.IntroPrompt != "" && !r.Approve(sc.IntroPrompt) {
		r.Log.Narrative("Module stopped by user.")
		return outcome
	}
	outcome.Ran = true

	if err := sc.Baseline(r); err != nil {
		if errors.Is(err, ErrStopped) {
			r.Log.Narrative("Module stopped by user.")
			outcome.Ran = false
			return outcome
		}
		r.Log.ExplainFailure(err.Error(),
			"The baseline request to the target page failed. This could be due to:\n"+
				"  - DVWA not running\n"+
				"  - Incorrect URL\n"+
				"  - Network connectivity issues",
			"Verify DVWA is running and accessible")
		return outcome
	}

	for _, p := range sc.Payloads {
		if ctx.Err() != nil {
			r.Log.Info("Scenario %s interrupted", sc.Name)
			return outcome
		}

		r.Step(fmt.Sprintf("%s Attempt %d", sc.Name, p.Index+1),
			"Let's try injecting malicious JavaScript using this payload:")
		r.Log.Payload(p.Payload, explain.ForKey(p.Key))

		if sc.PayloadPrompt != "" && !r.Approve(sc.PayloadPrompt) {
			r.Log.Narrative("Payload skipped by user.\n")
			continue
		}

		outcome.Attempted = append(outcome.Attempted, p)
		if sc.Attempt(r, p) {
			outcome.Succeeded = true
			outcome.FirstSuccessIndex = p.Index
			break
		}
	}

	if sc.Unconditional && ctx.Err() == nil {
		outcome.Succeeded = true
	}

	if outcome.Succeeded && sc.OnSuccess != nil {
		sc.OnSuccess(r)
	}

	return outcome
}

// CurlExamples logs curl reproduction strings for a request, both direct and
// through a local intercepting proxy.
func (r *Runner) CurlExamples(method, rawURL string, params, data url.Values, includeCookies bool) {
	cookieFragment := ""
	if includeCookies {
		cookieFragment = r.cookieFragment(rawURL)
	}
	direct := buildCurl(method, rawURL, params, data, cookieFragment, false)
	proxied := buildCurl(method, rawURL, params, data, cookieFragment, true)
	r.Log.Narrative("Reproduce this request via curl:\n  direct : %s\n  via Burp: %s\n", direct, proxied)
}

// HTTPEvidence prints the status, sampled headers, and a body excerpt with
// the payload highlighted.
func (r *Runner) HTTPEvidence(resp *dispatch.Response, payload, note string) {
	if resp == nil {
		return
	}
	snippet, hint := PayloadSnippet(resp.Body, payload)

	var headerLines []string
	for _, name := range []string{"Content-Type", "Server", "Date"} {
		if value := resp.Header.Get(name); value != "" {
			headerLines = append(headerLines, fmt.Sprintf("  %s: %s", name, value))
		}
	}
	headerText := strings.Join(headerLines, "\n")
	if headerText == "" {
		headerText = "  (no headers sampled)"
	}

	r.Log.Narrative("HTTP evidence (%s):\n  Status: %d\n%s\n  Body excerpt (%s):\n%s\n",
		note, resp.StatusCode, headerText, hint, indent(snippet, "    "))
}

// PayloadSnippet returns a body excerpt around the payload, wrapped in
// <<PAYLOAD>> markers, or the leading bytes when the payload is absent.
func PayloadSnippet(body, payload string) (snippet, hint string) {
	const radius = 160
	index := strings.Index(body, payload)
	if index == -1 {
		snippet = body
		if len(snippet) > radius {
			snippet = snippet[:radius]
		}
		if snippet == "" {
			snippet = "(empty response body)"
		}
		return strings.TrimSpace(snippet), "payload not present; showing leading bytes"
	}

	start := index - radius/2
	if start < 0 {
		start = 0
	}
	end := index + len(payload) + radius/2
	if end > len(body) {
		end = len(body)
	}
	excerpt := strings.ReplaceAll(body[start:end], payload, "<<PAYLOAD>>"+payload+"<<PAYLOAD>>")
	return strings.TrimSpace(excerpt), "payload highlighted with <<PAYLOAD>> markers"
}

func (r *Runner) cookieFragment(rawURL string) string {
	var pairs []string
	for _, name := range []string{"PHPSESSID", "security"} {
		if value := r.Auth.Session().Cookie(rawURL, name); value != "" {
			pairs = append(pairs, name+"="+value)
		}
	}
	if len(pairs) == 0 {
		pairs = append(pairs, "PHPSESSID=<copy-from-browser>")
	}
	return strings.Join(pairs, "; ")
}

func buildCurl(method, rawURL string, params, data url.Values, cookieFragment string, useProxy bool) string {
	parts := []string{"curl", "-sS"}
	if useProxy {
		parts = append(parts, "--proxy", "http://127.0.0.1:8080")
	}
	if cookieFragment != "" {
		parts = append(parts, "--cookie", shQuote(cookieFragment))
	}

	if strings.EqualFold(method, "GET") {
		parts = append(parts, "-G", shQuote(rawURL))
		for _, key := range sortedKeys(params) {
			value := strings.ReplaceAll(params.Get(key), "\n", "\\n")
			parts = append(parts, "--data-urlencode", shQuote(key+"="+value))
		}
	} else {
		parts = append(parts, "-X", strings.ToUpper(method), shQuote(rawURL))
		for _, key := range sortedKeys(data) {
			value := strings.ReplaceAll(data.Get(key), "\n", "\\n")
			parts = append(parts, "-d", shQuote(key+"="+value))
		}
	}

	return strings.Join(parts, " ")
}

func sortedKeys(values url.Values) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// shQuote single-quotes a string for POSIX shells.
func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
