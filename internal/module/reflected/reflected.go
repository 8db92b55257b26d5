// Package reflected walks through DVWA's reflected XSS page: a benign
// baseline request followed by an escalating payload sequence against the
// name query parameter.
package reflected

import (
	"context"
	"fmt"
	"net/url"

	"xsslab/internal/explain"
	"xsslab/internal/module"
	"xsslab/internal/payloads"
)

const xssReflectedPath = "vulnerabilities/xss_r/"

// baselineInput is the benign marker sent before any payload.
const baselineInput = "TestUser123"

// Module drives the reflected XSS walkthrough.
type Module struct {
	runner *module.Runner
}

// New creates the reflected module over a shared runner.
func New(r *module.Runner) *Module {
	return &Module{runner: r}
}

// Run executes the scenario and reports its outcome.
func (m *Module) Run(ctx context.Context) module.Outcome {
	return m.runner.Run(ctx, module.Scenario{
		Name:          "Reflected XSS",
		Intro:         m.intro,
		IntroPrompt:   "Proceed to examine the vulnerable page?",
		Baseline:      m.baseline,
		Payloads:      payloads.Reflected,
		PayloadPrompt: "Execute this payload?",
		Attempt:       m.attempt,
		OnSuccess: func(r *module.Runner) {
			r.Log.Section("")
			r.Log.Narrative(explain.ReflectedPrevention)
		},
	})
}

func (m *Module) intro(r *module.Runner) {
	r.Log.Section("REFLECTED XSS MODULE")
	r.Log.Narrative(explain.ReflectedIntro)
	r.Step("Understanding the Target",
		"We're going to examine DVWA's Reflected XSS page. This page takes a 'name' "+
			"parameter and displays it back to the user without proper sanitization.")
}

func (m *Module) baseline(r *module.Runner) error {
	r.Step("Testing Normal Behavior",
		"First, let's send a normal, non-malicious input to see how the page behaves.")

	pageURL := r.Target.ResolvePath(xssReflectedPath)
	resp := r.Dispatcher.Get(pageURL, url.Values{"name": {baselineInput}})
	if resp == nil {
		return fmt.Errorf("failed to reach target page")
	}

	if r.Dispatcher.CheckReflection(resp, baselineInput) {
		r.Log.Narrative("\n[+] Input '%s' was reflected in the response", baselineInput)
		r.Log.Narrative("This means the server is taking our input and including it directly in the HTML.\n" +
			"If it's not encoded properly, we can inject malicious code.")
	} else {
		r.Log.Narrative("\n[!] Expected input '%s' not found in response.\n"+
			"The page structure may have changed, or security level may be too high.", baselineInput)
	}

	m.logInjectionBreakdown(r, pageURL)

	if !r.Approve("Proceed to attempt XSS payloads?") {
		return module.ErrStopped
	}

	r.Log.Narrative(explain.ReflectedImpact)
	return nil
}

func (m *Module) attempt(r *module.Runner, p payloads.Attempt) bool {
	pageURL := r.Target.ResolvePath(xssReflectedPath)
	params := url.Values{"name": {p.Payload}}

	r.CurlExamples("GET", pageURL, params, nil, false)
	resp := r.Dispatcher.Get(pageURL, params)
	if resp == nil {
		r.Log.ExplainFailure(
			fmt.Sprintf("HTTP request failed for payload %d", p.Index+1),
			"Could not connect to target",
			"Check DVWA connectivity")
		return false
	}

	if r.Dispatcher.CheckReflection(resp, p.Payload) {
		r.Log.ExplainSuccess(
			fmt.Sprintf("Payload %d succeeded!", p.Index+1),
			fmt.Sprintf("The payload '%s' appeared unencoded in the HTML response. "+
				"This means a browser would execute it as JavaScript code.\n\n"+
				"In a real attack scenario:\n"+
				"  1. Attacker sends victim a link with this payload\n"+
				"  2. Victim clicks the link\n"+
				"  3. Server reflects the payload in response\n"+
				"  4. Victim's browser executes malicious JavaScript\n"+
				"  5. Attacker can steal cookies, credentials, or perform actions as victim", p.Payload))
		r.HTTPEvidence(resp, p.Payload, "reflected payload inside HTML body")
		return true
	}

	suggestion := ""
	if p.Index+1 < len(payloads.Reflected) {
		suggestion = "Try a different payload that may bypass the filter"
	}
	r.Log.ExplainFailure(
		fmt.Sprintf("Payload %d was blocked or encoded", p.Index+1),
		"The payload did not appear in its original form in the response. "+
			"This suggests the application is either:\n"+
			"  - Encoding special characters (< becomes &lt;)\n"+
			"  - Filtering/removing dangerous strings\n"+
			"  - Operating at a higher security level",
		suggestion)
	r.HTTPEvidence(resp, p.Payload, "encoded or blocked response sample")
	return false
}

func (m *Module) logInjectionBreakdown(r *module.Runner, pageURL string) {
	r.Log.Narrative("Injection breakdown:\n"+
		"  - Target endpoint: %s\n"+
		"  - HTTP method: GET (query string).\n"+
		"  - Parameter: `name` (reflected without encoding).\n"+
		"  - Injection surface: HTML body inside the greeting <pre> block.\n"+
		"  - Headers: untouched; only the response body is tainted.", pageURL)
}
