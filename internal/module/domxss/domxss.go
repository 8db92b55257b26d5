// Package domxss demonstrates DOM-based XSS against DVWA. No payload is ever
// dispatched with intent to execute client-side script: the module fetches
// the page once for reachability, constructs demonstration URLs, and narrates
// the manual verification steps. Success is uninterrupted completion of the
// explanatory sequence, not a classifier verdict.
package domxss

import (
	"context"
	"fmt"

	"xsslab/internal/explain"
	"xsslab/internal/module"
	"xsslab/internal/payloads"
)

const xssDOMPath = "vulnerabilities/xss_d/"

// Module drives the DOM XSS demonstration.
type Module struct {
	runner *module.Runner
}

// New creates the DOM module over a shared runner.
func New(r *module.Runner) *Module {
	return &Module{runner: r}
}

// Run executes the demonstration and reports its outcome.
func (m *Module) Run(ctx context.Context) module.Outcome {
	return m.runner.Run(ctx, module.Scenario{
		Name:          "DOM-Based XSS",
		Intro:         m.intro,
		IntroPrompt:   "Continue with DOM XSS demonstration?",
		Baseline:      m.baseline,
		Unconditional: true,
		OnSuccess: func(r *module.Runner) {
			m.explainManualTesting(r)
			r.Log.Section("")
			r.Log.Narrative(explain.DOMPrevention)
		},
	})
}

func (m *Module) intro(r *module.Runner) {
	r.Log.Section("DOM-BASED XSS MODULE (Demonstration)")
	r.Log.Narrative(explain.DOMIntro)
	r.Step("Understanding DOM XSS",
		"DOM-based XSS is fundamentally different from Reflected and Stored XSS.\n"+
			"The malicious payload NEVER goes to the server - it's processed entirely\n"+
			"in the client-side JavaScript.")
	r.Log.Narrative(explain.DOMSourcesSinks)
}

func (m *Module) baseline(r *module.Runner) error {
	r.Step("Analyzing DVWA's DOM XSS Page",
		"Let's fetch the page and examine the vulnerable JavaScript code.")

	pageURL := r.Target.ResolvePath(xssDOMPath)
	if resp := r.Dispatcher.Get(pageURL, nil); resp == nil {
		return fmt.Errorf("failed to fetch DOM XSS page")
	}
	r.Log.Narrative("[+] Successfully fetched DOM XSS page")

	m.explainVulnerableCode(r)

	if !r.Approve("Proceed to craft exploit URLs?") {
		return module.ErrStopped
	}

	m.demonstrateExploitURLs(r)
	return nil
}

func (m *Module) explainVulnerableCode(r *module.Runner) {
	r.Step("Identifying Vulnerable Code Pattern",
		"DVWA's DOM XSS page typically contains JavaScript similar to this:")

	r.Log.Narrative(`
// Vulnerable code example (typical DVWA pattern):
if (document.location.href.indexOf("default=") >= 0) {
    var lang = document.location.href.substring(
        document.location.href.indexOf("default=") + 8
    );
    document.write("<option value='" + lang + "'>" + lang + "</option>");
}`)

	r.Log.Narrative("What makes this vulnerable?\n\n" +
		"1. SOURCE (attacker-controlled):\n" +
		"   - document.location.href contains the full URL\n" +
		"   - Extracts value after 'default=' parameter\n\n" +
		"2. SINK (dangerous operation):\n" +
		"   - document.write() directly writes to DOM\n" +
		"   - No encoding or validation applied\n\n" +
		"3. THE VULNERABILITY:\n" +
		"   - Data flows from URL -> JavaScript -> DOM without sanitization\n" +
		"   - Server never sees or processes this data\n" +
		"   - Traditional WAF/server-side filters cannot protect against this")
}

// demonstrateExploitURLs constructs the demo URLs. They are logged, never
// dispatched.
func (m *Module) demonstrateExploitURLs(r *module.Runner) {
	r.Step("Crafting DOM XSS Exploit URLs",
		"Here are malicious URLs that would trigger DOM XSS:")

	baseURL := r.Target.ResolvePath(xssDOMPath)
	for i, exploit := range payloads.DOMExploits {
		fullURL := baseURL + "?default=" + exploit.Payload
		r.Log.Narrative("\n[Exploit %d]", i+1)
		r.Log.Narrative("Payload: %s", exploit.Payload)
		r.Log.Narrative("Explanation: %s", exploit.Explanation)
		r.Log.Narrative("Full URL:\n%s", fullURL)
		r.Log.Info("DOM XSS exploit URL %d: %s", i+1, fullURL)
	}
}

func (m *Module) explainManualTesting(r *module.Runner) {
	r.Step("Manual Testing Instructions",
		"To test DOM XSS, you need an actual browser (this tool doesn't automate browsers).")

	r.Log.Narrative("\nManual walk-through (no headless browser required):\n\n" +
		"1. Keep DVWA open in a normal browser tab and log in once.\n" +
		"2. Copy one of the exploit URLs above (the Klingon dropdown payload is a great visual demo).\n" +
		"3. Paste the URL into the address bar and press Enter.\n" +
		"4. Interact with the page manually:\n" +
		"   - Click the language dropdown and observe that 'Klingon (tlh)' now appears\n" +
		"     even though the server never offered it.\n" +
		"   - If you used an alert payload, acknowledge the alert box to continue.\n" +
		"5. Open DevTools (F12) -> Elements tab and highlight the <select> element.\n" +
		"   You will see the injected <option> even though View Source does not show it.\n" +
		"6. Reset the page by removing everything after 'default=' in the URL.\n\n" +
		"Key takeaways:\n" +
		"- The network response is identical each time; only the browser DOM changes.\n" +
		"- Manual interaction is enough to validate DOM XSS; automation is optional.")
}
