// Package explain holds the static educational text shown during the
// walkthrough. The modules reference blocks by key so payload lists can stay
// plain value records.
package explain

// Intro blocks, one per XSS class.
const (
	ReflectedIntro = `
[REFLECTED XSS]

Reflected XSS occurs when an application receives data in an HTTP request and
includes that data in the immediate response in an unsafe way.

How it works:
1. Attacker crafts a malicious URL containing JavaScript
2. Victim clicks the link (sent via email, social media, etc.)
3. Server reflects the malicious script back in the response
4. Victim's browser executes the script

Example vulnerable code:
    echo "You searched for: " . $_GET['search'];

If search="<script>alert(1)</script>", the script executes immediately.`

	StoredIntro = `
[STORED XSS]

Stored XSS (Persistent XSS) occurs when malicious script is stored on the
target server (in a database, message forum, comment field, etc.) and then
displayed to other users without proper sanitization.

How it works:
1. Attacker submits malicious script via input field (comment, profile, etc.)
2. Application stores the script in the database
3. When other users view the page, the script is retrieved and executed
4. Every visitor to that page becomes a victim

This is often more dangerous than reflected XSS because:
- No user interaction required (beyond viewing the page)
- Affects multiple users automatically
- Persists until removed from storage`

	DOMIntro = `
[DOM-BASED XSS]

DOM-based XSS is a vulnerability where the attack payload is executed as a
result of modifying the DOM environment in the victim's browser. The server
response does not change, but the client-side code behaves unsafely.

How it works:
1. JavaScript reads from a controllable source (URL, window.location, etc.)
2. Data is written to a dangerous sink (innerHTML, eval, document.write, etc.)
3. If input contains executable code, it runs in the security context of the page

Key difference: The payload never goes to the server!
- Traditional XSS: Client -> Server -> Client (reflected/stored)
- DOM XSS: URL -> Client JavaScript -> DOM (never touches server)`
)

// Impact blocks.
const (
	ReflectedImpact = `
Impact of Reflected XSS:
- Session hijacking (stealing cookies/tokens)
- Credential theft (fake login forms)
- Defacement of web pages
- Redirection to malicious sites
- Keylogging and form grabbing`

	StoredImpact = `
Impact of Stored XSS:
- Mass credential harvesting
- Worm-like propagation (self-replicating XSS)
- Persistent backdoors
- Data exfiltration from all viewers
- Account takeover of multiple users`

	DOMSourcesSinks = `
Common DOM XSS sources (attacker-controllable):
- window.location (href, search, hash, pathname)
- document.URL
- document.referrer
- window.name
- postMessage events

Common DOM XSS sinks (dangerous operations):
- innerHTML, outerHTML
- document.write(), document.writeln()
- eval(), setTimeout(), setInterval() with string arguments
- element.setAttribute()
- jQuery functions: html(), append(), etc.`
)

// Prevention blocks, emitted after a successful demonstration.
const (
	ReflectedPrevention = `
Reflected XSS remediation checklist:
1. Apply context-aware output encoding (HTML body, attribute, JavaScript, URL)
   using battle-tested libraries or framework auto-escaping.
2. Normalize and strictly validate reflected parameters before rendering.
3. Render responses through templating systems that auto-escape by default
   rather than concatenating strings manually.
4. When placing data inside attributes, encode quotes and close the attribute
   before injecting user data.
5. Enforce a modern Content Security Policy to block inline JavaScript even if
   a reflection bug slips back in.
6. Set cookies with HttpOnly, Secure, and appropriate SameSite attributes.
7. Add automated tests that fail builds when an output lacks escaping helpers.`

	StoredPrevention = `
Prevention for Stored XSS:
- Encode output on retrieval (not just on storage)
- Store data in its original form, encode on display
- Use parameterized queries to prevent SQL injection
- Implement strong Content Security Policy
- Regular security audits of stored content`

	DOMPrevention = `
Prevention for DOM-based XSS:
- Avoid writing user-controllable data to dangerous sinks
- Use safe alternatives:
  * textContent instead of innerHTML
  * setAttribute() with validation
  * Avoid eval() entirely
- Encode data based on where it's being placed
- Use framework security features (React escaping, Angular sanitization)
- Implement strong CSP that blocks inline scripts`
)

// payloadExplanations maps explanation keys referenced by payload lists to
// their narrative text.
var payloadExplanations = map[string]string{
	"PAYLOAD_BASIC_ALERT": `
Payload: <script>alert(1)</script>

This is the simplest XSS payload. It:
- Opens an alert box to prove JavaScript execution is possible
- Is often blocked by basic filters looking for <script> tags

If alert(1) works, an attacker could run ANY JavaScript code:
- Steal cookies: document.cookie
- Make requests: fetch('/admin/delete', ...)
- Modify the page: document.body.innerHTML = ...`,

	"PAYLOAD_IMG_ONERROR": `
Payload: <img src=x onerror=alert(1)>

This payload uses an HTML event handler instead of <script> tags:
- <img> tag tries to load image from non-existent source "x"
- When loading fails, the onerror handler executes JavaScript

Why it's useful:
- Bypasses filters that only block <script>
- Demonstrates that ANY HTML tag with events can be dangerous`,

	"PAYLOAD_SVG_ONLOAD": `
Payload: <svg/onload=alert(1)>

This payload leverages SVG (Scalable Vector Graphics) tags:
- SVG is a valid HTML5 element
- The onload event fires when the SVG element loads

Why it's useful:
- Often missed by basic XSS filters
- Works without spaces (svg/onload vs svg onload)`,
}

// ForKey returns the explanation text for a payload key, or "" when unknown.
func ForKey(key string) string {
	return payloadExplanations[key]
}
