// Package dvwa manages authentication and session state against a DVWA
// (Damn Vulnerable Web Application) instance: login, CSRF token handling,
// and security-level detection/change.
package dvwa

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"xsslab/internal/httpclient"
	"xsslab/internal/logger"
	"xsslab/internal/target"
)

// CSRFFieldName is the hidden form field DVWA uses for its anti-forgery token.
const CSRFFieldName = "user_token"

// SecurityLevels are the values DVWA accepts on security.php.
var SecurityLevels = []string{"low", "medium", "high", "impossible"}

var (
	versionRe = regexp.MustCompile(`v([\d.]+)`)
	levelRe   = regexp.MustCompile(`(?i)Security Level is currently: (\w+)`)
)

// Authenticator owns the HTTP session for one target. It is the only
// component allowed to mutate session state; everything else reads the
// session through the client handle it exposes. Once authenticated it never
// transitions back: session lifetime equals process lifetime.
type Authenticator struct {
	target *target.Descriptor
	client *httpclient.Client
	logger *logger.Logger

	securityLevel string
	loggedIn      bool
}

// NewAuthenticator creates an Authenticator bound to the given target. The
// client's cookie jar becomes the session store.
func NewAuthenticator(tgt *target.Descriptor, client *httpclient.Client, log *logger.Logger) *Authenticator {
	return &Authenticator{target: tgt, client: client, logger: log}
}

// VerifyPresence checks that the target actually serves DVWA. It fails closed
// on any transport error or non-200 status, returning the reason. On success
// it best-effort extracts a version token, defaulting to "unknown".
func (a *Authenticator) VerifyPresence() (bool, string) {
	a.logger.Info("Verifying DVWA presence")

	body, status, err := a.fetch(a.target.ResolvePath("login.php"))
	if err != nil {
		return false, err.Error()
	}
	if status != 200 {
		return false, fmt.Sprintf("HTTP %d", status)
	}

	if !strings.Contains(body, "Damn Vulnerable Web Application") && !strings.Contains(body, "DVWA") {
		return false, "DVWA markers not found in response"
	}

	version := "unknown"
	if m := versionRe.FindStringSubmatch(body); m != nil {
		version = m[1]
	}
	a.logger.Info("DVWA detected (version: %s)", version)
	return true, version
}

// Login authenticates against login.php. It fetches the login page for a CSRF
// token (omitted from the POST when absent), submits credentials, and
// declares success iff the final URL is no longer the login page and the
// status is 200. Transport errors are swallowed into a false result.
func (a *Authenticator) Login(username, password string) bool {
	a.logger.Info("Attempting DVWA login as %s", username)

	loginURL := a.target.ResolvePath("login.php")
	a.logger.Debug("Fetching login page: %s", loginURL)

	body, status, err := a.fetch(loginURL)
	if err != nil {
		a.logger.Error("Login request failed: %v", err)
		return false
	}
	if status != 200 {
		a.logger.Error("Failed to fetch login page: %d", status)
		return false
	}

	form := url.Values{
		"username": {username},
		"password": {password},
		"Login":    {"Login"},
	}
	if token := ExtractCSRFToken(body); token != "" {
		form.Set(CSRFFieldName, token)
		a.logger.Debug("Using CSRF token: %s...", prefix(token, 10))
	}

	a.logger.Debug("Submitting login credentials")
	resp, err := a.client.PostForm(loginURL, form)
	if err != nil {
		a.logger.Error("Login request failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	finalURL := loginURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if !strings.Contains(finalURL, "login.php") && resp.StatusCode == 200 {
		a.loggedIn = true
		a.logger.Info("Login successful")
		a.logger.Narrative("\n[+] Successfully authenticated with DVWA")
		return true
	}

	a.logger.Error("Login failed - still on login page")
	return false
}

// IsAuthenticated reports whether Login has succeeded.
func (a *Authenticator) IsAuthenticated() bool {
	return a.loggedIn
}

// Session returns the client holding the authenticated cookies. The caller
// may read through it but must not alter session state.
func (a *Authenticator) Session() *httpclient.Client {
	return a.client
}

// DetectSecurityLevel reads the current level from security.php: first the
// selected option of the level dropdown, then a regex fallback over the page
// text. When unauthenticated it returns ("", false) without a network call.
func (a *Authenticator) DetectSecurityLevel() (string, bool) {
	if !a.loggedIn {
		a.logger.Warn("Cannot detect security level - not logged in")
		return "", false
	}

	body, status, err := a.fetch(a.target.ResolvePath("security.php"))
	if err != nil {
		a.logger.Error("Error detecting security level: %v", err)
		return "", false
	}
	if status != 200 {
		a.logger.Error("Failed to fetch security page: %d", status)
		return "", false
	}

	if doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(body)); docErr == nil {
		selected := doc.Find("option[selected]").First()
		if value, ok := selected.Attr("value"); ok && value != "" {
			level := strings.ToLower(value)
			a.securityLevel = level
			a.logger.Info("Detected security level: %s", level)
			return level, true
		}
	}

	if m := levelRe.FindStringSubmatch(body); m != nil {
		level := strings.ToLower(m[1])
		a.securityLevel = level
		a.logger.Info("Detected security level: %s", level)
		return level, true
	}

	a.logger.Warn("Could not determine security level")
	return "", false
}

// SetSecurityLevel changes the DVWA security level. Invalid levels are
// rejected without a network call. Success means only that the POST returned
// 200; the server-side effect is not re-verified.
func (a *Authenticator) SetSecurityLevel(level string) bool {
	if !a.loggedIn {
		a.logger.Warn("Cannot set security level - not logged in")
		return false
	}

	level = strings.ToLower(level)
	if !validLevel(level) {
		a.logger.Error("Invalid security level: %s", level)
		return false
	}

	securityURL := a.target.ResolvePath("security.php")

	form := url.Values{
		"security":      {level},
		"seclev_submit": {"Submit"},
	}
	if token := a.TokenForURL(securityURL); token != "" {
		form.Set(CSRFFieldName, token)
	}

	a.logger.Info("Setting security level to: %s", level)
	resp, err := a.client.PostForm(securityURL, form)
	if err != nil {
		a.logger.Error("Error setting security level: %v", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != 200 {
		a.logger.Error("Failed to set security level: %d", resp.StatusCode)
		return false
	}

	a.securityLevel = level
	a.logger.Info("Security level updated")
	a.logger.Narrative("\n[+] DVWA security level set to: %s", level)
	return true
}

// SecurityLevel returns the last detected or set level, or "" when unknown.
func (a *Authenticator) SecurityLevel() string {
	return a.securityLevel
}

// TokenForURL fetches a page and extracts a fresh CSRF token from it.
// Transport errors are logged and collapse to "".
func (a *Authenticator) TokenForURL(rawURL string) string {
	body, status, err := a.fetch(rawURL)
	if err != nil {
		a.logger.Error("Error fetching CSRF token: %v", err)
		return ""
	}
	if status != 200 {
		return ""
	}
	return ExtractCSRFToken(body)
}

// ExtractCSRFToken finds DVWA's hidden user_token input in an HTML document
// and returns its value, or "" when absent or empty.
func ExtractCSRFToken(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	token, _ := doc.Find(`input[name="` + CSRFFieldName + `"]`).First().Attr("value")
	return token
}

func (a *Authenticator) fetch(rawURL string) (string, int, error) {
	resp, err := a.client.Get(rawURL)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(body), resp.StatusCode, nil
}

func validLevel(level string) bool {
	for _, known := range SecurityLevels {
		if level == known {
			return true
		}
	}
	return false
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
