package httpclient

import (
	"crypto/tls"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"xsslab/internal/logger"
)

// Client wraps http.Client with the session state for one target: cookie jar,
// User-Agent, and a fixed per-request timeout. The authenticator owns the
// session; the dispatcher only reads it. No retries are performed anywhere: a
// failed request is reported once and the calling step decides what to do.
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	userAgent  string
}

// ClientOptions holds configuration parameters for initializing the Client.
type ClientOptions struct {
	Timeout            time.Duration // Timeout for HTTP requests.
	InsecureSkipVerify bool          // Whether to skip TLS certificate verification.
	UserAgent          string        // Custom User-Agent string.
}

// NewClient creates and returns a new session client with specified options.
func NewClient(log *logger.Logger, opts ClientOptions) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = "xsslab/1.0"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	// Cookie jar holds the PHPSESSID and security cookies for the whole run.
	jar, _ := cookiejar.New(nil)
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify},
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			Jar:       jar,
		},
		logger:    log,
		userAgent: opts.UserAgent,
	}

	client.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			log.Warn("Exceeded maximum redirects (10).")
			return http.ErrUseLastResponse
		}
		return nil
	}
	return client
}

// Do performs an HTTP request with the session's User-Agent and cookies.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Trace("Sending request: %s %s", req.Method, req.URL.String())
	if cookies := c.httpClient.Jar.Cookies(req.URL); len(cookies) > 0 {
		var cookieStrings []string
		for _, cookie := range cookies {
			cookieStrings = append(cookieStrings, cookie.Name+"="+cookie.Value)
		}
		c.logger.Trace("  -> Cookies from Jar to be sent: %s", strings.Join(cookieStrings, "; "))
	}

	return c.httpClient.Do(req)
}

// Get performs an HTTP GET request using the session client.
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// PostForm performs an HTTP POST of URL-encoded form fields.
func (c *Client) PostForm(url string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequest("POST", url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

// UserAgent returns the session's configured User-Agent string.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Cookie returns the value of a named cookie scoped to the given URL, or ""
// when absent. Used for curl reproduction strings.
func (c *Client) Cookie(rawURL, name string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(u) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}
