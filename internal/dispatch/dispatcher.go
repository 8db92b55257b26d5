package dispatch

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"xsslab/internal/httpclient"
	"xsslab/internal/logger"
	"xsslab/internal/recorder"
)

// Response is the dispatcher's view of an HTTP exchange: the body is fully
// read and the final URL reflects any redirects that were followed.
type Response struct {
	StatusCode int
	Body       string
	FinalURL   string
	Header     http.Header
}

// Variant classifies how a payload appears in a response body.
type Variant int

const (
	VariantNone       Variant = iota // payload absent entirely
	VariantExact                     // payload verbatim, unencoded
	VariantHTMLEntity               // < and > replaced with &lt; and &gt;
	VariantURLEncoded               // < and > replaced with %3C and %3E
)

// Dispatcher performs GET/POST calls over the authenticated session with
// uniform logging and raw-wire capture. Transport failures are converted to a
// nil response plus an error-level log entry; callers never see them.
type Dispatcher struct {
	client   *httpclient.Client
	logger   *logger.Logger
	recorder *recorder.Recorder
}

// New creates a Dispatcher over an authenticated session. rec may be nil to
// disable raw request capture.
func New(client *httpclient.Client, log *logger.Logger, rec *recorder.Recorder) *Dispatcher {
	return &Dispatcher{client: client, logger: log, recorder: rec}
}

// Get performs a GET with optional query parameters appended to rawURL.
func (d *Dispatcher) Get(rawURL string, query url.Values) *Response {
	fullURL := rawURL
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		fullURL = rawURL + sep + query.Encode()
	}

	req, err := http.NewRequest("GET", fullURL, nil)
	if err != nil {
		d.logger.Error("GET request build failed: %v", err)
		return nil
	}
	return d.send(req, flatten(query), "")
}

// Post performs a form-encoded POST.
func (d *Dispatcher) Post(rawURL string, form url.Values) *Response {
	body := form.Encode()
	req, err := http.NewRequest("POST", rawURL, strings.NewReader(body))
	if err != nil {
		d.logger.Error("POST request build failed: %v", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return d.send(req, flatten(form), body)
}

func (d *Dispatcher) send(req *http.Request, fields map[string]string, rawBody string) *Response {
	d.logger.HTTPRequest(req.Method, req.URL.String(), fields)
	if d.recorder != nil {
		d.recorder.Record(req, rawBody)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Error("%s request failed: %v", req.Method, err)
		return nil
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		d.logger.Error("Failed to read response body: %v", err)
		return nil
	}

	body := string(bodyBytes)
	d.logger.HTTPResponse(resp.StatusCode, body)

	finalURL := req.URL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		FinalURL:   finalURL,
		Header:     resp.Header,
	}
}

// Classify reports how the payload appears in the body. Only two encoding
// schemes are recognized (HTML-entity and percent-encoding); anything else
// counts as absent. That precision gap matches the tool's documented
// behavior and is kept as-is.
func Classify(body, payload string) Variant {
	if strings.Contains(body, payload) {
		return VariantExact
	}
	entity := strings.ReplaceAll(strings.ReplaceAll(payload, "<", "&lt;"), ">", "&gt;")
	if entity != payload && strings.Contains(body, entity) {
		return VariantHTMLEntity
	}
	percent := strings.ReplaceAll(strings.ReplaceAll(payload, "<", "%3C"), ">", "%3E")
	if percent != payload && strings.Contains(body, percent) {
		return VariantURLEncoded
	}
	return VariantNone
}

// CheckReflection reports whether the payload appears unencoded in the
// response body. An encoded or absent payload is not exploitable.
func (d *Dispatcher) CheckReflection(resp *Response, payload string) bool {
	if resp == nil {
		return false
	}
	switch Classify(resp.Body, payload) {
	case VariantExact:
		d.logger.Info("Payload appears unencoded in response")
		return true
	case VariantHTMLEntity, VariantURLEncoded:
		d.logger.Info("Payload appears encoded in response")
		return false
	default:
		d.logger.Info("Payload not found in response")
		return false
	}
}

// ExtractText returns the visible text of the response body, optionally
// scoped by a CSS selector. Malformed or nil input yields "".
func (d *Dispatcher) ExtractText(resp *Response, selector string) string {
	if resp == nil {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		d.logger.Error("Error extracting text: %v", err)
		return ""
	}
	if selector != "" {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return ""
		}
		return strings.TrimSpace(sel.Text())
	}
	return doc.Text()
}

// FindFormInputs enumerates named form fields and their declared types from
// the response body. Textareas report type "textarea". Never returns an error.
func (d *Dispatcher) FindFormInputs(resp *Response) map[string]string {
	inputs := make(map[string]string)
	if resp == nil {
		return inputs
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		d.logger.Error("Error extracting form inputs: %v", err)
		return inputs
	}
	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		name, exists := s.Attr("name")
		if !exists || name == "" {
			return
		}
		inputType, ok := s.Attr("type")
		if !ok || inputType == "" {
			inputType = "text"
		}
		inputs[name] = inputType
	})
	doc.Find("textarea").Each(func(_ int, s *goquery.Selection) {
		if name, exists := s.Attr("name"); exists && name != "" {
			inputs[name] = "textarea"
		}
	})
	return inputs
}

func flatten(values url.Values) map[string]string {
	if len(values) == 0 {
		return nil
	}
	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	return fields
}
