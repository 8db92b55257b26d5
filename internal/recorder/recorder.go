package recorder

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"xsslab/internal/logger"
)

// Recorder appends every outgoing request to a timestamped file in raw HTTP
// format so it can be replayed from Burp Suite or similar tooling. Failures
// are logged and never interrupt the walkthrough.
type Recorder struct {
	OutputPath string
	logger     *logger.Logger
}

// New creates a Recorder writing under logDir. The file is created (empty)
// immediately so its path can be reported even if nothing is captured.
func New(logDir string, log *logger.Logger) (*Recorder, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create capture directory: %w", err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(logDir, fmt.Sprintf("xsslab_burp_replay_%s.txt", stamp))
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return nil, fmt.Errorf("create capture file: %w", err)
	}
	return &Recorder{OutputPath: path, logger: log}, nil
}

// Record persists a prepared request in raw HTTP wire format. The body, if
// any, must already be readable as a form-encoded string.
func (r *Recorder) Record(req *http.Request, body string) {
	if r == nil {
		return
	}

	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	if req.URL.RawQuery != "" {
		path = path + "?" + req.URL.RawQuery
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\n", req.Method, path)

	headers := make(map[string]string, len(req.Header)+1)
	for key := range req.Header {
		headers[key] = req.Header.Get(key)
	}
	if _, ok := headers["Host"]; !ok && req.URL.Host != "" {
		headers["Host"] = req.URL.Host
	}

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %s\n", key, headers[key])
	}

	b.WriteString("\n")
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	f, err := os.OpenFile(r.OutputPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		r.logger.Warn("Failed to record request for Burp export: %v", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		r.logger.Warn("Failed to record request for Burp export: %v", err)
	}
}
