package reflected

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xsslab/internal/dispatch"
	"xsslab/internal/httpclient"
	"xsslab/internal/logger"
	"xsslab/internal/module"
	"xsslab/internal/payloads"
	"xsslab/internal/target"
)

func newRunner(t *testing.T, server *httptest.Server) *module.Runner {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	log := logger.NewConsole(logger.ERROR)
	client := httpclient.NewClient(log, httpclient.ClientOptions{})
	return &module.Runner{
		Dispatcher:  dispatch.New(client, log, nil),
		Target:      target.New(u.Hostname(), port, false),
		Log:         log,
		Interactive: false,
	}
}

// echoServer reflects the name parameter unencoded, like DVWA at low security.
func echoServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/vulnerabilities/xss_r/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body><pre>Hello %s</pre></body></html>", r.URL.Query().Get("name"))
	})
	return httptest.NewServer(mux)
}

// encodingServer entity-encodes the name parameter, like the impossible level.
func encodingServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/vulnerabilities/xss_r/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body><pre>Hello %s</pre></body></html>",
			html.EscapeString(r.URL.Query().Get("name")))
	})
	return httptest.NewServer(mux)
}

func TestRun_UnencodedReflectionSucceedsOnFirstPayload(t *testing.T) {
	server := echoServer()
	defer server.Close()

	outcome := New(newRunner(t, server)).Run(context.Background())

	assert.True(t, outcome.Ran)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, 0, outcome.FirstSuccessIndex)
	assert.Len(t, outcome.Attempted, 1, "remaining payloads must not be sent after a success")
}

func TestRun_EncodedReflectionTriesAllPayloadsAndFails(t *testing.T) {
	server := encodingServer()
	defer server.Close()

	outcome := New(newRunner(t, server)).Run(context.Background())

	assert.True(t, outcome.Ran)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, -1, outcome.FirstSuccessIndex)
	assert.Len(t, outcome.Attempted, len(payloads.Reflected))
}

func TestRun_UnreachableTarget(t *testing.T) {
	server := echoServer()
	server.Close()

	outcome := New(newRunner(t, server)).Run(context.Background())

	assert.True(t, outcome.Ran)
	assert.False(t, outcome.Succeeded)
	assert.Empty(t, outcome.Attempted)
}
