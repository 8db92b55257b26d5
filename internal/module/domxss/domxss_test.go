package domxss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xsslab/internal/dispatch"
	"xsslab/internal/httpclient"
	"xsslab/internal/logger"
	"xsslab/internal/module"
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

func TestRun_CompletesWithSingleFetch(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/vulnerabilities/xss_d/", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Empty(t, r.URL.Query().Get("default"), "exploit URLs must never be dispatched")
		fmt.Fprint(w, `<html><body><select name="default"><option value="English">English</option></select></body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	outcome := New(newRunner(t, server)).Run(context.Background())

	assert.True(t, outcome.Ran)
	assert.True(t, outcome.Succeeded, "completing the sequence counts as success")
	assert.Equal(t, -1, outcome.FirstSuccessIndex)
	assert.Empty(t, outcome.Attempted)
	assert.Equal(t, int32(1), requests.Load(), "only the reachability fetch touches the network")
}

func TestRun_UnreachablePageFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	outcome := New(newRunner(t, server)).Run(context.Background())

	assert.True(t, outcome.Ran)
	assert.False(t, outcome.Succeeded)
}
