package target

import (
	"fmt"
	"io"

	"xsslab/internal/httpclient"
	"xsslab/internal/logger"
)

// Preflight runs the checks required before any attack traffic is allowed:
// the safety gate and one reachability GET against the base URL. It returns
// an error describing the first failed check. The safety gate runs first so
// an unsafe, unconfirmed target never receives a single request.
func Preflight(d *Descriptor, client *httpclient.Client, log *logger.Logger) error {
	log.Info("Starting preflight checks")

	if !d.IsSafe() {
		return fmt.Errorf(
			"target %s is not recognized as a safe lab environment.\n"+
				"Only localhost, 127.0.0.1, and private IPs are allowed by default.\n"+
				"If this is truly a lab environment, use the -confirm-target flag", d.Host)
	}
	log.Info("Target passes safety validation")

	resp, err := client.Get(d.BaseURL())
	if err != nil {
		return fmt.Errorf("target unreachable: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != 200 {
		return fmt.Errorf("target unreachable: HTTP %d", resp.StatusCode)
	}
	log.Info("Target is reachable")

	return nil
}
