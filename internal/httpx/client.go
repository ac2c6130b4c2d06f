package httpx

import (
	"net/http"
	"time"
)

const defaultExternalHTTPTimeout = 90 * time.Second

// NewExternalClient returns the client used for calls to external APIs
// (Slack). A non-positive timeout falls back to the default.
func NewExternalClient(timeoutSeconds int) (*http.Client, time.Duration) {
	timeout := defaultExternalHTTPTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return &http.Client{Timeout: timeout}, timeout
}
