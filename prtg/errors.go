package prtg

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/s0up4200/prtgctl/apierr"
)

// classifyResponse maps a non-2xx status to an error kind.
func classifyResponse(status int, body []byte) *apierr.Error {
	msg := serverMessage(body)
	var kind apierr.Kind
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = apierr.Authentication
		if msg == "" {
			msg = "authentication failed: check your API token"
		}
	case status == http.StatusNotFound:
		kind = apierr.NotFound
		if msg == "" {
			msg = "resource not found"
		}
	case status == http.StatusTooManyRequests:
		kind = apierr.RateLimited
		if msg == "" {
			msg = "rate limit exceeded by server"
		}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = apierr.Validation
		if msg == "" {
			msg = "request rejected by server"
		}
	default:
		kind = apierr.ServerError
		if msg == "" {
			msg = "server error"
		}
	}
	return &apierr.Error{Kind: kind, Message: msg, StatusCode: status}
}

// serverMessage extracts a short message from an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}

	s := strings.TrimSpace(string(body))
	if s == "" || strings.HasPrefix(s, "<") {
		return ""
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// classifyTransport wraps an error from http.Client.Do.
func classifyTransport(err error, baseURL string) *apierr.Error {
	switch {
	case isTLSError(err):
		return apierr.Wrap(apierr.Transport, err,
			"TLS verification failed for %s (use --no-verify-ssl for self-signed certificates)", baseURL)
	case errors.Is(err, context.Canceled):
		return apierr.Wrap(apierr.Transport, err, "request canceled")
	case isTimeoutError(err):
		return apierr.Wrap(apierr.Transport, err, "request to %s timed out", baseURL)
	}
	return apierr.Wrap(apierr.Transport, err, "cannot connect to %s", baseURL)
}

func isTLSError(err error) bool {
	var unknownAuth x509.UnknownAuthorityError
	var hostname x509.HostnameError
	var invalid x509.CertificateInvalidError
	var verify *tls.CertificateVerificationError
	if errors.As(err, &unknownAuth) || errors.As(err, &hostname) || errors.As(err, &invalid) || errors.As(err, &verify) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, keyword := range []string{"x509:", "tls:", "certificate"} {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
