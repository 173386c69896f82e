// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors explains model API and network failures to the user.
package httperrors

import (
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Kind classifies a failed model API call.
type Kind int

const (
	Generic Kind = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
	Unauthorized
	RateLimited
	BadRequest
	Server
)

// statusCoder is implemented by errors carrying an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Classify inspects err and its chain.
func Classify(err error) Kind {
	if err == nil {
		return Generic
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		switch code := sc.StatusCode(); {
		case code == 401 || code == 403:
			return Unauthorized
		case code == 429:
			return RateLimited
		case code >= 500:
			return Server
		case code >= 400:
			return BadRequest
		}
	}

	switch {
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isSSLError(err):
		return TLS
	}
	return Generic
}

// FormatModelError writes a troubleshooting note for err to w. host names the
// API endpoint and action describes what was being done ("extracting a.txt").
func FormatModelError(w io.Writer, err error, host, action string) {
	if err == nil {
		return
	}
	kind := Classify(err)
	title, hints := describe(kind, host)

	pterm.Fprintln(w, pterm.Sprintf("%s while %s", title, action))
	pterm.Fprintln(w)
	for _, h := range hints {
		pterm.Fprintln(w, "  • "+h)
	}
	pterm.Fprintln(w)

	if kind == Generic || kind == BadRequest {
		details := err.Error()
		if len(details) > 200 {
			details = details[:200] + "..."
		}
		pterm.Fprintln(w, pterm.Gray("Details: "+details))
		pterm.Fprintln(w)
	}
}

func describe(kind Kind, host string) (string, []string) {
	switch kind {
	case Timeout:
		return "Model request timed out", []string{
			"Long inputs can take minutes; raise openai.timeout in the config",
			"Check whether " + host + " is reachable from this network",
		}
	case DNS:
		return "Cannot resolve " + host, []string{
			"Check your network connection and DNS settings",
			"Check OPENAI_BASE_URL if you use a custom endpoint",
		}
	case ConnectionRefused:
		return "Connection refused by " + host, []string{
			"The endpoint is down or the port is wrong",
			"Check OPENAI_BASE_URL if you use a custom endpoint",
		}
	case TLS:
		return "Secure connection to " + host + " failed", []string{
			"A proxy may be intercepting HTTPS",
			"Check the system date and time",
		}
	case Unauthorized:
		return "The model API rejected the API key", []string{
			"Set OPENAI_API_KEY or run 'dawgtools login'",
			"Check that the key has access to the requested model",
		}
	case RateLimited:
		return "The model API is rate limiting requests", []string{
			"Wait and rerun; cached files are not requested again",
			"Lower openai.requests_per_minute in the config",
		}
	case BadRequest:
		return "The model API refused the request", []string{
			"Check the model name (-m)",
			"Check that the schema is a valid function tool definition",
		}
	case Server:
		return "The model API returned a server error", []string{
			"This is not a problem with your setup",
			"Rerun later; cached files are not requested again",
		}
	}
	return "Model request failed", []string{
		"Check your network connection",
		"Check whether " + host + " is accessible",
	}
}

func isTimeoutError(err error) bool {
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "tls") ||
		strings.Contains(lower, "x509") ||
		strings.Contains(lower, "certificate") ||
		strings.Contains(lower, "handshake")
}

// ExtractHostFromURL returns the host of urlStr, or "the model API" when it
// has none.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "the model API"
	}
	return u.Host
}
