package debug

import (
	"net/http"
	"net/http/httputil"
	"regexp"
)

// botTokenPattern matches the token segment of Bot API request paths, which
// look like /bot123456:ABC-DEF/sendDocument.
var botTokenPattern = regexp.MustCompile(`/bot[^/]+/`)

// redactToken replaces the bot token in a dumped request with a placeholder.
func redactToken(dump []byte) []byte {
	return botTokenPattern.ReplaceAll(dump, []byte("/bot**redacted**/"))
}

type loggingRoundTripper struct {
	http.RoundTripper
}

// RoundTripper returns a new http.RoundTripper which logs all requests (if
// debug is enabled). When debug is not enabled, upstream is returned.
func RoundTripper(upstream http.RoundTripper) http.RoundTripper {
	if !opts.isEnabled {
		return upstream
	}
	return loggingRoundTripper{upstream}
}

func (tr loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	trace, err := httputil.DumpRequestOut(req, false)
	if err != nil {
		Log("DumpRequestOut() error: %v", err)
	} else {
		Log("------------  HTTP REQUEST -----------\n%s", redactToken(trace))
	}

	res, err := tr.RoundTripper.RoundTrip(req)
	if err != nil {
		Log("RoundTrip() returned error: %v", err)
		return res, err
	}

	trace, derr := httputil.DumpResponse(res, false)
	if derr != nil {
		Log("DumpResponse() error: %v", derr)
	} else {
		Log("------------  HTTP RESPONSE ----------\n%s", trace)
	}

	return res, nil
}
