package client

import (
	"net/http"
	"net/http/httputil"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// debugTransport logs every request and response through the global zerolog
// logger at debug level.
//
// Enable with HEM_DEBUG=true, DEBUG=true, or WithDebugLogging(true). Dumps
// contain the X-User-ID and X-Admin-Key headers, so keep this out of
// production. Audio bodies are not dumped.
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	withBody := !isMultipart(req.Header.Get("Content-Type"))
	if reqDump, err := httputil.DumpRequestOut(req, withBody); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	withBody = !isAudio(resp.Header.Get("Content-Type"))
	if respDump, err := httputil.DumpResponse(resp, withBody); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

func isMultipart(ct string) bool { return strings.HasPrefix(ct, "multipart/") }

func isAudio(ct string) bool { return strings.HasPrefix(ct, "audio/") }

// debugLoggingRequested reports whether HEM_DEBUG or DEBUG is set to "true".
func debugLoggingRequested() bool {
	return os.Getenv("HEM_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
