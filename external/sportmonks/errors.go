package sportmonks

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errTransient = crerr.New("sportmonks transient failure")

// TransportError reports retry exhaustion on network errors, 429s and
// 5xx responses. Callers treat it as fatal for the current request.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError reports a non-retryable non-2xx response.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider status=%d body=%s", e.Status, e.Body)
}

// MappingError reports a raw record whose shape could not be mapped.
// The caller skips the record and continues with its page siblings.
type MappingError struct {
	Kind string
	Err  error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map %s: %v", e.Kind, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

func newMappingError(kind, format string, args ...any) *MappingError {
	return &MappingError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	value = apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
	return value
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
