// Request headers for private media hosts, captured with a browser's "Copy as cURL".
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	headerFlag = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	cookieFlag = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
)

// RequestHeaders are extra headers sent with every remote media request.
type RequestHeaders struct {
	Headers map[string]string
	Cookie  string
}

// LoadRequestHeaders reads a saved cURL command from path.
func LoadRequestHeaders(path string) (*RequestHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read headers file: %w", err)
	}
	return ParseRequestHeaders(string(content))
}

// ParseRequestHeaders extracts -H and -b values from a cURL command.
//
// A -b cookie wins over a Cookie header.
func ParseRequestHeaders(command string) (*RequestHeaders, error) {
	command = strings.ReplaceAll(command, "\\\n", " ")
	command = strings.ReplaceAll(command, "\\", "")

	rh := &RequestHeaders{Headers: make(map[string]string)}
	var headerCookie string

	for _, m := range headerFlag.FindAllStringSubmatch(command, -1) {
		key, value, ok := strings.Cut(quoted(m), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		rh.Headers[key] = value
	}

	if m := cookieFlag.FindStringSubmatch(command); m != nil {
		rh.Cookie = quoted(m)
	} else {
		rh.Cookie = headerCookie
	}

	if len(rh.Headers) == 0 && rh.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidConfig)
	}
	return rh, nil
}

// Apply sets the headers on h, overwriting existing values.
func (rh *RequestHeaders) Apply(h http.Header) {
	if rh == nil {
		return
	}
	for key, value := range rh.Headers {
		h.Set(key, value)
	}
	if rh.Cookie != "" {
		h.Set("Cookie", rh.Cookie)
	}
}

// quoted returns whichever quote style matched.
func quoted(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}
