package observability

import (
	"net/url"
	"regexp"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

var (
	passwordPattern = regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+[^\s&]+`)
	tokenPattern    = regexp.MustCompile(`(?i)(token|jwt|bearer|session)[\s:=]+[^\s&]+`)
	secretPattern   = regexp.MustCompile(`(?i)(secret|api[_-]?key|private[_-]?key)[\s:=]+[^\s&]+`)
)

var sensitiveKeys = []string{
	"password", "passwd", "pwd",
	"token", "jwt", "bearer", "session",
	"secret", "api_key", "apikey", "api-key",
	"private_key", "private-key",
}

// RedactMessage masks credential-looking key/value pairs in free text.
func RedactMessage(message string) string {
	message = passwordPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = tokenPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = secretPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	return message
}

// RedactURI masks the values of sensitive query parameters. The path is
// left untouched.
func RedactURI(uri string) string {
	u, err := url.ParseRequestURI(uri)
	if err != nil {
		return RedactMessage(uri)
	}
	if u.RawQuery == "" {
		return uri
	}

	query := u.Query()
	changed := false
	for key := range query {
		if isSensitiveKey(key) {
			query[key] = []string{redactedPlaceholder}
			changed = true
		}
	}
	if !changed {
		return uri
	}

	u.RawQuery = query.Encode()
	return u.String()
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
