package diag

import (
	"net/url"
	"regexp"
	"strings"
)

const redactedMarker = "REDACTED"

var (
	tokenPattern       = regexp.MustCompile(`(?i)(token=)([^&\s"']+)`)
	botTokenPattern    = regexp.MustCompile(`(?i)(authorization:\s*bot\s+)([A-Za-z0-9\._\-]+)`)
	apiKeyPattern      = regexp.MustCompile(`(?i)(api[_-]?key=)([^&\s"']+)`)
	secretPattern      = regexp.MustCompile(`(?i)(secret=)([^&\s"']+)`)
	accessTokenPattern = regexp.MustCompile(`(?i)(access[_-]?token=)([^&\s"']+)`)
	// Incoming-webhook URLs carry their credential in the path.
	slackHookPattern   = regexp.MustCompile(`(https://hooks\.slack\.com/services/)[A-Za-z0-9/_\-]+`)
	discordHookPattern = regexp.MustCompile(`(https://(?:ptb\.|canary\.)?discord(?:app)?\.com/api/(?:v\d+/)?webhooks/)[A-Za-z0-9/_\-]+`)
)

var redactionPatterns = []*regexp.Regexp{
	tokenPattern,
	botTokenPattern,
	apiKeyPattern,
	secretPattern,
	accessTokenPattern,
	slackHookPattern,
	discordHookPattern,
}

// RedactText masks credentials in free-form text such as config files and logs.
func RedactText(text string) string {
	for _, pattern := range redactionPatterns {
		text = applyRedaction(pattern, text)
	}
	return text
}

// RedactURL keeps only the scheme and host of a webhook URL.
func RedactURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return redactedMarker
	}
	if u.Path == "" || u.Path == "/" {
		return u.Scheme + "://" + u.Host
	}
	return u.Scheme + "://" + u.Host + "/" + redactedMarker
}

func applyRedaction(pattern *regexp.Regexp, text string) string {
	return pattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := pattern.FindStringSubmatch(match)
		if len(sub) >= 2 {
			return sub[1] + redactedMarker
		}
		return redactedMarker
	})
}
