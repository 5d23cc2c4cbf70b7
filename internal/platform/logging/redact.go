package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// secretKeys are attribute keys whose values never reach a log line. They
// cover the remote API key in its config, env and header spellings.
var secretKeys = []string{
	"api_key",
	"apiKey",
	"APIKey",
	"authorization",
	"Authorization",
	"token",
	"password",
}

// credentialValue matches an HTTP credential however it was logged.
var credentialValue = regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`)

// NewReplaceAttr returns a slog ReplaceAttr that redacts secrets and names
// LevelTrace "TRACE" instead of slog's "DEBUG-4". extra rules are applied
// after the built-in ones.
func NewReplaceAttr(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, len(secretKeys)+len(extra)+2)
	for _, key := range secretKeys {
		opts = append(opts, masq.WithFieldName(key))
	}

	opts = append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(credentialValue),
	)
	opts = append(opts, extra...)

	redact := masq.New(opts...)

	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.LevelKey {
			if level, ok := a.Value.Any().(slog.Level); ok && level == LevelTrace {
				return slog.String(slog.LevelKey, "TRACE")
			}
		}

		return redact(groups, a)
	}
}
