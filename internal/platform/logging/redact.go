package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	// three base64url segments
	jwtPattern = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)

	// gorilla/securecookie values: base64url blob with a trailing MAC segment
	cookieValuePattern = regexp.MustCompile(`^MT[A-Za-z0-9_-]{40,}={0,2}$`)

	bearerPattern = regexp.MustCompile(`(?i)^bearer\s+.+$`)
)

// DefaultRedactOptions lists the attributes masked in every log line:
// session material, cookie payloads and anything that looks like a secret.
//
// Extend it per deployment:
//
//	opts := append(logging.DefaultRedactOptions(),
//	    masq.WithFieldName("admin_token"),
//	)
func DefaultRedactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("password"),
		masq.WithFieldName("secret"),
		masq.WithFieldName("token"),
		masq.WithFieldName("apiKey"),
		masq.WithFieldName("api_key"),
		masq.WithFieldName("accessToken"),
		masq.WithFieldName("access_token"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("auth"),
		masq.WithFieldName("cookie"),
		masq.WithFieldName("set_cookie"),
		masq.WithFieldName("session"),
		masq.WithFieldName("session_id"),
		masq.WithFieldName("session_secret"),
		masq.WithFieldName("privateKey"),
		masq.WithFieldName("secretKey"),

		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),

		masq.WithRegex(jwtPattern),
		masq.WithRegex(cookieValuePattern),
		masq.WithRegex(bearerPattern),
	}
}

// NewReplaceAttr builds a slog ReplaceAttr that applies DefaultRedactOptions
// plus opts.
//
//	opts := &slog.HandlerOptions{ReplaceAttr: logging.NewReplaceAttr()}
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	allOpts := append(DefaultRedactOptions(), opts...)
	return masq.New(allOpts...)
}
