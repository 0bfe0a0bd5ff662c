package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures RedactingLogger.
type RedactOptions struct {
	// MaskHeaders are replaced wholesale with "[REDACTED]", on top of
	// Authorization, Cookie and Set-Cookie. Matching ignores case.
	MaskHeaders []string
}

// scrubRule replaces every match of re with repl.
type scrubRule struct {
	re   *regexp.Regexp
	repl string
}

// Rules run in order. UUIDs go before phone numbers, whose loose digit
// pattern would otherwise eat UUID segments.
var scrubRules = []scrubRule{
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`), "[REDACTED:id]"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
}

type redactor struct {
	masked map[string]struct{}
}

func newRedactor(opts RedactOptions) redactor {
	r := redactor{masked: map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.masked[h] = struct{}{}
		}
	}
	return r
}

func (redactor) scrub(s string) string {
	for _, rule := range scrubRules {
		if s == "" {
			return s
		}
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	return s
}

func (r redactor) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.masked[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.scrub(strings.Join(vv, ", "))
	}
	return out
}

// RedactingLogger is the access logger mounted by the router. It never logs
// bodies; it scrubs emails, phone numbers and UUIDs from the query string
// and header values, and masks credential headers entirely. Like Logger it
// attaches the request-scoped logger before the handlers run.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	r := newRedactor(opts)
	return func(c *gin.Context) {
		start := time.Now()
		route := routeOf(c)
		query := r.scrub(c.Request.URL.RawQuery)
		headers := r.headers(c.Request.Header)

		l := log.With().Str("request_id", RequestIDFrom(c)).Logger()
		attachLogger(c, &l)

		c.Next()

		rid := c.Writer.Header().Get(HeaderRequestID)
		if rid == "" {
			rid = c.GetHeader(HeaderRequestID)
		}
		ctx := log.With().
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", route).
			Str("query", query).
			Interface("headers", headers)
		ctx = outcomeFields(c, ctx, start)
		out := ctx.Logger()
		logAtLevel(c, &out).Msg("http_request")
	}
}
