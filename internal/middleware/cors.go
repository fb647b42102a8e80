package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// wildcardOrigin matches origins of the form scheme://<label><suffix>, where
// label is a single DNS label
type wildcardOrigin struct {
	scheme string // "https://"
	suffix string // ".example.com"
}

// parseWildcardOrigin parses patterns like "https://*.example.com". It returns
// nil for anything that is not a single leading-label wildcard under a domain
// with at least two labels.
func parseWildcardOrigin(pattern string) *wildcardOrigin {
	idx := strings.Index(pattern, "://")
	if idx <= 0 || strings.Count(pattern, "*") != 1 {
		return nil
	}

	scheme := pattern[:idx+3]
	host := pattern[idx+3:]
	if !strings.HasPrefix(host, "*.") {
		return nil
	}

	suffix := host[1:]
	if !strings.Contains(suffix[1:], ".") {
		return nil
	}

	return &wildcardOrigin{scheme: scheme, suffix: suffix}
}

func (w *wildcardOrigin) matches(origin string) bool {
	if !strings.HasPrefix(origin, w.scheme) {
		return false
	}
	host := origin[len(w.scheme):]
	if !strings.HasSuffix(host, w.suffix) {
		return false
	}
	label := host[:len(host)-len(w.suffix)]
	return label != "" && !strings.ContainsAny(label, "./:@")
}

// CORS handles cross-origin requests. allowedOrigins holds exact origins and
// wildcard patterns such as "https://*.example.com"; an empty list allows
// every origin without credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	exact := make(map[string]bool)
	var wildcards []*wildcardOrigin
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if w := parseWildcardOrigin(origin); w != nil {
			wildcards = append(wildcards, w)
			continue
		}
		exact[origin] = true
	}
	allowAll := len(exact) == 0 && len(wildcards) == 0

	isAllowed := func(origin string) bool {
		if exact[origin] {
			return true
		}
		for _, w := range wildcards {
			if w.matches(origin) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && isAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		} else if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
