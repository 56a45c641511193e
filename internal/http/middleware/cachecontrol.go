package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CachePolicy declares a route's Cache-Control directive. It is independent
// of the ETag validator and may be used with or without it.
type CachePolicy struct {
	MaxAge         time.Duration
	NoCache        bool
	NoStore        bool
	MustRevalidate bool
	Public         bool
	Private        bool
}

// Directive renders the comma-joined Cache-Control value.
func (p CachePolicy) Directive() string {
	var parts []string
	if p.Public {
		parts = append(parts, "public")
	}
	if p.Private {
		parts = append(parts, "private")
	}
	if p.MaxAge > 0 {
		parts = append(parts, fmt.Sprintf("max-age=%d", int(p.MaxAge.Seconds())))
	}
	if p.NoCache {
		parts = append(parts, "no-cache")
	}
	if p.NoStore {
		parts = append(parts, "no-store")
	}
	if p.MustRevalidate {
		parts = append(parts, "must-revalidate")
	}
	return strings.Join(parts, ", ")
}

// CacheControl attaches the policy's directive to every response on the route.
func CacheControl(p CachePolicy) gin.HandlerFunc {
	directive := p.Directive()
	return func(c *gin.Context) {
		if directive != "" {
			c.Header("Cache-Control", directive)
		}
		c.Next()
	}
}
