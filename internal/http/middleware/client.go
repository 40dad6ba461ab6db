package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderClientID lets API callers name themselves for idempotency scoping
// and rate limiting. Without it the client IP is used.
const HeaderClientID = "X-Client-ID"

// ctxKeyClientID may be set by an upstream auth layer and wins over the header.
const ctxKeyClientID = "clientID"

// maxClientIDLen bounds the header value stored in logs and idempotency rows.
const maxClientIDLen = 128

// ClientID returns the identity of the caller: the authenticated client from
// the Gin context, then the X-Client-ID header, then "ip:<addr>".
func ClientID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyClientID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader(HeaderClientID)); h != "" && len(h) <= maxClientIDLen {
			return h
		}
	}
	return "ip:" + c.ClientIP()
}
