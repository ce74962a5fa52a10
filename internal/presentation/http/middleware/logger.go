package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogger tags each request with an id (reusing X-Request-ID when
// the client sends one) and writes a single access-log line after the
// handler chain runs. The shop claim set by the auth middleware is
// included when present so multi-tenant traffic can be filtered per
// shop.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		shop := "-"
		if v, ok := c.Get("shop_id"); ok {
			if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
				shop = shortID(id.String())
			}
		}

		log.Printf("rid=%s shop=%s %s %s status=%d dur=%s ip=%s",
			shortID(requestID), shop, c.Request.Method, path,
			c.Writer.Status(), time.Since(start), c.ClientIP())

		for _, e := range c.Errors {
			log.Printf("rid=%s error: %v", shortID(requestID), e.Err)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
