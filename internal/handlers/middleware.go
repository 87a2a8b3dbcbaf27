package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxSubject = "subject"

// authMiddleware requires a bearer JWT when API tokens are enabled and passes
// everything through otherwise.
func (h *Handler) authMiddleware(c *gin.Context) {
	auth := h.services.Authorization
	if auth == nil || !auth.Enabled() {
		c.Next()
		return
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	subject, err := auth.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(ctxSubject, subject)
	c.Next()
}
