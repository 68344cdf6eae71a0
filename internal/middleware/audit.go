package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"aesthetica/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuditStore persists audit entries.
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// Audit records successful admin write requests. Use after AuthRequired.
func Audit(store AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			return
		}
		entry := &models.AuditLog{
			Action:     c.Request.Method + " " + c.FullPath(),
			Resource:   resourceOf(c.FullPath()),
			ResourceID: c.Param("id"),
			Status:     status,
			IP:         c.ClientIP(),
			UserAgent:  truncate(c.Request.UserAgent(), 512),
			CreatedAt:  time.Now(),
		}
		if id := GetUserID(c); id != 0 {
			entry.UserID = &id
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Create(ctx, entry); err != nil {
			logrus.WithError(err).WithField("action", entry.Action).Error("[audit] failed to record")
		}
	}
}

// resourceOf returns the first path segment after /admin, e.g. "referrals".
func resourceOf(path string) string {
	_, rest, ok := strings.Cut(path, "/admin/")
	if !ok {
		return ""
	}
	resource, _, _ := strings.Cut(rest, "/")
	return resource
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
