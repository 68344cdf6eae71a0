package handler

import (
	"net/http"
	"strconv"

	"aesthetica/internal/repository"
	"aesthetica/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the staff inbox and the audit trail.
type NotificationHandler struct {
	notifSvc *service.NotificationService
	auditSvc *service.AuditService
}

func NewNotificationHandler(notifSvc *service.NotificationService, auditSvc *service.AuditService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc, auditSvc: auditSvc}
}

// List handles GET /admin/notifications?unread=true.
func (h *NotificationHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	inbox, err := h.notifSvc.List(c.Request.Context(), c.Query("unread") == "true", page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   inbox.Notifications,
		"total":  inbox.Total,
		"unread": inbox.Unread,
		"page":   page,
		"limit":  limit,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.notifSvc.MarkRead(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notifSvc.MarkAllRead(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// AuditLogs handles GET /admin/audit-logs?resource=&user_id=.
func (h *NotificationHandler) AuditLogs(c *gin.Context) {
	page, limit := parsePagination(c)
	f := repository.AuditLogFilter{Resource: c.Query("resource"), Page: page, Limit: limit}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		f.UserID = uint(id)
	}
	list, total, err := h.auditSvc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	paged(c, list, total, page, limit)
}
