package handler

import (
	"net/http"

	"aesthetica/internal/service"

	"github.com/gin-gonic/gin"
)

type PromotionHandler struct {
	svc *service.PromotionService
}

func NewPromotionHandler(svc *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{svc: svc}
}

type pushSubscriptionRequest struct {
	Token string `json:"token" binding:"required"`
}

// SubscribePush handles POST /push-subscriptions.
func (h *PromotionHandler) SubscribePush(c *gin.Context) {
	var req pushSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sub, err := h.svc.SubscribePush(c.Request.Context(), req.Token, c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID, "is_active": sub.IsActive})
}

// UnsubscribePush handles DELETE /push-subscriptions.
func (h *PromotionHandler) UnsubscribePush(c *gin.Context) {
	var req pushSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.UnsubscribePush(c.Request.Context(), req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type chatSubscriberRequest struct {
	Name  string `json:"name" binding:"max=120"`
	Phone string `json:"phone" binding:"required,max=32"`
}

// SubscribeChat handles POST /chat-subscribers.
func (h *PromotionHandler) SubscribeChat(c *gin.Context) {
	var req chatSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sub, err := h.svc.SubscribeChat(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID, "is_active": sub.IsActive})
}

// UnsubscribeChat handles DELETE /chat-subscribers.
func (h *PromotionHandler) UnsubscribeChat(c *gin.Context) {
	var req chatSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.UnsubscribeChat(c.Request.Context(), req.Phone); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PromotionHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	paged(c, list, total, page, limit)
}

func (h *PromotionHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PromotionHandler) Create(c *gin.Context) {
	var req service.PromotionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PromotionHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.PromotionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PromotionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Send handles POST /admin/promotions/:id/send. The fan-out runs within the request.
func (h *PromotionHandler) Send(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rep, err := h.svc.Send(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Deliveries handles GET /admin/promotions/:id/deliveries?channel=push|whatsapp.
func (h *PromotionHandler) Deliveries(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)
	list, total, err := h.svc.ListDeliveries(c.Request.Context(), id, c.Query("channel"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	paged(c, list, total, page, limit)
}

// ListSubscribers handles GET /admin/subscribers?channel=push|whatsapp&search=.
func (h *PromotionHandler) ListSubscribers(c *gin.Context) {
	page, limit := parsePagination(c)
	ctx := c.Request.Context()
	if c.DefaultQuery("channel", "whatsapp") == "push" {
		list, total, err := h.svc.ListPushSubscriptions(ctx, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paged(c, list, total, page, limit)
		return
	}
	list, total, err := h.svc.ListChatSubscribers(ctx, c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	paged(c, list, total, page, limit)
}
