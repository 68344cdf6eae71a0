package handler

import (
	"net/http"
	"strconv"

	"aesthetica/internal/models"
	"aesthetica/internal/repository"
	"aesthetica/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ReferralHandler struct {
	svc *service.ReferralService
}

func NewReferralHandler(svc *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{svc: svc}
}

// GetProgram handles GET /referral-program. Returns the fallback program until staff save one.
func (h *ReferralHandler) GetProgram(c *gin.Context) {
	p, err := h.svc.GetProgram(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type programRequest struct {
	IsActive                   bool                `json:"is_active"`
	ReferrerDiscountPercentage decimal.Decimal     `json:"referrer_discount_percentage"`
	ReferredDiscountPercentage decimal.Decimal     `json:"referred_discount_percentage"`
	MinPurchaseValue           decimal.Decimal     `json:"min_purchase_value"`
	MaxDiscountValue           decimal.NullDecimal `json:"max_discount_value"`
	ExpiryDays                 int                 `json:"expiry_days"`
	TermsConditions            string              `json:"terms_conditions"`
}

// SaveProgram handles PUT /admin/referral-program.
func (h *ReferralHandler) SaveProgram(c *gin.Context) {
	var req programRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.SaveProgram(c.Request.Context(), models.ReferralProgram{
		IsActive:                   req.IsActive,
		ReferrerDiscountPercentage: req.ReferrerDiscountPercentage,
		ReferredDiscountPercentage: req.ReferredDiscountPercentage,
		MinPurchaseValue:           req.MinPurchaseValue,
		MaxDiscountValue:           req.MaxDiscountValue,
		ExpiryDays:                 req.ExpiryDays,
		TermsConditions:            req.TermsConditions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create handles POST /referrals: a visitor asks for a code to share.
func (h *ReferralHandler) Create(c *gin.Context) {
	var req service.CreateReferralInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ref, err := h.svc.CreateReferral(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

// Redeem handles POST /referrals/redeem. Every rejection reads "invalid or expired code".
func (h *ReferralHandler) Redeem(c *gin.Context) {
	var req service.RedeemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.RedeemCode(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Validate handles GET /admin/referrals/validate?code=. Unknown codes are a
// not_found outcome, not an HTTP error.
func (h *ReferralHandler) Validate(c *gin.Context) {
	res, err := h.svc.ValidateCode(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// List handles GET /admin/referrals?search=&status=active|used|expired.
func (h *ReferralHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.ListReferrals(c.Request.Context(), c.Query("search"), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	paged(c, list, total, page, limit)
}

func (h *ReferralHandler) MarkUsed(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ref, err := h.svc.MarkAsUsed(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *ReferralHandler) Reactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ref, err := h.svc.ReactivateCode(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *ReferralHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteReferral(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListUsages handles GET /admin/referral-usages?search=&status=&referral_id=.
func (h *ReferralHandler) ListUsages(c *gin.Context) {
	page, limit := parsePagination(c)
	f := repository.UsageFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	}
	if v := c.Query("referral_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid referral_id"})
			return
		}
		f.ReferralID = uint(id)
	}
	list, total, err := h.svc.ListUsages(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	paged(c, list, total, page, limit)
}

// UpdateUsageStatus handles PATCH /admin/referral-usages/:id/status.
func (h *ReferralHandler) UpdateUsageStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.svc.UpdateUsageStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ApplyReferrerDiscount handles POST /admin/referral-usages/:id/apply-referrer-discount.
func (h *ReferralHandler) ApplyReferrerDiscount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u, err := h.svc.ApplyReferrerDiscount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Quote handles GET /admin/referral-program/quote?value=&for=referrer|referred.
func (h *ReferralHandler) Quote(c *gin.Context) {
	value, err := decimal.NewFromString(c.Query("value"))
	if err != nil || value.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be a non-negative number"})
		return
	}
	forReferrer := c.Query("for") == "referrer"
	discount, err := h.svc.Quote(c.Request.Context(), value, forReferrer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"purchase_value": value,
		"discount":       discount,
		"total":          value.Sub(discount),
	})
}
