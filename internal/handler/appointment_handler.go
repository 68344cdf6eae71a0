package handler

import (
	"context"
	"net/http"
	"time"

	"aesthetica/internal/models"
	"aesthetica/internal/repository"
	"aesthetica/internal/service"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	svc *service.AppointmentService
}

func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// Book handles POST /appointments. The response carries the WhatsApp handoff link.
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req service.BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.svc.Book(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// List handles GET /admin/appointments?search=&status=&from=&to= (dates YYYY-MM-DD).
func (h *AppointmentHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	f := repository.AppointmentFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	}
	for _, q := range []struct {
		key string
		dst **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := c.Query(q.key)
		if v == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + q.key + " date (use YYYY-MM-DD)"})
			return
		}
		*q.dst = &t
	}
	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	paged(c, list, total, page, limit)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Confirm handles POST /admin/appointments/:id/confirm and returns the patient handoff.
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	out, err := h.svc.Confirm(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.svc.Cancel)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.svc.Complete)
}

func (h *AppointmentHandler) transition(c *gin.Context, fn func(ctx context.Context, id uint) (*models.Appointment, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := fn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
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
