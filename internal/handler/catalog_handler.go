package handler

import (
	"net/http"

	"aesthetica/internal/repository"
	"aesthetica/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves one kind of site content. The model's binding tags
// validate create and update bodies.
type CatalogHandler[T repository.CatalogItem] struct {
	svc *service.CatalogService[T]
}

func NewCatalogHandler[T repository.CatalogItem](svc *service.CatalogService[T]) *CatalogHandler[T] {
	return &CatalogHandler[T]{svc: svc}
}

// PublicList returns active rows in display order.
func (h *CatalogHandler[T]) PublicList(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// AdminList includes inactive rows.
func (h *CatalogHandler[T]) AdminList(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *CatalogHandler[T]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler[T]) Create(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Create(c.Request.Context(), &item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Update merges the body onto the stored row, so omitted fields keep their value.
func (h *CatalogHandler[T]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var bindErr error
	item, err := h.svc.Update(c.Request.Context(), id, func(item *T) error {
		bindErr = c.ShouldBindJSON(item)
		return bindErr
	})
	if bindErr != nil {
		badRequest(c, bindErr)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler[T]) Delete(c *gin.Context) {
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
