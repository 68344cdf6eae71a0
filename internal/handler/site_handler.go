package handler

import (
	"net/http"
	"strconv"
	"strings"

	"aesthetica/internal/service"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type SiteHandler struct {
	content  *service.ContentService
	settings *service.SettingsService
}

func NewSiteHandler(content *service.ContentService, settings *service.SettingsService) *SiteHandler {
	return &SiteHandler{content: content, settings: settings}
}

// Site handles GET /site, the whole single-page payload.
func (h *SiteHandler) Site(c *gin.Context) {
	site, err := h.content.Site(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

// Settings handles GET /settings and GET /admin/settings.
func (h *SiteHandler) Settings(c *gin.Context) {
	all, err := h.settings.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

// UpdateSettings handles PUT /admin/settings with a flat key/value object.
func (h *SiteHandler) UpdateSettings(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		badRequest(c, err)
		return
	}
	all, err := h.settings.Update(c.Request.Context(), values)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

// SubmitTestimonial handles POST /testimonials. Submissions wait for approval.
func (h *SiteHandler) SubmitTestimonial(c *gin.Context) {
	var req service.TestimonialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.content.SubmitTestimonial(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// UploadGalleryImage handles POST /admin/gallery (multipart: file, title, category, sort_order).
func (h *SiteHandler) UploadGalleryImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+1<<20)
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	if ct := strings.ToLower(file.Header.Get("Content-Type")); !allowedImageTypes[ct] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only jpeg, png or webp images are accepted"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	sortOrder, _ := strconv.Atoi(c.PostForm("sort_order"))
	img, err := h.content.UploadGalleryImage(c.Request.Context(), f, service.GalleryUpload{
		Title:     c.PostForm("title"),
		Category:  c.PostForm("category"),
		SortOrder: sortOrder,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

// DeleteGalleryImage handles DELETE /admin/gallery/:id.
func (h *SiteHandler) DeleteGalleryImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.content.DeleteGalleryImage(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
