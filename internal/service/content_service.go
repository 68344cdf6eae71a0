package service

import (
	"context"
	"io"
	"strings"

	"aesthetica/internal/models"
	"aesthetica/internal/repository"
	"aesthetica/pkg/cloudinary"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ContentService assembles the public site and handles gallery uploads and
// testimonial submissions.
type ContentService struct {
	Services     *CatalogService[models.Service]
	Gallery      *CatalogService[models.GalleryImage]
	Testimonials *CatalogService[models.Testimonial]
	FAQs         *CatalogService[models.FAQ]
	Videos       *CatalogService[models.Video]

	settings *SettingsService
	cloud    cloudinary.Client
	folder   string
}

func NewContentService(db *gorm.DB, settings *SettingsService, cloud cloudinary.Client, folder string) *ContentService {
	return &ContentService{
		Services:     NewCatalogService(repository.NewCatalogRepository[models.Service](db), "service"),
		Gallery:      NewCatalogService(repository.NewCatalogRepository[models.GalleryImage](db), "gallery image"),
		Testimonials: NewCatalogService(repository.NewCatalogRepository[models.Testimonial](db), "testimonial"),
		FAQs:         NewCatalogService(repository.NewCatalogRepository[models.FAQ](db), "faq"),
		Videos:       NewCatalogService(repository.NewCatalogRepository[models.Video](db), "video"),
		settings:     settings,
		cloud:        cloud,
		folder:       folder,
	}
}

// Site is everything the single-page site renders in one payload.
type Site struct {
	Settings     map[string]string     `json:"settings"`
	Services     []models.Service      `json:"services"`
	Gallery      []models.GalleryImage `json:"gallery"`
	Testimonials []models.Testimonial  `json:"testimonials"`
	FAQs         []models.FAQ          `json:"faqs"`
	Videos       []models.Video        `json:"videos"`
}

func (s *ContentService) Site(ctx context.Context) (*Site, error) {
	var (
		site Site
		err  error
	)
	if site.Settings, err = s.settings.GetAll(ctx); err != nil {
		return nil, err
	}
	if site.Services, err = s.Services.List(ctx, true); err != nil {
		return nil, err
	}
	if site.Gallery, err = s.Gallery.List(ctx, true); err != nil {
		return nil, err
	}
	if site.Testimonials, err = s.Testimonials.List(ctx, true); err != nil {
		return nil, err
	}
	if site.FAQs, err = s.FAQs.List(ctx, true); err != nil {
		return nil, err
	}
	if site.Videos, err = s.Videos.List(ctx, true); err != nil {
		return nil, err
	}
	return &site, nil
}

type TestimonialInput struct {
	AuthorName string `json:"author_name" binding:"required,max=120"`
	Text       string `json:"text" binding:"required,max=2000"`
	Rating     int    `json:"rating" binding:"omitempty,min=1,max=5"`
	ServiceID  *uint  `json:"service_id"`
}

// SubmitTestimonial stores a visitor testimonial hidden until staff approve it.
func (s *ContentService) SubmitTestimonial(ctx context.Context, in TestimonialInput) (*models.Testimonial, error) {
	t := &models.Testimonial{
		AuthorName: strings.TrimSpace(in.AuthorName),
		Text:       strings.TrimSpace(in.Text),
		Rating:     in.Rating,
		ServiceID:  in.ServiceID,
		IsActive:   false,
	}
	if t.Rating == 0 {
		t.Rating = 5
	}
	var fe fieldErrors
	if t.AuthorName == "" {
		fe.add("author_name", "required")
	}
	if t.Text == "" {
		fe.add("text", "required")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	if err := s.Testimonials.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

type GalleryUpload struct {
	Title     string
	Category  string
	SortOrder int
}

// UploadGalleryImage stores the file in Cloudinary and records the image.
func (s *ContentService) UploadGalleryImage(ctx context.Context, file io.Reader, in GalleryUpload) (*models.GalleryImage, error) {
	if s.cloud == nil {
		return nil, ErrUploadsDisabled
	}
	publicID := "img_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	res, err := s.cloud.UploadImage(ctx, file, s.folder, publicID)
	if err != nil {
		return nil, &PersistenceError{Op: "upload gallery image", Err: err}
	}
	img := &models.GalleryImage{
		Title:        strings.TrimSpace(in.Title),
		Category:     strings.TrimSpace(in.Category),
		URL:          res.URL,
		ThumbnailURL: res.ThumbnailURL,
		PublicID:     res.PublicID,
		IsActive:     true,
		SortOrder:    in.SortOrder,
	}
	if err := s.Gallery.Create(ctx, img); err != nil {
		if derr := s.cloud.Destroy(ctx, res.PublicID); derr != nil {
			logrus.WithError(derr).WithField("public_id", res.PublicID).Warn("[gallery] orphaned upload")
		}
		return nil, err
	}
	return img, nil
}

// DeleteGalleryImage removes the row and the stored asset. A failed asset delete
// is logged and does not keep the row.
func (s *ContentService) DeleteGalleryImage(ctx context.Context, id uint) error {
	img, err := s.Gallery.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Gallery.Delete(ctx, id); err != nil {
		return err
	}
	if s.cloud != nil && img.PublicID != "" {
		if err := s.cloud.Destroy(ctx, img.PublicID); err != nil {
			logrus.WithError(err).WithField("public_id", img.PublicID).Warn("[gallery] asset delete failed")
		}
	}
	return nil
}
