package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"aesthetica/internal/models"
	"aesthetica/internal/repository"
	"aesthetica/pkg/cloudinary"

	"github.com/shopspring/decimal"
)

type fakeCloud struct {
	uploaded  []string
	destroyed []string
	failNext  error
}

func (f *fakeCloud) UploadImage(_ context.Context, file io.Reader, folder, publicID string) (*cloudinary.UploadResult, error) {
	if f.failNext != nil {
		return nil, f.failNext
	}
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	full := folder + "/" + publicID
	f.uploaded = append(f.uploaded, full)
	return &cloudinary.UploadResult{URL: "https://cdn/" + full + ".jpg", ThumbnailURL: "https://cdn/t/" + full + ".jpg", PublicID: full}, nil
}

func (f *fakeCloud) Destroy(_ context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

func newContentFixture(t *testing.T, cloud cloudinary.Client) *ContentService {
	t.Helper()
	db := newTestDB(t)
	settings := NewSettingsService(repository.NewSettingRepository(db), nil, 0, nil)
	return NewContentService(db, settings, cloud, "Aesthetica/gallery")
}

func TestSiteOnlyListsActiveContent(t *testing.T) {
	svc := newContentFixture(t, nil)
	ctx := context.Background()

	if _, err := svc.settings.Update(ctx, map[string]string{"clinic_name": "Aesthetica"}); err != nil {
		t.Fatalf("settings: %v", err)
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	must(svc.Services.Create(ctx, &models.Service{Name: "Botox", Price: decimal.NewFromInt(900), IsActive: true}))
	must(svc.Services.Create(ctx, &models.Service{Name: "Hidden", Price: decimal.NewFromInt(1)}))
	must(svc.FAQs.Create(ctx, &models.FAQ{Question: "Q", Answer: "A", IsActive: true}))

	if _, err := svc.SubmitTestimonial(ctx, TestimonialInput{AuthorName: "Bia", Text: "Loved it"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	site, err := svc.Site(ctx)
	if err != nil {
		t.Fatalf("site: %v", err)
	}
	if site.Settings["clinic_name"] != "Aesthetica" {
		t.Fatalf("settings = %v", site.Settings)
	}
	if len(site.Services) != 1 || site.Services[0].Name != "Botox" {
		t.Fatalf("services = %+v", site.Services)
	}
	if len(site.Testimonials) != 0 {
		t.Fatalf("unapproved testimonial leaked: %+v", site.Testimonials)
	}
	if len(site.FAQs) != 1 {
		t.Fatalf("faqs = %+v", site.FAQs)
	}

	all, _ := svc.Testimonials.List(ctx, false)
	if len(all) != 1 || all[0].Rating != 5 {
		t.Fatalf("testimonials = %+v", all)
	}
	approved, err := svc.Testimonials.Update(ctx, all[0].ID, func(tm *models.Testimonial) error {
		tm.IsActive = true
		return nil
	})
	if err != nil || !approved.IsActive {
		t.Fatalf("approve: %+v, %v", approved, err)
	}
	site, _ = svc.Site(ctx)
	if len(site.Testimonials) != 1 {
		t.Fatal("approved testimonial missing from site")
	}
}

func TestSubmitTestimonialValidation(t *testing.T) {
	svc := newContentFixture(t, nil)
	_, err := svc.SubmitTestimonial(context.Background(), TestimonialInput{AuthorName: " ", Text: ""})
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %v", err)
	}
}

func TestGalleryUploadAndDelete(t *testing.T) {
	cloud := &fakeCloud{}
	svc := newContentFixture(t, cloud)
	ctx := context.Background()

	img, err := svc.UploadGalleryImage(ctx, strings.NewReader("jpegbytes"), GalleryUpload{Title: " Before/after ", Category: "face"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if img.ID == 0 || img.Title != "Before/after" || !strings.HasPrefix(img.PublicID, "Aesthetica/gallery/img_") {
		t.Fatalf("image = %+v", img)
	}

	if err := svc.DeleteGalleryImage(ctx, img.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cloud.destroyed) != 1 || cloud.destroyed[0] != img.PublicID {
		t.Fatalf("destroyed = %v", cloud.destroyed)
	}
	if err := svc.DeleteGalleryImage(ctx, img.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGalleryUploadDisabled(t *testing.T) {
	svc := newContentFixture(t, nil)
	if _, err := svc.UploadGalleryImage(context.Background(), strings.NewReader("x"), GalleryUpload{}); !errors.Is(err, ErrUploadsDisabled) {
		t.Fatalf("expected ErrUploadsDisabled, got %v", err)
	}

	failing := newContentFixture(t, &fakeCloud{failNext: errors.New("quota")})
	_, err := failing.UploadGalleryImage(context.Background(), strings.NewReader("x"), GalleryUpload{})
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}
