package cloudinary

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type fakeUploader struct {
	params  uploader.UploadParams
	result  *uploader.UploadResult
	destroy *uploader.DestroyResult
}

func (f *fakeUploader) Upload(_ context.Context, _ interface{}, p uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = p
	return f.result, nil
}

func (f *fakeUploader) Destroy(_ context.Context, _ uploader.DestroyParams) (*uploader.DestroyResult, error) {
	return f.destroy, nil
}

func TestUploadImageUsesEagerURLs(t *testing.T) {
	fake := &fakeUploader{result: &uploader.UploadResult{
		PublicID:  "gallery/abc",
		SecureURL: "https://res/raw.jpg",
		Eager: []uploader.Eager{
			{SecureURL: "https://res/display.jpg"},
			{SecureURL: "https://res/thumb.jpg"},
		},
	}}
	c := &clientImpl{cloudName: "demo", uploader: fake}

	res, err := c.UploadImage(context.Background(), strings.NewReader("img"), "gallery", "abc")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.URL != "https://res/display.jpg" || res.ThumbnailURL != "https://res/thumb.jpg" || res.PublicID != "gallery/abc" {
		t.Fatalf("result = %+v", res)
	}
	if fake.params.Folder != "gallery" || fake.params.PublicID != "abc" {
		t.Fatalf("params = %+v", fake.params)
	}
}

func TestUploadImageFallbackThumbnail(t *testing.T) {
	fake := &fakeUploader{result: &uploader.UploadResult{PublicID: "g/x", SecureURL: "https://res/raw.jpg"}}
	c := &clientImpl{cloudName: "demo", uploader: fake}

	res, err := c.UploadImage(context.Background(), strings.NewReader("img"), "g", "x")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.URL != "https://res/raw.jpg" {
		t.Fatalf("url = %s", res.URL)
	}
	if want := BuildOptimizedImageURL("demo", "g/x", ThumbWidth); res.ThumbnailURL != want {
		t.Fatalf("thumb = %s, want %s", res.ThumbnailURL, want)
	}
}

func TestDestroy(t *testing.T) {
	cases := []struct {
		result  string
		message string
		wantErr bool
	}{
		{"ok", "", false},
		{"not found", "", false},
		{"error", "", true},
		{"", "Invalid Signature", true},
	}
	for _, tc := range cases {
		c := &clientImpl{uploader: &fakeUploader{destroy: &uploader.DestroyResult{
			Result: tc.result,
			Error:  api.ErrorResp{Message: tc.message},
		}}}
		err := c.Destroy(context.Background(), "g/x")
		if (err != nil) != tc.wantErr {
			t.Errorf("Destroy(result=%q msg=%q) err = %v, wantErr %v", tc.result, tc.message, err, tc.wantErr)
		}
	}
	if err := (&clientImpl{}).Destroy(context.Background(), ""); err != nil {
		t.Fatalf("empty public id: %v", err)
	}
}
