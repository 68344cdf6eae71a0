package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a treatment offered by the clinic, shown in the public price list.
type Service struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:150;not null" json:"name" binding:"required"`
	Description     string          `gorm:"type:text" json:"description"`
	Category        string          `gorm:"size:80;index" json:"category"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	ImageURL        string          `gorm:"size:512" json:"image_url"`
	IsActive        bool            `gorm:"not null;index" json:"is_active"`
	SortOrder       int             `gorm:"not null" json:"sort_order"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Service) TableName() string { return "services" }

type GalleryImage struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:150" json:"title"`
	Category     string         `gorm:"size:80;index" json:"category"`
	URL          string         `gorm:"size:512;not null" json:"url"`
	ThumbnailURL string         `gorm:"size:512" json:"thumbnail_url"`
	PublicID     string         `gorm:"size:255" json:"-"`
	IsActive     bool           `gorm:"not null;index" json:"is_active"`
	SortOrder    int            `gorm:"not null" json:"sort_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (GalleryImage) TableName() string { return "gallery_images" }

// Testimonial submitted from the public site stays hidden until staff set IsActive.
type Testimonial struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AuthorName string         `gorm:"size:120;not null" json:"author_name" binding:"required"`
	Text       string         `gorm:"type:text;not null" json:"text" binding:"required"`
	Rating     int            `gorm:"not null" json:"rating" binding:"omitempty,min=1,max=5"`
	ServiceID  *uint          `gorm:"index" json:"service_id"`
	IsActive   bool           `gorm:"not null;index" json:"is_active"`
	SortOrder  int            `gorm:"not null" json:"sort_order"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Testimonial) TableName() string { return "testimonials" }

type FAQ struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Question  string         `gorm:"size:255;not null" json:"question" binding:"required"`
	Answer    string         `gorm:"type:text;not null" json:"answer" binding:"required"`
	IsActive  bool           `gorm:"not null;index" json:"is_active"`
	SortOrder int            `gorm:"not null" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FAQ) TableName() string { return "faqs" }

type Video struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:150;not null" json:"title" binding:"required"`
	URL          string         `gorm:"size:512;not null" json:"url" binding:"required,url"`
	ThumbnailURL string         `gorm:"size:512" json:"thumbnail_url"`
	IsActive     bool           `gorm:"not null;index" json:"is_active"`
	SortOrder    int            `gorm:"not null" json:"sort_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Video) TableName() string { return "videos" }
