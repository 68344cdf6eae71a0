package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Promotion struct {
	ID                 uint                `gorm:"primaryKey" json:"id"`
	Title              string              `gorm:"size:150;not null" json:"title"`
	Message            string              `gorm:"type:text;not null" json:"message"`
	ImageURL           string              `gorm:"size:512" json:"image_url"`
	DiscountPercentage decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"discount_percentage"`
	ValidUntil         *time.Time          `json:"valid_until"`
	Status             string              `gorm:"size:16;not null;index" json:"status"`
	SentAt             *time.Time          `json:"sent_at"`
	PushSent           int                 `gorm:"not null" json:"push_sent"`
	PushFailed         int                 `gorm:"not null" json:"push_failed"`
	ChatSent           int                 `gorm:"not null" json:"chat_sent"`
	ChatFailed         int                 `gorm:"not null" json:"chat_failed"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func (Promotion) TableName() string { return "promotions" }

// PushSubscription is a browser registration token for push delivery.
type PushSubscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;size:512;not null" json:"token"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PushSubscription) TableName() string { return "push_subscriptions" }

// ChatSubscriber opted in to receive promotions over WhatsApp.
type ChatSubscriber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120" json:"name"`
	Phone     string    `gorm:"uniqueIndex;size:32;not null" json:"phone"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ChatSubscriber) TableName() string { return "chat_subscribers" }

// PromotionDelivery logs one delivery attempt of a promotion to one subscriber.
type PromotionDelivery struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PromotionID  uint      `gorm:"not null;index" json:"promotion_id"`
	Channel      string    `gorm:"size:16;not null;index" json:"channel"`
	SubscriberID uint      `gorm:"not null" json:"subscriber_id"`
	Target       string    `gorm:"size:512" json:"target"`
	Status       string    `gorm:"size:16;not null;index" json:"status"`
	Error        string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (PromotionDelivery) TableName() string { return "promotion_deliveries" }
