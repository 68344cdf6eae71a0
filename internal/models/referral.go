package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralProgram is the singleton configuration of the referral/discount program.
// Staff create it on first save and update it in place afterwards.
type ReferralProgram struct {
	ID                         uint                `gorm:"primaryKey" json:"id"`
	IsActive                   bool                `gorm:"not null" json:"is_active"`
	ReferrerDiscountPercentage decimal.Decimal     `gorm:"type:decimal(5,2);not null" json:"referrer_discount_percentage"`
	ReferredDiscountPercentage decimal.Decimal     `gorm:"type:decimal(5,2);not null" json:"referred_discount_percentage"`
	MinPurchaseValue           decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"min_purchase_value"`
	MaxDiscountValue           decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"max_discount_value"` // null = no cap
	ExpiryDays                 int                 `gorm:"not null" json:"expiry_days"`
	TermsConditions            string              `gorm:"type:text" json:"terms_conditions"`
	CreatedAt                  time.Time           `json:"created_at"`
	UpdatedAt                  time.Time           `json:"updated_at"`
}

func (ReferralProgram) TableName() string { return "referral_program" }

// Referral is a generated code handed out by an existing customer.
// Status only ever stores active or used; expiry is derived from ExpiresAt.
type Referral struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReferralCode  string    `gorm:"uniqueIndex;size:16;not null" json:"referral_code"`
	ReferrerName  string    `gorm:"size:120;not null" json:"referrer_name"`
	ReferrerPhone string    `gorm:"size:32;not null;index" json:"referrer_phone"`
	ReferrerEmail string    `gorm:"size:255" json:"referrer_email,omitempty"`
	Status        string    `gorm:"size:16;not null;index" json:"status"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	ExpiresAt     time.Time `gorm:"not null;index" json:"expires_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Usages []ReferralUsage `gorm:"foreignKey:ReferralID;constraint:OnDelete:CASCADE" json:"usages,omitempty"`
}

func (Referral) TableName() string { return "referrals" }

// ReferralUsage records one redemption of a referral code.
type ReferralUsage struct {
	ID                      uint            `gorm:"primaryKey" json:"id"`
	ReferralID              uint            `gorm:"not null;index" json:"referral_id"`
	ReferredName            string          `gorm:"size:120;not null" json:"referred_name"`
	ReferredPhone           string          `gorm:"size:32;not null;index" json:"referred_phone"`
	ReferredEmail           string          `gorm:"size:255" json:"referred_email,omitempty"`
	DiscountApplied         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_applied"` // snapshot of referred percentage
	Status                  string          `gorm:"size:16;not null;index" json:"status"`
	ReferrerDiscountApplied bool            `gorm:"not null" json:"referrer_discount_applied"`
	ReferrerDiscountUsedAt  *time.Time      `json:"referrer_discount_used_at"`
	CreatedAt               time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`

	Referral *Referral `gorm:"foreignKey:ReferralID" json:"referral,omitempty"`
}

func (ReferralUsage) TableName() string { return "referral_usage" }
