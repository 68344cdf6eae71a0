package service

import (
	"crypto/rand"
	"math"
	"math/big"
	"strings"
	"time"
	"unicode"

	"aesthetica/config"
	"aesthetica/internal/domain"
	"aesthetica/internal/models"

	"github.com/shopspring/decimal"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var hundred = decimal.NewFromInt(100)

// FallbackProgram is used for issuance and redemption before staff save a program.
func FallbackProgram(cfg config.ReferralConfig) models.ReferralProgram {
	return models.ReferralProgram{
		IsActive:                   true,
		ReferrerDiscountPercentage: decimal.NewFromFloat(cfg.FallbackReferrerPercent),
		ReferredDiscountPercentage: decimal.NewFromFloat(cfg.FallbackReferredPercent),
		MinPurchaseValue:           decimal.Zero,
		ExpiryDays:                 cfg.FallbackExpiryDays,
	}
}

// ComputeExpiry returns the expiry of a code issued or reactivated at from.
func ComputeExpiry(from time.Time, program models.ReferralProgram) time.Time {
	return from.AddDate(0, 0, program.ExpiryDays)
}

// IsExpired reports whether the referral is past its expiry at now.
// A code is still valid at the exact expiry instant.
func IsExpired(ref *models.Referral, now time.Time) bool {
	return ref.ExpiresAt.Before(now)
}

// ResolveStatus applies the validator precedence: expired, then used, then valid.
func ResolveStatus(ref *models.Referral, now time.Time) string {
	switch {
	case IsExpired(ref, now):
		return domain.ValidationExpired
	case ref.Status == domain.ReferralStatusUsed:
		return domain.ValidationUsed
	default:
		return domain.ValidationValid
	}
}

// DaysUntilExpiry is ceil((expires_at - now) / 24h). It is negative once expired.
func DaysUntilExpiry(ref *models.Referral, now time.Time) int {
	d := ref.ExpiresAt.Sub(now)
	return int(math.Ceil(d.Hours() / 24))
}

// QuoteDiscount returns the discount for a purchase: zero below the program's
// minimum purchase value, otherwise value*percentage/100 capped by the max discount.
func QuoteDiscount(program models.ReferralProgram, purchaseValue, percentage decimal.Decimal) decimal.Decimal {
	if purchaseValue.IsNegative() || purchaseValue.LessThan(program.MinPurchaseValue) {
		return decimal.Zero
	}
	discount := purchaseValue.Mul(percentage).Div(hundred).Round(2)
	if program.MaxDiscountValue.Valid && discount.GreaterThan(program.MaxDiscountValue.Decimal) {
		return program.MaxDiscountValue.Decimal
	}
	return discount
}

// CanonicalCode trims and uppercases a code as typed by a visitor.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizePhone keeps digits only so "+55 (11) 9999-0000" and "551199990000" compare equal.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// generateCode draws length characters uniformly from [A-Z0-9].
func generateCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out), nil
}

func validateProgram(p *models.ReferralProgram) error {
	var fe fieldErrors
	percentages := []struct {
		name string
		v    decimal.Decimal
	}{
		{"referrer_discount_percentage", p.ReferrerDiscountPercentage},
		{"referred_discount_percentage", p.ReferredDiscountPercentage},
	}
	for _, pct := range percentages {
		if pct.v.IsNegative() || pct.v.GreaterThan(hundred) {
			fe.add(pct.name, "must be between 0 and 100")
		}
	}
	if p.MinPurchaseValue.IsNegative() {
		fe.add("min_purchase_value", "must not be negative")
	}
	if p.MaxDiscountValue.Valid && p.MaxDiscountValue.Decimal.IsNegative() {
		fe.add("max_discount_value", "must not be negative")
	}
	if p.ExpiryDays < 1 {
		fe.add("expiry_days", "must be at least 1")
	}
	return fe.err()
}
