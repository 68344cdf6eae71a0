package repository

import (
	"testing"

	"aesthetica/internal/domain"
)

func TestUsageStatusAndReward(t *testing.T) {
	db := newTestDB(t)
	seedReferral(t, db, "USE00001", baseTime, 30)
	_, usage, err := NewReferralRepository(db).Redeem(t.Context(), "USE00001", baseTime, usageFor("Bia", "1"))
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	repo := NewReferralUsageRepository(db)

	u, applied, err := repo.UpdateStatus(t.Context(), usage.ID, []string{domain.UsageStatusConfirmed}, domain.UsageStatusCompleted, baseTime)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if applied || u.Status != domain.UsageStatusPending {
		t.Fatalf("pending must not jump to completed: applied=%v status=%s", applied, u.Status)
	}

	u, applied, err = repo.UpdateStatus(t.Context(), usage.ID, []string{domain.UsageStatusPending}, domain.UsageStatusConfirmed, baseTime)
	if err != nil || !applied || u.Status != domain.UsageStatusConfirmed {
		t.Fatalf("confirm: applied=%v status=%s err=%v", applied, u.Status, err)
	}

	early, err := repo.MarkReferrerDiscountApplied(t.Context(), usage.ID, baseTime)
	if err != nil {
		t.Fatalf("mark confirmed: %v", err)
	}
	if early.ReferrerDiscountApplied || early.ReferrerDiscountUsedAt != nil {
		t.Fatalf("reward flag set on a confirmed usage: %+v", early)
	}

	u, applied, err = repo.UpdateStatus(t.Context(), usage.ID, []string{domain.UsageStatusConfirmed}, domain.UsageStatusCompleted, baseTime)
	if err != nil || !applied || u.Status != domain.UsageStatusCompleted {
		t.Fatalf("complete: applied=%v status=%s err=%v", applied, u.Status, err)
	}

	first, err := repo.MarkReferrerDiscountApplied(t.Context(), usage.ID, baseTime.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !first.ReferrerDiscountApplied || first.ReferrerDiscountUsedAt == nil {
		t.Fatalf("flag not set: %+v", first)
	}
	second, err := repo.MarkReferrerDiscountApplied(t.Context(), usage.ID, baseTime.AddDate(0, 0, 9))
	if err != nil {
		t.Fatalf("mark again: %v", err)
	}
	if !second.ReferrerDiscountUsedAt.Equal(*first.ReferrerDiscountUsedAt) {
		t.Fatalf("timestamp changed: %v -> %v", first.ReferrerDiscountUsedAt, second.ReferrerDiscountUsedAt)
	}
	if second.Referral == nil || second.Referral.ReferralCode != "USE00001" {
		t.Fatalf("referral not preloaded: %+v", second.Referral)
	}

	list, total, err := repo.List(t.Context(), UsageFilter{Status: domain.UsageStatusCompleted, Page: 1, Limit: 10})
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("list: total=%d err=%v", total, err)
	}
}
