package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aesthetica/internal/clock"
	"aesthetica/internal/domain"
	"aesthetica/internal/models"
	"aesthetica/internal/repository"
)

func TestNotificationInbox(t *testing.T) {
	db := newTestDB(t)
	live := &recordingPublisher{}
	clk := clock.NewManual(t0)
	svc := NewNotificationService(repository.NewNotificationRepository(db), live, clk)
	ctx := context.Background()

	svc.Publish(domain.EventAppointmentCreated, &models.Appointment{Name: "Bia", PreferredDate: t0, PreferredTime: "10:00"})
	svc.Publish(domain.EventReferralIssued, &models.Referral{ReferralCode: "ABCD1234", ReferrerName: "Ana"})

	if got := live.types(); len(got) != 2 {
		t.Fatalf("live events = %v", got)
	}

	inbox, err := svc.List(ctx, false, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if inbox.Total != 2 || inbox.Unread != 2 {
		t.Fatalf("inbox = %+v", inbox)
	}
	var appt models.Notification
	for _, n := range inbox.Notifications {
		if n.Type == domain.EventAppointmentCreated {
			appt = n
		}
	}
	if appt.Title != "New appointment request" || !strings.Contains(appt.Body, "Bia requested 01/03/2026 at 10:00") {
		t.Fatalf("appointment notification = %+v", appt)
	}

	if err := svc.MarkRead(ctx, appt.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := svc.MarkRead(ctx, appt.ID); err != nil {
		t.Fatalf("mark read twice: %v", err)
	}
	if err := svc.MarkRead(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	unread, _ := svc.List(ctx, true, 1, 10)
	if unread.Total != 1 || unread.Unread != 1 {
		t.Fatalf("unread = %+v", unread)
	}
	if n, err := svc.MarkAllRead(ctx); err != nil || n != 1 {
		t.Fatalf("mark all = %d, %v", n, err)
	}
}
