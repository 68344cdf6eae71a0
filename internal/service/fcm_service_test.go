package service

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
)

type fakeFCMClient struct {
	last *messaging.Message
	err  error
}

func (f *fakeFCMClient) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.last = m
	return "projects/x/messages/1", f.err
}

func TestFCMServiceBuildsWebpushMessage(t *testing.T) {
	client := &fakeFCMClient{}
	s := &FCMService{client: client}

	err := s.Send(context.Background(), "tok-1", PushMessage{
		Title: "Promo", Body: "20% off", ImageURL: "https://img/x.jpg", Link: "https://clinic.test/#promo",
		Data: map[string]string{"promotion_id": "7"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	m := client.last
	if m.Token != "tok-1" || m.Webpush == nil || m.Webpush.Notification.Title != "Promo" {
		t.Fatalf("message = %+v", m)
	}
	if m.Webpush.FCMOptions == nil || m.Webpush.FCMOptions.Link != "https://clinic.test/#promo" {
		t.Fatalf("link missing: %+v", m.Webpush.FCMOptions)
	}
	if m.Data["promotion_id"] != "7" {
		t.Fatalf("data = %v", m.Data)
	}
}

func TestFCMServiceNilAndErrors(t *testing.T) {
	var s *FCMService
	if err := s.Send(context.Background(), "tok", PushMessage{}); err != nil {
		t.Fatalf("nil service: %v", err)
	}
	if NewFCMService("") != nil {
		t.Fatal("unconfigured service must be nil")
	}

	failing := &FCMService{client: &fakeFCMClient{err: errors.New("boom")}}
	err := failing.Send(context.Background(), "tok", PushMessage{Title: "x"})
	if err == nil || errors.Is(err, ErrTokenUnregistered) {
		t.Fatalf("expected plain send error, got %v", err)
	}
}
