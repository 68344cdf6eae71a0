package service

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ErrTokenUnregistered means the browser registration is gone and the
// subscription should be switched off.
var ErrTokenUnregistered = errors.New("push token unregistered")

// PushMessage is one browser notification.
type PushMessage struct {
	Title    string
	Body     string
	ImageURL string
	Link     string
	Data     map[string]string
}

// PushSender delivers a notification to one browser registration token.
type PushSender interface {
	Send(ctx context.Context, token string, msg PushMessage) error
}

type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMService sends web push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client fcmClient
}

// NewFCMService creates an FCM service. Returns nil if Firebase is not configured.
func NewFCMService(serviceAccountPath string) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	ctx := context.Background()
	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		logrus.WithError(err).Error("[FCM] failed to init Firebase app")
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		logrus.WithError(err).Error("[FCM] failed to get Messaging client")
		return nil
	}
	return &FCMService{client: client}
}

// Send pushes msg to token. A nil service is a no-op.
func (s *FCMService) Send(ctx context.Context, token string, msg PushMessage) error {
	if s == nil || token == "" {
		return nil
	}
	wp := &messaging.WebpushConfig{
		Notification: &messaging.WebpushNotification{
			Title: msg.Title,
			Body:  msg.Body,
			Image: msg.ImageURL,
		},
		Headers: map[string]string{"Urgency": "normal"},
	}
	if msg.Link != "" {
		wp.FCMOptions = &messaging.WebpushFCMOptions{Link: msg.Link}
	}
	_, err := s.client.Send(ctx, &messaging.Message{
		Notification: &messaging.Notification{
			Title:    msg.Title,
			Body:     msg.Body,
			ImageURL: msg.ImageURL,
		},
		Data:    msg.Data,
		Token:   token,
		Webpush: wp,
	})
	if err != nil {
		if messaging.IsUnregistered(err) {
			return fmt.Errorf("%w: %v", ErrTokenUnregistered, err)
		}
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
