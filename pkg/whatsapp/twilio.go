package whatsapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrNoRecipient = errors.New("whatsapp: recipient has no phone digits")

// messageCreator is the part of the Twilio REST client the sender needs.
type messageCreator interface {
	CreateMessage(params *api.CreateMessageParams) (*api.ApiV2010Message, error)
}

// TwilioSender sends WhatsApp messages through the Twilio Messaging API.
type TwilioSender struct {
	api  messageCreator
	from string
}

// NewTwilioSender returns nil when Twilio is not configured.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	if accountSID == "" || authToken == "" || from == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api, from: from}
}

func address(phone string) string {
	return "whatsapp:+" + Digits(phone)
}

// Send delivers body to phone and returns the Twilio message SID.
func (s *TwilioSender) Send(ctx context.Context, phone, body string) (string, error) {
	if Digits(phone) == "" {
		return "", ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &api.CreateMessageParams{}
	params.SetTo(address(phone))
	params.SetFrom(address(s.from))
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		logrus.WithError(err).WithField("channel", "whatsapp").Warn("[whatsapp] send failed")
		return "", fmt.Errorf("whatsapp: send: %w", err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
