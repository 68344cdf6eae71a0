package whatsapp

import (
	"net/url"
	"strings"
	"unicode"
)

const baseURL = "https://wa.me/"

// Digits strips everything but digits from a phone number.
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Link builds a click-to-chat deep link with a pre-filled message.
// Spaces are encoded as %20, which every WhatsApp client decodes.
func Link(phone, message string) string {
	u := baseURL + Digits(phone)
	if message == "" {
		return u
	}
	return u + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}
