package domain

const (
	RoleAdmin = "ADMIN"
)

// Stored referral status. "expired" is never stored, it is derived from expires_at.
const (
	ReferralStatusActive = "active"
	ReferralStatusUsed   = "used"
)

// Outcome of the staff validator.
const (
	ValidationValid    = "valid"
	ValidationUsed     = "used"
	ValidationExpired  = "expired"
	ValidationNotFound = "not_found"
)

const (
	UsageStatusPending   = "pending"
	UsageStatusConfirmed = "confirmed"
	UsageStatusCompleted = "completed"
	UsageStatusCancelled = "cancelled"
)

const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusCompleted = "completed"
)

const (
	PromotionStatusDraft = "draft"
	PromotionStatusSent  = "sent"
)

const (
	ChannelPush     = "push"
	ChannelWhatsApp = "whatsapp"
)

const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// Site content keys stored in system_settings.
const (
	SettingClinicName     = "clinic_name"
	SettingClinicPhone    = "clinic_phone"
	SettingClinicWhatsApp = "clinic_whatsapp"
	SettingClinicEmail    = "clinic_email"
	SettingClinicAddress  = "clinic_address"
	SettingOpeningHours   = "opening_hours"
	SettingHeroTitle      = "hero_title"
	SettingHeroSubtitle   = "hero_subtitle"
	SettingAboutText      = "about_text"
	SettingInstagramURL   = "instagram_url"
)

// DefaultSettings are seeded on first start so the public site renders before staff edit anything.
var DefaultSettings = map[string]string{
	SettingClinicName:    "Aesthetica Clinic",
	SettingClinicPhone:   "",
	SettingHeroTitle:     "Your best version, naturally",
	SettingHeroSubtitle:  "Facial and body aesthetics with specialist care",
	SettingOpeningHours:  "Mon-Fri 09:00-19:00, Sat 09:00-13:00",
	SettingAboutText:     "",
	SettingClinicAddress: "",
}

// Realtime event types pushed to the admin feed.
const (
	EventAppointmentCreated = "appointment.created"
	EventReferralIssued     = "referral.issued"
	EventReferralRedeemed   = "referral.redeemed"
	EventPromotionSent      = "promotion.sent"
)
